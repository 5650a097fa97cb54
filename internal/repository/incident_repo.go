package repository

import (
	"database/sql"
	"fmt"
	"time"

	"nismah/internal/database"
	"nismah/internal/models"
)

// IncidentRepository handles database operations for incidents and alerts
type IncidentRepository struct {
	db *database.DB
}

// NewIncidentRepository creates a new incident repository
func NewIncidentRepository(db *database.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

// CreateWithAlert inserts an incident and its wrapping alert in one
// transaction. familyCode is nil for public alerts.
func (r *IncidentRepository) CreateWithAlert(incident *models.Incident, familyCode *string) (*models.AlertWithIncident, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO incidents (category, location, description, reporter_name,
			reporter_contact, reporter_id, source_ip, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	incidentID, err := tx.ExecReturningID(query,
		incident.Category, incident.Location, incident.Description,
		incident.ReporterName, incident.ReporterContact, incident.ReporterID,
		incident.SourceIP, incident.Latitude, incident.Longitude)
	if err != nil {
		return nil, fmt.Errorf("failed to create incident: %w", err)
	}

	query = "INSERT INTO alerts (incident_id, family_code) VALUES (?, ?)"
	alertID, err := tx.ExecReturningID(query, incidentID, familyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	incident.ID = incidentID
	incident.CreatedAt = time.Now()

	return &models.AlertWithIncident{
		Alert: models.Alert{
			ID:         alertID,
			IncidentID: incidentID,
			Resolved:   false,
			FamilyCode: familyCode,
			CreatedAt:  incident.CreatedAt,
		},
		Incident: *incident,
	}, nil
}

const alertJoinColumns = `
	a.id, a.incident_id, a.resolved, a.family_code, a.created_at,
	i.id, i.category, i.location, i.description, i.reporter_name,
	i.reporter_contact, i.latitude, i.longitude, i.created_at
`

// ListUnresolved retrieves unresolved public alerts plus, when familyCode is
// non-nil, that family's unresolved alerts.
func (r *IncidentRepository) ListUnresolved(familyCode *string) ([]models.AlertWithIncident, error) {
	query := `
		SELECT ` + alertJoinColumns + `
		FROM alerts a
		INNER JOIN incidents i ON a.incident_id = i.id
		WHERE a.resolved = ? AND (a.family_code IS NULL OR a.family_code = ?)
		ORDER BY a.created_at DESC
	`
	code := ""
	if familyCode != nil {
		code = *familyCode
	}
	rows, err := r.db.Query(query, false, code)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.AlertWithIncident
	for rows.Next() {
		entry, err := scanAlertRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, *entry)
	}
	return alerts, rows.Err()
}

// GetAlert retrieves an alert with its incident, or nil if not found
func (r *IncidentRepository) GetAlert(alertID int64) (*models.AlertWithIncident, error) {
	query := `
		SELECT ` + alertJoinColumns + `
		FROM alerts a
		INNER JOIN incidents i ON a.incident_id = i.id
		WHERE a.id = ?
	`
	rows, err := r.db.Query(query, alertID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	entry, err := scanAlertRow(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan alert: %w", err)
	}
	return entry, nil
}

// ResolveAlert flips an alert's resolved flag. Returns true if a row changed.
func (r *IncidentRepository) ResolveAlert(alertID int64) (bool, error) {
	result, err := r.db.Exec("UPDATE alerts SET resolved = ? WHERE id = ?", true, alertID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve alert: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read resolve result: %w", err)
	}
	return affected > 0, nil
}

func scanAlertRow(rows *sql.Rows) (*models.AlertWithIncident, error) {
	var entry models.AlertWithIncident
	var familyCode, reporterName, reporterContact sql.NullString
	var latitude, longitude sql.NullFloat64

	err := rows.Scan(
		&entry.Alert.ID, &entry.Alert.IncidentID, &entry.Alert.Resolved,
		&familyCode, &entry.Alert.CreatedAt,
		&entry.Incident.ID, &entry.Incident.Category, &entry.Incident.Location,
		&entry.Incident.Description, &reporterName, &reporterContact,
		&latitude, &longitude, &entry.Incident.CreatedAt)
	if err != nil {
		return nil, err
	}

	if familyCode.Valid {
		entry.Alert.FamilyCode = &familyCode.String
	}
	if reporterName.Valid {
		entry.Incident.ReporterName = &reporterName.String
	}
	if reporterContact.Valid {
		entry.Incident.ReporterContact = &reporterContact.String
	}
	if latitude.Valid {
		entry.Incident.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		entry.Incident.Longitude = &longitude.Float64
	}
	return &entry, nil
}
