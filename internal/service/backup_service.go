package service

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"nismah/internal/database"
)

// BackupData represents the complete database backup structure
type BackupData struct {
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Accounts   []AccountBackup  `json:"accounts"`
	Families   []FamilyBackup   `json:"families"`
	Incidents  []IncidentBackup `json:"incidents"`
	Alerts     []AlertBackup    `json:"alerts"`
}

// AccountBackup represents an account record for backup
type AccountBackup struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"password_hash"`
	Role          string     `json:"role"`
	Phone         *string    `json:"phone"`
	DateOfBirth   *time.Time `json:"date_of_birth"`
	FamilyCode    *string    `json:"family_code"`
	GuardianEmail *string    `json:"guardian_email"`
	GuardianPhone *string    `json:"guardian_phone"`
	OAuthProvider string     `json:"oauth_provider"`
	OAuthSubject  string     `json:"oauth_subject"`
	IsAdmin       bool       `json:"is_admin"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// FamilyBackup represents a family record for backup
type FamilyBackup struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

// IncidentBackup represents an incident record for backup
type IncidentBackup struct {
	ID              int64     `json:"id"`
	Category        string    `json:"category"`
	Location        string    `json:"location"`
	Description     string    `json:"description"`
	ReporterName    *string   `json:"reporter_name"`
	ReporterContact *string   `json:"reporter_contact"`
	ReporterID      *int64    `json:"reporter_id"`
	Latitude        *float64  `json:"latitude"`
	Longitude       *float64  `json:"longitude"`
	CreatedAt       time.Time `json:"created_at"`
}

// AlertBackup represents an alert record for backup
type AlertBackup struct {
	ID         int64     `json:"id"`
	IncidentID int64     `json:"incident_id"`
	Resolved   bool      `json:"resolved"`
	FamilyCode *string   `json:"family_code"`
	CreatedAt  time.Time `json:"created_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	if err := s.exportAccounts(backup); err != nil {
		return fmt.Errorf("failed to export accounts: %w", err)
	}
	if err := s.exportFamilies(backup); err != nil {
		return fmt.Errorf("failed to export families: %w", err)
	}
	if err := s.exportIncidents(backup); err != nil {
		return fmt.Errorf("failed to export incidents: %w", err)
	}
	if err := s.exportAlerts(backup); err != nil {
		return fmt.Errorf("failed to export alerts: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Database exported successfully to %s", outputPath)
	log.Printf("Exported: %d accounts, %d families, %d incidents, %d alerts",
		len(backup.Accounts), len(backup.Families), len(backup.Incidents), len(backup.Alerts))
	return nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	var backup BackupData
	if err := json.NewDecoder(file).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// Import in dependency order
	if err := s.importFamilies(backup.Families); err != nil {
		return fmt.Errorf("failed to import families: %w", err)
	}
	if err := s.importAccounts(backup.Accounts); err != nil {
		return fmt.Errorf("failed to import accounts: %w", err)
	}
	if err := s.importIncidents(backup.Incidents); err != nil {
		return fmt.Errorf("failed to import incidents: %w", err)
	}
	if err := s.importAlerts(backup.Alerts); err != nil {
		return fmt.Errorf("failed to import alerts: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportAccounts(backup *BackupData) error {
	query := `SELECT id, name, email, password_hash, role, phone, date_of_birth,
		family_code, guardian_email, guardian_phone,
		COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''),
		is_admin, created_at, updated_at FROM accounts ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a AccountBackup
		err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role,
			&a.Phone, &a.DateOfBirth, &a.FamilyCode, &a.GuardianEmail, &a.GuardianPhone,
			&a.OAuthProvider, &a.OAuthSubject, &a.IsAdmin, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return err
		}
		backup.Accounts = append(backup.Accounts, a)
	}
	return rows.Err()
}

func (s *BackupService) exportFamilies(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, code, created_at FROM families ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var f FamilyBackup
		if err := rows.Scan(&f.ID, &f.Code, &f.CreatedAt); err != nil {
			return err
		}
		backup.Families = append(backup.Families, f)
	}
	return rows.Err()
}

func (s *BackupService) exportIncidents(backup *BackupData) error {
	query := `SELECT id, category, location, description, reporter_name,
		reporter_contact, reporter_id, latitude, longitude, created_at
		FROM incidents ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var i IncidentBackup
		err := rows.Scan(&i.ID, &i.Category, &i.Location, &i.Description,
			&i.ReporterName, &i.ReporterContact, &i.ReporterID,
			&i.Latitude, &i.Longitude, &i.CreatedAt)
		if err != nil {
			return err
		}
		backup.Incidents = append(backup.Incidents, i)
	}
	return rows.Err()
}

func (s *BackupService) exportAlerts(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, incident_id, resolved, family_code, created_at FROM alerts ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a AlertBackup
		if err := rows.Scan(&a.ID, &a.IncidentID, &a.Resolved, &a.FamilyCode, &a.CreatedAt); err != nil {
			return err
		}
		backup.Alerts = append(backup.Alerts, a)
	}
	return rows.Err()
}

func (s *BackupService) importFamilies(families []FamilyBackup) error {
	for _, f := range families {
		query := "INSERT INTO families (id, code, created_at) VALUES (?, ?, ?)"
		if _, err := s.db.Exec(query, f.ID, f.Code, f.CreatedAt); err != nil {
			return fmt.Errorf("family %s: %w", f.Code, err)
		}
	}
	log.Printf("Imported %d families", len(families))
	return nil
}

func (s *BackupService) importAccounts(accounts []AccountBackup) error {
	for _, a := range accounts {
		query := `INSERT INTO accounts (id, name, email, password_hash, role, phone,
			date_of_birth, family_code, guardian_email, guardian_phone,
			oauth_provider, oauth_subject, is_admin, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := s.db.Exec(query, a.ID, a.Name, a.Email, a.PasswordHash, a.Role,
			a.Phone, a.DateOfBirth, a.FamilyCode, a.GuardianEmail, a.GuardianPhone,
			a.OAuthProvider, a.OAuthSubject, a.IsAdmin, a.CreatedAt, a.UpdatedAt)
		if err != nil {
			return fmt.Errorf("account %s: %w", a.Email, err)
		}
	}
	log.Printf("Imported %d accounts", len(accounts))
	return nil
}

func (s *BackupService) importIncidents(incidents []IncidentBackup) error {
	for _, i := range incidents {
		query := `INSERT INTO incidents (id, category, location, description,
			reporter_name, reporter_contact, reporter_id, latitude, longitude, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := s.db.Exec(query, i.ID, i.Category, i.Location, i.Description,
			i.ReporterName, i.ReporterContact, i.ReporterID, i.Latitude, i.Longitude, i.CreatedAt)
		if err != nil {
			return fmt.Errorf("incident %d: %w", i.ID, err)
		}
	}
	log.Printf("Imported %d incidents", len(incidents))
	return nil
}

func (s *BackupService) importAlerts(alerts []AlertBackup) error {
	for _, a := range alerts {
		query := "INSERT INTO alerts (id, incident_id, resolved, family_code, created_at) VALUES (?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, a.ID, a.IncidentID, a.Resolved, a.FamilyCode, a.CreatedAt); err != nil {
			return fmt.Errorf("alert %d: %w", a.ID, err)
		}
	}
	log.Printf("Imported %d alerts", len(alerts))
	return nil
}
