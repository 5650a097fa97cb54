package repository

import (
	"database/sql"
	"fmt"
	"time"

	"nismah/internal/database"
	"nismah/internal/models"
)

// DirectoryRepository handles database operations for educational resources
// and counselor listings
type DirectoryRepository struct {
	db *database.DB
}

// NewDirectoryRepository creates a new directory repository
func NewDirectoryRepository(db *database.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// ListResources retrieves resources, optionally filtered by language
func (r *DirectoryRepository) ListResources(language string) ([]models.Resource, error) {
	query := "SELECT id, title, url, category, language, created_at FROM resources"
	args := []interface{}{}
	if language != "" {
		query += " WHERE language = ?"
		args = append(args, language)
	}
	query += " ORDER BY category, title"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query resources: %w", err)
	}
	defer rows.Close()

	var resources []models.Resource
	for rows.Next() {
		var res models.Resource
		if err := rows.Scan(&res.ID, &res.Title, &res.URL, &res.Category, &res.Language, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, res)
	}
	return resources, rows.Err()
}

// CreateResource inserts a resource listing
func (r *DirectoryRepository) CreateResource(title, url, category, language string) (*models.Resource, error) {
	query := "INSERT INTO resources (title, url, category, language) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, title, url, category, language)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return &models.Resource{
		ID: id, Title: title, URL: url, Category: category, Language: language,
		CreatedAt: time.Now(),
	}, nil
}

// CountResources counts resource listings
func (r *DirectoryRepository) CountResources() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM resources").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count resources: %w", err)
	}
	return count, nil
}

// ListCounselors retrieves counselor listings, optionally filtered by a
// language they speak
func (r *DirectoryRepository) ListCounselors(language string) ([]models.Counselor, error) {
	query := "SELECT id, name, specialty, languages, email, phone, created_at FROM counselors"
	args := []interface{}{}
	if language != "" {
		query += " WHERE languages LIKE ?"
		args = append(args, "%"+language+"%")
	}
	query += " ORDER BY name"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query counselors: %w", err)
	}
	defer rows.Close()

	var counselors []models.Counselor
	for rows.Next() {
		var c models.Counselor
		var phone sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Specialty, &c.Languages, &c.Email, &phone, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan counselor: %w", err)
		}
		if phone.Valid {
			c.Phone = &phone.String
		}
		counselors = append(counselors, c)
	}
	return counselors, rows.Err()
}

// CreateCounselor inserts a counselor listing
func (r *DirectoryRepository) CreateCounselor(name, specialty, languages, email string, phone *string) (*models.Counselor, error) {
	query := "INSERT INTO counselors (name, specialty, languages, email, phone) VALUES (?, ?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, name, specialty, languages, email, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to create counselor: %w", err)
	}
	return &models.Counselor{
		ID: id, Name: name, Specialty: specialty, Languages: languages,
		Email: email, Phone: phone, CreatedAt: time.Now(),
	}, nil
}

// CountCounselors counts counselor listings
func (r *DirectoryRepository) CountCounselors() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM counselors").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count counselors: %w", err)
	}
	return count, nil
}
