package repository

import (
	"database/sql"
	"fmt"
	"time"

	"nismah/internal/database"
	"nismah/internal/models"
)

// FamilyRepository handles database operations for families
type FamilyRepository struct {
	db *database.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// CreateFamily inserts a family with the given code. The code column carries
// a unique constraint; a generator collision surfaces as a driver error the
// caller can detect with db.IsUniqueViolation.
func (r *FamilyRepository) CreateFamily(code string) (*models.Family, error) {
	query := "INSERT INTO families (code) VALUES (?)"
	id, err := r.db.ExecReturningID(query, code)
	if err != nil {
		return nil, err
	}

	return &models.Family{
		ID:        id,
		Code:      code,
		CreatedAt: time.Now(),
	}, nil
}

// GetByCode retrieves a family by its code, or nil if not found
func (r *FamilyRepository) GetByCode(code string) (*models.Family, error) {
	query := "SELECT id, code, created_at FROM families WHERE code = ?"
	family := &models.Family{}
	err := r.db.QueryRow(query, code).Scan(&family.ID, &family.Code, &family.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return family, nil
}
