package repository

import (
	"database/sql"
	"fmt"
	"time"

	"nismah/internal/database"
	"nismah/internal/models"
)

// AccountRepository handles database operations for accounts and sessions
type AccountRepository struct {
	db *database.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, name, email, password_hash, role, phone, date_of_birth,
	family_code, guardian_email, guardian_phone, oauth_provider, oauth_subject,
	is_admin, created_at, updated_at`

// CreateAccount inserts a new account and returns it with its assigned ID
func (r *AccountRepository) CreateAccount(a *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (name, email, password_hash, role, phone, date_of_birth,
			family_code, guardian_email, guardian_phone, oauth_provider, oauth_subject, is_admin)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		a.Name, a.Email, a.PasswordHash, string(a.Role), a.Phone, a.DateOfBirth,
		a.FamilyCode, a.GuardianEmail, a.GuardianPhone, a.OAuthProvider, a.OAuthSubject, a.IsAdmin)
	if err != nil {
		// Surface driver errors unwrapped so callers can detect unique violations
		return nil, err
	}

	a.ID = id
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	return a, nil
}

// GetByEmail retrieves an account by email, or nil if not found. The match is
// case-insensitive; the returned account carries the stored canonical address.
func (r *AccountRepository) GetByEmail(email string) (*models.Account, error) {
	query := "SELECT " + accountColumns + " FROM accounts WHERE LOWER(email) = LOWER(?)"
	return r.scanAccount(r.db.QueryRow(query, email))
}

// GetByID retrieves an account by ID, or nil if not found
func (r *AccountRepository) GetByID(id int64) (*models.Account, error) {
	query := "SELECT " + accountColumns + " FROM accounts WHERE id = ?"
	return r.scanAccount(r.db.QueryRow(query, id))
}

// GetByOAuth retrieves an account by OAuth provider and subject, or nil if not found
func (r *AccountRepository) GetByOAuth(provider, subject string) (*models.Account, error) {
	query := "SELECT " + accountColumns + " FROM accounts WHERE oauth_provider = ? AND oauth_subject = ?"
	return r.scanAccount(r.db.QueryRow(query, provider, subject))
}

// LinkOAuthProvider attaches OAuth identity details to an existing account
func (r *AccountRepository) LinkOAuthProvider(accountID int64, provider, subject string) error {
	query := "UPDATE accounts SET oauth_provider = ?, oauth_subject = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.db.Exec(query, provider, subject, accountID)
	if err != nil {
		return fmt.Errorf("failed to link oauth provider: %w", err)
	}
	return nil
}

// SetFamilyCode back-fills an account's family code
func (r *AccountRepository) SetFamilyCode(accountID int64, code string) error {
	query := "UPDATE accounts SET family_code = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.db.Exec(query, code, accountID)
	if err != nil {
		return fmt.Errorf("failed to set family code: %w", err)
	}
	return nil
}

// DeleteByEmail removes an account by email, matching case-insensitively like
// GetByEmail. Returns true if a row was deleted.
func (r *AccountRepository) DeleteByEmail(email string) (bool, error) {
	result, err := r.db.Exec("DELETE FROM accounts WHERE LOWER(email) = LOWER(?)", email)
	if err != nil {
		return false, fmt.Errorf("failed to delete account: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return affected > 0, nil
}

// ListGuardiansByFamilyCode retrieves guardian accounts that carry a family code
func (r *AccountRepository) ListGuardiansByFamilyCode(code string) ([]models.Account, error) {
	query := "SELECT " + accountColumns + " FROM accounts WHERE family_code = ? AND role = ?"
	rows, err := r.db.Query(query, code, string(models.RoleGuardian))
	if err != nil {
		return nil, fmt.Errorf("failed to query guardians: %w", err)
	}
	defer rows.Close()

	var guardians []models.Account
	for rows.Next() {
		account, err := scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan guardian: %w", err)
		}
		guardians = append(guardians, *account)
	}
	return guardians, rows.Err()
}

// CountByEmail counts accounts with the given email, case-insensitively
func (r *AccountRepository) CountByEmail(email string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM accounts WHERE LOWER(email) = LOWER(?)", email).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

// CreateSession creates a new session for an account
func (r *AccountRepository) CreateSession(sessionID string, accountID int64, expiresAt time.Time) (*models.Session, error) {
	query := "INSERT INTO sessions (id, account_id, expires_at) VALUES (?, ?, ?)"
	if _, err := r.db.Exec(query, sessionID, accountID, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &models.Session{
		ID:        sessionID,
		AccountID: accountID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// GetSession retrieves a session by ID, or nil if not found
func (r *AccountRepository) GetSession(sessionID string) (*models.Session, error) {
	query := "SELECT id, account_id, expires_at, created_at FROM sessions WHERE id = ?"
	session := &models.Session{}
	err := r.db.QueryRow(query, sessionID).Scan(
		&session.ID, &session.AccountID, &session.ExpiresAt, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// DeleteSession removes a session
func (r *AccountRepository) DeleteSession(sessionID string) error {
	_, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all expired sessions
func (r *AccountRepository) DeleteExpiredSessions() error {
	_, err := r.db.Exec("DELETE FROM sessions WHERE expires_at < ?", time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}

// scanAccount scans a single account row, returning nil when no row matched
func (r *AccountRepository) scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	var role string
	var phone, familyCode, guardianEmail, guardianPhone, oauthProvider, oauthSubject sql.NullString
	var dob sql.NullTime

	err := row.Scan(
		&account.ID, &account.Name, &account.Email, &account.PasswordHash, &role,
		&phone, &dob, &familyCode, &guardianEmail, &guardianPhone,
		&oauthProvider, &oauthSubject, &account.IsAdmin,
		&account.CreatedAt, &account.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}

	populateAccount(account, role, phone, dob, familyCode, guardianEmail, guardianPhone, oauthProvider, oauthSubject)
	return account, nil
}

// scanAccountRow scans an account from a multi-row result set
func scanAccountRow(rows *sql.Rows) (*models.Account, error) {
	account := &models.Account{}
	var role string
	var phone, familyCode, guardianEmail, guardianPhone, oauthProvider, oauthSubject sql.NullString
	var dob sql.NullTime

	err := rows.Scan(
		&account.ID, &account.Name, &account.Email, &account.PasswordHash, &role,
		&phone, &dob, &familyCode, &guardianEmail, &guardianPhone,
		&oauthProvider, &oauthSubject, &account.IsAdmin,
		&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}

	populateAccount(account, role, phone, dob, familyCode, guardianEmail, guardianPhone, oauthProvider, oauthSubject)
	return account, nil
}

func populateAccount(account *models.Account, role string,
	phone sql.NullString, dob sql.NullTime,
	familyCode, guardianEmail, guardianPhone, oauthProvider, oauthSubject sql.NullString) {

	account.Role = models.Role(role)
	if phone.Valid {
		account.Phone = &phone.String
	}
	if dob.Valid {
		account.DateOfBirth = &dob.Time
	}
	if familyCode.Valid {
		account.FamilyCode = &familyCode.String
	}
	if guardianEmail.Valid {
		account.GuardianEmail = &guardianEmail.String
	}
	if guardianPhone.Valid {
		account.GuardianPhone = &guardianPhone.String
	}
	if oauthProvider.Valid {
		account.OAuthProvider = oauthProvider.String
	}
	if oauthSubject.Valid {
		account.OAuthSubject = oauthSubject.String
	}
}
