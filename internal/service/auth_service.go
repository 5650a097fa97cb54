package service

import (
	"errors"
	"fmt"
	"time"

	"nismah/internal/credentials"
	"nismah/internal/database"
	"nismah/internal/models"
	"nismah/internal/repository"
	"nismah/internal/security"
	"nismah/internal/validation"
)

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidRole        = errors.New("invalid account type")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidBirthDate   = errors.New("invalid birth date")
	ErrNotAMinor          = errors.New("account holder must be under 18")
	ErrGuardianNotFound   = errors.New("guardian account not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
)

const familyCodeRetries = 5

// RegisterInput carries a registration request after JSON decoding
type RegisterInput struct {
	Name          string
	Email         string
	Password      string
	Role          string
	Phone         string
	BirthDate     string
	GuardianEmail string
	GuardianPhone string
}

// AuthService handles registration, login and session business logic
type AuthService struct {
	db              *database.DB
	accountRepo     *repository.AccountRepository
	familyRepo      *repository.FamilyRepository
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(db *database.DB, accountRepo *repository.AccountRepository, familyRepo *repository.FamilyRepository, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		db:              db,
		accountRepo:     accountRepo,
		familyRepo:      familyRepo,
		sessionDuration: sessionDuration,
	}
}

// Register creates a new account. Guardians and independent minors get a fresh
// family; dependent minors must name an existing guardian whose family they
// join, creating and back-filling that family if the guardian predates one.
func (s *AuthService) Register(input RegisterInput) (*models.Account, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" || input.Role == "" {
		return nil, ErrMissingFields
	}

	role, err := models.ParseRole(input.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, input.Role)
	}

	if err := validation.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(input.Name); err != nil {
		return nil, err
	}

	existing, err := s.accountRepo.GetByEmail(input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	account := &models.Account{
		Name:  input.Name,
		Email: input.Email,
		Role:  role,
	}
	if input.Phone != "" {
		account.Phone = &input.Phone
	}

	if role.IsMinor() {
		if input.BirthDate == "" {
			return nil, fmt.Errorf("%w: birth date is required for minors", ErrMissingFields)
		}
		age, ok := validation.AgeFromString(input.BirthDate)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidBirthDate, input.BirthDate)
		}
		if age >= 18 {
			return nil, ErrNotAMinor
		}
		dob, _ := validation.ParseBirthDate(input.BirthDate)
		account.DateOfBirth = &dob
	}

	switch role {
	case models.RoleDependentMinor:
		if input.GuardianEmail == "" || input.GuardianPhone == "" {
			return nil, fmt.Errorf("%w: guardian email and phone are required", ErrMissingFields)
		}
		guardian, err := s.accountRepo.GetByEmail(input.GuardianEmail)
		if err != nil {
			return nil, fmt.Errorf("failed to look up guardian: %w", err)
		}
		if guardian == nil || guardian.Role != models.RoleGuardian {
			return nil, fmt.Errorf("%w: %s", ErrGuardianNotFound, input.GuardianEmail)
		}

		code, err := s.ensureFamilyCode(guardian)
		if err != nil {
			return nil, err
		}
		account.FamilyCode = &code
		// Store the guardian's canonical email, not the caller's spelling
		account.GuardianEmail = &guardian.Email
		account.GuardianPhone = &input.GuardianPhone

	case models.RoleGuardian, models.RoleIndependentMinor:
		family, err := s.createFamily()
		if err != nil {
			return nil, err
		}
		account.FamilyCode = &family.Code
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	account.PasswordHash = passwordHash

	created, err := s.accountRepo.CreateAccount(account)
	if err != nil {
		if s.db.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return created, nil
}

// ensureFamilyCode returns the guardian's family code, creating a family and
// back-filling the guardian row when the guardian doesn't carry one yet.
func (s *AuthService) ensureFamilyCode(guardian *models.Account) (string, error) {
	if guardian.FamilyCode != nil && *guardian.FamilyCode != "" {
		return *guardian.FamilyCode, nil
	}

	family, err := s.createFamily()
	if err != nil {
		return "", err
	}
	if err := s.accountRepo.SetFamilyCode(guardian.ID, family.Code); err != nil {
		return "", fmt.Errorf("failed to assign family code to guardian: %w", err)
	}
	guardian.FamilyCode = &family.Code
	return family.Code, nil
}

// createFamily generates a code and inserts the family, retrying on the
// unlikely event of a code collision.
func (s *AuthService) createFamily() (*models.Family, error) {
	for attempt := 0; attempt < familyCodeRetries; attempt++ {
		code, err := credentials.GenerateFamilyCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate family code: %w", err)
		}
		family, err := s.familyRepo.CreateFamily(code)
		if err != nil {
			if s.db.IsUniqueViolation(err) {
				continue
			}
			return nil, fmt.Errorf("failed to create family: %w", err)
		}
		return family, nil
	}
	return nil, errors.New("failed to create family: code generation kept colliding")
}

// Login authenticates an account and creates a session
func (s *AuthService) Login(email, password string) (*models.Session, *models.Account, error) {
	account, err := s.accountRepo.GetByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, account.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.createSession(account.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, account, nil
}

// LoginOAuth creates a session for an already-verified OAuth identity,
// linking the identity to an existing account by email when needed.
func (s *AuthService) LoginOAuth(provider, subject, email string) (*models.Session, *models.Account, error) {
	account, err := s.accountRepo.GetByOAuth(provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get oauth account: %w", err)
	}
	if account == nil {
		account, err = s.accountRepo.GetByEmail(email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get account: %w", err)
		}
		if account == nil {
			return nil, nil, ErrInvalidCredentials
		}
		if err := s.accountRepo.LinkOAuthProvider(account.ID, provider, subject); err != nil {
			return nil, nil, err
		}
	}

	session, err := s.createSession(account.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, account, nil
}

func (s *AuthService) createSession(accountID int64) (*models.Session, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	session, err := s.accountRepo.CreateSession(sessionID, accountID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ValidateSession checks a session and returns its account
func (s *AuthService) ValidateSession(sessionID string) (*models.Account, error) {
	session, err := s.accountRepo.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.IsExpired() {
		_ = s.accountRepo.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	account, err := s.accountRepo.GetByID(session.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrSessionNotFound
	}
	return account, nil
}

// Logout removes a session
func (s *AuthService) Logout(sessionID string) error {
	return s.accountRepo.DeleteSession(sessionID)
}

// DeleteAccount removes an account by email. Returns true if a row was deleted.
func (s *AuthService) DeleteAccount(email string) (bool, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return false, err
	}
	return s.accountRepo.DeleteByEmail(email)
}

// CleanupExpiredSessions removes expired sessions
func (s *AuthService) CleanupExpiredSessions() error {
	return s.accountRepo.DeleteExpiredSessions()
}
