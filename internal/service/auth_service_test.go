package service

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nismah/internal/database"
	"nismah/internal/models"
	"nismah/internal/repository"
)

func newTestAuthService(t *testing.T) (*AuthService, *repository.AccountRepository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Initialize(dbPath)
	if err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	accountRepo := repository.NewAccountRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	return NewAuthService(db, accountRepo, familyRepo, time.Hour), accountRepo
}

func guardianInput(email string) RegisterInput {
	return RegisterInput{
		Name:     "Guardian Test",
		Email:    email,
		Password: "password123",
		Role:     "PARENT",
	}
}

func minorBirthDate(age int) string {
	return time.Now().AddDate(-age, 0, -1).Format("2006-01-02")
}

func TestRegisterGuardianGetsFreshFamilyCode(t *testing.T) {
	svc, _ := newTestAuthService(t)

	account, err := svc.Register(guardianInput("parent@example.com"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if account.Role != models.RoleGuardian {
		t.Errorf("expected guardian role, got %s", account.Role)
	}
	if account.FamilyCode == nil || len(*account.FamilyCode) != 6 {
		t.Fatalf("expected a 6-character family code, got %v", account.FamilyCode)
	}
	for _, c := range *account.FamilyCode {
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			t.Errorf("unexpected character %q in family code", c)
		}
	}
}

func TestRegisterDependentMinorInheritsFamilyCode(t *testing.T) {
	svc, _ := newTestAuthService(t)

	guardian, err := svc.Register(guardianInput("parent@example.com"))
	if err != nil {
		t.Fatalf("guardian registration failed: %v", err)
	}

	minor, err := svc.Register(RegisterInput{
		Name:          "Kid Test",
		Email:         "kid@example.com",
		Password:      "password123",
		Role:          "CHILD",
		BirthDate:     minorBirthDate(10),
		GuardianEmail: "PARENT@example.com",
		GuardianPhone: "+1-555-0100",
	})
	if err != nil {
		t.Fatalf("minor registration failed: %v", err)
	}

	if minor.FamilyCode == nil || *minor.FamilyCode != *guardian.FamilyCode {
		t.Errorf("minor must inherit the guardian's family code: got %v, want %v",
			minor.FamilyCode, guardian.FamilyCode)
	}
	// The guardian lookup is case-insensitive on the database side but the
	// stored contact must be the guardian's canonical address
	if minor.GuardianEmail == nil || *minor.GuardianEmail != "parent@example.com" {
		t.Errorf("expected canonical guardian email, got %v", minor.GuardianEmail)
	}
}

func TestRegisterDependentMinorBackfillsGuardianFamily(t *testing.T) {
	svc, accountRepo := newTestAuthService(t)

	guardian, err := svc.Register(guardianInput("parent@example.com"))
	if err != nil {
		t.Fatalf("guardian registration failed: %v", err)
	}

	// Simulate a legacy guardian row without a family code
	if err := accountRepo.SetFamilyCode(guardian.ID, ""); err != nil {
		t.Fatalf("failed to clear family code: %v", err)
	}

	minor, err := svc.Register(RegisterInput{
		Name:          "Kid Test",
		Email:         "kid@example.com",
		Password:      "password123",
		Role:          "CHILD",
		BirthDate:     minorBirthDate(12),
		GuardianEmail: "parent@example.com",
		GuardianPhone: "+1-555-0100",
	})
	if err != nil {
		t.Fatalf("minor registration failed: %v", err)
	}
	if minor.FamilyCode == nil || *minor.FamilyCode == "" {
		t.Fatal("minor must receive a family code")
	}

	reloaded, err := accountRepo.GetByID(guardian.ID)
	if err != nil {
		t.Fatalf("failed to reload guardian: %v", err)
	}
	if reloaded.FamilyCode == nil || *reloaded.FamilyCode != *minor.FamilyCode {
		t.Errorf("guardian row must be back-filled with the new code: got %v, want %v",
			reloaded.FamilyCode, minor.FamilyCode)
	}
}

func TestRegisterDependentMinorRejectsAdults(t *testing.T) {
	svc, accountRepo := newTestAuthService(t)

	if _, err := svc.Register(guardianInput("parent@example.com")); err != nil {
		t.Fatalf("guardian registration failed: %v", err)
	}

	_, err := svc.Register(RegisterInput{
		Name:          "Adult Test",
		Email:         "adult@example.com",
		Password:      "password123",
		Role:          "CHILD",
		BirthDate:     minorBirthDate(18),
		GuardianEmail: "parent@example.com",
		GuardianPhone: "+1-555-0100",
	})
	if !errors.Is(err, ErrNotAMinor) {
		t.Fatalf("expected ErrNotAMinor, got %v", err)
	}

	// Nothing persisted on rejection
	account, err := accountRepo.GetByEmail("adult@example.com")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if account != nil {
		t.Error("rejected registration must not persist an account")
	}
}

func TestRegisterDependentMinorRejectsUnknownGuardian(t *testing.T) {
	svc, accountRepo := newTestAuthService(t)

	_, err := svc.Register(RegisterInput{
		Name:          "Kid Test",
		Email:         "kid@example.com",
		Password:      "password123",
		Role:          "CHILD",
		BirthDate:     minorBirthDate(10),
		GuardianEmail: "missing@example.com",
		GuardianPhone: "+1-555-0100",
	})
	if !errors.Is(err, ErrGuardianNotFound) {
		t.Fatalf("expected ErrGuardianNotFound, got %v", err)
	}

	account, lookupErr := accountRepo.GetByEmail("kid@example.com")
	if lookupErr != nil {
		t.Fatalf("lookup failed: %v", lookupErr)
	}
	if account != nil {
		t.Error("rejected registration must not persist an account")
	}
}

func TestRegisterDependentMinorRejectsMinorAsGuardian(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, err := svc.Register(RegisterInput{
		Name:      "Teen Test",
		Email:     "teen@example.com",
		Password:  "password123",
		Role:      "INDEPENDENT_CHILD",
		BirthDate: minorBirthDate(16),
	}); err != nil {
		t.Fatalf("independent minor registration failed: %v", err)
	}

	_, err := svc.Register(RegisterInput{
		Name:          "Kid Test",
		Email:         "kid@example.com",
		Password:      "password123",
		Role:          "CHILD",
		BirthDate:     minorBirthDate(8),
		GuardianEmail: "teen@example.com",
		GuardianPhone: "+1-555-0100",
	})
	if !errors.Is(err, ErrGuardianNotFound) {
		t.Fatalf("a non-guardian parentEmail must be rejected, got %v", err)
	}
}

func TestRegisterIndependentMinorGetsOwnFamily(t *testing.T) {
	svc, _ := newTestAuthService(t)

	account, err := svc.Register(RegisterInput{
		Name:      "Teen Test",
		Email:     "teen@example.com",
		Password:  "password123",
		Role:      "INDEPENDENT_CHILD",
		BirthDate: minorBirthDate(16),
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if account.Role != models.RoleIndependentMinor {
		t.Errorf("expected independent minor role, got %s", account.Role)
	}
	if account.FamilyCode == nil || *account.FamilyCode == "" {
		t.Error("independent minor must own a family code")
	}
	if account.GuardianEmail != nil {
		t.Error("independent minor must not carry guardian contact details")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, err := svc.Register(guardianInput("parent@example.com")); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	_, err := svc.Register(guardianInput("parent@example.com"))
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterDuplicateEmailIgnoresCase(t *testing.T) {
	svc, accountRepo := newTestAuthService(t)

	if _, err := svc.Register(guardianInput("parent@example.com")); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	_, err := svc.Register(guardianInput("Parent@Example.COM"))
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken for re-cased email, got %v", err)
	}

	count, err := accountRepo.CountByEmail("PARENT@example.com")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly one account, got %d", count)
	}
}

func TestRegisterWarnsOnImplausibleBirthDate(t *testing.T) {
	svc, _ := newTestAuthService(t)

	var buf bytes.Buffer
	logger := log.Default()
	originalOutput := logger.Writer()
	logger.SetOutput(&buf)
	defer logger.SetOutput(originalOutput)

	// A future birth date yields a negative age: flagged in the log, but the
	// registration itself is left to the age gate
	future := time.Now().AddDate(2, 0, 0).Format("2006-01-02")
	if _, err := svc.Register(RegisterInput{
		Name:      "Teen Test",
		Email:     "teen@example.com",
		Password:  "password123",
		Role:      "INDEPENDENT_CHILD",
		BirthDate: future,
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if !strings.Contains(buf.String(), "implausible age") {
		t.Errorf("expected an implausible-age warning in the log, got %q", buf.String())
	}
}

func TestLoginAndValidateSession(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, err := svc.Register(guardianInput("parent@example.com")); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	session, account, err := svc.Login("parent@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if account.Email != "parent@example.com" {
		t.Errorf("unexpected account %s", account.Email)
	}

	validated, err := svc.ValidateSession(session.ID)
	if err != nil {
		t.Fatalf("ValidateSession() error = %v", err)
	}
	if validated.ID != account.ID {
		t.Errorf("session resolved to the wrong account")
	}

	if err := svc.Logout(session.ID); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := svc.ValidateSession(session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after logout, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, err := svc.Register(guardianInput("parent@example.com")); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	if _, _, err := svc.Login("parent@example.com", "wrongpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login("nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, err := svc.Register(guardianInput("parent@example.com")); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	deleted, err := svc.DeleteAccount("parent@example.com")
	if err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	if !deleted {
		t.Error("expected the account to be deleted")
	}

	deleted, err = svc.DeleteAccount("parent@example.com")
	if err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	if deleted {
		t.Error("deleting a missing account must report false")
	}
}
