package models

import (
	"fmt"
	"strings"
	"time"
)

// Role identifies the account type. It is a closed set: every branch over a
// Role must handle all three values (plus the zero value as "unknown").
type Role string

const (
	// RoleGuardian is a parent/guardian account, anchor of a family.
	RoleGuardian Role = "guardian"
	// RoleDependentMinor is a minor registered under a guardian's family code.
	RoleDependentMinor Role = "dependent_minor"
	// RoleIndependentMinor is a minor with no linked guardian, owning its own family code.
	RoleIndependentMinor Role = "independent_minor"
)

// ParseRole normalizes the wire-format user type (PARENT, CHILD,
// INDEPENDENT_CHILD, case-insensitive) into a Role.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PARENT":
		return RoleGuardian, nil
	case "CHILD":
		return RoleDependentMinor, nil
	case "INDEPENDENT_CHILD":
		return RoleIndependentMinor, nil
	default:
		return "", fmt.Errorf("unknown user type: %q", s)
	}
}

// APIName returns the wire-format name for the role
func (r Role) APIName() string {
	switch r {
	case RoleGuardian:
		return "PARENT"
	case RoleDependentMinor:
		return "CHILD"
	case RoleIndependentMinor:
		return "INDEPENDENT_CHILD"
	default:
		return ""
	}
}

// IsMinor reports whether the role is one of the minor account types
func (r Role) IsMinor() bool {
	return r == RoleDependentMinor || r == RoleIndependentMinor
}

// Account represents a registered user of the platform
type Account struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Phone        *string
	DateOfBirth  *time.Time
	FamilyCode   *string

	// Guardian contact details, set only for dependent minors
	GuardianEmail *string
	GuardianPhone *string

	OAuthProvider string
	OAuthSubject  string
	IsAdmin       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PublicAccount is the externally visible projection of an Account.
// The password hash is never exposed.
type PublicAccount struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	UserType   string `json:"userType"`
	FamilyCode string `json:"familyCode,omitempty"`
}

// Public returns the account's public fields
func (a *Account) Public() PublicAccount {
	pub := PublicAccount{
		ID:       a.ID,
		Name:     a.Name,
		Email:    a.Email,
		UserType: a.Role.APIName(),
	}
	if a.FamilyCode != nil {
		pub.FamilyCode = *a.FamilyCode
	}
	return pub
}

// Session represents an authenticated session
type Session struct {
	ID        string
	AccountID int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
