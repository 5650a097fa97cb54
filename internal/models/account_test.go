package models

import (
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Role
		wantErr bool
	}{
		{"parent", "PARENT", RoleGuardian, false},
		{"child", "CHILD", RoleDependentMinor, false},
		{"independent child", "INDEPENDENT_CHILD", RoleIndependentMinor, false},
		{"lowercase", "parent", RoleGuardian, false},
		{"mixed case with spaces", "  Child ", RoleDependentMinor, false},
		{"unknown", "ADMIN", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRole(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRole(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRoleAPINameRoundTrip(t *testing.T) {
	for _, role := range []Role{RoleGuardian, RoleDependentMinor, RoleIndependentMinor} {
		parsed, err := ParseRole(role.APIName())
		if err != nil {
			t.Fatalf("ParseRole(%q) error = %v", role.APIName(), err)
		}
		if parsed != role {
			t.Errorf("round trip of %q gave %q", role, parsed)
		}
	}
}

func TestRoleIsMinor(t *testing.T) {
	if RoleGuardian.IsMinor() {
		t.Error("guardian must not be a minor role")
	}
	if !RoleDependentMinor.IsMinor() || !RoleIndependentMinor.IsMinor() {
		t.Error("minor roles must report IsMinor")
	}
}

func TestSessionIsExpired(t *testing.T) {
	expired := Session{ExpiresAt: time.Now().Add(-time.Minute)}
	if !expired.IsExpired() {
		t.Error("session past its expiry must be expired")
	}

	live := Session{ExpiresAt: time.Now().Add(time.Hour)}
	if live.IsExpired() {
		t.Error("session before its expiry must not be expired")
	}
}

func TestAccountPublic(t *testing.T) {
	code := "AB12CD"
	account := &Account{
		ID:           7,
		Name:         "Sara",
		Email:        "sara@example.com",
		PasswordHash: "secret-hash",
		Role:         RoleDependentMinor,
		FamilyCode:   &code,
	}

	public := account.Public()
	if public.ID != 7 || public.Name != "Sara" || public.Email != "sara@example.com" {
		t.Errorf("unexpected public projection: %+v", public)
	}
	if public.UserType != "CHILD" {
		t.Errorf("expected userType CHILD, got %q", public.UserType)
	}
	if public.FamilyCode != code {
		t.Errorf("expected family code %q, got %q", code, public.FamilyCode)
	}
}
