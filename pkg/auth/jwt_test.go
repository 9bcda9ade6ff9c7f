package auth

import (
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndValidateToken(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")

	orgID := uint(3)
	token, err := GenerateToken(42, "user@example.com", "admin", &orgID)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("expected user id 42, got %d", claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("expected email to round-trip, got %q", claims.Email)
	}
	if claims.OrganizationID == nil || *claims.OrganizationID != 3 {
		t.Errorf("expected organization id 3, got %v", claims.OrganizationID)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestResolveSessionLegacy(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("HOSTED_AUTH_JWT_SECRET", "another-secret")
	defer os.Unsetenv("JWT_SECRET")
	defer os.Unsetenv("HOSTED_AUTH_JWT_SECRET")

	token, err := GenerateToken(7, "legacy@example.com", "user", nil)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	session, err := ResolveSession(token)
	if err != nil {
		t.Fatalf("ResolveSession failed: %v", err)
	}

	if session.Kind != SessionLegacy {
		t.Errorf("expected legacy session, got %s", session.Kind)
	}
	if session.UserID != 7 {
		t.Errorf("expected user id 7, got %d", session.UserID)
	}
}

func TestResolveSessionHosted(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("HOSTED_AUTH_JWT_SECRET", "hosted-secret")
	defer os.Unsetenv("JWT_SECRET")
	defer os.Unsetenv("HOSTED_AUTH_JWT_SECRET")

	claims := HostedClaims{
		Email: "hosted@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "6f1e6f74-9f6c-4d4b-9f2f-5a8a54f9f001",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("hosted-secret"))
	if err != nil {
		t.Fatalf("signing hosted token failed: %v", err)
	}

	session, err := ResolveSession(token)
	if err != nil {
		t.Fatalf("ResolveSession failed: %v", err)
	}

	if session.Kind != SessionHosted {
		t.Errorf("expected hosted session, got %s", session.Kind)
	}
	if session.HostedID != claims.Subject {
		t.Errorf("expected hosted id to round-trip, got %q", session.HostedID)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if !CheckPassword(hash, "s3cret") {
		t.Error("expected password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected wrong password to fail")
	}
}
