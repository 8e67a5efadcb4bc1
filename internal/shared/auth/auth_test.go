package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIssueAndVerifyToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := IssueToken("user-1", "recruiter", "r@example.com", "Rita", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	claims, err := VerifyJWT(token)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}
	if claims.Sub != "user-1" || claims.Role != "recruiter" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsTamperedAndExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := IssueToken("user-1", "applicant", "", "", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	parts := strings.Split(token, ".")
	forged, err := SignJWT(Claims{Sub: "user-1", Role: "admin"})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	tampered := parts[0] + "." + strings.Split(forged, ".")[1] + "." + parts[2]
	if _, err := VerifyJWT(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for tampered payload, got %v", err)
	}

	expired, err := SignJWT(Claims{Sub: "user-1", Role: "applicant", Iat: 1, Exp: time.Now().Add(-time.Minute).Unix()})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	if _, err := VerifyJWT(expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for expired claims, got %v", err)
	}
}

func TestSecretRequiredInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")
	if _, err := SignJWT(Claims{Sub: "user-1"}); err == nil {
		t.Fatalf("expected error without secret in production")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := CheckPassword(hash, "s3cret-pass"); err != nil {
		t.Fatalf("CheckPassword: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if err := CheckPassword("", "anything"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected mismatch for empty hash, got %v", err)
	}
}
