package auth

import (
	"strings"
	"testing"
)

func TestGenerateAndValidateToken(t *testing.T) {
	InitializeJWT("test-secret-for-jwt-signing")

	token, err := GenerateToken("01HZXW3T5M8Q4R6S7T8V9W0X1Y", "owner@example.com", "owner")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if claims.UserID != "01HZXW3T5M8Q4R6S7T8V9W0X1Y" {
		t.Errorf("expected user ID in claims, got %q", claims.UserID)
	}
	if claims.Email != "owner@example.com" {
		t.Errorf("expected email in claims, got %q", claims.Email)
	}
	if claims.Role != "owner" {
		t.Errorf("expected role in claims, got %q", claims.Role)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	InitializeJWT("secret-one")
	token, err := GenerateToken("u1", "a@b.com", "tenant")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	InitializeJWT("secret-two")
	if _, err := ValidateToken(token); err == nil {
		t.Error("expected validation to fail with a different secret")
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	InitializeJWT("test-secret")
	if _, err := ValidateToken("not.a.token"); err == nil {
		t.Error("expected validation to fail for garbage input")
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash must not equal the plaintext")
	}

	if err := VerifyPassword("secret123", hash); err != nil {
		t.Errorf("expected correct password to verify: %v", err)
	}
	if err := VerifyPassword("wrong", hash); err == nil {
		t.Error("expected wrong password to fail verification")
	}
}

func TestGenerateOpaqueToken(t *testing.T) {
	a, err := GenerateOpaqueToken()
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	b, err := GenerateOpaqueToken()
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if a == b {
		t.Error("expected tokens to be unique")
	}
	if strings.ToLower(a) != a {
		t.Error("expected lowercase hex encoding")
	}
}
