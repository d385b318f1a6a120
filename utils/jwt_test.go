package utils

import (
	"testing"
	"time"

	"docmeta/config"

	"github.com/golang-jwt/jwt/v5"
)

func setJWTConfig(secret string) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.JWT.Secret = secret
	cfg.JWT.ExpireHours = 1
	config.AppConfig = cfg
}

func TestTokenRoundTrip(t *testing.T) {
	setJWTConfig("test-secret")

	token, err := GenerateToken(7, "u42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.TenantID != 7 || claims.UserID != "u42" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	setJWTConfig("secret-a")
	token, err := GenerateToken(1, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	setJWTConfig("secret-b")
	if _, err := ParseToken(token); err == nil {
		t.Fatalf("token signed with another secret must be rejected")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	setJWTConfig("test-secret")

	claims := Claims{
		TenantID: 1,
		UserID:   "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseToken(token); err == nil {
		t.Fatalf("expired token must be rejected")
	}
}
