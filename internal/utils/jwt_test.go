package utils

import (
	"testing"
	"time"
)

func TestTokenPairRoundTrip(t *testing.T) {
	pair, err := GenerateTokenPair(7, "teacher", "test-secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}

	access, err := ParseAccessToken(pair.AccessToken, "test-secret")
	if err != nil {
		t.Fatalf("parse access error: %v", err)
	}
	if access.UserID != 7 || access.Role != "teacher" {
		t.Fatalf("unexpected access claims: %+v", access)
	}

	refresh, err := ParseRefreshToken(pair.RefreshToken, "test-secret")
	if err != nil {
		t.Fatalf("parse refresh error: %v", err)
	}
	if refresh.UserID != 7 || refresh.ID == "" {
		t.Fatalf("expected refresh claims with jti, got %+v", refresh)
	}
}

func TestParseRejectsWrongTokenType(t *testing.T) {
	pair, err := GenerateTokenPair(1, "student", "test-secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}

	if _, err := ParseAccessToken(pair.RefreshToken, "test-secret"); err != ErrWrongTokenType {
		t.Fatalf("expected ErrWrongTokenType, got %v", err)
	}
	if _, err := ParseRefreshToken(pair.AccessToken, "test-secret"); err != ErrWrongTokenType {
		t.Fatalf("expected ErrWrongTokenType, got %v", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	pair, err := GenerateTokenPair(1, "student", "test-secret", -time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if _, err := ParseAccessToken(pair.AccessToken, "test-secret"); err != ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := ParseAccessToken("not-a-token", "test-secret"); err != ErrMalformedToken {
		t.Fatalf("expected ErrMalformedToken, got %v", err)
	}
	pair, err := GenerateTokenPair(1, "student", "test-secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if _, err := ParseAccessToken(pair.AccessToken, "other-secret"); err != ErrMalformedToken {
		t.Fatalf("expected ErrMalformedToken for wrong secret, got %v", err)
	}
}
