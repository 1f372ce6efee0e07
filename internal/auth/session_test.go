package auth

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSessionRoundTrip(t *testing.T) {
	userID := primitive.NewObjectID()

	token, err := IssueSession(userID, "jane@example.com", "secret", time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	claims, err := ParseSession(token, "secret")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected userId %s, got %s", userID.Hex(), claims.UserID.Hex())
	}
	if claims.Email != "jane@example.com" {
		t.Fatalf("expected email claim, got %q", claims.Email)
	}
}

func TestParseSessionWrongSecret(t *testing.T) {
	token, err := IssueSession(primitive.NewObjectID(), "jane@example.com", "secret", time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := ParseSession(token, "other-secret"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for a bad signature, got %v", err)
	}
}

func TestParseSessionExpired(t *testing.T) {
	token, err := IssueSession(primitive.NewObjectID(), "jane@example.com", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := ParseSession(token, "secret"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for an expired token, got %v", err)
	}
}

func TestParseSessionGarbage(t *testing.T) {
	if _, err := ParseSession("not-a-jwt", "secret"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for malformed input, got %v", err)
	}
}
