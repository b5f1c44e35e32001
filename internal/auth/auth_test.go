package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
)

type revokedSet map[string]bool

func (r revokedSet) IsRevoked(_ context.Context, id string) (bool, error) {
	return r[id], nil
}

type brokenStore struct{}

func (brokenStore) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("connection refused")
}

func testIssuer(now *time.Time) *TokenIssuer {
	iss := NewTokenIssuer("test-secret", time.Hour)
	iss.Now = func() time.Time { return *now }
	return iss
}

func TestIssueAndParse(t *testing.T) {
	now := time.Now()
	iss := testIssuer(&now)
	token, claims, err := iss.Issue(models.AdminUser{ID: 3, Username: "ana", Role: "admin"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if claims.ID == "" || claims.Subject != "3" {
		t.Fatalf("claims = %+v", claims)
	}

	got, err := iss.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Username != "ana" || got.UserID != 3 || got.ID != claims.ID {
		t.Fatalf("parsed = %+v", got)
	}

	now = now.Add(2 * time.Hour)
	if _, err := iss.Parse(token); !domain.IsUnauthorized(err) {
		t.Fatalf("expired token accepted: %v", err)
	}
}

func TestParseRejectsForeignSecret(t *testing.T) {
	now := time.Now()
	token, _, _ := NewTokenIssuer("other", time.Hour).Issue(models.AdminUser{ID: 1, Username: "x"})
	if _, err := testIssuer(&now).Parse(token); !domain.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	now := time.Now()
	iss := testIssuer(&now)
	token, claims, _ := iss.Issue(models.AdminUser{ID: 3, Username: "ana"})
	ctx := context.Background()

	s, err := Init(ctx, "", iss, nil)
	if err != nil || s.Authenticated() {
		t.Fatalf("no header should be anonymous without error: %+v %v", s, err)
	}

	s, err = Init(ctx, "Token "+token, iss, nil)
	if !domain.IsUnauthorized(err) || s.Authenticated() {
		t.Fatalf("wrong scheme should be rejected: %v", err)
	}

	s, err = Init(ctx, "Bearer "+token, iss, revokedSet{})
	if err != nil || !s.Authenticated() || s.Username() != "ana" {
		t.Fatalf("Init: %+v %v", s, err)
	}

	id, until, ok := s.Logout()
	if !ok || id != claims.ID || !until.Equal(claims.ExpiresAt.Time) {
		t.Fatalf("Logout = %q %v %v", id, until, ok)
	}
	if s.Authenticated() || s.State != Anonymous {
		t.Fatalf("session still authenticated after logout")
	}
	if _, _, ok := s.Logout(); ok {
		t.Fatalf("second logout should be a no-op")
	}

	if _, err := Init(ctx, "Bearer "+token, iss, revokedSet{id: true}); !domain.IsUnauthorized(err) {
		t.Fatalf("revoked token accepted: %v", err)
	}
}

func TestInitReportsStoreFailure(t *testing.T) {
	now := time.Now()
	iss := testIssuer(&now)
	token, _, _ := iss.Issue(models.AdminUser{ID: 3, Username: "ana"})

	s, err := Init(context.Background(), "Bearer "+token, iss, brokenStore{})
	if !domain.IsInternal(err) || domain.IsUnauthorized(err) {
		t.Fatalf("store failure = %v, want internal error", err)
	}
	if s.Authenticated() {
		t.Fatalf("session authenticated without revocation check")
	}
}
