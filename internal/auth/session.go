package auth

import (
	"context"
	"strings"
	"time"

	"tourdesk/internal/domain"
)

type State string

const (
	Anonymous     State = "anonymous"
	Authenticated State = "authenticated"
)

// RevocationChecker reports logged-out token ids.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Session is the admin identity of one request. It starts from the bearer
// header and ends anonymous after Logout.
type Session struct {
	State  State   `json:"state"`
	Claims *Claims `json:"claims,omitempty"`
}

func AnonymousSession() *Session {
	return &Session{State: Anonymous}
}

// Init reads the Authorization header. A missing, malformed, expired or
// revoked token yields an anonymous session and the reason. A failing
// revocation store is reported as domain.InternalError, not as an auth failure.
func Init(ctx context.Context, header string, issuer *TokenIssuer, revoked RevocationChecker) (*Session, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return AnonymousSession(), nil
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return AnonymousSession(), domain.UnauthorizedError{Msg: "invalid authorization header"}
	}
	claims, err := issuer.Parse(strings.TrimSpace(token))
	if err != nil {
		return AnonymousSession(), err
	}
	if revoked != nil {
		gone, err := revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return AnonymousSession(), domain.InternalError{Msg: "revocation check failed", Err: err}
		}
		if gone {
			return AnonymousSession(), domain.UnauthorizedError{Msg: "token revoked"}
		}
	}
	return &Session{State: Authenticated, Claims: &claims}, nil
}

func (s *Session) Authenticated() bool {
	return s != nil && s.State == Authenticated && s.Claims != nil
}

func (s *Session) Username() string {
	if !s.Authenticated() {
		return ""
	}
	return s.Claims.Username
}

func (s *Session) Role() string {
	if !s.Authenticated() {
		return ""
	}
	return s.Claims.Role
}

// Logout clears the session and returns the token id and expiry the caller
// must revoke. ok is false when there was nothing to log out.
func (s *Session) Logout() (tokenID string, until time.Time, ok bool) {
	if !s.Authenticated() {
		return "", time.Time{}, false
	}
	tokenID = s.Claims.ID
	if s.Claims.ExpiresAt != nil {
		until = s.Claims.ExpiresAt.Time
	}
	s.State = Anonymous
	s.Claims = nil
	return tokenID, until, true
}
