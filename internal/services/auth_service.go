package services

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tourdesk/internal/auth"
	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
	"tourdesk/internal/repositories"
	"tourdesk/internal/utils"
)

type AdminUserStore interface {
	FindByLogin(ctx context.Context, login string) (models.AdminUser, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, u models.AdminUser) (int64, error)
}

// AuthService logs dashboard staff in and out.
type AuthService struct {
	Users   AdminUserStore
	Tokens  *auth.TokenIssuer
	Revoked repositories.RevocationList
}

type LoginResult struct {
	Token     string                 `json:"token"`
	ExpiresAt time.Time              `json:"expires_at"`
	User      models.PublicAdminUser `json:"user"`
}

var errBadCredentials = domain.UnauthorizedError{Msg: "invalid username or password"}

func (s AuthService) Login(ctx context.Context, login, password string) (LoginResult, error) {
	reqID := utils.RequestIDFrom(ctx)
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return LoginResult{}, domain.ValidationError{Field: "username", Msg: "username and password are required"}
	}

	u, err := s.Users.FindByLogin(ctx, login)
	if domain.IsNotFound(err) {
		utils.LogEvent(reqID, "auth", "login_failed", "reason=unknown_user")
		return LoginResult{}, errBadCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		utils.LogEventf(reqID, "auth", "login_failed", "user_id=%d reason=password", u.ID)
		return LoginResult{}, errBadCredentials
	}
	if !u.Active() {
		utils.LogEventf(reqID, "auth", "login_failed", "user_id=%d reason=inactive", u.ID)
		return LoginResult{}, domain.UnauthorizedError{Msg: "account is disabled"}
	}

	token, claims, err := s.Tokens.Issue(u)
	if err != nil {
		return LoginResult{}, err
	}
	utils.LogEventf(reqID, "auth", "login", "user_id=%d", u.ID)
	return LoginResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: u.ToPublic()}, nil
}

// Logout ends sess and revokes its token until it would have expired.
func (s AuthService) Logout(ctx context.Context, sess *auth.Session) error {
	username := sess.Username()
	tokenID, until, ok := sess.Logout()
	if !ok {
		return domain.UnauthorizedError{Msg: "not logged in"}
	}
	if s.Revoked != nil {
		if err := s.Revoked.Revoke(ctx, tokenID, until); err != nil {
			return err
		}
	}
	utils.LogEventf(utils.RequestIDFrom(ctx), "auth", "logout", "username=%s", username)
	return nil
}

// Bootstrap creates the first admin account when none exists yet.
func (s AuthService) Bootstrap(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}
	n, err := s.Users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.InternalError{Msg: "hash password failed", Err: err}
	}
	id, err := s.Users.Create(ctx, models.AdminUser{Name: username, Username: username, PasswordHash: string(hash), Role: "admin", Status: "active"})
	if err != nil {
		return err
	}
	utils.LogEventf(utils.RequestIDFrom(ctx), "auth", "bootstrap_admin", "user_id=%d", id)
	return nil
}
