package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	intconfig "tourdesk/internal/config"
	intdb "tourdesk/internal/db"
	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
)

const adminUsersDDL = `
CREATE TABLE admin_users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(120) NOT NULL DEFAULT '',
	username VARCHAR(80) NOT NULL UNIQUE,
	email VARCHAR(160) NOT NULL DEFAULT '',
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(32) NOT NULL DEFAULT 'staff',
	status VARCHAR(32) NOT NULL DEFAULT 'active',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)`

// AdminUserRepository reads dashboard staff accounts.
type AdminUserRepository struct {
	DB *sql.DB
}

func (r AdminUserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r AdminUserRepository) EnsureTable(ctx context.Context) error {
	db := r.db()
	if db == nil {
		return domain.InternalError{Msg: "database unavailable"}
	}
	if err := intdb.EnsureTable(ctx, db, "admin_users", adminUsersDDL); err != nil {
		return err
	}
	// accounts created before deactivation existed have no status column
	return intdb.EnsureColumn(ctx, db, "admin_users", "status", "VARCHAR(32) NOT NULL DEFAULT 'active'")
}

// FindByLogin matches either the username or the email.
func (r AdminUserRepository) FindByLogin(ctx context.Context, login string) (models.AdminUser, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return models.AdminUser{}, domain.NotFoundError{Resource: "admin user"}
	}
	var u models.AdminUser
	err := r.db().QueryRowContext(ctx, `
		SELECT id, COALESCE(name,''), username, COALESCE(email,''), password_hash,
		       COALESCE(role,''), COALESCE(status,''), created_at, updated_at
		FROM admin_users
		WHERE username = ? OR email = ?
		LIMIT 1
	`, login, login).Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AdminUser{}, domain.NotFoundError{Resource: "admin user", Err: err}
	}
	if err != nil {
		return models.AdminUser{}, domain.InternalError{Msg: "query admin user failed", Err: err}
	}
	return u, nil
}

func (r AdminUserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&n); err != nil {
		return 0, domain.InternalError{Msg: "count admin users failed", Err: err}
	}
	return n, nil
}

// Create inserts a user with an already hashed password.
func (r AdminUserRepository) Create(ctx context.Context, u models.AdminUser) (int64, error) {
	role := u.Role
	if role == "" {
		role = "staff"
	}
	status := u.Status
	if status == "" {
		status = "active"
	}
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO admin_users (name, username, email, password_hash, role, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())
	`, u.Name, u.Username, u.Email, u.PasswordHash, role, status)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return 0, domain.ConflictError{Resource: "admin user", Msg: "username already registered", Err: err}
		}
		return 0, domain.InternalError{Msg: "insert admin user failed", Err: err}
	}
	return res.LastInsertId()
}
