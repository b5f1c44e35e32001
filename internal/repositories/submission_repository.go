package repositories

import (
	"context"
	"database/sql"

	intconfig "tourdesk/internal/config"
	intdb "tourdesk/internal/db"
	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
)

const submissionsDDL = `
CREATE TABLE booking_submissions (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	session_id VARCHAR(64) NOT NULL,
	booking_id BIGINT NOT NULL,
	flow VARCHAR(16) NOT NULL,
	total DECIMAL(12,2) NOT NULL DEFAULT 0,
	travelers INT NOT NULL DEFAULT 0,
	created_by VARCHAR(80) NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	KEY idx_booking_submissions_booking (booking_id)
)`

// SubmissionRepository is the audit trail of accepted wizard submissions.
type SubmissionRepository struct {
	DB *sql.DB
}

func (r SubmissionRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r SubmissionRepository) EnsureTable(ctx context.Context) error {
	db := r.db()
	if db == nil {
		return domain.InternalError{Msg: "database unavailable"}
	}
	return intdb.EnsureTable(ctx, db, "booking_submissions", submissionsDDL)
}

func (r SubmissionRepository) Insert(ctx context.Context, s models.Submission) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO booking_submissions (session_id, booking_id, flow, total, travelers, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.SessionID, s.BookingID, s.Flow, s.Total, s.Travelers, intdb.NullIfEmpty(s.CreatedBy), s.CreatedAt)
	if err != nil {
		return 0, domain.InternalError{Msg: "insert submission failed", Err: err}
	}
	return res.LastInsertId()
}

// List returns the newest submissions first. A non-zero bookingID filters.
func (r SubmissionRepository) List(ctx context.Context, bookingID int64, p domain.Pagination) ([]models.Submission, error) {
	query := `
		SELECT id, session_id, booking_id, flow, CAST(total AS CHAR), travelers, COALESCE(created_by,''), created_at
		FROM booking_submissions`
	args := []any{}
	if bookingID > 0 {
		query += ` WHERE booking_id = ?`
		args = append(args, bookingID)
	}
	query += ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, p.Limit(), p.Offset())

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.InternalError{Msg: "query submissions failed", Err: err}
	}
	defer rows.Close()

	out := []models.Submission{}
	for rows.Next() {
		var s models.Submission
		if err := rows.Scan(&s.ID, &s.SessionID, &s.BookingID, &s.Flow, &s.Total, &s.Travelers, &s.CreatedBy, &s.CreatedAt); err != nil {
			return nil, domain.InternalError{Msg: "scan submission failed", Err: err}
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.InternalError{Msg: "read submissions failed", Err: err}
	}
	return out, nil
}
