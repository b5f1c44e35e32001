package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"log"
)

type QueryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// NullIfEmpty stores optional strings as NULL.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func HasTable(ctx context.Context, q QueryRower, table string) bool {
	var name sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		LIMIT 1
	`, table).Scan(&name)
	if err != nil {
		logBadConn("HasTable", err)
		return false
	}
	return name.Valid && name.String != ""
}

func HasColumn(ctx context.Context, q QueryRower, table, column string) bool {
	var name sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		  AND column_name = ?
		LIMIT 1
	`, table, column).Scan(&name)
	if err != nil {
		logBadConn("HasColumn", err)
		return false
	}
	return name.Valid && name.String != ""
}

// EnsureTable runs ddl when table is missing.
func EnsureTable(ctx context.Context, db interface {
	QueryRower
	Execer
}, table, ddl string) error {
	if HasTable(ctx, db, table) {
		return nil
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return err
	}
	log.Printf("[DB] action=create_table table=%s", table)
	return nil
}

// EnsureColumn adds a column to a table created before the column existed.
func EnsureColumn(ctx context.Context, db interface {
	QueryRower
	Execer
}, table, column, definition string) error {
	if HasColumn(ctx, db, table, column) {
		return nil
	}
	if _, err := db.ExecContext(ctx, "ALTER TABLE "+table+" ADD COLUMN "+column+" "+definition); err != nil {
		return err
	}
	log.Printf("[DB] action=add_column table=%s column=%s", table, column)
	return nil
}

func logBadConn(tag string, err error) {
	if errors.Is(err, driver.ErrBadConn) {
		log.Println(tag, "driver.ErrBadConn")
	}
}
