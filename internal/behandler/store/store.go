// Package store persists behandlere, their kontor and their relations to
// arbeidstakere.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"isdialogmelding/internal/platform/postgres"
	"isdialogmelding/pkg/platform/sentinel"
	"isdialogmelding/pkg/platform/strings"
	txcontext "isdialogmelding/pkg/platform/tx"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = sentinel.ErrNotFound

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func execer(ctx context.Context, db *sql.DB) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return db
}

// writeErr maps unique violations to sentinel.ErrConflict so callers can retry.
func writeErr(op string, err error) error {
	if postgres.IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// requireRow turns an update that touched nothing into ErrNotFound.
func requireRow(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func nullString(s string) any {
	if strings.IsBlank(s) {
		return nil
	}
	return s
}

func fromNull(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}
