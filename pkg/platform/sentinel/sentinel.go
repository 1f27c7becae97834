// Package sentinel holds the storage facts stores report. Services translate
// them into domain outcomes: a missing bestilling becomes an unmatched apprec,
// a conflict on the behandler unique keys becomes a reconcile retry.
package sentinel

import "errors"

var (
	// ErrNotFound means the row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a unique constraint rejected a concurrent create.
	ErrConflict = errors.New("conflict")
)
