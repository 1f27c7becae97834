// Package store persists apprec rows.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"isdialogmelding/internal/dialogmelding/apprec/models"
	id "isdialogmelding/pkg/domain"
	"isdialogmelding/pkg/platform/sentinel"
	txcontext "isdialogmelding/pkg/platform/tx"
	"isdialogmelding/pkg/requestcontext"
)

var ErrNotFound = sentinel.ErrNotFound

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore persists apprecs in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Exists reports whether an apprec with this uuid has been recorded.
func (s *PostgresStore) Exists(ctx context.Context, apprecID id.MessageID) (bool, error) {
	var exists bool
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM behandler_dialogmelding_apprec WHERE uuid = $1)`,
		uuid.UUID(apprecID),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check apprec: %w", err)
	}
	return exists, nil
}

// Create records a for the bestilling row bestillingID. created is false when
// a concurrent delivery stored the same uuid first.
func (s *PostgresStore) Create(ctx context.Context, bestillingID int64, a models.Apprec) (created bool, err error) {
	query := `
		INSERT INTO behandler_dialogmelding_apprec (
			uuid, bestilling_id, status_kode, status_tekst, feil_kode, feil_tekst, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (uuid) DO NOTHING`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(a.UUID),
		bestillingID,
		a.StatusKode,
		a.StatusTekst,
		nullString(a.FeilKode),
		nullString(a.FeilTekst),
		requestcontext.Now(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("insert apprec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert apprec: %w", err)
	}
	return n > 0, nil
}

// Find returns the apprec with the given uuid.
func (s *PostgresStore) Find(ctx context.Context, apprecID id.MessageID) (*models.StoredApprec, error) {
	query := `
		SELECT a.id, a.bestilling_id, a.uuid, bb.uuid, a.status_kode, a.status_tekst,
			a.feil_kode, a.feil_tekst, a.created_at
		FROM behandler_dialogmelding_apprec a
		JOIN behandler_dialogmelding_bestilling bb ON bb.id = a.bestilling_id
		WHERE a.uuid = $1`

	var (
		stored                 models.StoredApprec
		apprecUUID, bestilling uuid.UUID
		feilKode, feilTekst    sql.NullString
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(apprecID)).Scan(
		&stored.ID,
		&stored.BestillingID,
		&apprecUUID,
		&bestilling,
		&stored.StatusKode,
		&stored.StatusTekst,
		&feilKode,
		&feilTekst,
		&stored.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find apprec: %w", err)
	}
	stored.UUID = id.MessageID(apprecUUID)
	stored.BestillingUUID = id.MessageID(bestilling)
	stored.FeilKode = feilKode.String
	stored.FeilTekst = feilTekst.String
	return &stored, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// InMemoryStore mirrors PostgresStore for tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	apprecs map[id.MessageID]models.StoredApprec
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{apprecs: make(map[id.MessageID]models.StoredApprec)}
}

func (s *InMemoryStore) Exists(_ context.Context, apprecID id.MessageID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.apprecs[apprecID]
	return ok, nil
}

func (s *InMemoryStore) Create(ctx context.Context, bestillingID int64, a models.Apprec) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apprecs[a.UUID]; ok {
		return false, nil
	}
	s.nextID++
	s.apprecs[a.UUID] = models.StoredApprec{
		ID:           s.nextID,
		BestillingID: bestillingID,
		CreatedAt:    requestcontext.Now(ctx),
		Apprec:       a,
	}
	return true, nil
}

func (s *InMemoryStore) Find(_ context.Context, apprecID id.MessageID) (*models.StoredApprec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.apprecs[apprecID]
	if !ok {
		return nil, ErrNotFound
	}
	return &stored, nil
}

// Count returns the number of stored apprecs.
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.apprecs)
}
