// Package store persists dialogmelding bestillinger.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"isdialogmelding/internal/dialogmelding/bestilling/models"
	id "isdialogmelding/pkg/domain"
	"isdialogmelding/pkg/platform/sentinel"
	txcontext "isdialogmelding/pkg/platform/tx"
	"isdialogmelding/pkg/requestcontext"
)

// ErrNotFound is returned when no bestilling has the requested uuid.
var ErrNotFound = sentinel.ErrNotFound

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore persists bestillinger in PostgreSQL.
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

// Create records b for the behandler row behandlerID. A redelivered bestilling
// is ignored and reported with created=false.
func (s *PostgresStore) Create(ctx context.Context, behandlerID int64, b models.Bestilling) (created bool, err error) {
	query := `
		INSERT INTO behandler_dialogmelding_bestilling (
			uuid, behandler_id, arbeidstaker_personident, parent_ref, conversation_ref,
			type, kodeverk, kode, tekst, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (uuid) DO NOTHING`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(b.UUID),
		behandlerID,
		b.ArbeidstakerPersonident.String(),
		nullString(b.ParentRef),
		nullString(b.ConversationRef),
		b.Type,
		nullString(b.Kodeverk),
		b.Kode,
		nullString(b.Tekst),
		requestcontext.Now(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("insert bestilling: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert bestilling: %w", err)
	}
	return n > 0, nil
}

// FindByUUID returns the bestilling with the given message uuid.
func (s *PostgresStore) FindByUUID(ctx context.Context, messageID id.MessageID) (*models.StoredBestilling, error) {
	query := `
		SELECT bb.id, bb.behandler_id, bb.uuid, b.behandler_ref, bb.arbeidstaker_personident,
			bb.parent_ref, bb.conversation_ref, bb.type, bb.kodeverk, bb.kode, bb.tekst, bb.created_at
		FROM behandler_dialogmelding_bestilling bb
		JOIN behandler b ON b.id = bb.behandler_id
		WHERE bb.uuid = $1`

	var (
		stored                                      models.StoredBestilling
		messageUUID, behandlerRef                   uuid.UUID
		personident                                 string
		parentRef, conversationRef, kodeverk, tekst sql.NullString
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(messageID)).Scan(
		&stored.ID,
		&stored.BehandlerID,
		&messageUUID,
		&behandlerRef,
		&personident,
		&parentRef,
		&conversationRef,
		&stored.Type,
		&kodeverk,
		&stored.Kode,
		&tekst,
		&stored.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find bestilling: %w", err)
	}
	stored.UUID = id.MessageID(messageUUID)
	stored.BehandlerRef = id.BehandlerRef(behandlerRef)
	stored.ArbeidstakerPersonident = id.Personident(personident)
	stored.ParentRef = parentRef.String
	stored.ConversationRef = conversationRef.String
	stored.Kodeverk = kodeverk.String
	stored.Tekst = tekst.String
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
	mu           sync.RWMutex
	nextID       int64
	bestillinger map[id.MessageID]models.StoredBestilling
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{bestillinger: make(map[id.MessageID]models.StoredBestilling)}
}

func (s *InMemoryStore) Create(ctx context.Context, behandlerID int64, b models.Bestilling) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bestillinger[b.UUID]; ok {
		return false, nil
	}
	s.nextID++
	s.bestillinger[b.UUID] = models.StoredBestilling{
		ID:          s.nextID,
		BehandlerID: behandlerID,
		CreatedAt:   requestcontext.Now(ctx),
		Bestilling:  b,
	}
	return true, nil
}

func (s *InMemoryStore) FindByUUID(_ context.Context, messageID id.MessageID) (*models.StoredBestilling, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.bestillinger[messageID]
	if !ok {
		return nil, ErrNotFound
	}
	return &stored, nil
}

// Count returns the number of stored bestillinger.
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bestillinger)
}
