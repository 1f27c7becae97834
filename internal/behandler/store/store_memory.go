package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"isdialogmelding/internal/behandler/models"
	id "isdialogmelding/pkg/domain"
	"isdialogmelding/pkg/platform/sentinel"
)

type memoryRelasjon struct {
	stored      models.StoredRelasjon
	personident id.Personident
	relasjon    models.Relasjon
}

// InMemoryStore mirrors PostgresStore for tests, including its uniqueness rules.
type InMemoryStore struct {
	mu              sync.RWMutex
	nextID          int64
	kontorer        map[int64]models.Kontor
	kontorByPartner map[id.PartnerID]int64
	behandlere      map[int64]models.StoredBehandler
	relasjoner      []memoryRelasjon
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		kontorer:        make(map[int64]models.Kontor),
		kontorByPartner: make(map[id.PartnerID]int64),
		behandlere:      make(map[int64]models.StoredBehandler),
	}
}

func (s *InMemoryStore) newID() int64 {
	s.nextID++
	return s.nextID
}

// withKontor returns b joined with its current kontor row.
func (s *InMemoryStore) withKontor(b models.StoredBehandler) *models.StoredBehandler {
	b.Kontor = s.kontorer[b.KontorID]
	return &b
}

func (s *InMemoryStore) FindBehandler(_ context.Context, ident models.Ident, partnerID id.PartnerID) (*models.StoredBehandler, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kontorID, ok := s.kontorByPartner[partnerID]
	if !ok {
		return nil, ErrNotFound
	}
	for _, rowID := range s.sortedBehandlerIDs() {
		b := s.behandlere[rowID]
		if b.KontorID == kontorID && matchesIdent(b.Behandler, ident) {
			return s.withKontor(b), nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemoryStore) FindBehandlerByRef(_ context.Context, ref id.BehandlerRef) (*models.StoredBehandler, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.behandlere {
		if b.Ref == ref {
			return s.withKontor(b), nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemoryStore) CreateKontor(_ context.Context, k models.Kontor) (*models.Kontor, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.kontorByPartner[k.PartnerID]; exists {
		return nil, false, nil
	}
	k.ID = s.newID()
	s.kontorer[k.ID] = k
	s.kontorByPartner[k.PartnerID] = k.ID
	return &k, true, nil
}

func (s *InMemoryStore) FindKontorForUpdate(_ context.Context, partnerID id.PartnerID) (*models.Kontor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kontorID, ok := s.kontorByPartner[partnerID]
	if !ok {
		return nil, ErrNotFound
	}
	k := s.kontorer[kontorID]
	return &k, nil
}

func (s *InMemoryStore) UpdateKontor(_ context.Context, k models.Kontor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.kontorer[k.ID]
	if !ok {
		return fmt.Errorf("update kontor %d: %w", k.ID, ErrNotFound)
	}
	existing.System = k.System
	existing.Adresse = k.Adresse
	existing.Postnummer = k.Postnummer
	existing.Poststed = k.Poststed
	existing.Mottatt = k.Mottatt
	s.kontorer[k.ID] = existing
	return nil
}

func (s *InMemoryStore) CreateBehandler(_ context.Context, kontorID int64, b models.Behandler) (*models.StoredBehandler, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.kontorer[kontorID]; !ok {
		return nil, fmt.Errorf("create behandler: kontor %d does not exist", kontorID)
	}
	for _, existing := range s.behandlere {
		if existing.KontorID != kontorID {
			continue
		}
		if sameLookupKey(existing.Behandler, b) || existing.Ref == b.Ref {
			return nil, fmt.Errorf("create behandler: %w", sentinel.ErrConflict)
		}
	}
	stored := models.StoredBehandler{ID: s.newID(), KontorID: kontorID, Behandler: b}
	s.behandlere[stored.ID] = stored
	return s.withKontor(stored), nil
}

func (s *InMemoryStore) UpdateBehandler(_ context.Context, behandlerID int64, b models.Behandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.behandlere[behandlerID]
	if !ok {
		return fmt.Errorf("update behandler %d: %w", behandlerID, ErrNotFound)
	}
	existing.Fornavn = b.Fornavn
	existing.Mellomnavn = b.Mellomnavn
	existing.Etternavn = b.Etternavn
	existing.Telefon = b.Telefon
	existing.Kategori = b.Kategori
	existing.Mottatt = b.Mottatt
	s.behandlere[behandlerID] = existing
	return nil
}

// LockPerson is a no-op; InMemoryStore serialises every call on its own lock.
func (s *InMemoryStore) LockPerson(context.Context, id.Personident) error {
	return nil
}

func (s *InMemoryStore) ListRelasjoner(_ context.Context, personident id.Personident) ([]models.StoredRelasjon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []models.StoredRelasjon
	for _, r := range s.newestFirst() {
		if r.personident == personident {
			result = append(result, r.stored)
		}
	}
	return result, nil
}

func (s *InMemoryStore) CreateRelasjon(_ context.Context, behandlerID int64, rel models.Relasjon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rel.Type == models.RelasjonSykmelder {
		for _, r := range s.relasjoner {
			if r.personident == rel.ArbeidstakerPersonident && r.stored.BehandlerID == behandlerID && r.stored.Type == rel.Type {
				return fmt.Errorf("create relasjon: %w", sentinel.ErrConflict)
			}
		}
	}
	s.relasjoner = append(s.relasjoner, memoryRelasjon{
		stored: models.StoredRelasjon{
			ID:          s.newID(),
			BehandlerID: behandlerID,
			Type:        rel.Type,
			CreatedAt:   time.Now(),
		},
		personident: rel.ArbeidstakerPersonident,
		relasjon:    rel,
	})
	return nil
}

func (s *InMemoryStore) UpdateRelasjon(_ context.Context, behandlerID int64, rel models.Relasjon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.relasjoner {
		r := &s.relasjoner[i]
		if r.personident == rel.ArbeidstakerPersonident && r.stored.BehandlerID == behandlerID && r.stored.Type == rel.Type {
			r.relasjon.Mottatt = rel.Mottatt
			r.relasjon.Fornavn = rel.Fornavn
			r.relasjon.Mellomnavn = rel.Mellomnavn
			r.relasjon.Etternavn = rel.Etternavn
		}
	}
	return nil
}

func (s *InMemoryStore) ListBehandlere(_ context.Context, personident id.Personident, kind models.RelasjonType) ([]models.StoredBehandler, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []models.StoredBehandler
	for _, r := range s.newestFirst() {
		if r.personident != personident || r.stored.Type != kind {
			continue
		}
		if b, ok := s.behandlere[r.stored.BehandlerID]; ok {
			result = append(result, *s.withKontor(b))
		}
	}
	return result, nil
}

// Relasjon returns the stored relation of kind between personident and
// behandlerID, for assertions in tests.
func (s *InMemoryStore) Relasjon(personident id.Personident, behandlerID int64, kind models.RelasjonType) (models.Relasjon, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.newestFirst() {
		if r.personident == personident && r.stored.BehandlerID == behandlerID && r.stored.Type == kind {
			return r.relasjon, true
		}
	}
	return models.Relasjon{}, false
}

// InvalidateBehandler sets invalidated on the behandler unless it is already set.
func (s *InMemoryStore) InvalidateBehandler(_ context.Context, behandlerID int64, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.behandlere[behandlerID]
	if !ok || b.Invalidated != nil {
		return false, nil
	}
	b.Invalidated = &at
	s.behandlere[behandlerID] = b
	return true, nil
}

// Invalidate marks the behandler with id behandlerID as unreachable.
func (s *InMemoryStore) Invalidate(behandlerID int64, at time.Time) {
	_, _ = s.InvalidateBehandler(context.Background(), behandlerID, at)
}

// CountKontorer returns the number of stored kontor rows.
func (s *InMemoryStore) CountKontorer() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.kontorer)
}

// CountBehandlere returns the number of stored behandler rows.
func (s *InMemoryStore) CountBehandlere() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.behandlere)
}

func (s *InMemoryStore) newestFirst() []memoryRelasjon {
	result := append([]memoryRelasjon{}, s.relasjoner...)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].stored.ID > result[j].stored.ID
	})
	return result
}

func (s *InMemoryStore) sortedBehandlerIDs() []int64 {
	ids := make([]int64, 0, len(s.behandlere))
	for rowID := range s.behandlere {
		ids = append(ids, rowID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func matchesIdent(b models.Behandler, ident models.Ident) bool {
	switch ident.Kind {
	case models.IdentPersonident:
		return b.Personident.String() == ident.Value
	case models.IdentHprID:
		return b.HprID.String() == ident.Value
	case models.IdentHerID:
		return b.HerID.String() == ident.Value
	}
	return false
}

// sameLookupKey mirrors the partial unique indexes: two rows at one kontor
// collide only when their precedence keys are equal.
func sameLookupKey(a, b models.Behandler) bool {
	ka, errA := a.Ident()
	kb, errB := b.Ident()
	return errA == nil && errB == nil && ka == kb
}

// MemoryTx runs one unit of work at a time against an InMemoryStore.
type MemoryTx struct {
	mu sync.Mutex
}

func NewMemoryTx() *MemoryTx {
	return &MemoryTx{}
}

func (t *MemoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
