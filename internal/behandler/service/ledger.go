package service

import (
	"context"
	"errors"
	"log/slog"

	"isdialogmelding/internal/behandler/metrics"
	"isdialogmelding/internal/behandler/models"
	dErrors "isdialogmelding/pkg/domain-errors"
	"isdialogmelding/pkg/platform/sentinel"
)

// maxReconcileAttempts bounds retries after a uniqueness conflict. A retry
// resolves the row the competing writer created and takes the update path.
const maxReconcileAttempts = 3

const (
	pathCreated = "created"
	pathUpdated = "updated"
)

// Ledger reconciles behandler candidates from any source into the stored
// behandler, kontor and relation rows.
type Ledger struct {
	store    Store
	tx       TxRunner
	resolver *Resolver
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

func WithLedgerMetrics(m *metrics.Metrics) LedgerOption {
	return func(l *Ledger) {
		l.metrics = m
	}
}

func NewLedger(store Store, tx TxRunner, logger *slog.Logger, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		store:    store,
		tx:       tx,
		resolver: NewResolver(store),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Reconcile merges candidate into storage and records relasjon, all in one
// transaction. It returns the canonical stored behandler.
func (l *Ledger) Reconcile(ctx context.Context, candidate models.Behandler, relasjon models.Relasjon) (*models.Behandler, error) {
	if _, err := candidate.Ident(); err != nil {
		return nil, err
	}
	if candidate.Kontor.PartnerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "behandler missing kontor partnerId")
	}
	if relasjon.ArbeidstakerPersonident.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "relasjon missing arbeidstaker personident")
	}
	if candidate.Ref.IsNil() {
		candidate.Ref = models.NewBehandlerRef()
	}

	var err error
	for attempt := 1; attempt <= maxReconcileAttempts; attempt++ {
		var result *models.Behandler
		var path string
		result, path, err = l.reconcileOnce(ctx, candidate, relasjon)
		if err == nil {
			l.metrics.IncrementReconciled(string(relasjon.Type), path)
			return result, nil
		}
		if !errors.Is(err, sentinel.ErrConflict) || attempt == maxReconcileAttempts {
			break
		}
		l.metrics.IncrementReconcileRetry()
		l.logger.InfoContext(ctx, "reconcile conflict, retrying",
			"attempt", attempt,
			"partner_id", candidate.Kontor.PartnerID.String(),
		)
	}

	if errors.Is(err, sentinel.ErrConflict) {
		return nil, dErrors.Wrap(err, dErrors.CodeConflict, "behandler reconcile kept conflicting")
	}
	if _, ok := dErrors.As(err); ok {
		return nil, err
	}
	return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reconcile behandler")
}

func (l *Ledger) reconcileOnce(ctx context.Context, candidate models.Behandler, relasjon models.Relasjon) (*models.Behandler, string, error) {
	var (
		result *models.Behandler
		path   string
	)
	err := l.tx.RunInTx(ctx, func(ctx context.Context) error {
		stored, err := l.resolver.Resolve(ctx, candidate)
		if err != nil {
			return err
		}
		if stored == nil {
			result, err = l.create(ctx, candidate, relasjon)
			path = pathCreated
			return err
		}
		result, err = l.update(ctx, *stored, candidate, relasjon)
		path = pathUpdated
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return result, path, nil
}

func (l *Ledger) create(ctx context.Context, candidate models.Behandler, relasjon models.Relasjon) (*models.Behandler, error) {
	kontor, err := l.upsertKontor(ctx, candidate.Kontor)
	if err != nil {
		return nil, err
	}
	stored, err := l.store.CreateBehandler(ctx, kontor.ID, candidate)
	if err != nil {
		return nil, err
	}
	if err := l.writeRelasjon(ctx, stored.ID, relasjon); err != nil {
		return nil, err
	}
	result := stored.Behandler
	result.Kontor = *kontor
	return &result, nil
}

func (l *Ledger) update(ctx context.Context, stored models.StoredBehandler, candidate models.Behandler, relasjon models.Relasjon) (*models.Behandler, error) {
	kontor, err := l.mergeKontor(ctx, candidate.Kontor)
	if err != nil {
		return nil, err
	}

	result := stored.Behandler
	if stored.HasNewerData(candidate) {
		result = stored.WithUpdate(candidate)
		if err := l.store.UpdateBehandler(ctx, stored.ID, result); err != nil {
			return nil, err
		}
	}
	if err := l.writeRelasjon(ctx, stored.ID, relasjon); err != nil {
		return nil, err
	}
	result.Kontor = *kontor
	return &result, nil
}

// upsertKontor creates the kontor or, when another writer already did, merges
// the candidate into the locked existing row.
func (l *Ledger) upsertKontor(ctx context.Context, candidate models.Kontor) (*models.Kontor, error) {
	created, ok, err := l.store.CreateKontor(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if ok {
		return created, nil
	}
	return l.mergeKontor(ctx, candidate)
}

func (l *Ledger) mergeKontor(ctx context.Context, candidate models.Kontor) (*models.Kontor, error) {
	existing, err := l.store.FindKontorForUpdate(ctx, candidate.PartnerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeInternal, "kontor missing for partnerId "+candidate.PartnerID.String())
		}
		return nil, err
	}
	merge := models.MergeKontor(*existing, candidate)
	if !merge.Changed() {
		return existing, nil
	}
	merged := merge.Apply(*existing, candidate)
	if err := l.store.UpdateKontor(ctx, merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// writeRelasjon applies the relation write rule under a per-person lock.
func (l *Ledger) writeRelasjon(ctx context.Context, behandlerID int64, relasjon models.Relasjon) error {
	if err := l.store.LockPerson(ctx, relasjon.ArbeidstakerPersonident); err != nil {
		return err
	}
	existing, err := l.store.ListRelasjoner(ctx, relasjon.ArbeidstakerPersonident)
	if err != nil {
		return err
	}
	switch models.DecideRelasjonWrite(relasjon.Type, behandlerID, existing) {
	case models.RelasjonInsert:
		return l.store.CreateRelasjon(ctx, behandlerID, relasjon)
	case models.RelasjonUpdate:
		return l.store.UpdateRelasjon(ctx, behandlerID, relasjon)
	}
	return nil
}
