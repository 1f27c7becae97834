// Package service implements the behandler use cases: resolving provider
// identity, reconciling candidates into the ledger, and listing a person's
// behandlere.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"isdialogmelding/internal/behandler/metrics"
	"isdialogmelding/internal/behandler/models"
	"isdialogmelding/internal/registry/providers"
	id "isdialogmelding/pkg/domain"
	"isdialogmelding/pkg/requestcontext"
)

const (
	registryFastlege    = "fastlege"
	registryPartnerinfo = "partnerinfo"
)

// Service lists the behandlere an arbeidstaker can send dialog messages to.
type Service struct {
	ledger            *Ledger
	store             Store
	fastlege          FastlegeClient
	partnerinfo       PartnerinfoClient
	sykmeldereEnabled bool
	metrics           *metrics.Metrics
	logger            *slog.Logger
	tracer            trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithSykmeldereEnabled includes stored SYKMELDER relations in GetBehandlere.
func WithSykmeldereEnabled(enabled bool) Option {
	return func(s *Service) {
		s.sykmeldereEnabled = enabled
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(ledger *Ledger, store Store, fastlege FastlegeClient, partnerinfo PartnerinfoClient, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		ledger:      ledger,
		store:       store,
		fastlege:    fastlege,
		partnerinfo: partnerinfo,
		logger:      logger,
		tracer:      otel.Tracer("isdialogmelding/behandler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetBehandlere returns the person's active fastlege, reconciled into storage,
// followed by stored sykmeldere when enabled. Registry failures yield no
// fastlege rather than an error.
func (s *Service) GetBehandlere(ctx context.Context, personident id.Personident, token, callID string) ([]models.BehandlerMedType, error) {
	ctx, span := s.tracer.Start(ctx, "behandler.GetBehandlere")
	defer span.End()
	defer s.metrics.ObserveGetBehandlere(time.Now())

	var result []models.BehandlerMedType

	fastlegeBehandler, err := s.fastlegeBehandler(ctx, personident, token, callID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reconcile fastlege")
		return nil, err
	}
	if fastlegeBehandler != nil {
		result = append(result, models.BehandlerMedType{Behandler: *fastlegeBehandler, Type: models.RelasjonFastlege})
	}

	if s.sykmeldereEnabled {
		sykmeldere, err := s.store.ListBehandlere(ctx, personident, models.RelasjonSykmelder)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "list sykmeldere")
			return nil, err
		}
		for _, b := range sykmeldere {
			if b.IsInvalidated() {
				continue
			}
			result = append(result, models.BehandlerMedType{Behandler: b.Behandler, Type: models.RelasjonSykmelder})
		}
	}

	result = models.Dedupe(result)
	span.SetAttributes(attribute.Int("behandlere.count", len(result)))
	return result, nil
}

func (s *Service) fastlegeBehandler(ctx context.Context, personident id.Personident, token, callID string) (*models.Behandler, error) {
	candidate := s.activeFastlege(ctx, personident, token, callID)
	if candidate == nil {
		return nil, nil
	}
	relasjon := models.Relasjon{
		Type:                    models.RelasjonFastlege,
		ArbeidstakerPersonident: personident,
		Mottatt:                 requestcontext.Now(ctx),
	}
	return s.ledger.Reconcile(ctx, *candidate, relasjon)
}

// activeFastlege builds a candidate from the GP registry and partnerinfo, or
// returns nil when either has no usable answer.
func (s *Service) activeFastlege(ctx context.Context, personident id.Personident, token, callID string) *models.Behandler {
	f, err := s.fastlege.FetchActive(ctx, personident, token, callID)
	if err != nil {
		s.registryFailed(ctx, registryFastlege, callID, err)
		return nil
	}
	if f == nil {
		s.metrics.IncrementRegistryLookup(registryFastlege, "none")
		return nil
	}
	s.metrics.IncrementRegistryLookup(registryFastlege, "found")

	if f.ForeldreEnhetHerID == nil {
		s.logger.WarnContext(ctx, "active fastlege missing foreldreEnhetHerId, cannot request partnerinfo", "call_id", callID)
		return nil
	}
	kontorHerID := formatID[id.HerID](f.ForeldreEnhetHerID)
	partnerID, found, err := s.partnerinfo.FetchPartnerID(ctx, kontorHerID, token, callID)
	if err != nil {
		s.registryFailed(ctx, registryPartnerinfo, callID, err)
		return nil
	}
	if !found {
		s.metrics.IncrementRegistryLookup(registryPartnerinfo, "none")
		s.logger.InfoContext(ctx, "no partnerinfo for fastlege kontor", "her_id", kontorHerID.String(), "call_id", callID)
		return nil
	}
	s.metrics.IncrementRegistryLookup(registryPartnerinfo, "found")

	candidate := candidateFromFastlege(*f, partnerID, requestcontext.Now(ctx))
	if _, err := candidate.Ident(); err != nil {
		s.logger.WarnContext(ctx, "active fastlege has no identity", "call_id", callID)
		return nil
	}
	return &candidate
}

func (s *Service) registryFailed(ctx context.Context, registry, callID string, err error) {
	s.metrics.IncrementRegistryLookup(registry, "error")
	s.logger.WarnContext(ctx, "registry lookup failed",
		"registry", registry,
		"category", string(providers.GetCategory(err)),
		"call_id", callID,
		"error", err,
	)
}
