// Package service applies apprec messages to the bestillinger and behandlere
// they refer to.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"isdialogmelding/internal/dialogmelding/apprec"
	"isdialogmelding/internal/dialogmelding/apprec/metrics"
	"isdialogmelding/internal/dialogmelding/apprec/models"
	dErrors "isdialogmelding/pkg/domain-errors"
	"isdialogmelding/pkg/platform/sentinel"
	"isdialogmelding/pkg/requestcontext"
)

// Reconciler matches apprecs to bestillinger. Processing the same apprec
// twice stores it once and invalidates at most once.
type Reconciler struct {
	apprecs      ApprecStore
	bestillinger BestillingFinder
	behandlere   BehandlerInvalidator
	tx           TxRunner
	metrics      *metrics.Metrics
	tracer       trace.Tracer
	logger       *slog.Logger
}

type Option func(*Reconciler)

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reconciler) {
		r.metrics = m
	}
}

func NewReconciler(
	apprecs ApprecStore,
	bestillinger BestillingFinder,
	behandlere BehandlerInvalidator,
	tx TxRunner,
	logger *slog.Logger,
	opts ...Option,
) *Reconciler {
	r := &Reconciler{
		apprecs:      apprecs,
		bestillinger: bestillinger,
		behandlere:   behandlere,
		tx:           tx,
		tracer:       otel.Tracer("isdialogmelding/apprec"),
		logger:       logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type applyResult struct {
	outcome     models.Outcome
	invalidated bool
}

// Process parses payload and applies it. Unparseable payloads are ignored
// without error; only storage failures are returned.
func (r *Reconciler) Process(ctx context.Context, payload []byte) (models.Outcome, error) {
	ctx, span := r.tracer.Start(ctx, "apprec.Process")
	defer span.End()

	a, err := apprec.Parse(payload)
	if err != nil {
		r.logger.WarnContext(ctx, "ignoring apprec that could not be parsed",
			"call_id", requestcontext.CallID(ctx),
			"error", err,
		)
		r.metrics.IncrementOutcome(string(models.OutcomeIgnored))
		span.SetAttributes(attribute.String("apprec.outcome", string(models.OutcomeIgnored)))
		return models.OutcomeIgnored, nil
	}
	span.SetAttributes(attribute.String("apprec.id", a.UUID.String()))

	var result applyResult
	err = r.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		result, err = r.apply(ctx, a)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "apply apprec")
		r.logger.ErrorContext(ctx, "failed to apply apprec",
			"apprec_id", a.UUID.String(),
			"bestilling_uuid", a.BestillingUUID.String(),
			"error", err,
		)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "apply apprec")
	}

	r.metrics.IncrementOutcome(string(result.outcome))
	if result.invalidated {
		r.metrics.IncrementInvalidation()
	}
	span.SetAttributes(attribute.String("apprec.outcome", string(result.outcome)))
	r.logger.InfoContext(ctx, "processed apprec",
		"apprec_id", a.UUID.String(),
		"bestilling_uuid", a.BestillingUUID.String(),
		"status", a.StatusKode,
		"outcome", string(result.outcome),
		"invalidated", result.invalidated,
	)
	return result.outcome, nil
}

func (r *Reconciler) apply(ctx context.Context, a models.Apprec) (applyResult, error) {
	exists, err := r.apprecs.Exists(ctx, a.UUID)
	if err != nil {
		return applyResult{}, err
	}
	if exists {
		return applyResult{outcome: models.OutcomeDuplicate}, nil
	}

	bestilling, err := r.bestillinger.FindByUUID(ctx, a.BestillingUUID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return applyResult{outcome: models.OutcomeUnmatched}, nil
		}
		return applyResult{}, err
	}

	created, err := r.apprecs.Create(ctx, bestilling.ID, a)
	if err != nil {
		return applyResult{}, err
	}
	if !created {
		return applyResult{outcome: models.OutcomeDuplicate}, nil
	}

	result := applyResult{outcome: models.OutcomeApplied}
	if a.IsUnknownRecipient() {
		result.invalidated, err = r.behandlere.InvalidateBehandler(ctx, bestilling.BehandlerID, requestcontext.Now(ctx))
		if err != nil {
			return applyResult{}, fmt.Errorf("invalidate behandler %d: %w", bestilling.BehandlerID, err)
		}
	}
	return result, nil
}
