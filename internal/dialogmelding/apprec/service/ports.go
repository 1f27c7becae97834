package service

import (
	"context"
	"time"

	"isdialogmelding/internal/dialogmelding/apprec/models"
	bestillingmodels "isdialogmelding/internal/dialogmelding/bestilling/models"
	id "isdialogmelding/pkg/domain"
)

// ApprecStore records apprecs idempotently by uuid.
type ApprecStore interface {
	Exists(ctx context.Context, apprecID id.MessageID) (bool, error)
	Create(ctx context.Context, bestillingID int64, a models.Apprec) (bool, error)
}

// BestillingFinder looks up the bestilling an apprec answers.
type BestillingFinder interface {
	FindByUUID(ctx context.Context, messageID id.MessageID) (*bestillingmodels.StoredBestilling, error)
}

// BehandlerInvalidator marks a behandler unreachable.
type BehandlerInvalidator interface {
	InvalidateBehandler(ctx context.Context, behandlerID int64, at time.Time) (bool, error)
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
