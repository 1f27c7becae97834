package service

import (
	"context"
	"errors"

	"isdialogmelding/internal/behandler/models"
	dErrors "isdialogmelding/pkg/domain-errors"
	"isdialogmelding/pkg/platform/sentinel"
)

// Resolver finds the stored behandler a candidate refers to. Matching is
// exact on one identity key plus the kontor partnerId.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the stored behandler matching candidate, or nil when there
// is none.
func (r *Resolver) Resolve(ctx context.Context, candidate models.Behandler) (*models.StoredBehandler, error) {
	ident, err := candidate.Ident()
	if err != nil {
		return nil, err
	}
	stored, err := r.store.FindBehandler(ctx, ident, candidate.Kontor.PartnerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up behandler")
	}
	return stored, nil
}
