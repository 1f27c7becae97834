package service

import (
	"context"

	"isdialogmelding/internal/behandler/models"
	id "isdialogmelding/pkg/domain"
)

// Store persists behandlere, kontor and relations. Methods join the
// transaction carried in ctx when present.
type Store interface {
	FindBehandler(ctx context.Context, ident models.Ident, partnerID id.PartnerID) (*models.StoredBehandler, error)
	CreateKontor(ctx context.Context, k models.Kontor) (*models.Kontor, bool, error)
	FindKontorForUpdate(ctx context.Context, partnerID id.PartnerID) (*models.Kontor, error)
	UpdateKontor(ctx context.Context, k models.Kontor) error
	CreateBehandler(ctx context.Context, kontorID int64, b models.Behandler) (*models.StoredBehandler, error)
	UpdateBehandler(ctx context.Context, behandlerID int64, b models.Behandler) error
	LockPerson(ctx context.Context, personident id.Personident) error
	ListRelasjoner(ctx context.Context, personident id.Personident) ([]models.StoredRelasjon, error)
	CreateRelasjon(ctx context.Context, behandlerID int64, rel models.Relasjon) error
	UpdateRelasjon(ctx context.Context, behandlerID int64, rel models.Relasjon) error
	ListBehandlere(ctx context.Context, personident id.Personident, kind models.RelasjonType) ([]models.StoredBehandler, error)
}

// TxRunner runs fn as one unit of work.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
