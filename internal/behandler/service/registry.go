package service

import (
	"context"

	"isdialogmelding/internal/registry/fastlege"
	id "isdialogmelding/pkg/domain"
)

// FastlegeClient looks up a person's active GP. A nil result means none.
type FastlegeClient interface {
	FetchActive(ctx context.Context, personident id.Personident, token, callID string) (*fastlege.Fastlege, error)
}

// PartnerinfoClient resolves a kontor herId to its partnerId.
type PartnerinfoClient interface {
	FetchPartnerID(ctx context.Context, herID id.HerID, token, callID string) (id.PartnerID, bool, error)
}
