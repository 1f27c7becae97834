// Package models holds dialogmelding orders (bestillinger) sent to behandlere.
package models

import (
	"time"

	id "isdialogmelding/pkg/domain"
	dErrors "isdialogmelding/pkg/domain-errors"
)

// Bestilling is a request to send a dialogmelding to a behandler about an
// arbeidstaker. It never changes once recorded.
type Bestilling struct {
	UUID                    id.MessageID
	BehandlerRef            id.BehandlerRef
	ArbeidstakerPersonident id.Personident
	ParentRef               string
	ConversationRef         string
	Type                    string
	Kodeverk                string
	Kode                    int
	Tekst                   string
}

// Validate checks the fields a bestilling cannot be stored without.
func (b Bestilling) Validate() error {
	if b.UUID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "bestilling uuid is required")
	}
	if b.BehandlerRef.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "bestilling behandlerRef is required")
	}
	if b.ArbeidstakerPersonident.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "bestilling personident is required")
	}
	if b.Type == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "bestilling type is required")
	}
	return nil
}

// StoredBestilling is a persisted bestilling joined to its behandler row.
type StoredBestilling struct {
	ID          int64
	BehandlerID int64
	CreatedAt   time.Time
	Bestilling
}
