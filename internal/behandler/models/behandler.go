// Package models holds the behandler domain: providers, their kontor, and the
// relations that link them to arbeidstakere.
package models

import (
	"time"

	"github.com/google/uuid"

	id "isdialogmelding/pkg/domain"
	dErrors "isdialogmelding/pkg/domain-errors"
	"isdialogmelding/pkg/platform/strings"
)

// Kategori is the profession of a behandler.
type Kategori string

const (
	KategoriLege            Kategori = "LEGE"
	KategoriFysioterapeut   Kategori = "FYSIOTERAPEUT"
	KategoriKiropraktor     Kategori = "KIROPRAKTOR"
	KategoriManuellterapeut Kategori = "MANUELLTERAPEUT"
	KategoriTannlege        Kategori = "TANNLEGE"
)

// IdentKind names which identity key a lookup uses.
type IdentKind string

const (
	IdentPersonident IdentKind = "personident"
	IdentHprID       IdentKind = "hprId"
	IdentHerID       IdentKind = "herId"
)

// Ident is the single identity key used to look up a stored behandler.
// Construct with NewIdent; the zero value is invalid.
type Ident struct {
	Kind  IdentKind
	Value string
}

// NewIdent picks the identity key by fixed precedence: personident, then hprId,
// then herId. Supplying none is a caller error.
func NewIdent(personident id.Personident, hprID id.HprID, herID id.HerID) (Ident, error) {
	switch {
	case !personident.IsNil():
		return Ident{Kind: IdentPersonident, Value: personident.String()}, nil
	case !hprID.IsNil():
		return Ident{Kind: IdentHprID, Value: hprID.String()}, nil
	case !herID.IsNil():
		return Ident{Kind: IdentHerID, Value: herID.String()}, nil
	default:
		return Ident{}, dErrors.New(dErrors.CodeInvalidInput, "behandler missing personident, hprId and herId")
	}
}

func (i Ident) IsNil() bool { return i.Value == "" }

func (i Ident) String() string { return string(i.Kind) + ":" + i.Value }

// Behandler is a healthcare provider as seen at one kontor.
type Behandler struct {
	Ref         id.BehandlerRef
	Kategori    Kategori
	Personident id.Personident
	HprID       id.HprID
	HerID       id.HerID
	Fornavn     string
	Mellomnavn  string
	Etternavn   string
	Telefon     string
	Kontor      Kontor
	Mottatt     time.Time
	Invalidated *time.Time
}

// Ident returns the lookup key for b.
func (b Behandler) Ident() (Ident, error) {
	return NewIdent(b.Personident, b.HprID, b.HerID)
}

// IsInvalidated reports whether b has been marked unreachable.
func (b Behandler) IsInvalidated() bool {
	return b.Invalidated != nil
}

// NewBehandlerRef returns a fresh public reference.
func NewBehandlerRef() id.BehandlerRef {
	return id.BehandlerRef(uuid.New())
}

// StoredBehandler is a persisted behandler with its row ids.
type StoredBehandler struct {
	ID       int64
	KontorID int64
	Behandler
}

// HasNewerData reports whether candidate carries data strictly newer than s.
func (s StoredBehandler) HasNewerData(candidate Behandler) bool {
	return candidate.Mottatt.After(s.Mottatt)
}

// WithUpdate returns the stored behandler with the mutable fields of candidate
// applied. Blank candidate names and kategori keep the stored value.
func (s StoredBehandler) WithUpdate(candidate Behandler) Behandler {
	updated := s.Behandler
	if !strings.IsBlank(candidate.Fornavn) || !strings.IsBlank(candidate.Etternavn) {
		updated.Fornavn = candidate.Fornavn
		updated.Mellomnavn = candidate.Mellomnavn
		updated.Etternavn = candidate.Etternavn
	}
	updated.Telefon = candidate.Telefon
	if candidate.Kategori != "" {
		updated.Kategori = candidate.Kategori
	}
	updated.Mottatt = candidate.Mottatt
	return updated
}
