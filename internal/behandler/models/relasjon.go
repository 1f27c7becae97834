package models

import (
	"time"

	id "isdialogmelding/pkg/domain"
)

// RelasjonType is the kind of link between an arbeidstaker and a behandler.
type RelasjonType string

const (
	RelasjonFastlege  RelasjonType = "FASTLEGE"
	RelasjonSykmelder RelasjonType = "SYKMELDER"
)

// ParseRelasjonType accepts the stored string form.
func ParseRelasjonType(s string) (RelasjonType, bool) {
	switch RelasjonType(s) {
	case RelasjonFastlege, RelasjonSykmelder:
		return RelasjonType(s), true
	}
	return "", false
}

// Relasjon links an arbeidstaker to a behandler. The names are the arbeidstaker's.
type Relasjon struct {
	Type                    RelasjonType
	ArbeidstakerPersonident id.Personident
	Fornavn                 string
	Mellomnavn              string
	Etternavn               string
	Mottatt                 time.Time
}

// StoredRelasjon is a persisted relation row, newest first when listed.
type StoredRelasjon struct {
	ID          int64
	BehandlerID int64
	Type        RelasjonType
	CreatedAt   time.Time
}

// RelasjonWrite is the outcome of the relation write rule.
type RelasjonWrite int

const (
	RelasjonNoop RelasjonWrite = iota
	RelasjonInsert
	RelasjonUpdate
)

// DecideRelasjonWrite applies the write rule for behandlerID given the person's
// existing relations ordered newest first:
//   - insert when a FASTLEGE relation switches to a different behandler,
//   - insert when no relation of this kind to this behandler exists yet,
//   - otherwise refresh an existing SYKMELDER relation in place.
func DecideRelasjonWrite(kind RelasjonType, behandlerID int64, existing []StoredRelasjon) RelasjonWrite {
	latestFastlege := int64(0)
	linked := false
	for _, r := range existing {
		if r.Type == RelasjonFastlege && latestFastlege == 0 {
			latestFastlege = r.BehandlerID
		}
		if r.Type == kind && r.BehandlerID == behandlerID {
			linked = true
		}
	}

	switchOfFastlege := kind == RelasjonFastlege && latestFastlege != behandlerID
	if switchOfFastlege || !linked {
		return RelasjonInsert
	}
	if kind == RelasjonSykmelder {
		return RelasjonUpdate
	}
	return RelasjonNoop
}

// BehandlerMedType pairs a behandler with how it relates to the arbeidstaker.
type BehandlerMedType struct {
	Behandler Behandler
	Type      RelasjonType
}

type dedupeKey struct {
	ident     Ident
	partnerID id.PartnerID
}

// Dedupe keeps the first entry for each behandler identity at a kontor.
// Order is preserved; entries earlier in the list take precedence.
func Dedupe(entries []BehandlerMedType) []BehandlerMedType {
	if len(entries) == 0 {
		return entries
	}
	seen := make(map[dedupeKey]struct{}, len(entries))
	result := make([]BehandlerMedType, 0, len(entries))
	for _, e := range entries {
		ident, err := e.Behandler.Ident()
		if err != nil {
			// no identity to compare on
			result = append(result, e)
			continue
		}
		key := dedupeKey{ident: ident, partnerID: e.Behandler.Kontor.PartnerID}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, e)
	}
	return result
}
