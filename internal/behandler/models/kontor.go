package models

import (
	"time"

	id "isdialogmelding/pkg/domain"
	"isdialogmelding/pkg/platform/strings"
)

// Kontor is the office a behandler sends and receives dialog messages through.
// PartnerID is its identity; Mottatt marks the recency of every mutable field.
type Kontor struct {
	ID                   int64
	PartnerID            id.PartnerID
	HerID                id.HerID
	Navn                 string
	Adresse              string
	Postnummer           string
	Poststed             string
	Orgnummer            string
	DialogmeldingEnabled bool
	System               string
	Mottatt              time.Time
}

// HasCompleteAddress reports whether adresse, postnummer and poststed are all set.
func (k Kontor) HasCompleteAddress() bool {
	return strings.AllPresent(k.Adresse, k.Postnummer, k.Poststed)
}

// KontorMerge lists which field groups of a stored kontor a candidate overwrites.
type KontorMerge struct {
	System  bool
	Adresse bool
}

// Changed reports whether anything is overwritten.
func (m KontorMerge) Changed() bool {
	return m.System || m.Adresse
}

// MergeKontor decides per field group whether candidate overwrites existing.
// Equal timestamps never overwrite.
func MergeKontor(existing, candidate Kontor) KontorMerge {
	newer := candidate.Mottatt.After(existing.Mottatt)
	return KontorMerge{
		System:  !strings.IsBlank(candidate.System) && (strings.IsBlank(existing.System) || newer),
		Adresse: candidate.HasCompleteAddress() && newer,
	}
}

// Apply returns existing with the fields selected by m copied from candidate.
// Mottatt never moves backwards.
func (m KontorMerge) Apply(existing, candidate Kontor) Kontor {
	merged := existing
	if m.System {
		merged.System = candidate.System
	}
	if m.Adresse {
		merged.Adresse = candidate.Adresse
		merged.Postnummer = candidate.Postnummer
		merged.Poststed = candidate.Poststed
	}
	if m.Changed() && candidate.Mottatt.After(existing.Mottatt) {
		merged.Mottatt = candidate.Mottatt
	}
	return merged
}
