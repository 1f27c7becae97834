package service

import (
	"strconv"
	"time"

	"isdialogmelding/internal/behandler/models"
	"isdialogmelding/internal/registry/fastlege"
	id "isdialogmelding/pkg/domain"
)

// candidateFromFastlege builds a LEGE candidate at the kontor resolved through
// partnerinfo. The kontor address is the registry's postal address.
func candidateFromFastlege(f fastlege.Fastlege, partnerID id.PartnerID, now time.Time) models.Behandler {
	b := models.Behandler{
		Ref:        models.NewBehandlerRef(),
		Kategori:   models.KategoriLege,
		HerID:      formatID[id.HerID](f.HerID),
		HprID:      formatID[id.HprID](f.HelsepersonellregisterID),
		Fornavn:    f.Fornavn,
		Mellomnavn: f.Mellomnavn,
		Etternavn:  f.Etternavn,
		Mottatt:    now,
		Kontor: models.Kontor{
			PartnerID:            partnerID,
			HerID:                formatID[id.HerID](f.ForeldreEnhetHerID),
			DialogmeldingEnabled: true,
			Mottatt:              now,
		},
	}
	if personident, err := id.ParsePersonident(f.Fnr); err == nil {
		b.Personident = personident
	}
	if k := f.Fastlegekontor; k != nil {
		b.Telefon = k.Telefon
		b.Kontor.Navn = k.Navn
		b.Kontor.Orgnummer = k.Orgnummer
		if a := k.Postadresse; a != nil {
			b.Kontor.Adresse = a.Adresse
			b.Kontor.Postnummer = a.Postnummer
			b.Kontor.Poststed = a.Poststed
		}
	}
	return b
}

func formatID[T ~string](v *int64) T {
	if v == nil {
		return ""
	}
	return T(strconv.FormatInt(*v, 10))
}
