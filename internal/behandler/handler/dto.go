package handler

import (
	"strconv"

	"isdialogmelding/internal/behandler/models"
)

// BehandlerDTO is one entry of the GET /api/v1/behandler/personident response.
// Absent optional values are serialised as null.
type BehandlerDTO struct {
	Type         string  `json:"type"`
	BehandlerRef string  `json:"behandlerRef"`
	Kategori     string  `json:"kategori"`
	Fnr          *string `json:"fnr"`
	HprID        *int    `json:"hprId"`
	HerID        *int    `json:"herId"`
	Fornavn      string  `json:"fornavn"`
	Mellomnavn   *string `json:"mellomnavn"`
	Etternavn    string  `json:"etternavn"`
	Orgnummer    *string `json:"orgnummer"`
	Kontor       *string `json:"kontor"`
	Adresse      *string `json:"adresse"`
	Postnummer   *string `json:"postnummer"`
	Poststed     *string `json:"poststed"`
	Telefon      *string `json:"telefon"`
}

func toDTO(b models.BehandlerMedType) BehandlerDTO {
	behandler := b.Behandler
	kontor := behandler.Kontor
	return BehandlerDTO{
		Type:         string(b.Type),
		BehandlerRef: behandler.Ref.String(),
		Kategori:     string(behandler.Kategori),
		Fnr:          optional(behandler.Personident.String()),
		HprID:        optionalInt(behandler.HprID.String()),
		HerID:        optionalInt(behandler.HerID.String()),
		Fornavn:      behandler.Fornavn,
		Mellomnavn:   optional(behandler.Mellomnavn),
		Etternavn:    behandler.Etternavn,
		Orgnummer:    optional(kontor.Orgnummer),
		Kontor:       optional(kontor.Navn),
		Adresse:      optional(kontor.Adresse),
		Postnummer:   optional(kontor.Postnummer),
		Poststed:     optional(kontor.Poststed),
		Telefon:      optional(behandler.Telefon),
	}
}

func toDTOs(list []models.BehandlerMedType) []BehandlerDTO {
	result := make([]BehandlerDTO, 0, len(list))
	for _, b := range list {
		result = append(result, toDTO(b))
	}
	return result
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalInt(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
