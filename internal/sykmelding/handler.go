// Package sykmelding records SYKMELDER relations from received sykmeldinger.
package sykmelding

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"isdialogmelding/internal/behandler/models"
	"isdialogmelding/internal/platform/kafka/consumer"
	id "isdialogmelding/pkg/domain"
	dErrors "isdialogmelding/pkg/domain-errors"
	"isdialogmelding/pkg/requestcontext"
)

// Reconciler records a behandler candidate and its relation to an arbeidstaker.
type Reconciler interface {
	Reconcile(ctx context.Context, candidate models.Behandler, relasjon models.Relasjon) (*models.Behandler, error)
}

// Handler consumes received-sykmelding records.
type Handler struct {
	reconciler Reconciler
	logger     *slog.Logger
	location   *time.Location
}

func NewHandler(reconciler Reconciler, logger *slog.Logger) *Handler {
	location, err := time.LoadLocation("Europe/Oslo")
	if err != nil {
		location = time.UTC
	}
	return &Handler{
		reconciler: reconciler,
		logger:     logger,
		location:   location,
	}
}

type receivedSykmelding struct {
	PersonNrPasient   string     `json:"personNrPasient"`
	MottattDato       string     `json:"mottattDato"`
	LegekontorOrgNr   *string    `json:"legekontorOrgNr"`
	LegekontorOrgName string     `json:"legekontorOrgName"`
	LegekontorHerID   *string    `json:"legekontorHerId"`
	Partnerreferanse  *string    `json:"partnerreferanse"`
	Sykmelding        sykmelding `json:"sykmelding"`
}

type sykmelding struct {
	ID             string         `json:"id"`
	Behandler      behandler      `json:"behandler"`
	AvsenderSystem avsenderSystem `json:"avsenderSystem"`
}

type behandler struct {
	Fornavn    string  `json:"fornavn"`
	Mellomnavn *string `json:"mellomnavn"`
	Etternavn  string  `json:"etternavn"`
	Fnr        string  `json:"fnr"`
	Hpr        *string `json:"hpr"`
	Her        *string `json:"her"`
	Tlf        *string `json:"tlf"`
	Adresse    adresse `json:"adresse"`
}

type adresse struct {
	Gate       *string `json:"gate"`
	Postnummer *int    `json:"postnummer"`
	Kommune    *string `json:"kommune"`
}

type avsenderSystem struct {
	Navn    string `json:"navn"`
	Versjon string `json:"versjon"`
}

// Handle records the sykmelder of one sykmelding. Sykmeldinger that cannot
// identify a behandler at a kontor are skipped.
func (h *Handler) Handle(ctx context.Context, msg *consumer.Message) error {
	ctx = consumer.WithMessageContext(ctx, msg)

	var payload receivedSykmelding
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		h.logger.ErrorContext(ctx, "failed to unmarshal sykmelding payload",
			"topic", msg.Topic,
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}

	partnerID, err := id.ParsePartnerID(deref(payload.Partnerreferanse))
	if err != nil {
		h.logger.InfoContext(ctx, "skipping sykmelding without partnerreferanse",
			"sykmelding_id", payload.Sykmelding.ID,
		)
		return nil
	}
	arbeidstaker, err := id.ParsePersonident(payload.PersonNrPasient)
	if err != nil {
		h.logger.WarnContext(ctx, "skipping sykmelding with invalid pasient personident",
			"sykmelding_id", payload.Sykmelding.ID,
		)
		return nil
	}

	mottatt := h.parseMottatt(ctx, payload.MottattDato)
	candidate := toCandidate(payload, partnerID, mottatt)
	relasjon := models.Relasjon{
		Type:                    models.RelasjonSykmelder,
		ArbeidstakerPersonident: arbeidstaker,
		Mottatt:                 mottatt,
	}

	stored, err := h.reconciler.Reconcile(ctx, candidate, relasjon)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			h.logger.InfoContext(ctx, "skipping sykmelding without usable behandler",
				"sykmelding_id", payload.Sykmelding.ID,
				"partner_id", partnerID.String(),
				"error", err,
			)
			return nil
		}
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			// the ledger already retried; redelivery would block the partition
			h.logger.ErrorContext(ctx, "dropping sykmelding after repeated reconcile conflicts",
				"sykmelding_id", payload.Sykmelding.ID,
				"partner_id", partnerID.String(),
				"error", err,
			)
			return nil
		}
		return fmt.Errorf("reconcile sykmelder: %w", err)
	}

	h.logger.InfoContext(ctx, "recorded sykmelder",
		"sykmelding_id", payload.Sykmelding.ID,
		"behandler_ref", stored.Ref.String(),
		"partner_id", partnerID.String(),
	)
	return nil
}

// parseMottatt reads mottattDato, a local Norwegian timestamp without offset.
func (h *Handler) parseMottatt(ctx context.Context, value string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", value, h.location); err == nil {
		return t
	}
	h.logger.WarnContext(ctx, "unreadable mottattDato, using receive time", "mottatt_dato", value)
	return requestcontext.Now(ctx)
}

func toCandidate(p receivedSykmelding, partnerID id.PartnerID, mottatt time.Time) models.Behandler {
	b := p.Sykmelding.Behandler
	candidate := models.Behandler{
		Kategori:   models.KategoriLege,
		HprID:      parseOptional(id.ParseHprID, b.Hpr),
		HerID:      parseOptional(id.ParseHerID, b.Her),
		Fornavn:    b.Fornavn,
		Mellomnavn: deref(b.Mellomnavn),
		Etternavn:  b.Etternavn,
		Telefon:    strings.TrimPrefix(deref(b.Tlf), "tel:"),
		Mottatt:    mottatt,
		Kontor: models.Kontor{
			PartnerID:            partnerID,
			HerID:                parseOptional(id.ParseHerID, p.LegekontorHerID),
			Navn:                 p.LegekontorOrgName,
			Orgnummer:            deref(p.LegekontorOrgNr),
			Adresse:              deref(b.Adresse.Gate),
			Poststed:             deref(b.Adresse.Kommune),
			DialogmeldingEnabled: true,
			System:               p.Sykmelding.AvsenderSystem.Navn,
			Mottatt:              mottatt,
		},
	}
	if b.Adresse.Postnummer != nil {
		candidate.Kontor.Postnummer = fmt.Sprintf("%04d", *b.Adresse.Postnummer)
	}
	if personident, err := id.ParsePersonident(b.Fnr); err == nil {
		candidate.Personident = personident
	}
	return candidate
}

func parseOptional[T ~string](parse func(string) (T, error), value *string) T {
	if value == nil {
		return ""
	}
	v, err := parse(*value)
	if err != nil {
		return ""
	}
	return v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
