// Package consumer records dialogmelding bestillinger delivered over Kafka.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	behandlermodels "isdialogmelding/internal/behandler/models"
	"isdialogmelding/internal/dialogmelding/bestilling/models"
	"isdialogmelding/internal/platform/kafka/consumer"
	id "isdialogmelding/pkg/domain"
	"isdialogmelding/pkg/platform/sentinel"
)

// BehandlerFinder resolves the behandler a bestilling is addressed to.
type BehandlerFinder interface {
	FindBehandlerByRef(ctx context.Context, ref id.BehandlerRef) (*behandlermodels.StoredBehandler, error)
}

// Store persists bestillinger idempotently.
type Store interface {
	Create(ctx context.Context, behandlerID int64, b models.Bestilling) (bool, error)
}

// Handler consumes DialogmeldingToBehandlerBestilling records.
type Handler struct {
	behandlere BehandlerFinder
	store      Store
	logger     *slog.Logger
}

func NewHandler(behandlere BehandlerFinder, store Store, logger *slog.Logger) *Handler {
	return &Handler{
		behandlere: behandlere,
		store:      store,
		logger:     logger,
	}
}

type bestillingPayload struct {
	BehandlerRef                 string  `json:"behandlerRef"`
	PersonIdent                  string  `json:"personIdent"`
	DialogmeldingUUID            string  `json:"dialogmeldingUuid"`
	DialogmeldingRefParent       *string `json:"dialogmeldingRefParent"`
	DialogmeldingRefConversation string  `json:"dialogmeldingRefConversation"`
	DialogmeldingType            string  `json:"dialogmeldingType"`
	DialogmeldingKodeverk        *string `json:"dialogmeldingKodeverk"`
	DialogmeldingKode            int     `json:"dialogmeldingKode"`
	DialogmeldingTekst           *string `json:"dialogmeldingTekst"`
}

func (p bestillingPayload) toBestilling() (models.Bestilling, error) {
	messageID, err := id.ParseMessageID(p.DialogmeldingUUID)
	if err != nil {
		return models.Bestilling{}, err
	}
	ref, err := id.ParseBehandlerRef(p.BehandlerRef)
	if err != nil {
		return models.Bestilling{}, err
	}
	personident, err := id.ParsePersonident(p.PersonIdent)
	if err != nil {
		return models.Bestilling{}, err
	}
	b := models.Bestilling{
		UUID:                    messageID,
		BehandlerRef:            ref,
		ArbeidstakerPersonident: personident,
		ParentRef:               deref(p.DialogmeldingRefParent),
		ConversationRef:         p.DialogmeldingRefConversation,
		Type:                    p.DialogmeldingType,
		Kodeverk:                deref(p.DialogmeldingKodeverk),
		Kode:                    p.DialogmeldingKode,
		Tekst:                   deref(p.DialogmeldingTekst),
	}
	return b, b.Validate()
}

// Handle stores one bestilling. Payloads that can never be stored are logged
// and committed.
func (h *Handler) Handle(ctx context.Context, msg *consumer.Message) error {
	ctx = consumer.WithMessageContext(ctx, msg)

	var payload bestillingPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		h.logger.ErrorContext(ctx, "failed to unmarshal bestilling payload",
			"topic", msg.Topic,
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}

	bestilling, err := payload.toBestilling()
	if err != nil {
		h.logger.ErrorContext(ctx, "invalid bestilling payload",
			"topic", msg.Topic,
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}

	behandler, err := h.behandlere.FindBehandlerByRef(ctx, bestilling.BehandlerRef)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			h.logger.WarnContext(ctx, "bestilling references unknown behandler",
				"bestilling_uuid", bestilling.UUID.String(),
				"behandler_ref", bestilling.BehandlerRef.String(),
			)
			return nil
		}
		return fmt.Errorf("find behandler for bestilling: %w", err)
	}

	created, err := h.store.Create(ctx, behandler.ID, bestilling)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to store bestilling",
			"bestilling_uuid", bestilling.UUID.String(),
			"error", err,
		)
		return fmt.Errorf("store bestilling: %w", err)
	}
	if !created {
		h.logger.InfoContext(ctx, "bestilling already recorded",
			"bestilling_uuid", bestilling.UUID.String(),
		)
		return nil
	}

	h.logger.InfoContext(ctx, "recorded bestilling",
		"bestilling_uuid", bestilling.UUID.String(),
		"behandler_ref", bestilling.BehandlerRef.String(),
		"type", bestilling.Type,
	)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
