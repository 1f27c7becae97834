// Package consumer feeds apprec records from Kafka to the reconciler.
package consumer

import (
	"context"
	"log/slog"

	"isdialogmelding/internal/dialogmelding/apprec/models"
	"isdialogmelding/internal/platform/kafka/consumer"
)

// Processor applies one raw apprec payload.
type Processor interface {
	Process(ctx context.Context, payload []byte) (models.Outcome, error)
}

// Handler commits a record once the reconciler has accepted it. Storage
// failures are returned so the record is redelivered.
type Handler struct {
	processor Processor
	logger    *slog.Logger
}

func NewHandler(processor Processor, logger *slog.Logger) *Handler {
	return &Handler{
		processor: processor,
		logger:    logger,
	}
}

func (h *Handler) Handle(ctx context.Context, msg *consumer.Message) error {
	ctx = consumer.WithMessageContext(ctx, msg)

	outcome, err := h.processor.Process(ctx, msg.Value)
	if err != nil {
		return err
	}
	h.logger.DebugContext(ctx, "apprec record handled",
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
		"outcome", string(outcome),
	)
	return nil
}
