package consumer

import (
	"context"
	"log/slog"
	"sort"
)

// Router is a Handler that picks the topic handler for each message, so one
// consumer group can serve every topic the service reads.
type Router struct {
	byTopic  map[string]Handler
	fallback Handler
	logger   *slog.Logger
}

// NewRouter returns an empty Router. fallback, when non-nil, receives messages
// on topics nobody registered.
func NewRouter(logger *slog.Logger, fallback Handler) *Router {
	return &Router{byTopic: map[string]Handler{}, fallback: fallback, logger: logger}
}

// Register binds handler to topic, replacing any earlier binding.
func (r *Router) Register(topic string, handler Handler) {
	r.byTopic[topic] = handler
}

// Topics returns the registered topics in sorted order; pass them to Config.Topics.
func (r *Router) Topics() []string {
	out := make([]string, 0, len(r.byTopic))
	for topic := range r.byTopic {
		out = append(out, topic)
	}
	sort.Strings(out)
	return out
}

func (r *Router) Handle(ctx context.Context, msg *Message) error {
	if h, ok := r.byTopic[msg.Topic]; ok {
		return h.Handle(ctx, msg)
	}
	if r.fallback != nil {
		return r.fallback.Handle(ctx, msg)
	}
	// unroutable records are committed so the partition keeps moving
	r.logger.WarnContext(ctx, "dropping message on unregistered topic",
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
	)
	return nil
}
