//go:build integration

package consumer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"isdialogmelding/internal/platform/kafka/consumer"
	"isdialogmelding/pkg/testutil/containers"
)

type ConsumerSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
}

func TestConsumerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ConsumerSuite))
}

func (s *ConsumerSuite) SetupSuite() {
	s.redpanda = containers.GetManager().GetRedpanda(s.T())
}

type collecting struct {
	mu       sync.Mutex
	values   []string
	failOnce bool
	received chan struct{}
}

func (c *collecting) Handle(_ context.Context, msg *consumer.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failOnce {
		c.failOnce = false
		return errors.New("transient failure")
	}
	c.values = append(c.values, string(msg.Value))
	c.received <- struct{}{}
	return nil
}

// TestRetriesUntilHandled verifies a failing record is redelivered to the
// handler rather than skipped.
func (s *ConsumerSuite) TestRetriesUntilHandled() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	topic := "apprec-" + uuid.NewString()
	s.Require().NoError(s.redpanda.CreateTopics(ctx, topic))

	handler := &collecting{failOnce: true, received: make(chan struct{}, 2)}
	router := consumer.NewRouter(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	router.Register(topic, handler)

	c, err := consumer.New(consumer.Config{
		Brokers:      s.redpanda.Brokers,
		GroupID:      "isdialogmelding-test-" + uuid.NewString(),
		Topics:       router.Topics(),
		RetryBackoff: 100 * time.Millisecond,
	}, router, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Require().NoError(err)
	defer c.Close()

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- c.Run(runCtx) }()

	s.Require().NoError(s.redpanda.Produce(ctx, topic, []byte("first")))

	select {
	case <-handler.received:
	case <-ctx.Done():
		s.FailNow("record was not handled")
	}
	stop()
	s.NoError(<-done)

	handler.mu.Lock()
	defer handler.mu.Unlock()
	s.Equal([]string{"first"}, handler.values)
}
