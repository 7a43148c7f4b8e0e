package events

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ficsure/quote-service/internal/application"
	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisher_NeverBlocksWhenFull(t *testing.T) {
	p := NewPublisher(1, discardLogger())

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Second publish overflows the buffer and must drop, not block.
		p.PublishQuoteIssued(application.QuoteIssuedEvent{QuoteID: "a"})
		p.PublishQuoteIssued(application.QuoteIssuedEvent{QuoteID: "b"})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full queue")
	}

	assert.Equal(t, 1, len(p.queue))
}

func TestPublisher_DrainsQueue(t *testing.T) {
	p := NewPublisher(8, discardLogger())
	for i := 0; i < 5; i++ {
		p.PublishQuoteIssued(application.QuoteIssuedEvent{QuoteID: "q"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	go p.Start(ctx)

	assert.Eventually(t, func() bool {
		return len(p.queue) == 0
	}, time.Second, 10*time.Millisecond)

	cancel()
}
