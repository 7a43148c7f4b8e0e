// Package events implements the downstream event sink. The reference wiring
// logs QuoteIssued facts; the bus wire format is owned by the consumer and
// treated as a black box here.
package events

import (
	"context"
	"log/slog"

	"github.com/ficsure/quote-service/internal/application"
)

// Publisher drains QuoteIssued events off a buffered channel on a background
// goroutine. Enqueueing never blocks the request path: when the buffer is
// full the event is dropped with a warning. Delivery failure is outside the
// correctness contract of request handling.
type Publisher struct {
	queue  chan application.QuoteIssuedEvent
	logger *slog.Logger
}

func NewPublisher(bufferSize int, logger *slog.Logger) *Publisher {
	return &Publisher{
		queue:  make(chan application.QuoteIssuedEvent, bufferSize),
		logger: logger,
	}
}

func (p *Publisher) PublishQuoteIssued(event application.QuoteIssuedEvent) {
	select {
	case p.queue <- event:
	default:
		p.logger.Warn("event queue full, dropping QuoteIssued event",
			"quote_id", event.QuoteID,
		)
	}
}

// Start consumes the queue until ctx is cancelled. Run it on its own
// goroutine from main.
func (p *Publisher) Start(ctx context.Context) {
	p.logger.Info("event publisher started", "buffer", cap(p.queue))
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("event publisher stopping")
			return
		case event := <-p.queue:
			p.deliver(event)
		}
	}
}

func (p *Publisher) deliver(event application.QuoteIssuedEvent) {
	// Stand-in for the real bus producer.
	p.logger.Info("QuoteIssued",
		"quote_id", event.QuoteID,
		"document_type", event.DocumentType,
		"premium", event.Premium,
		"status", event.Status,
		"currency", event.Currency,
		"issued_at", event.IssuedAt,
	)
}

var _ application.EventPublisher = (*Publisher)(nil)
