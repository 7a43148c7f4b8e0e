// Package metrics implements the metrics collaborator as an in-process
// registry with a JSON snapshot, exposed by the REST layer at /metrics.
package metrics

import (
	"fmt"
	"sync"

	"github.com/ficsure/quote-service/internal/application"
	"github.com/ficsure/quote-service/internal/domain"
)

// Registry records counters and the breaker state gauge. Safe for
// concurrent use. Recording never fails and never blocks request handling.
type Registry struct {
	mu              sync.Mutex
	quotesCreated   map[string]uint64 // keyed by "status:documentType"
	idempotencyHits uint64
	breakerState    string
}

func NewRegistry() *Registry {
	return &Registry{
		quotesCreated: make(map[string]uint64),
		breakerState:  "closed",
	}
}

func (r *Registry) QuoteCreated(status domain.QuoteStatus, documentType domain.DocumentType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quotesCreated[fmt.Sprintf("%s:%s", status, documentType)]++
}

func (r *Registry) IdempotencyHit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idempotencyHits++
}

func (r *Registry) BreakerStateChanged(state string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.breakerState = state
}

// Snapshot is a point-in-time copy of all recorded values.
type Snapshot struct {
	QuotesCreated   map[string]uint64 `json:"quotes_created"`
	IdempotencyHits uint64            `json:"idempotency_hits"`
	BreakerState    string            `json:"breaker_state"`
}

func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := make(map[string]uint64, len(r.quotesCreated))
	for k, v := range r.quotesCreated {
		created[k] = v
	}
	return Snapshot{
		QuotesCreated:   created,
		IdempotencyHits: r.idempotencyHits,
		BreakerState:    r.breakerState,
	}
}

var _ application.MetricsRecorder = (*Registry)(nil)
