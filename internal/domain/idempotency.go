package domain

import "time"

// IdempotencyRecord captures the outcome of the first effective execution for
// a client-supplied key. Once created the result never changes for the life
// of the record; that is what provides idempotence.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	Quote       *Quote
	CreatedAt   time.Time
}

// Expired reports whether the record is older than ttl at the given instant.
func (r *IdempotencyRecord) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.CreatedAt) > ttl
}
