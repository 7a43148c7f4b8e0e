// Package pricing provides the external premium computation behind the
// application's PricingBackend port: a simulated provider client, and a
// resilient decorator that wraps it in a circuit breaker with a
// deterministic fallback.
package pricing

import (
	"math"

	"github.com/ficsure/quote-service/internal/domain"
)

// Rate table applied per document type. The provider and the fallback use
// the same table, so a degraded quote carries the same premium as a fresh
// one and differs only in status.
var rateTable = map[domain.DocumentType]float64{
	domain.DocumentAuto:   0.025,
	domain.DocumentHome:   0.018,
	domain.DocumentLife:   0.012,
	domain.DocumentHealth: 0.020,
	domain.DocumentTravel: 0.008,
}

const defaultRate = 0.02

// RateFor returns the premium rate for a document type.
func RateFor(documentType domain.DocumentType) float64 {
	if rate, ok := rateTable[documentType]; ok {
		return rate
	}
	return defaultRate
}

// Premium computes round(coverage * rate, 2 decimal places).
func Premium(documentType domain.DocumentType, coverageAmount float64) float64 {
	return math.Round(coverageAmount*RateFor(documentType)*100) / 100
}
