package ledger

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"sweet-shop/internal/domain"
)

var ledgerOps = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "sweetshop_ledger_operations_total", Help: "Purchase/restock outcomes"},
	[]string{"op", "outcome"},
)

func init() { prometheus.MustRegister(ledgerOps) }

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

func observe(op string, err error) { ledgerOps.WithLabelValues(op, outcome(err)).Inc() }
