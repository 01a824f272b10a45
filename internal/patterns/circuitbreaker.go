package patterns

import (
	"time"

	"github.com/mangoshop/shopctl/internal/metrics"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// CircuitBreakerWrapper wraps gobreaker with metrics. One breaker
// guards the whole shop API backend; it never retries or deduplicates
// requests, it only short-circuits once the backend is known down.
type CircuitBreakerWrapper struct {
	*gobreaker.CircuitBreaker
	name string
}

// NewCircuitBreaker creates a new circuit breaker with Prometheus metrics
func NewCircuitBreaker(name string) *CircuitBreakerWrapper {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,                // Max requests allowed in half-open state
		Interval:    15 * time.Second, // Window to track failures
		Timeout:     30 * time.Second, // Time to wait before half-open
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			// Trip if 60% or more requests fail and at least 3 requests have been made
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(cbName string, from gobreaker.State, to gobreaker.State) {
			state := float64(0)
			switch to {
			case gobreaker.StateOpen:
				state = 1
			case gobreaker.StateHalfOpen:
				state = 2
			case gobreaker.StateClosed:
				state = 0
			}
			metrics.CircuitBreakerState.WithLabelValues(cbName).Set(state)

			log.WithFields(log.Fields{
				"circuit": cbName,
				"from":    from.String(),
				"to":      to.String(),
			}).Info("Circuit breaker state changed")
		},
	})

	wrapper := &CircuitBreakerWrapper{
		CircuitBreaker: cb,
		name:           name,
	}

	// Initialize the metric with the current state (closed by default)
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return wrapper
}

// Execute runs a function through the circuit breaker with metrics
func (cb *CircuitBreakerWrapper) Execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cb.CircuitBreaker.Execute(fn)

	if err != nil {
		metrics.CircuitBreakerFailures.WithLabelValues(cb.name).Inc()
	}

	return result, err
}

// Open reports whether err means the breaker refused the call outright.
func Open(err error) bool {
	return err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests
}

// GetState returns the current state of the circuit breaker
func (cb *CircuitBreakerWrapper) GetState() string {
	return cb.State().String()
}
