// Package resilience guards outbound calls to the record store and the
// notification bus with a circuit breaker per operation and an optional
// bounded retry.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrorClassification tells the executor how to treat a failure.
// RetryAfter carries a server-provided pause, when there is one.
type ErrorClassification struct {
	Retryable     bool
	RecordFailure bool
	RetryAfter    time.Duration
}

type ErrorClassifier func(err error) ErrorClassification

// StateObserver is told about every breaker transition.
type StateObserver interface {
	ObserveBreakerState(operation, state string)
}

type Option func(*Executor)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithStateObserver(observer StateObserver) Option {
	return func(e *Executor) { e.observer = observer }
}

type Executor struct {
	cfg      Config
	logger   *slog.Logger
	observer StateObserver

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[struct{}]
}

func NewExecutor(cfg Config, opts ...Option) *Executor {
	e := &Executor{
		cfg:      cfg.normalize(),
		logger:   slog.Default(),
		breakers: make(map[string]*gobreaker.CircuitBreaker[struct{}]),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs fn under the breaker named by operation. With the breaker
// disabled only the retry policy applies.
func (e *Executor) Execute(ctx context.Context, operation string, fn func(context.Context) error, classifier ErrorClassifier) error {
	if fn == nil {
		return fmt.Errorf("resilience: %s: nil call", operation)
	}
	operation = strings.TrimSpace(operation)
	if operation == "" {
		operation = "unnamed"
	}
	if classifier == nil {
		classifier = countEveryFailure
	}

	attempt := func() error { return e.withRetry(ctx, operation, fn, classifier) }
	if !e.cfg.Breaker.Enabled {
		return attempt()
	}
	_, err := e.breaker(operation, classifier).Execute(func() (struct{}, error) {
		return struct{}{}, attempt()
	})
	return err
}

func (e *Executor) withRetry(ctx context.Context, operation string, fn func(context.Context) error, classifier ErrorClassifier) error {
	policy := e.cfg.Retry
	var err error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err != nil {
				return err
			}
			return ctxErr
		}
		if err = fn(ctx); err == nil {
			return nil
		}

		class := classifier(err)
		if !class.Retryable || attempt >= policy.MaxAttempts {
			return err
		}

		wait := policy.delay(attempt, class.RetryAfter)
		e.logger.Warn("store_call_retry",
			"operation", operation,
			"attempt", attempt,
			"max_attempts", policy.MaxAttempts,
			"wait_ms", wait.Milliseconds(),
			"error", err,
		)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

func (e *Executor) breaker(operation string, classifier ErrorClassifier) *gobreaker.CircuitBreaker[struct{}] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cb, ok := e.breakers[operation]; ok {
		return cb
	}

	policy := e.cfg.Breaker
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        operation,
		MaxRequests: policy.HalfOpenMaxCalls,
		Timeout:     policy.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < policy.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= policy.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !classifier(err).RecordFailure
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			e.logger.Warn("circuit_breaker_state_change", "operation", name, "from", from.String(), "to", to.String())
			if e.observer != nil {
				e.observer.ObserveBreakerState(name, to.String())
			}
		},
	})
	e.breakers[operation] = cb
	if e.observer != nil {
		e.observer.ObserveBreakerState(operation, gobreaker.StateClosed.String())
	}
	return cb
}

// BreakerStates reports the state of every breaker created so far, keyed by
// operation.
func (e *Executor) BreakerStates() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()

	states := make(map[string]string, len(e.breakers))
	for operation, cb := range e.breakers {
		states[operation] = cb.State().String()
	}
	return states
}

// IsCircuitOpen reports whether err was returned without calling out because
// the breaker rejected the call.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func countEveryFailure(error) ErrorClassification {
	return ErrorClassification{RecordFailure: true}
}
