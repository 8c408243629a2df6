// Package simulate emulates remote calls locally: every call is a deferred
// computation that completes after an injected delay with either the work's
// outcome or an injected fault.
//
// Calls cannot be cancelled. Wait honors its context only to stop waiting;
// the work itself always runs to completion, so a caller that gives up on
// an add still gets the cart persisted.
package simulate

import (
	"context"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/logging"
)

// Latency is the delay profile applied to simulated calls.
type Latency struct {
	Auth         time.Duration
	Read         time.Duration
	Mutate       time.Duration
	Remove       time.Duration
	CatalogGet   time.Duration
	CatalogList  time.Duration
	CatalogWrite time.Duration
}

// DefaultLatency mirrors a slow backend: authentication is the slowest call,
// reads and removals the fastest.
func DefaultLatency() Latency {
	return Latency{
		Auth:         1000 * time.Millisecond,
		Read:         200 * time.Millisecond,
		Mutate:       300 * time.Millisecond,
		Remove:       200 * time.Millisecond,
		CatalogGet:   300 * time.Millisecond,
		CatalogList:  500 * time.Millisecond,
		CatalogWrite: 800 * time.Millisecond,
	}
}

// FaultInjector decides whether the simulated call op fails. A non-nil
// error is delivered to the caller instead of running the work.
type FaultInjector func(op string) error

// FailOps fails every call whose op is listed.
func FailOps(err error, ops ...string) FaultInjector {
	return func(op string) error {
		if slices.Contains(ops, op) {
			return err
		}
		return nil
	}
}

// RandomFaults fails each call with probability rate using
// common.ErrSimulatedFailure.
func RandomFaults(rate float64) FaultInjector {
	if rate <= 0 {
		return nil
	}
	return func(string) error {
		if rand.Float64() < rate {
			return common.ErrSimulatedFailure
		}
		return nil
	}
}

type Simulator struct {
	latency Latency
	fault   FaultInjector
	log     logging.Logger
}

type Option func(*Simulator)

func WithFaultInjector(f FaultInjector) Option {
	return func(s *Simulator) { s.fault = f }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.log = l
		}
	}
}

func New(latency Latency, opts ...Option) *Simulator {
	s := &Simulator{latency: latency, log: logging.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Latency returns the configured profile. A nil Simulator has zero latency.
func (s *Simulator) Latency() Latency {
	if s == nil {
		return Latency{}
	}
	return s.latency
}

// Call is a pending simulated call. Its outcome is set exactly once.
type Call[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Go starts op: after delay, work runs unless the fault injector fails the
// call first.
func Go[T any](s *Simulator, op string, delay time.Duration, work func() (T, error)) *Call[T] {
	c := &Call[T]{done: make(chan struct{})}

	go func() {
		defer close(c.done)

		if delay > 0 {
			t := time.NewTimer(delay)
			<-t.C
		}

		if s != nil && s.fault != nil {
			if err := s.fault(op); err != nil {
				s.log.Warn(context.Background(), "simulated call failed", "op", op, "error", err)
				c.err = err
				return
			}
		}

		c.value, c.err = work()
	}()

	return c
}

// Done is closed once the outcome is available.
func (c *Call[T]) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the call completes or ctx is done.
func (c *Call[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-c.done:
		return c.value, c.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Do is Go followed by Wait.
func Do[T any](ctx context.Context, s *Simulator, op string, delay time.Duration, work func() (T, error)) (T, error) {
	return Go(s, op, delay, work).Wait(ctx)
}
