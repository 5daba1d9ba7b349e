/*
provider.go - Stock Provider collaborator contract

PURPOSE:
  The calculator does not care where stock values come from. A
  StockProvider supplies the reading for a period end; it may be backed by
  the local interpolation model, a static precomputed table, or a slow
  external calculation engine (seconds per call).

CONTRACT:
  Stock(ctx, periodEnd) returns (nil, nil) when a reading is legitimately
  unavailable - it must NOT return an error for that case. Errors are
  reserved for transport/engine failures, which the bounded-retry wrapper
  converts into a MissingDataError after the retry budget is spent.

RETRY DISCIPLINE:
  "Poll until the value appears" loops do not belong in business logic.
  RetryProvider expresses them as a bounded synchronous retry on this
  interface; the calculator treats each call as synchronous and never
  assumes sub-second latency.

IMPLEMENTATIONS:
  - ModelProvider:  local Equation-16 interpolation (always available)
  - StaticProvider: precomputed readings keyed by period-end date
  - RetryProvider:  bounded-retry decorator over any provider

SEE ALSO:
  - model.go: The interpolation model behind ModelProvider
  - calculator.go: The consumer of this contract
*/
package forecast

import (
	"context"
	"time"
)

// =============================================================================
// STOCK PROVIDER - Collaborator contract
// =============================================================================

// StockReading is one stock observation at a period end.
type StockReading struct {
	At    TimePoint
	Value Amount
}

// StockProvider supplies the stock reading for a period end.
// A nil reading with a nil error means the reading is unavailable; callers
// must tolerate that outcome rather than treat it as a failure.
type StockProvider interface {
	Stock(ctx context.Context, periodEnd TimePoint) (*StockReading, error)
}

// =============================================================================
// MODEL PROVIDER - Local interpolation
// =============================================================================

// ModelProvider backs the provider contract with the local stock model.
type ModelProvider struct {
	Model *StockModel
}

func NewModelProvider(model *StockModel) *ModelProvider {
	return &ModelProvider{Model: model}
}

func (p *ModelProvider) Stock(ctx context.Context, periodEnd TimePoint) (*StockReading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &StockReading{At: periodEnd, Value: p.Model.StockAt(periodEnd)}, nil
}

// =============================================================================
// STATIC PROVIDER - Precomputed readings
// =============================================================================

// StaticProvider serves precomputed readings keyed by period-end date.
// Dates with no entry yield a nil reading, which the calculator records as
// a null issuance for the period.
type StaticProvider struct {
	readings map[string]Amount
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{readings: make(map[string]Amount)}
}

func (p *StaticProvider) Set(at TimePoint, value Amount) {
	p.readings[at.String()] = value
}

func (p *StaticProvider) Stock(ctx context.Context, periodEnd TimePoint) (*StockReading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := p.readings[periodEnd.String()]
	if !ok {
		return nil, nil
	}
	return &StockReading{At: periodEnd, Value: v}, nil
}

// =============================================================================
// RETRY PROVIDER - Bounded retries over a flaky backend
// =============================================================================

// RetryProvider retries a failing provider a bounded number of times, then
// reports a MissingDataError. An unavailable reading (nil, nil) from the
// inner provider is returned as-is without retrying.
type RetryProvider struct {
	Inner    StockProvider
	Attempts int           // total tries; values < 1 behave as 1
	Backoff  time.Duration // pause between tries, 0 for none
}

func NewRetryProvider(inner StockProvider, attempts int, backoff time.Duration) *RetryProvider {
	return &RetryProvider{Inner: inner, Attempts: attempts, Backoff: backoff}
}

func (p *RetryProvider) Stock(ctx context.Context, periodEnd TimePoint) (*StockReading, error) {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var last error
	for try := 0; try < attempts; try++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		reading, err := p.Inner.Stock(ctx, periodEnd)
		if err == nil {
			return reading, nil
		}
		last = err

		if p.Backoff > 0 && try < attempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(p.Backoff):
			}
		}
	}

	return nil, &MissingDataError{PeriodEnd: periodEnd, Attempts: attempts, Last: last}
}
