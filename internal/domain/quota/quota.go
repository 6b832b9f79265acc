// Package quota tracks per-client token budgets over fixed windows.
package quota

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrExceeded = errors.New("token budget exhausted")

const (
	ServiceNegotiation = "negotiation"
	ServiceSalary      = "salary"

	// SalaryCost is the flat charge of one salary analysis.
	SalaryCost = 5000
)

type Decision struct {
	Allowed   bool
	Used      int64
	Remaining int64
	ResetAt   time.Time
}

// Store atomically charges tokens against key. A window starts on first use
// and the counter resets once it has passed. A refused charge is not recorded.
type Store interface {
	Consume(ctx context.Context, key string, tokens, limit int64, window time.Duration) (Decision, error)
}

// EstimateTokens approximates the token count of chars characters.
func EstimateTokens(chars int) int64 {
	return int64(math.Ceil(float64(chars) / 4))
}

func Key(client, service string) string { return client + ":" + service }

// ExceededError reports when the budget frees up again.
type ExceededError struct {
	ResetAt time.Time
	Now     time.Time
}

func (e *ExceededError) Error() string {
	mins := int(math.Ceil(e.ResetAt.Sub(e.Now).Minutes()))
	if mins < 1 {
		mins = 1
	}
	return fmt.Sprintf("limit reached, try again in ~%d min", mins)
}

func (e *ExceededError) Unwrap() error { return ErrExceeded }

// Budget is one service's token allowance. A nil Budget allows everything,
// which is how a disabled quota is wired.
type Budget struct {
	Service string
	Store   Store
	Limit   int64
	Window  time.Duration
	Now     func() time.Time
}

// Charge consumes tokens for client. Over the limit it returns an
// *ExceededError.
func (b *Budget) Charge(ctx context.Context, client string, tokens int64) (Decision, error) {
	if b == nil {
		return Decision{Allowed: true}, nil
	}
	d, err := b.Store.Consume(ctx, Key(client, b.Service), tokens, b.Limit, b.Window)
	if err != nil {
		return d, fmt.Errorf("quota store: %w", err)
	}
	if !d.Allowed {
		now := time.Now
		if b.Now != nil {
			now = b.Now
		}
		return d, &ExceededError{ResetAt: d.ResetAt, Now: now()}
	}
	return d, nil
}
