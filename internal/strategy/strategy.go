// Package strategy implements the ordered acquisition chain: each
// strategy is one self-contained way of getting raw tracker data, and
// the chain walks them cheapest-first until one produces records.
package strategy

import (
	"context"
	"log/slog"

	"coaltracker/internal"
)

// Strategy is one acquisition method. Attempt never propagates
// errors: every internal failure degrades to an empty dataset, logged
// by the strategy itself.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context) internal.Dataset
}

// Chain tries strategies strictly in order and short-circuits on the
// first non-empty result. It never merges across strategies.
type Chain struct {
	strategies []Strategy
	log        *slog.Logger
}

func NewChain(log *slog.Logger, strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies, log: log}
}

// Resolve returns the first non-empty dataset and the name of the
// strategy that produced it. An empty dataset with name "" means
// every strategy came up empty; that is a valid outcome, not a fault.
func (c *Chain) Resolve(ctx context.Context) (internal.Dataset, string) {
	for _, s := range c.strategies {
		c.log.Info("attempting strategy", "strategy", s.Name())
		data := s.Attempt(ctx)
		if len(data) > 0 {
			c.log.Info("strategy produced data", "strategy", s.Name(), "records", len(data))
			return data, s.Name()
		}
		c.log.Info("strategy produced no data", "strategy", s.Name())
	}
	return nil, ""
}
