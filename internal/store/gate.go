package store

import (
	"context"
	"time"

	"github.com/jonathan/founder-outreach/internal/types"
)

// DefaultFreshnessWindow is how long a scan stays fresh before re-enrichment.
const DefaultFreshnessWindow = 30 * 24 * time.Hour

// Skip reasons reported by Gate.Check.
const (
	ReasonContacted   = "contacted"
	ReasonBlacklisted = "blacklisted"
	ReasonFresh       = "recently scanned"
)

// Decision is the outcome of a gate check.
type Decision struct {
	Proceed  bool
	Reason   string
	Existing *types.Company
}

// Gate decides whether a domain should be enriched in this run.
type Gate struct {
	store  Lookuper
	window time.Duration
	now    Clock
}

// NewGate creates a Gate. A non-positive window uses DefaultFreshnessWindow.
func NewGate(store Lookuper, window time.Duration) *Gate {
	if window <= 0 {
		window = DefaultFreshnessWindow
	}
	return &Gate{store: store, window: window, now: utcNow}
}

// SetClock replaces the time source used to judge freshness.
func (g *Gate) SetClock(now Clock) {
	g.now = now
}

// Window returns the freshness window.
func (g *Gate) Window() time.Duration {
	return g.window
}

// Check consults the store before any enrichment work. Terminal records are
// always skipped; non-terminal records are skipped while their last scan is
// younger than the freshness window.
func (g *Gate) Check(ctx context.Context, domain string) (Decision, error) {
	existing, err := g.store.Lookup(ctx, domain)
	if err != nil {
		return Decision{}, err
	}
	if existing == nil {
		return Decision{Proceed: true}, nil
	}

	switch existing.Status {
	case types.StatusContacted:
		return Decision{Reason: ReasonContacted, Existing: existing}, nil
	case types.StatusBlacklisted:
		return Decision{Reason: ReasonBlacklisted, Existing: existing}, nil
	}

	if g.now().Sub(existing.LastScannedAt) < g.window {
		return Decision{Reason: ReasonFresh, Existing: existing}, nil
	}
	return Decision{Proceed: true, Existing: existing}, nil
}
