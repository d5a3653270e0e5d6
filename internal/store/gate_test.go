package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/founder-outreach/internal/types"
)

type stubLookuper struct {
	company *types.Company
	err     error
}

func (s stubLookuper) Lookup(context.Context, string) (*types.Company, error) {
	return s.company, s.err
}

func TestGate_UnknownDomainProceeds(t *testing.T) {
	g := NewGate(stubLookuper{}, 0)

	d, err := g.Check(context.Background(), "acme.com")
	require.NoError(t, err)
	assert.True(t, d.Proceed)
	assert.Nil(t, d.Existing)
	assert.Equal(t, DefaultFreshnessWindow, g.Window())
}

func TestGate_TerminalStatusesSkip(t *testing.T) {
	scanned := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		status types.Status
		reason string
	}{
		{types.StatusContacted, ReasonContacted},
		{types.StatusBlacklisted, ReasonBlacklisted},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			existing := &types.Company{Domain: "acme.com", Status: tt.status, LastScannedAt: scanned}
			g := NewGate(stubLookuper{company: existing}, 0)

			d, err := g.Check(context.Background(), "acme.com")
			require.NoError(t, err)
			assert.False(t, d.Proceed)
			assert.Equal(t, tt.reason, d.Reason)
			assert.Same(t, existing, d.Existing)
		})
	}
}

func TestGate_Staleness(t *testing.T) {
	scanned := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	existing := &types.Company{Domain: "acme.com", Status: types.StatusNew, LastScannedAt: scanned}
	g := NewGate(stubLookuper{company: existing}, 0)
	ctx := context.Background()

	g.SetClock(func() time.Time { return scanned.Add(29 * 24 * time.Hour) })
	d, err := g.Check(ctx, "acme.com")
	require.NoError(t, err)
	assert.False(t, d.Proceed)
	assert.Equal(t, ReasonFresh, d.Reason)

	g.SetClock(func() time.Time { return scanned.Add(31 * 24 * time.Hour) })
	d, err = g.Check(ctx, "acme.com")
	require.NoError(t, err)
	assert.True(t, d.Proceed)
	assert.Same(t, existing, d.Existing)
}

func TestGate_CustomWindow(t *testing.T) {
	scanned := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	existing := &types.Company{Domain: "acme.com", Status: types.StatusNew, LastScannedAt: scanned}
	g := NewGate(stubLookuper{company: existing}, time.Hour)
	g.SetClock(func() time.Time { return scanned.Add(2 * time.Hour) })

	d, err := g.Check(context.Background(), "acme.com")
	require.NoError(t, err)
	assert.True(t, d.Proceed)
}

func TestGate_LookupError(t *testing.T) {
	g := NewGate(stubLookuper{err: errors.New("db down")}, 0)

	_, err := g.Check(context.Background(), "acme.com")
	require.Error(t, err)
}

func TestGate_WithSQLiteStore(t *testing.T) {
	st := newTestSQLiteStore(t)
	clock := newClock()
	st.SetClock(clock.Now)
	ctx := context.Background()

	c := sampleCompany("acme.com")
	_, err := st.Upsert(ctx, c)
	require.NoError(t, err)

	g := NewGate(st, 0)
	g.SetClock(func() time.Time { return clock.Now().Add(29 * 24 * time.Hour) })
	d, err := g.Check(ctx, "acme.com")
	require.NoError(t, err)
	assert.False(t, d.Proceed)

	g.SetClock(func() time.Time { return clock.Now().Add(31 * 24 * time.Hour) })
	d, err = g.Check(ctx, "acme.com")
	require.NoError(t, err)
	assert.True(t, d.Proceed)

	got, err := st.Lookup(ctx, "acme.com")
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), got.LastScannedAt)
}
