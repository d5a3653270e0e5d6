package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/founder-outreach/internal/types"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time           { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func sampleCompany(domain string) *types.Company {
	return &types.Company{
		CompanyName:     "Acme",
		WebsiteURL:      "https://" + domain,
		Domain:          domain,
		RolesFound:      true,
		ResolvedPeople:  []types.Person{{Name: "Jane Doe", Role: "CEO"}},
		EmailCandidates: []string{"jane@" + domain, "jane.doe@" + domain},
		EmailDraft:      "Hi Jane",
	}
}

func TestSQLite_Migrate_Idempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
}

func TestSQLite_Upsert_InsertAndLookup(t *testing.T) {
	st := newTestSQLiteStore(t)
	clock := newClock()
	st.SetClock(clock.Now)
	ctx := context.Background()

	c := sampleCompany("acme.com")
	res, err := st.Upsert(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, UpsertInserted, res)
	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.Equal(t, types.StatusNew, c.Status)
	assert.Equal(t, clock.Now(), c.LastScannedAt)

	got, err := st.Lookup(ctx, "acme.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, "Acme", got.CompanyName)
	assert.True(t, got.RolesFound)
	assert.Equal(t, []types.Person{{Name: "Jane Doe", Role: "CEO"}}, got.ResolvedPeople)
	assert.Equal(t, []string{"jane@acme.com", "jane.doe@acme.com"}, got.EmailCandidates)
	assert.Equal(t, "Hi Jane", got.EmailDraft)
	assert.Equal(t, types.StatusNew, got.Status)
	assert.Equal(t, clock.Now(), got.LastScannedAt)
	assert.Equal(t, clock.Now(), got.CreatedAt)
}

func TestSQLite_Lookup_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.Lookup(context.Background(), "nobody.com")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_Upsert_DedupByDomain(t *testing.T) {
	st := newTestSQLiteStore(t)
	clock := newClock()
	st.SetClock(clock.Now)
	ctx := context.Background()

	first := sampleCompany("acme.com")
	_, err := st.Upsert(ctx, first)
	require.NoError(t, err)

	clock.Advance(31 * 24 * time.Hour)
	second := sampleCompany("acme.com")
	second.CompanyName = "Acme Inc"
	second.ResolvedPeople = nil
	second.EmailCandidates = nil

	res, err := st.Upsert(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, UpsertUpdated, res)
	assert.Equal(t, first.ID, second.ID)

	n, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := st.Lookup(ctx, "acme.com")
	require.NoError(t, err)
	assert.Equal(t, "Acme Inc", got.CompanyName)
	assert.Empty(t, got.ResolvedPeople)
	assert.NotNil(t, got.EmailCandidates)
	assert.Equal(t, clock.Now(), got.LastScannedAt)
	assert.Equal(t, first.CreatedAt, got.CreatedAt)
}

func TestSQLite_Upsert_TimestampNeverMovesBackwards(t *testing.T) {
	st := newTestSQLiteStore(t)
	clock := newClock()
	st.SetClock(clock.Now)
	ctx := context.Background()

	_, err := st.Upsert(ctx, sampleCompany("acme.com"))
	require.NoError(t, err)
	before := clock.Now()

	clock.Advance(-time.Hour)
	c := sampleCompany("acme.com")
	res, err := st.Upsert(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, UpsertUpdated, res)
	assert.Equal(t, before, c.LastScannedAt)
}

func TestSQLite_Upsert_TerminalRecordsUntouched(t *testing.T) {
	for _, status := range []types.Status{types.StatusContacted, types.StatusBlacklisted} {
		t.Run(string(status), func(t *testing.T) {
			st := newTestSQLiteStore(t)
			clock := newClock()
			st.SetClock(clock.Now)
			ctx := context.Background()

			c := sampleCompany("acme.com")
			_, err := st.Upsert(ctx, c)
			require.NoError(t, err)
			require.NoError(t, st.SetStatus(ctx, c.ID, status))

			before, err := st.Lookup(ctx, "acme.com")
			require.NoError(t, err)

			clock.Advance(90 * 24 * time.Hour)
			update := sampleCompany("acme.com")
			update.CompanyName = "Overwritten"
			update.EmailDraft = "new draft"
			res, err := st.Upsert(ctx, update)
			require.NoError(t, err)
			assert.Equal(t, UpsertIgnored, res)

			after, err := st.Lookup(ctx, "acme.com")
			require.NoError(t, err)
			assert.Equal(t, before, after)
			assert.Equal(t, status, after.Status)
		})
	}
}

func TestSQLite_SetStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	c := sampleCompany("acme.com")
	_, err := st.Upsert(ctx, c)
	require.NoError(t, err)

	require.NoError(t, st.SetStatus(ctx, c.ID, types.StatusContacted))
	got, err := st.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusContacted, got.Status)

	contacted, err := IsContacted(ctx, st, "acme.com")
	require.NoError(t, err)
	assert.True(t, contacted)
}

func TestSQLite_SetStatus_Invalid(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	c := sampleCompany("acme.com")
	_, err := st.Upsert(ctx, c)
	require.NoError(t, err)

	err = st.SetStatus(ctx, c.ID, types.Status("Archived"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status")
}

func TestSQLite_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := st.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	err = st.SetStatus(ctx, id, types.StatusBlacklisted)
	assert.ErrorIs(t, err, ErrNotFound)

	err = st.UpdateDraft(ctx, id, "draft")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_UpdateDraft(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	c := sampleCompany("acme.com")
	_, err := st.Upsert(ctx, c)
	require.NoError(t, err)

	require.NoError(t, st.UpdateDraft(ctx, c.ID, "edited by operator"))
	got, err := st.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited by operator", got.EmailDraft)
}

func TestSQLite_ListAndCount(t *testing.T) {
	st := newTestSQLiteStore(t)
	clock := newClock()
	st.SetClock(clock.Now)
	ctx := context.Background()

	domains := []string{"a.com", "b.com", "c.com"}
	ids := make(map[string]uuid.UUID)
	for _, d := range domains {
		c := sampleCompany(d)
		_, err := st.Upsert(ctx, c)
		require.NoError(t, err)
		ids[d] = c.ID
		clock.Advance(time.Minute)
	}
	require.NoError(t, st.SetStatus(ctx, ids["b.com"], types.StatusBlacklisted))

	all, err := st.List(ctx, Page{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c.com", all[0].Domain)
	assert.Equal(t, "b.com", all[1].Domain)
	assert.Equal(t, "a.com", all[2].Domain)

	paged, err := st.List(ctx, Page{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "b.com", paged[0].Domain)

	blacklisted, err := st.List(ctx, Page{Status: types.StatusBlacklisted})
	require.NoError(t, err)
	require.Len(t, blacklisted, 1)
	assert.Equal(t, "b.com", blacklisted[0].Domain)

	n, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSQLite_List_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)

	all, err := st.List(context.Background(), Page{})
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}
