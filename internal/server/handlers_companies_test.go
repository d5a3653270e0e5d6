package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/founder-outreach/internal/types"
)

type listResponse struct {
	Companies []types.Company `json:"companies"`
	Total     int             `json:"total"`
	Limit     int             `json:"limit"`
	Offset    int             `json:"offset"`
}

func TestListCompanies(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t, "acme.com")
	ts.seed(t, "globex.com")

	w := ts.do(t, http.MethodGet, "/companies", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[listResponse](t, w)
	assert.Len(t, resp.Companies, 2)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 100, resp.Limit)
	assert.Equal(t, 0, resp.Offset)
}

func TestListCompanies_Paging(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t, "acme.com")
	ts.seed(t, "globex.com")
	ts.seed(t, "initech.com")

	w := ts.do(t, http.MethodGet, "/companies?limit=2&offset=2", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[listResponse](t, w)
	assert.Len(t, resp.Companies, 1)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 2, resp.Limit)
}

func TestListCompanies_LimitCapped(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/companies?limit=100000", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, MaxPageSize, decode[listResponse](t, w).Limit)
}

func TestListCompanies_StatusFilter(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t, "acme.com")
	blocked := ts.seed(t, "globex.com")
	require.NoError(t, ts.store.SetStatus(context.Background(), blocked.ID, types.StatusBlacklisted))

	w := ts.do(t, http.MethodGet, "/companies?status=blacklisted", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[listResponse](t, w)
	require.Len(t, resp.Companies, 1)
	assert.Equal(t, "globex.com", resp.Companies[0].Domain)
}

func TestListCompanies_InvalidStatus(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/companies?status=archived", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "status")
}

func TestCountCompanies(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t, "acme.com")

	w := ts.do(t, http.MethodGet, "/companies/count", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[map[string]int](t, w)["count"])
}

func TestGetCompany(t *testing.T) {
	ts := newTestServer(t)
	c := ts.seed(t, "acme.com")

	w := ts.do(t, http.MethodGet, "/companies/"+c.ID.String(), nil)

	require.Equal(t, http.StatusOK, w.Code)
	got := decode[types.Company](t, w)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, "acme.com", got.Domain)
	assert.Equal(t, types.StatusNew, got.Status)
	assert.Equal(t, []types.Person{{Name: "Jane Doe", Role: "CEO"}}, got.ResolvedPeople)
}

func TestGetCompany_InvalidID(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/companies/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "Invalid company ID")
}

func TestGetCompany_NotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/companies/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateDraft(t *testing.T) {
	ts := newTestServer(t)
	c := ts.seed(t, "acme.com")

	w := ts.do(t, http.MethodPut, "/companies/"+c.ID.String()+"/draft", DraftRequest{Draft: "Edited by hand"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Edited by hand", decode[types.Company](t, w).EmailDraft)

	stored, err := ts.store.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited by hand", stored.EmailDraft)
}

func TestUpdateDraft_Empty(t *testing.T) {
	ts := newTestServer(t)
	c := ts.seed(t, "acme.com")

	w := ts.do(t, http.MethodPut, "/companies/"+c.ID.String()+"/draft", DraftRequest{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "Draft")
}

func TestUpdateDraft_NotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPut, "/companies/"+uuid.NewString()+"/draft", DraftRequest{Draft: "x"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBlacklist(t *testing.T) {
	ts := newTestServer(t)
	c := ts.seed(t, "acme.com")

	w := ts.do(t, http.MethodPost, "/companies/"+c.ID.String()+"/blacklist", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.StatusBlacklisted, decode[types.Company](t, w).Status)

	contacted, err := ts.store.Lookup(context.Background(), "acme.com")
	require.NoError(t, err)
	assert.True(t, contacted.Status.Terminal())
}

func TestBlacklist_NotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/companies/"+uuid.NewString()+"/blacklist", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
