package server

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/founder-outreach/internal/mailer"
	"github.com/jonathan/founder-outreach/internal/types"
)

func TestSend_DefaultsToStoredDraft(t *testing.T) {
	ts := newTestServer(t)
	c := ts.seed(t, "acme.com")

	w := ts.do(t, http.MethodPost, "/companies/"+c.ID.String()+"/send", SendRequest{
		To: "jane@acme.com",
		CC: []string{"founders@acme.com"},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[SendResponse](t, w)
	assert.Equal(t, "sent", resp.Status)
	assert.Equal(t, types.StatusContacted, resp.Company.Status)

	require.Len(t, ts.sender.sent, 1)
	msg := ts.sender.sent[0]
	assert.Equal(t, "jane@acme.com", msg.To)
	assert.Equal(t, []string{"founders@acme.com"}, msg.CC)
	assert.Equal(t, "Acme acme.com x Meshach", msg.Subject)
	assert.Equal(t, c.EmailDraft, msg.Body)
	assert.Equal(t, "acme.com", msg.Domain)

	stored, err := ts.store.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusContacted, stored.Status)
}

func TestSend_ExplicitSubjectAndBody(t *testing.T) {
	ts := newTestServer(t)
	c := ts.seed(t, "acme.com")

	w := ts.do(t, http.MethodPost, "/companies/"+c.ID.String()+"/send", SendRequest{
		To:      "jane@acme.com",
		Subject: "Quick question",
		Body:    "Custom body",
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, ts.sender.sent, 1)
	assert.Equal(t, "Quick question", ts.sender.sent[0].Subject)
	assert.Equal(t, "Custom body", ts.sender.sent[0].Body)
}

func TestSend_InvalidRecipient(t *testing.T) {
	ts := newTestServer(t)
	c := ts.seed(t, "acme.com")

	w := ts.do(t, http.MethodPost, "/companies/"+c.ID.String()+"/send", SendRequest{To: "not-an-email"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "To")
	assert.Empty(t, ts.sender.sent)
}

func TestSend_AlreadyContacted(t *testing.T) {
	ts := newTestServer(t)
	c := ts.seed(t, "acme.com")
	require.NoError(t, ts.store.SetStatus(context.Background(), c.ID, types.StatusContacted))

	w := ts.do(t, http.MethodPost, "/companies/"+c.ID.String()+"/send", SendRequest{To: "jane@acme.com"})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, ts.sender.sent)
}

func TestSend_Blacklisted(t *testing.T) {
	ts := newTestServer(t)
	c := ts.seed(t, "acme.com")
	require.NoError(t, ts.store.SetStatus(context.Background(), c.ID, types.StatusBlacklisted))

	w := ts.do(t, http.MethodPost, "/companies/"+c.ID.String()+"/send", SendRequest{To: "jane@acme.com"})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, ts.sender.sent)
}

func TestSend_NotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/companies/"+uuid.NewString()+"/send", SendRequest{To: "jane@acme.com"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSend_TransportFailureKeepsStatus(t *testing.T) {
	ts := newTestServer(t)
	c := ts.seed(t, "acme.com")
	ts.sender.err = &mailer.Error{Message: "failed to send via smtp.example.com:587", Cause: errors.New("connection refused")}

	w := ts.do(t, http.MethodPost, "/companies/"+c.ID.String()+"/send", SendRequest{To: "jane@acme.com"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	stored, err := ts.store.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusNew, stored.Status)
}
