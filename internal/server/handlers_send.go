package server

import (
	"encoding/json"
	"net/http"

	"github.com/jonathan/founder-outreach/internal/mailer"
	"github.com/jonathan/founder-outreach/internal/types"
)

// SendRequest is the body of POST /companies/{id}/send. Subject and body
// default to the generated subject and the stored draft.
type SendRequest struct {
	To          string   `json:"to" validate:"required,email"`
	CC          []string `json:"cc,omitempty" validate:"omitempty,dive,email"`
	Subject     string   `json:"subject,omitempty"`
	Body        string   `json:"body,omitempty"`
	FounderName string   `json:"founder_name,omitempty"`
}

// SendResponse reports a confirmed send.
type SendResponse struct {
	Status  string         `json:"status"`
	Company *types.Company `json:"company"`
}

// handleSend sends the outreach email and marks the company Contacted.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.failure(w, err, "send")
		return
	}

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.failure(w, err, "send")
		return
	}

	company, err := s.records.Get(r.Context(), id)
	if err != nil {
		s.failure(w, err, "send")
		return
	}

	msg := mailer.Message{
		To:          req.To,
		CC:          req.CC,
		Subject:     req.Subject,
		Body:        req.Body,
		CompanyName: company.CompanyName,
		Domain:      company.Domain,
		FounderName: req.FounderName,
	}
	if msg.Body == "" {
		msg.Body = company.EmailDraft
	}
	if msg.Subject == "" && s.composer != nil {
		msg.Subject = s.composer.Subject(company.CompanyName)
	}

	if err := s.mailer.Send(r.Context(), id, msg); err != nil {
		s.failure(w, err, "send failed")
		return
	}
	s.respondSent(w, r, company)
}

func (s *Server) respondSent(w http.ResponseWriter, r *http.Request, fallback *types.Company) {
	company, err := s.records.Get(r.Context(), fallback.ID)
	if err != nil {
		fallback.Status = types.StatusContacted
		company = fallback
	}
	s.jsonResponse(w, http.StatusOK, SendResponse{Status: "sent", Company: company})
}
