package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/founder-outreach/internal/store"
	"github.com/jonathan/founder-outreach/internal/types"
)

// MaxPageSize caps the limit query parameter of GET /companies.
const MaxPageSize = 500

// DraftRequest is the body of PUT /companies/{id}/draft.
type DraftRequest struct {
	Draft string `json:"draft" validate:"required"`
}

// parseQueryInt parses an integer query parameter with default and max values
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// parseID reads the {id} path value.
func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "Invalid company ID"}
	}
	return id, nil
}

// handleListCompanies lists company records, newest first
func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", store.DefaultPageSize, MaxPageSize)
	if limit == 0 {
		limit = store.DefaultPageSize
	}
	offset := parseQueryInt(r, "offset", 0, 0)

	page := store.Page{Limit: limit, Offset: offset}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := types.ParseStatus(raw)
		if !ok {
			s.failure(w, &ErrValidation{Field: "status", Message: "must be New, Contacted or Blacklisted"}, "list companies")
			return
		}
		page.Status = status
	}

	companies, err := s.records.List(r.Context(), page)
	if err != nil {
		s.failure(w, err, "list companies")
		return
	}
	total, err := s.records.Count(r.Context())
	if err != nil {
		s.failure(w, err, "count companies")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"companies": companies,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

// handleCountCompanies returns the number of stored records
func (s *Server) handleCountCompanies(w http.ResponseWriter, r *http.Request) {
	n, err := s.records.Count(r.Context())
	if err != nil {
		s.failure(w, err, "count companies")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]int{"count": n})
}

// handleGetCompany retrieves a company by ID
func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.failure(w, err, "get company")
		return
	}

	company, err := s.records.Get(r.Context(), id)
	if err != nil {
		s.failure(w, err, "get company")
		return
	}
	s.jsonResponse(w, http.StatusOK, company)
}

// handleUpdateDraft replaces the stored draft with an operator edit
func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.failure(w, err, "update draft")
		return
	}

	var req DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.failure(w, err, "update draft")
		return
	}

	if err := s.records.UpdateDraft(r.Context(), id, req.Draft); err != nil {
		s.failure(w, err, "update draft")
		return
	}
	s.respondWithCompany(w, r, id)
}

// handleBlacklist marks a company Blacklisted; it is never scanned or contacted again
func (s *Server) handleBlacklist(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.failure(w, err, "blacklist company")
		return
	}

	if err := s.records.SetStatus(r.Context(), id, types.StatusBlacklisted); err != nil {
		s.failure(w, err, "blacklist company")
		return
	}
	s.logger.Info("company blacklisted", zap.Stringer("id", id))
	s.respondWithCompany(w, r, id)
}

func (s *Server) respondWithCompany(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	company, err := s.records.Get(r.Context(), id)
	if err != nil {
		s.failure(w, err, "get company")
		return
	}
	s.jsonResponse(w, http.StatusOK, company)
}
