package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// MaxScanLimit caps the limit accepted by POST /scan.
const MaxScanLimit = 50

// ScanRequest is the optional body of POST /scan.
type ScanRequest struct {
	Limit int `json:"limit" validate:"gte=0,lte=50"`
}

// handleScan runs one discovery batch synchronously and returns its summary.
// Only one scan runs at a time.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.failure(w, err, "scan")
		return
	}

	if !s.scanMu.TryLock() {
		s.failure(w, ErrScanInProgress, "scan")
		return
	}
	defer s.scanMu.Unlock()

	s.logger.Info("scan requested", zap.Int("limit", req.Limit))
	summary, err := s.scanner.Run(r.Context(), req.Limit)
	if err != nil {
		if r.Context().Err() != nil {
			s.logger.Warn("scan canceled by client", zap.Error(err))
			return
		}
		s.failure(w, err, "scan failed")
		return
	}
	s.jsonResponse(w, http.StatusOK, summary)
}
