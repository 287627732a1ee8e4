// Package httpapi exposes the retrieval service's HTTP surface: GET
// /health and POST /retrieve. It is built on the standard library's
// net/http.ServeMux rather than a third-party router — see DESIGN.md for
// that justification.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/forge-indexer/forge-indexer/internal/models"
	"github.com/forge-indexer/forge-indexer/internal/retrieval"
)

// Server implements the minimum HTTP surface over a Retriever.
type Server struct {
	retriever *retrieval.Retriever
	version   string
	startedAt time.Time
	statsFn   func() models.PipelineStats
	logger    *slog.Logger
	mux       *http.ServeMux
}

// NewServer builds a Server. statsFn supplies the pipeline counters
// embedded in a successful /retrieve response; it may be nil, in which
// case the zero-value stats are reported.
func NewServer(retriever *retrieval.Retriever, version string, statsFn func() models.PipelineStats, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		retriever: retriever,
		version:   version,
		startedAt: time.Now(),
		statsFn:   statsFn,
		logger:    logger,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /retrieve", s.handleRetrieve)
	s.mux = mux
	return s
}

// ServeHTTP lets Server be used directly as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth answers GET /health. The ?detailed=bool query flag is
// accepted but never changes the response shape.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:        "healthy",
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	})
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := uuid.NewString()

	var req models.RetrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, requestID, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	if req.K <= 0 {
		req.K = 10
	}

	chunks, err := s.retriever.Retrieve(r.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrAuth) {
			s.writeError(w, requestID, http.StatusForbidden, "INVALID_PROOF", err)
			return
		}
		s.writeError(w, requestID, http.StatusInternalServerError, "RETRIEVAL_ERROR", err)
		return
	}

	var stats models.PipelineStats
	if s.statsFn != nil {
		stats = s.statsFn()
	}

	writeJSON(w, http.StatusOK, models.RetrieveResponse{
		RequestID:    requestID,
		Chunks:       chunks,
		TotalFound:   len(chunks),
		ProcessingMs: time.Since(start).Milliseconds(),
		Stats:        stats,
	})
}

func (s *Server) writeError(w http.ResponseWriter, requestID string, status int, code string, err error) {
	s.logger.Error("retrieve failed", "request_id", requestID, "code", code, "error", err)
	writeJSON(w, status, models.ErrorResponse{
		Error:     err.Error(),
		RequestID: requestID,
		Code:      code,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
