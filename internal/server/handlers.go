package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"startiq/internal/core"
)

// HealthResponse is returned by /health
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// StartupInsightResponse is returned by /analyse-with-ai
type StartupInsightResponse struct {
	Success   bool     `json:"success"`
	StartupID string   `json:"startupID"`
	Insights  string   `json:"insights"`
	RedFlags  []string `json:"redFlags"`
	Cached    bool     `json:"cached"`
}

// InvestorInsightResponse is returned by /analyse-investor. CreatedAt is
// only reported for cached records.
type InvestorInsightResponse struct {
	Success    bool       `json:"success"`
	InvestorID string     `json:"investorID"`
	Insights   string     `json:"insights"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	Cached     bool       `json:"cached"`
}

// DealNoteResponse is returned by /generate-deal-note
type DealNoteResponse struct {
	Success  bool              `json:"success"`
	Cached   bool              `json:"cached"`
	DealNote core.DealNoteView `json:"dealNote"`
}

// ScoreResponse is returned by /score-startup
type ScoreResponse struct {
	Success   bool   `json:"success"`
	StartupID string `json:"startupID"`
	Score     *int   `json:"score"`
}

// RegisterResponse is returned by /users/register
type RegisterResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every error
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("StartIQ backend running..."))
}

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if err := s.db.Ping(r.Context()); err != nil {
		s.log.Warn("Health check failed", "error", err.Error())
		checks["store"] = "error"
		s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Checks: checks,
		})
		return
	}

	checks["store"] = "ok"
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Checks: checks,
	})
}

// handleAnalyseStartup handles POST /analyse-with-ai
func (s *Server) handleAnalyseStartup(w http.ResponseWriter, r *http.Request) {
	var req analyseStartupRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		s.respondError(w, r, err, "Failed to analyze startup")
		return
	}

	result, err := s.insights.StartupInsight(r.Context(), req.StartupID)
	if err != nil {
		s.respondError(w, r, err, "Failed to analyze startup")
		return
	}

	s.respondJSON(w, http.StatusOK, StartupInsightResponse{
		Success:   true,
		StartupID: result.StartupID,
		Insights:  result.Insights,
		RedFlags:  result.RedFlags,
		Cached:    result.Cached,
	})
}

// handleAnalyseInvestor handles POST /analyse-investor
func (s *Server) handleAnalyseInvestor(w http.ResponseWriter, r *http.Request) {
	var req analyseInvestorRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		s.respondError(w, r, err, "Failed to analyze investor")
		return
	}

	result, err := s.insights.InvestorInsight(r.Context(), req.InvestorID)
	if err != nil {
		s.respondError(w, r, err, "Failed to analyze investor")
		return
	}

	resp := InvestorInsightResponse{
		Success:    true,
		InvestorID: result.InvestorID,
		Insights:   result.Insights,
		Cached:     result.Cached,
	}
	if result.Cached {
		createdAt := result.CreatedAt
		resp.CreatedAt = &createdAt
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleGenerateDealNote handles POST /generate-deal-note
func (s *Server) handleGenerateDealNote(w http.ResponseWriter, r *http.Request) {
	var req dealNoteRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		s.respondError(w, r, err, "Failed to generate deal note")
		return
	}

	result, err := s.dealNotes.Generate(r.Context(), req.InvestorUID, req.StartupID)
	if err != nil {
		s.respondError(w, r, err, "Failed to generate deal note")
		return
	}

	s.respondJSON(w, http.StatusOK, DealNoteResponse{
		Success:  true,
		Cached:   result.Cached,
		DealNote: result.DealNote,
	})
}

// handleScoreStartup handles POST /score-startup
func (s *Server) handleScoreStartup(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		s.respondError(w, r, err, "Failed to score startup")
		return
	}

	result, err := s.scores.ScoreStartup(r.Context(), req.StartupID)
	if err != nil {
		s.respondError(w, r, err, "Failed to score startup")
		return
	}

	s.respondJSON(w, http.StatusOK, ScoreResponse{
		Success:   true,
		StartupID: result.StartupID,
		Score:     result.Score,
	})
}

// handleRegister handles POST /users/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		s.respondError(w, r, err, "Internal server error")
		return
	}

	result, err := s.users.Register(r.Context(), req.UID, req.Role, req.Data)
	if err != nil {
		s.respondError(w, r, err, "Internal server error")
		return
	}

	s.respondJSON(w, http.StatusOK, RegisterResponse{Message: result.Message})
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError maps err onto a status code. Unclassified failures are logged
// and reported with the operation's generic message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, message string) {
	var notFound *core.NotFoundError
	var invalid *core.ValidationError

	switch {
	case errors.As(err, &notFound):
		s.respondJSON(w, http.StatusNotFound, ErrorResponse{Error: notFound.Message()})
	case errors.As(err, &invalid):
		s.respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: invalid.Message})
	default:
		s.log.Error(message, "error", err.Error(), "path", r.URL.Path)
		s.respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: message})
	}
}
