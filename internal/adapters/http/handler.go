package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/PabloGalante/vibe-agent/internal/app/chat"
	"github.com/PabloGalante/vibe-agent/internal/app/report"
	"github.com/PabloGalante/vibe-agent/internal/domain"
	"github.com/PabloGalante/vibe-agent/internal/observability"
	"github.com/PabloGalante/vibe-agent/internal/workers"
)

const maxBodyBytes = 1 << 20

type Server struct {
	chat    *chat.Service
	reports *report.Service
	// turns serializes ProcessTurn per session; nil runs turns inline.
	turns *workers.WorkerPool
}

// NewServer builds the API handler. apiKey, when non-empty, is required in
// the X-API-Key header of every route except /healthz and /metrics.
func NewServer(chatSvc *chat.Service, reports *report.Service, turns *workers.WorkerPool, apiKey string) http.Handler {
	s := &Server{chat: chatSvc, reports: reports, turns: turns}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", observability.MetricsHandler())

	mux.HandleFunc("POST /chat/start", s.handleStartChat)
	mux.HandleFunc("POST /chat", s.handleChatTurn)
	mux.HandleFunc("GET /chat/{session_id}/escalation", s.handleEscalationScore)
	mux.HandleFunc("DELETE /chat/{session_id}", s.handleAbandonChat)

	mux.HandleFunc("GET /employees/{id}/history", s.handleHistory)
	mux.HandleFunc("GET /employees/{id}/chat-dates", s.handleChatDates)
	mux.HandleFunc("GET /employees/{id}/report", s.handleReport)
	mux.HandleFunc("POST /employees/{id}/escalation/clear", s.handleClearEscalation)

	mux.HandleFunc("GET /hr/escalations", s.handleEscalations)
	mux.HandleFunc("GET /hr/due", s.handleDue)

	return chainMiddlewares(mux,
		withAPIKey(apiKey),
		withCORS,
		withLogging,
		withRequestID,
	)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type startChatRequest struct {
	EmployeeID string `json:"employee_id"`
}

type startChatResponse struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type chatTurnRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// chatTurnResponse carries either the next question or the final analysis
// with its closing message.
type chatTurnResponse struct {
	SessionID     string                `json:"session_id"`
	Question      string                `json:"question,omitempty"`
	FinalAnalysis *domain.FinalAnalysis `json:"final_analysis,omitempty"`
	Message       string                `json:"message,omitempty"`
}

type chatDatesResponse struct {
	EmployeeID string   `json:"employee_id"`
	Dates      []string `json:"dates"`
}

type historyResponse struct {
	EmployeeID string                `json:"employee_id"`
	Sessions   []chat.SessionHistory `json:"sessions"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStartChat(w http.ResponseWriter, r *http.Request) {
	var req startChatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.EmployeeID) == "" {
		badRequest(w, "employee_id is required")
		return
	}

	out, err := s.chat.StartChat(r.Context(), domain.EmployeeID(req.EmployeeID))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, startChatResponse{
		SessionID: string(out.SessionID),
		Question:  out.Question,
	})
}

func (s *Server) handleChatTurn(w http.ResponseWriter, r *http.Request) {
	var req chatTurnRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		badRequest(w, "session_id is required")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		badRequest(w, "message is required")
		return
	}

	sessionID := domain.SessionID(req.SessionID)
	var res *chat.TurnResult
	err := s.serialize(r.Context(), sessionID, func(ctx context.Context) error {
		var err error
		res, err = s.chat.ProcessTurn(ctx, sessionID, req.Message)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := chatTurnResponse{SessionID: string(res.SessionID)}
	if res.Completed() {
		resp.FinalAnalysis = res.FinalAnalysis
		resp.Message = res.ClosingMessage
	} else {
		resp.Question = res.NextQuestion
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEscalationScore(w http.ResponseWriter, r *http.Request) {
	res, err := s.chat.GetEscalationScore(r.Context(), domain.SessionID(r.PathValue("session_id")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAbandonChat(w http.ResponseWriter, r *http.Request) {
	sessionID := domain.SessionID(r.PathValue("session_id"))
	err := s.serialize(r.Context(), sessionID, func(ctx context.Context) error {
		return s.chat.AbandonChat(ctx, sessionID)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sessions, err := s.chat.ChatHistory(r.Context(), domain.EmployeeID(id), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{EmployeeID: id, Sessions: sessions})
}

func (s *Server) handleChatDates(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	dates, err := s.chat.ChatDates(r.Context(), domain.EmployeeID(id))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatDatesResponse{EmployeeID: id, Dates: dates})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.LatestReport(r.Context(), domain.EmployeeID(r.PathValue("id")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleClearEscalation(w http.ResponseWriter, r *http.Request) {
	rec, err := s.chat.ClearEscalation(r.Context(), domain.EmployeeID(r.PathValue("id")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleEscalations(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	escs, err := s.reports.Escalations(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"escalations": escs})
}

func (s *Server) handleDue(w http.ResponseWriter, r *http.Request) {
	due, err := s.reports.Due(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employees": due})
}

// serialize runs fn on the worker owning the session so turns of one
// session never overlap.
func (s *Server) serialize(ctx context.Context, id domain.SessionID, fn func(ctx context.Context) error) error {
	if s.turns == nil {
		return fn(ctx)
	}
	return s.turns.Do(ctx, string(id), fn)
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func notFound(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

// writeError maps domain sentinels onto status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		badRequest(w, err.Error())
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrEmployeeNotFound):
		notFound(w, err.Error())
	case errors.Is(err, workers.ErrPoolClosed):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "server is shutting down",
		})
	default:
		internalError(w, r, err)
	}
}
