package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/campuskeep/lostfound/internal/config"
	"github.com/campuskeep/lostfound/internal/domain"
	"github.com/campuskeep/lostfound/internal/notify"
)

// Server is the HTTP server exposing the matching core's hook points as a
// JSON API plus a websocket event stream.
type Server struct {
	cfg           *config.Config
	matcher       *domain.Service
	notifications *notify.StoreNotifier
	logger        *slog.Logger
	httpServer    *http.Server
}

// NewServer creates a new HTTP server around the matching service.
func NewServer(cfg *config.Config, matcher *domain.Service, notifications *notify.StoreNotifier, hub *Hub, logger *slog.Logger) *Server {
	s := &Server{
		cfg:           cfg,
		matcher:       matcher,
		notifications: notifications,
		logger:        logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/postings", s.handleCreatePosting)
	mux.HandleFunc("GET /api/postings/{id}", s.handleGetPosting)
	mux.HandleFunc("POST /api/postings/{id}/approve", s.handleApprovePosting)
	mux.HandleFunc("POST /api/postings/{id}/reject", s.handleRejectPosting)
	mux.HandleFunc("POST /api/postings/{id}/complete", s.handleCompletePosting)
	mux.HandleFunc("GET /api/postings/{id}/suggestions", s.handlePostingSuggestions)
	mux.HandleFunc("GET /api/users/{id}/suggestions", s.handleUserSuggestions)
	mux.HandleFunc("GET /api/users/{id}/matches", s.handleUserMatches)
	mux.HandleFunc("GET /api/users/{id}/notifications", s.handleUserNotifications)
	mux.HandleFunc("POST /api/matches/confirm", s.handleConfirmMatch)
	mux.HandleFunc("POST /api/matches/{id}/cancel", s.handleCancelMatch)
	mux.HandleFunc("GET /health", s.handleHealth)
	if hub != nil {
		mux.Handle("GET /ws/matches", hub)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      withLogging(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for HTTP requests. It blocks until the server is
// shut down or an error occurs.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the server's root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createPostingRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Category         string `json:"category"`
	PostType         string `json:"postType"`
	Location         string `json:"location"`
	DetailedLocation string `json:"detailedLocation"`
	LostFoundTime    string `json:"lostFoundTime"`
	OwnerID          int64  `json:"ownerId"`
}

func (s *Server) handleCreatePosting(w http.ResponseWriter, r *http.Request) {
	var req createPostingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "malformed JSON body")
		return
	}

	p := &domain.Posting{
		Title:            req.Title,
		Description:      req.Description,
		Category:         domain.Category(req.Category),
		PostType:         domain.PostType(req.PostType),
		Location:         domain.Location(req.Location),
		DetailedLocation: domain.DetailedLocation(req.DetailedLocation),
		OwnerID:          req.OwnerID,
	}
	if req.LostFoundTime != "" {
		t, err := time.Parse(time.RFC3339, req.LostFoundTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "InvalidRequest", "lostFoundTime must be RFC 3339")
			return
		}
		p.LostFoundTime = t
	}

	if err := s.matcher.CreatePosting(r.Context(), p); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPostingResponse(p))
}

func (s *Server) handleGetPosting(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := s.matcher.GetPosting(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostingResponse(p))
}

func (s *Server) handleApprovePosting(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	matches, err := s.matcher.ApprovePosting(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(matches))
	for _, m := range matches {
		out = append(out, toMatchResponse(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"matchesCreated": len(out),
		"matches":        out,
	})
}

func (s *Server) handleRejectPosting(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.matcher.RejectPosting(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompletePosting(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.matcher.CompletePosting(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePostingSuggestions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := s.matcher.GetPosting(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	days := queryInt(r, "days", 0)
	limit := queryInt(r, "limit", 0)
	candidates, err := s.matcher.SuggestMatchesForPosting(r.Context(), p, days, limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"postingId":  p.ID,
		"candidates": toCandidateResponses(candidates),
	})
}

func (s *Server) handleUserSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}
	days := queryInt(r, "days", 0)
	limit := queryInt(r, "limit", 0)
	groups, err := s.matcher.SuggestMatchesForUser(r.Context(), userID, days, limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(groups))
	for _, g := range groups {
		out = append(out, map[string]any{
			"posting":    toPostingResponse(g.Posting),
			"candidates": toCandidateResponses(g.Candidates),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (s *Server) handleUserMatches(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}
	matches, err := s.matcher.MatchesForUser(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(matches))
	for i := range matches {
		out = append(out, toMatchResponse(&matches[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": out})
}

func (s *Server) handleUserNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}
	limit := queryInt(r, "limit", 0)
	notifications, err := s.notifications.ListForUser(r.Context(), userID, limit)
	if err != nil {
		s.logger.Error("list notifications failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []notify.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

type confirmMatchRequest struct {
	SourceID    int64   `json:"sourceId"`
	CandidateID int64   `json:"candidateId"`
	Score       float64 `json:"score"`
}

func (s *Server) handleConfirmMatch(w http.ResponseWriter, r *http.Request) {
	var req confirmMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "malformed JSON body")
		return
	}
	m, err := s.matcher.ConfirmMatch(r.Context(), req.SourceID, req.CandidateID, req.Score)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchResponse(m))
}

func (s *Server) handleCancelMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	m, err := s.matcher.CancelMatch(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchResponse(m))
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, "ValidationError", err.Error())
	case errors.Is(err, domain.ErrPostingNotFound), errors.Is(err, domain.ErrMatchNotFound):
		writeError(w, http.StatusNotFound, "NotFound", err.Error())
	case errors.Is(err, domain.ErrTerminalState):
		writeError(w, http.StatusConflict, "TerminalState", err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "internal error")
	}
}

func toPostingResponse(p *domain.Posting) map[string]any {
	return map[string]any{
		"id":               p.ID,
		"title":            p.Title,
		"description":      p.Description,
		"category":         string(p.Category),
		"postType":         string(p.PostType),
		"status":           string(p.Status),
		"location":         string(p.Location),
		"detailedLocation": string(p.DetailedLocation),
		"lostFoundTime":    p.LostFoundTime.UTC().Format(time.RFC3339),
		"createdAt":        p.CreatedAt.UTC().Format(time.RFC3339),
		"approved":         p.Approved,
		"ownerId":          p.OwnerID,
		"totalWeight":      p.TotalWeight,
	}
}

func toMatchResponse(m *domain.Match) map[string]any {
	resp := map[string]any{
		"id":             m.ID,
		"lostPostingId":  m.LostPostingID,
		"foundPostingId": m.FoundPostingID,
		"score":          m.MatchWeight,
		"matchedAt":      m.MatchedAt.UTC().Format(time.RFC3339),
		"status":         string(m.Status),
	}
	if m.CompletedAt != nil {
		resp["completedAt"] = m.CompletedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func toCandidateResponses(candidates []domain.Candidate) []map[string]any {
	out := make([]map[string]any, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, map[string]any{
			"posting": toPostingResponse(c.Posting),
			"score":   c.Score,
			"reasons": c.Reasons,
		})
	}
	return out
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, map[string]string{
		"error":   errType,
		"message": message,
	})
}

func withLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
