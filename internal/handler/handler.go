package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/madrasa-panel/madrasa/internal/handler/views"
	"github.com/madrasa-panel/madrasa/internal/model"
	"github.com/madrasa-panel/madrasa/internal/realtime"
	"github.com/madrasa-panel/madrasa/internal/report"
	"github.com/madrasa-panel/madrasa/internal/store"
)

const maxBodyBytes = 1 << 20

// Summarizer writes a short progress note for a student.
type Summarizer interface {
	SummarizeProgress(ctx context.Context, student model.Student, reports []model.DailyReport) (string, error)
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store   *store.Store
	reports *report.Service
	hub     *realtime.Hub
	llm     Summarizer
	config  model.ServerConfig
}

// New creates a new Handler. llm may be nil when summaries are disabled.
func New(s *store.Store, reports *report.Service, hub *realtime.Hub, llm Summarizer, cfg model.ServerConfig) *Handler {
	cfg.SummaryEnabled = llm != nil
	return &Handler{store: s, reports: reports, hub: hub, llm: llm, config: cfg}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealthz)

	r.Group(func(r chi.Router) {
		r.Use(h.csrfMiddleware)
		r.Get("/login", h.handleLoginPage)
		r.Post("/login", h.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Post("/logout", h.handleLogout)
			r.Get("/", h.handleAlertsPage)
			r.Get("/ws", h.hub.ServeWS)
			r.Get("/api/me", h.handleMe)

			r.Route("/api/students", func(r chi.Router) {
				r.Use(requireRole(model.UserRoleTeacher, model.UserRoleAdmin))
				r.Get("/", h.handleListStudents)
				r.Post("/", h.handleCreateStudent)
				r.Route("/{studentID}", func(r chi.Router) {
					r.Get("/", h.handleGetStudent)
					r.Put("/", h.handleUpdateStudent)
					r.Delete("/", h.handleDeleteStudent)

					r.Post("/reports", h.handleSubmitReport)
					r.Get("/reports", h.handleListReports)
					r.Get("/reports/range", h.handleReportsRange)
					r.Get("/reports/month", h.handleReportsMonth)
					r.Get("/reports/performance", h.handleReportsPerformance)
					r.Get("/reports/lines", h.handleTotalLines)
					r.Get("/reports/summary", h.handleSummary)
				})
			})

			r.Route("/api/teachers", func(r chi.Router) {
				r.Use(requireRole(model.UserRoleAdmin))
				r.Get("/", h.handleListTeachers)
				r.Post("/", h.handleCreateTeacher)
				r.Get("/{teacherID}", h.handleGetTeacher)
				r.Delete("/{teacherID}", h.handleDeleteTeacher)
			})

			r.Route("/api/admin/users", func(r chi.Router) {
				r.Use(requireRole(model.UserRoleAdmin))
				r.Get("/", h.handleListUsers)
				r.Post("/", h.handleCreateUser)
				r.Post("/{userID}/toggle", h.handleToggleUserActive)
			})
		})
	})
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"clients":   h.hub.Clients(),
		"summaries": h.config.SummaryEnabled,
	})
}

func (h *Handler) handleAlertsPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.AlertsPage(model.UserFromContext(r.Context())).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    model.UserFromContext(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}

func writeValidation(w http.ResponseWriter, msg string, fields map[string]string) {
	body := map[string]any{"success": false, "message": msg}
	if len(fields) > 0 {
		body["errors"] = fields
	}
	writeJSON(w, http.StatusBadRequest, body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// writeServiceError maps pipeline and store errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *report.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidation(w, verr.Error(), verr.Fields)
	case errors.Is(err, report.ErrDuplicateReport):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
