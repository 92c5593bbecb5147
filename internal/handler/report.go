package handler

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/madrasa-panel/madrasa/internal/report"
)

// summaryReportLimit caps how many recent reports are sent to the LLM.
const summaryReportLimit = 30

func (h *Handler) handleSubmitReport(w http.ResponseWriter, r *http.Request) {
	id, ok := studentParam(w, r)
	if !ok {
		return
	}
	var in report.SubmitInput
	if !decodeJSON(w, r, &in) {
		return
	}
	rep, err := h.reports.Submit(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "report": rep})
}

func (h *Handler) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.List(r.Context(), chi.URLParam(r, "studentID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "reports": reports})
}

func (h *Handler) handleReportsRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	reports, err := h.reports.ListRange(r.Context(), chi.URLParam(r, "studentID"), q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "reports": reports})
}

func (h *Handler) handleReportsMonth(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	reports, err := h.reports.ListMonth(r.Context(), chi.URLParam(r, "studentID"), q.Get("month"), q.Get("year"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "reports": reports})
}

func (h *Handler) handleReportsPerformance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := h.reports.ListPage(r.Context(), chi.URLParam(r, "studentID"), q.Get("page"), q.Get("limit"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"reports": p.Reports,
		"page":    p.Page,
		"limit":   p.Limit,
		"total":   p.Total,
	})
}

func (h *Handler) handleTotalLines(w http.ResponseWriter, r *http.Request) {
	total, err := h.reports.TotalLines(r.Context(), chi.URLParam(r, "studentID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "totalLinesCompleted": total})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	if h.llm == nil {
		writeError(w, http.StatusServiceUnavailable, "progress summaries are not configured")
		return
	}
	id, ok := studentParam(w, r)
	if !ok {
		return
	}
	st, err := h.store.GetStudent(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if st == nil {
		writeError(w, http.StatusNotFound, "student not found")
		return
	}

	reports, err := h.reports.List(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if len(reports) > summaryReportLimit {
		reports = reports[:summaryReportLimit]
	}
	slices.Reverse(reports)

	summary, err := h.llm.SummarizeProgress(r.Context(), *st, reports)
	if err != nil {
		slog.Error("progress summary failed", "student_id", id, "error", err)
		writeError(w, http.StatusBadGateway, "summary generation failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "summary": summary, "reports": len(reports)})
}
