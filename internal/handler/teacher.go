package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/madrasa-panel/madrasa/internal/model"
	"github.com/madrasa-panel/madrasa/internal/validate"
)

type teacherRequest struct {
	Name      string `json:"name" validate:"notblank,max=128"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"max=32"`
	ClassName string `json:"className" validate:"max=64"`
	Username  string `json:"username" validate:"notblank,max=64"`
	Password  string `json:"password" validate:"min=8"`
}

func (h *Handler) handleListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.store.ListTeachers()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "teachers": teachers})
}

func (h *Handler) handleCreateTeacher(w http.ResponseWriter, r *http.Request) {
	var req teacherRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fields := validate.Struct(req); fields != nil {
		writeValidation(w, "invalid teacher", fields)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	t, err := h.store.CreateTeacher(
		model.Teacher{
			Name:      strings.TrimSpace(req.Name),
			Email:     strings.TrimSpace(req.Email),
			Phone:     strings.TrimSpace(req.Phone),
			ClassName: strings.TrimSpace(req.ClassName),
		},
		model.User{
			Username:     strings.TrimSpace(req.Username),
			PasswordHash: string(hash),
		},
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "teacher": t})
}

func (h *Handler) handleGetTeacher(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.GetTeacher(chi.URLParam(r, "teacherID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "teacher not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "teacher": t})
}

func (h *Handler) handleDeleteTeacher(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTeacher(chi.URLParam(r, "teacherID")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
