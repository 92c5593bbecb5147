package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/madrasa-panel/madrasa/internal/model"
	"github.com/madrasa-panel/madrasa/internal/validate"
)

type createUserRequest struct {
	Username    string `json:"username" validate:"notblank,max=64"`
	DisplayName string `json:"displayName" validate:"max=128"`
	Password    string `json:"password" validate:"min=8"`
	Role        string `json:"role" validate:"required,oneof=teacher admin"`
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "users": users})
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fields := validate.Struct(req); fields != nil {
		writeValidation(w, "invalid user", fields)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = req.Username
	}

	u := model.User{
		Username:     strings.TrimSpace(req.Username),
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Role:         model.UserRole(req.Role),
		Active:       true,
	}
	id, err := h.store.CreateUser(u)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	u.ID = id
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "user": u})
}

func (h *Handler) handleToggleUserActive(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "userID")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}
	if me := model.UserFromContext(r.Context()); me != nil && me.ID == id {
		writeError(w, http.StatusBadRequest, "cannot deactivate your own login")
		return
	}

	if err := h.store.ToggleUserActive(id); err != nil {
		slog.Error("failed to toggle user active", "id", id, "error", err)
		writeServiceError(w, err)
		return
	}
	u, err := h.store.GetUserByID(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": u})
}
