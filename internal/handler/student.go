package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/madrasa-panel/madrasa/internal/model"
	"github.com/madrasa-panel/madrasa/internal/report"
	"github.com/madrasa-panel/madrasa/internal/validate"
)

type studentRequest struct {
	Name          string `json:"name" validate:"notblank,max=128"`
	RollNumber    string `json:"rollNumber" validate:"notblank,max=32"`
	FatherName    string `json:"fatherName" validate:"max=128"`
	ClassName     string `json:"className" validate:"max=64"`
	Phone         string `json:"phone" validate:"max=32"`
	TeacherID     string `json:"teacherId" validate:"omitempty,uuid"`
	AdmissionDate string `json:"admissionDate"`
}

// toStudent validates the request and builds a student, writing a 400 on failure.
func (h *Handler) toStudent(w http.ResponseWriter, req studentRequest) (model.Student, bool) {
	if fields := validate.Struct(req); fields != nil {
		writeValidation(w, "invalid student", fields)
		return model.Student{}, false
	}
	st := model.Student{
		Name:       strings.TrimSpace(req.Name),
		RollNumber: strings.TrimSpace(req.RollNumber),
		FatherName: strings.TrimSpace(req.FatherName),
		ClassName:  strings.TrimSpace(req.ClassName),
		Phone:      strings.TrimSpace(req.Phone),
	}
	if req.AdmissionDate != "" {
		d, err := report.ParseDate(req.AdmissionDate)
		if err != nil {
			writeServiceError(w, err)
			return model.Student{}, false
		}
		st.AdmissionDate = d
	}
	if req.TeacherID != "" {
		t, err := h.store.GetTeacher(req.TeacherID)
		if err != nil {
			writeServiceError(w, err)
			return model.Student{}, false
		}
		if t == nil {
			writeValidation(w, "invalid student", map[string]string{"teacherId": "teacherId does not match a teacher"})
			return model.Student{}, false
		}
		st.TeacherID = &t.ID
	}
	return st, true
}

// studentParam returns the path's student ID, writing a 400 when it is malformed.
func studentParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := report.CanonicalStudentID(chi.URLParam(r, "studentID"))
	if err != nil {
		writeServiceError(w, err)
		return "", false
	}
	return id, true
}

func (h *Handler) handleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.store.ListStudents(strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "students": students})
}

func (h *Handler) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	st, ok := h.toStudent(w, req)
	if !ok {
		return
	}
	created, err := h.store.CreateStudent(st)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "student": created})
}

func (h *Handler) handleGetStudent(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "student": st})
}

func (h *Handler) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := studentParam(w, r)
	if !ok {
		return
	}
	existing, err := h.store.GetStudent(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "student not found")
		return
	}

	var req studentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	st, ok := h.toStudent(w, req)
	if !ok {
		return
	}
	st.ID = id
	st.CreatedAt = existing.CreatedAt
	if st.AdmissionDate.IsZero() {
		st.AdmissionDate = existing.AdmissionDate
	}
	if err := h.store.UpdateStudent(st); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "student": st})
}

func (h *Handler) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := studentParam(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteStudent(id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deletedAt": time.Now().UTC()})
}
