package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/model"
)

type grantPremiumRequest struct {
	Days int `json:"days" validate:"required,min=1"`
}

type createAnnouncementRequest struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body" validate:"required"`
}

func studentIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "studentID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid student ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) handleAdminListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.store.ListStudents()
	if err != nil {
		slog.Error("failed to list students", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"students": students})
}

func (h *Handler) handleAdminToggleStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := studentIDParam(w, r)
	if !ok {
		return
	}

	student, err := h.store.GetStudentByID(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if student == nil {
		respondError(w, http.StatusNotFound, "student not found")
		return
	}

	if err := h.store.ToggleStudentActive(id); err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleAdminGrantPremium upgrades a student's usage plan for a number of days.
func (h *Handler) handleAdminGrantPremium(w http.ResponseWriter, r *http.Request) {
	id, ok := studentIDParam(w, r)
	if !ok {
		return
	}

	var req grantPremiumRequest
	if !h.decode(w, r, &req) {
		return
	}

	student, err := h.store.GetStudentByID(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if student == nil {
		respondError(w, http.StatusNotFound, "student not found")
		return
	}

	expiry := time.Now().AddDate(0, 0, req.Days)
	if err := h.store.SetPremium(id, expiry, time.Now().Format("2006-01-02")); err != nil {
		slog.Error("grant premium failed", "student_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	slog.Info("granted premium", "student_id", id, "days", req.Days)
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "premiumExpiryDate": expiry})
}

func (h *Handler) handleAdminDeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := studentIDParam(w, r)
	if !ok {
		return
	}

	student, err := h.store.GetStudentByID(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if student == nil {
		respondError(w, http.StatusNotFound, "student not found")
		return
	}

	if err := h.store.DeleteStudentCascade(id); err != nil {
		slog.Error("cascade delete failed", "student_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	slog.Info("deleted student", "student_id", id, "matric_no", student.MatricNo)
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) handleAdminCreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	admin := model.StudentFromContext(r.Context())

	var req createAnnouncementRequest
	if !h.decode(w, r, &req) {
		return
	}

	id, err := h.store.CreateAnnouncement(model.Announcement{
		Title:     req.Title,
		Body:      req.Body,
		CreatedBy: admin.ID,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "id": id})
}

func (h *Handler) handleAdminDeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "announcementID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid announcement ID")
		return
	}

	ok, err := h.store.DeleteAnnouncement(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "announcement not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
