package handler

import (
	"net/http"
	"strconv"

	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/model"
)

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	entries, err := h.store.Leaderboard(limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}

func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	student := model.StudentFromContext(r.Context())

	analytics, err := h.store.GetAnalytics(student.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if analytics == nil {
		analytics = &model.StudentAnalytics{StudentID: student.ID, Topics: []string{}}
	}
	respondJSON(w, http.StatusOK, map[string]any{"analytics": analytics})
}

func (h *Handler) handleListAnnouncements(w http.ResponseWriter, r *http.Request) {
	announcements, err := h.store.ListAnnouncements()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"announcements": announcements})
}
