package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/model"
)

type createMaterialRequest struct {
	Title   string `json:"title" validate:"required"`
	Subject string `json:"subject"`
	Text    string `json:"text" validate:"required"`
}

func (h *Handler) handleListMaterials(w http.ResponseWriter, r *http.Request) {
	student := model.StudentFromContext(r.Context())

	materials, err := h.store.ListMaterials(student.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"materials": materials})
}

// handleCreateMaterial stores a note whose text the client has already
// extracted; file and media storage lives outside this service.
func (h *Handler) handleCreateMaterial(w http.ResponseWriter, r *http.Request) {
	student := model.StudentFromContext(r.Context())

	var req createMaterialRequest
	if !h.decode(w, r, &req) {
		return
	}

	material := model.StudyMaterial{
		ID:               uuid.NewString(),
		StudentID:        student.ID,
		Title:            req.Title,
		Subject:          req.Subject,
		ExtractedText:    req.Text,
		ProcessingStatus: model.ProcessingCompleted,
	}
	if err := h.store.InsertMaterial(material); err != nil {
		slog.Error("insert material failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "material": material})
}

func (h *Handler) handleGetMaterial(w http.ResponseWriter, r *http.Request) {
	student := model.StudentFromContext(r.Context())

	material, err := h.store.GetMaterial(chi.URLParam(r, "materialID"), student.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if material == nil {
		respondError(w, http.StatusNotFound, "material not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"material": material})
}

func (h *Handler) handleDeleteMaterial(w http.ResponseWriter, r *http.Request) {
	student := model.StudentFromContext(r.Context())

	ok, err := h.store.DeleteMaterial(chi.URLParam(r, "materialID"), student.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "material not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}
