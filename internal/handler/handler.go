package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/ai"
	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/quota"
	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store    *store.Store
	gate     *quota.Gate
	gen      *ai.Generator
	llm      ai.Completer
	config   model.ServerConfig
	validate *validator.Validate
}

// New creates a new Handler.
func New(s *store.Store, gate *quota.Gate, gen *ai.Generator, llm ai.Completer, cfg model.ServerConfig) (*Handler, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Use JSON tag names in validation errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{store: s, gate: gate, gen: gen, llm: llm, config: cfg, validate: v}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", h.handleRegister)
		api.Post("/auth/login", h.handleLogin)

		api.Group(func(priv chi.Router) {
			priv.Use(h.requireAuth)

			priv.Post("/auth/logout", h.handleLogout)
			priv.Get("/auth/me", h.handleMe)

			priv.Get("/ai/check-usage", h.handleCheckUsage)
			priv.Post("/ai/check-usage", h.handleIncrementUsage)
			priv.Post("/ai/practice-exam/generate-from-materials", h.handleGenerateExam)
			priv.Post("/ai/practice-exam/submit", h.handleSubmitExam)
			priv.Get("/ai/practice-exam", h.handleGetExams)
			priv.Post("/ai/practice-exam", h.handleCreateExam)
			priv.Delete("/ai/practice-exam/{examID}", h.handleDeleteExam)
			priv.Post("/ai/chat", h.handleStudyChat)

			priv.Get("/materials", h.handleListMaterials)
			priv.Post("/materials", h.handleCreateMaterial)
			priv.Get("/materials/{materialID}", h.handleGetMaterial)
			priv.Delete("/materials/{materialID}", h.handleDeleteMaterial)

			priv.Get("/leaderboard", h.handleLeaderboard)
			priv.Get("/analytics", h.handleAnalytics)
			priv.Get("/announcements", h.handleListAnnouncements)

			priv.Route("/admin", func(admin chi.Router) {
				admin.Use(requireRole(model.RoleAdmin))
				admin.Get("/students", h.handleAdminListStudents)
				admin.Patch("/students/{studentID}/active", h.handleAdminToggleStudent)
				admin.Post("/students/{studentID}/premium", h.handleAdminGrantPremium)
				admin.Delete("/students/{studentID}", h.handleAdminDeleteStudent)
				admin.Post("/announcements", h.handleAdminCreateAnnouncement)
				admin.Delete("/announcements/{announcementID}", h.handleAdminDeleteAnnouncement)
			})
		})
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// decode unmarshals and validates a JSON request body, writing a 400 response
// itself when the payload is bad.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("%s is %s", verrs[0].Field(), verrs[0].Tag()))
		} else {
			respondError(w, http.StatusBadRequest, "invalid request")
		}
		return false
	}
	return true
}

// respondAIError maps the generator's error taxonomy onto HTTP statuses.
func respondAIError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ai.ErrNoMaterialIDs), errors.Is(err, ai.ErrEmptyText):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ai.ErrNoMaterials):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ai.ErrQuotaExceeded):
		respondError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, ai.ErrGenerationFailed):
		respondError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, ai.ErrInvalidGeneration):
		respondError(w, http.StatusInternalServerError, err.Error())
	default:
		slog.Error("AI request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
