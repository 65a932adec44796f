package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/ai"
	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/grader"
	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/model"
)

type incrementRequest struct {
	Action string `json:"action" validate:"required"`
}

type generateRequest struct {
	MaterialIDs []string `json:"materialIds"`
	SessionID   string   `json:"sessionId"`
}

type submitRequest struct {
	ExamID    string            `json:"examId" validate:"required"`
	Answers   map[string]string `json:"answers" validate:"required"`
	TimeSpent int               `json:"timeSpent"`
}

type createExamRequest struct {
	Title     string           `json:"title" validate:"required"`
	Subject   string           `json:"subject"`
	Questions []model.Question `json:"questions" validate:"required,min=1"`
	Duration  int              `json:"duration"`
}

type chatRequest struct {
	Message    string `json:"message" validate:"required"`
	MaterialID string `json:"materialId"`
}

func (h *Handler) handleCheckUsage(w http.ResponseWriter, r *http.Request) {
	student := model.StudentFromContext(r.Context())

	status, err := h.gate.Check(student.ID)
	if err != nil {
		slog.Error("usage check failed", "student_id", student.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, status)
}

func (h *Handler) handleIncrementUsage(w http.ResponseWriter, r *http.Request) {
	student := model.StudentFromContext(r.Context())

	var req incrementRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Action != "increment" {
		respondError(w, http.StatusBadRequest, "unknown action")
		return
	}

	ledger, err := h.gate.Increment(student.ID)
	if err != nil {
		slog.Error("usage increment failed", "student_id", student.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"tokensUsed": ledger.DailyTokensUsed,
	})
}

func (h *Handler) handleGenerateExam(w http.ResponseWriter, r *http.Request) {
	student := model.StudentFromContext(r.Context())

	var req generateRequest
	if !h.decode(w, r, &req) {
		return
	}

	exam, err := h.gen.FromMaterials(r.Context(), student.ID, req.MaterialIDs)
	if err != nil {
		respondAIError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"exam": map[string]any{
			"id":             exam.ID,
			"title":          exam.Title,
			"questionsCount": len(exam.Questions),
			"duration":       exam.Duration,
			"status":         exam.Status,
		},
	})
}

func (h *Handler) handleSubmitExam(w http.ResponseWriter, r *http.Request) {
	student := model.StudentFromContext(r.Context())

	var req submitRequest
	if !h.decode(w, r, &req) {
		return
	}

	exam, err := h.store.GetExam(req.ExamID, student.ID)
	if err != nil {
		slog.Error("fetch exam failed", "exam_id", req.ExamID, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if exam == nil || exam.Status != model.ExamActive {
		respondError(w, http.StatusNotFound, "active exam not found")
		return
	}

	report := grader.Grade(exam.Questions, req.Answers)

	ok, err := h.store.CompleteExam(exam.ID, student.ID, req.Answers,
		report.Score, report.TotalPoints, report.Percentage, req.TimeSpent)
	if err != nil {
		slog.Error("complete exam failed", "exam_id", exam.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		// Lost the race to another submission; the first writer's score stands.
		respondError(w, http.StatusNotFound, "active exam not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"score":          report.Score,
		"totalPoints":    report.TotalPoints,
		"percentage":     report.Percentage,
		"correctAnswers": report.CorrectAnswers,
		"totalQuestions": report.TotalQuestions,
	})
}

func (h *Handler) handleGetExams(w http.ResponseWriter, r *http.Request) {
	student := model.StudentFromContext(r.Context())

	if examID := r.URL.Query().Get("examId"); examID != "" {
		exam, err := h.store.GetExam(examID, student.ID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if exam == nil {
			respondError(w, http.StatusNotFound, "exam not found")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"exam": exam})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}

	exams, err := h.store.ListExams(student.ID, limit, (page-1)*limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	total, err := h.store.CountExams(student.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"exams": exams,
		"pagination": map[string]int{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *Handler) handleCreateExam(w http.ResponseWriter, r *http.Request) {
	student := model.StudentFromContext(r.Context())

	var req createExamRequest
	if !h.decode(w, r, &req) {
		return
	}

	for i := range req.Questions {
		q := &req.Questions[i]
		if q.ID == "" {
			q.ID = "q-" + strconv.Itoa(i+1)
		}
		if q.Points <= 0 {
			q.Points = 1
		}
		if q.Question == "" || q.Type == "" || len(q.CorrectAnswer) == 0 {
			respondError(w, http.StatusBadRequest, "every question needs text, a type, and a correctAnswer")
			return
		}
	}

	duration := req.Duration
	if duration <= 0 {
		duration = 2 * len(req.Questions)
		if duration < 30 {
			duration = 30
		}
	}

	exam := model.ExamInstance{
		ID:        uuid.NewString(),
		StudentID: student.ID,
		Title:     req.Title,
		Subject:   req.Subject,
		Questions: req.Questions,
		Duration:  duration,
		Status:    model.ExamActive,
	}
	if err := h.store.InsertExam(exam); err != nil {
		slog.Error("insert exam failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"exam": map[string]any{
			"id":             exam.ID,
			"title":          exam.Title,
			"questionsCount": len(exam.Questions),
			"duration":       exam.Duration,
			"status":         exam.Status,
		},
	})
}

func (h *Handler) handleDeleteExam(w http.ResponseWriter, r *http.Request) {
	student := model.StudentFromContext(r.Context())
	examID := chi.URLParam(r, "examID")

	ok, err := h.store.DeleteExam(examID, student.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "exam not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) handleStudyChat(w http.ResponseWriter, r *http.Request) {
	student := model.StudentFromContext(r.Context())

	var req chatRequest
	if !h.decode(w, r, &req) {
		return
	}

	status, err := h.gate.Check(student.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !status.CanUseAI {
		respondError(w, http.StatusTooManyRequests, ai.ErrQuotaExceeded.Error())
		return
	}

	var materialText string
	if req.MaterialID != "" {
		material, err := h.store.GetMaterial(req.MaterialID, student.ID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if material == nil {
			respondError(w, http.StatusNotFound, "material not found")
			return
		}
		materialText = material.ExtractedText
	}

	reply, err := ai.StudyChat(r.Context(), h.llm, req.Message, materialText)
	if err != nil {
		respondAIError(w, err)
		return
	}

	if _, err := h.gate.Increment(student.ID); err != nil {
		slog.Warn("usage increment after chat failed", "student_id", student.ID, "error", err)
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true, "reply": reply})
}
