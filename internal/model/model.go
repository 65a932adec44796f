package model

import (
	"context"
	"encoding/json"
	"time"
)

// Role represents a user's access level.
type Role string

const (
	// RoleStudent is a regular student account.
	RoleStudent Role = "student"
	// RoleAdmin is an administrator account.
	RoleAdmin Role = "admin"
)

// Student represents a portal user.
type Student struct {
	ID           int64     `json:"id"`
	MatricNo     string    `json:"matric_no"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuthSession represents an authentication session.
type AuthSession struct {
	ID        string
	StudentID int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type studentCtxKey struct{}

// ContextWithStudent stores a student in the request context.
func ContextWithStudent(ctx context.Context, s *Student) context.Context {
	return context.WithValue(ctx, studentCtxKey{}, s)
}

// StudentFromContext retrieves the authenticated student from context, or nil.
func StudentFromContext(ctx context.Context) *Student {
	s, _ := ctx.Value(studentCtxKey{}).(*Student)
	return s
}

// Plan represents an AI usage plan tier.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// UsageLedger holds per-student AI usage counters and plan state.
// Created lazily on the first usage check and never deleted.
type UsageLedger struct {
	StudentID         int64      `json:"student_id"`
	Plan              Plan       `json:"plan"`
	DailyTokensUsed   int        `json:"daily_tokens_used"`
	LastResetDate     string     `json:"last_reset_date"` // YYYY-MM-DD
	PremiumExpiryDate *time.Time `json:"premium_expiry_date,omitempty"`
	TotalTokensUsed   int64      `json:"total_tokens_used"`
}

// ProcessingStatus represents the extraction state of a study material.
type ProcessingStatus string

const (
	ProcessingPending   ProcessingStatus = "pending"
	ProcessingCompleted ProcessingStatus = "completed"
	ProcessingFailed    ProcessingStatus = "failed"
)

// StudyMaterial is an uploaded note whose text has been extracted.
type StudyMaterial struct {
	ID               string           `json:"id"`
	StudentID        int64            `json:"student_id"`
	Title            string           `json:"title"`
	Subject          string           `json:"subject"`
	ExtractedText    string           `json:"extracted_text"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
	CreatedAt        time.Time        `json:"created_at"`
}

// ExamStatus represents the lifecycle state of a practice exam.
type ExamStatus string

const (
	ExamDraft     ExamStatus = "draft"
	ExamActive    ExamStatus = "active"
	ExamCompleted ExamStatus = "completed"
	// ExamExpired is a declared status with no transition into it yet;
	// active exams currently stay active until submitted or deleted.
	ExamExpired ExamStatus = "expired"
)

// QuestionType represents the answer shape of a question.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple-choice"
	TypeTrueFalse      QuestionType = "true-false"
	TypeShortAnswer    QuestionType = "short-answer"
)

// Question is a single practice-exam question. CorrectAnswer keeps the raw
// JSON value because its shape depends on Type: an option index for
// multiple-choice, a boolean for true-false, a string for short-answer.
type Question struct {
	ID            string          `json:"id"`
	Question      string          `json:"question"`
	Type          QuestionType    `json:"type"`
	Options       []string        `json:"options,omitempty"`
	CorrectAnswer json.RawMessage `json:"correctAnswer"`
	Explanation   string          `json:"explanation"`
	Points        int             `json:"points"`
}

// ExamInstance is a generated or manually created practice exam tied to one
// student. Once Status is ExamCompleted the score fields never change.
type ExamInstance struct {
	ID             string            `json:"id"`
	StudentID      int64             `json:"student_id"`
	Title          string            `json:"title"`
	Subject        string            `json:"subject"`
	Questions      []Question        `json:"questions"`
	Duration       int               `json:"duration"` // minutes
	Status         ExamStatus        `json:"status"`
	StudentAnswers map[string]string `json:"student_answers,omitempty"`
	Score          int               `json:"score"`
	TotalPoints    int               `json:"total_points"`
	Percentage     int               `json:"percentage"`
	TimeSpent      int               `json:"time_spent"` // seconds
	StartedAt      time.Time         `json:"started_at"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
}

// StudentAnalytics holds best-effort AI usage statistics per student.
type StudentAnalytics struct {
	StudentID          int64    `json:"student_id"`
	QuestionsGenerated int      `json:"questions_generated"`
	Topics             []string `json:"topics"`
}

// Announcement is a portal-wide notice posted by an admin.
type Announcement struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// LeaderboardEntry is one row of the completed-exam leaderboard.
type LeaderboardEntry struct {
	StudentID     int64   `json:"student_id"`
	Name          string  `json:"name"`
	MatricNo      string  `json:"matric_no"`
	ExamsTaken    int     `json:"exams_taken"`
	AvgPercentage float64 `json:"avg_percentage"`
	BestScore     int     `json:"best_score"`
}

// ServerConfig holds runtime parameters set via CLI flags.
type ServerConfig struct {
	SecureCookies bool // Set Secure flag on cookies (disable for local dev)
}
