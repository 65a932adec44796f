package model

import "time"

// ResultsExport is the top-level JSON structure for exam results export.
type ResultsExport struct {
	ExportedAt time.Time      `json:"exported_at"`
	NumExams   int            `json:"num_exams"`
	Results    []StudentExams `json:"results"`
}

// StudentExams groups one student's completed exams for export.
type StudentExams struct {
	MatricNo string       `json:"matric_no"`
	Name     string       `json:"name"`
	Exams    []ExamResult `json:"exams"`
}

// ExamResult holds per-exam data for export.
type ExamResult struct {
	ExamID      string     `json:"exam_id"`
	Title       string     `json:"title"`
	Subject     string     `json:"subject"`
	Score       int        `json:"score"`
	TotalPoints int        `json:"total_points"`
	Percentage  int        `json:"percentage"`
	TimeSpent   int        `json:"time_spent"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
