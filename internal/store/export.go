package store

import (
	"fmt"
	"time"

	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/model"
)

// ExportCompletedExams builds export-ready results for every completed exam,
// grouped by student.
func (s *Store) ExportCompletedExams() (model.ResultsExport, error) {
	export := model.ResultsExport{ExportedAt: time.Now()}

	students, err := s.ListStudents()
	if err != nil {
		return export, fmt.Errorf("list students: %w", err)
	}

	for _, st := range students {
		exams, err := s.ListExams(st.ID, 1000, 0)
		if err != nil {
			return export, fmt.Errorf("list exams for student %d: %w", st.ID, err)
		}

		var results []model.ExamResult
		for _, e := range exams {
			if e.Status != model.ExamCompleted {
				continue
			}
			results = append(results, model.ExamResult{
				ExamID:      e.ID,
				Title:       e.Title,
				Subject:     e.Subject,
				Score:       e.Score,
				TotalPoints: e.TotalPoints,
				Percentage:  e.Percentage,
				TimeSpent:   e.TimeSpent,
				StartedAt:   e.StartedAt,
				CompletedAt: e.CompletedAt,
			})
		}
		if len(results) == 0 {
			continue
		}
		export.NumExams += len(results)
		export.Results = append(export.Results, model.StudentExams{
			MatricNo: st.MatricNo,
			Name:     st.Name,
			Exams:    results,
		})
	}

	return export, nil
}
