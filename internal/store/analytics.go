package store

import (
	"database/sql"
	"encoding/json"
	"slices"

	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/model"
)

// RecordGeneration bumps the questions-generated counter and adds the topic
// to the student's topic set. Callers treat failures as non-critical.
func (s *Store) RecordGeneration(studentID int64, numQuestions int, topic string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var topicsRaw string
	err = tx.QueryRow(`SELECT topics FROM student_analytics WHERE student_id = ?`, studentID).Scan(&topicsRaw)
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	topics := []string{}
	if topicsRaw != "" {
		if err := json.Unmarshal([]byte(topicsRaw), &topics); err != nil {
			return err
		}
	}
	if topic != "" && !slices.Contains(topics, topic) {
		topics = append(topics, topic)
	}
	raw, err := json.Marshal(topics)
	if err != nil {
		return err
	}

	_, err = tx.Exec(
		`INSERT INTO student_analytics (student_id, questions_generated, topics)
		 VALUES (?, ?, ?)
		 ON CONFLICT(student_id) DO UPDATE SET
			questions_generated = questions_generated + excluded.questions_generated,
			topics = excluded.topics`,
		studentID, numQuestions, string(raw),
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// GetAnalytics returns a student's usage statistics, or nil if none recorded.
func (s *Store) GetAnalytics(studentID int64) (*model.StudentAnalytics, error) {
	var a model.StudentAnalytics
	var topicsRaw string
	err := s.db.QueryRow(
		`SELECT student_id, questions_generated, topics FROM student_analytics WHERE student_id = ?`,
		studentID,
	).Scan(&a.StudentID, &a.QuestionsGenerated, &topicsRaw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(topicsRaw), &a.Topics); err != nil {
		return nil, err
	}
	return &a, nil
}
