package store

import (
	"database/sql"
	"strings"
	"time"

	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/model"
)

// InsertMaterial stores a study material.
func (s *Store) InsertMaterial(m model.StudyMaterial) error {
	_, err := s.db.Exec(
		`INSERT INTO study_materials (id, student_id, title, subject, extracted_text, processing_status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.StudentID, m.Title, m.Subject, m.ExtractedText, m.ProcessingStatus, time.Now(),
	)
	return err
}

// GetMaterial returns a material owned by the given student, or nil.
func (s *Store) GetMaterial(id string, studentID int64) (*model.StudyMaterial, error) {
	var m model.StudyMaterial
	err := s.db.QueryRow(
		`SELECT id, student_id, title, subject, extracted_text, processing_status, created_at
		 FROM study_materials WHERE id = ? AND student_id = ?`, id, studentID,
	).Scan(&m.ID, &m.StudentID, &m.Title, &m.Subject, &m.ExtractedText, &m.ProcessingStatus, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMaterials returns all materials owned by a student, newest first.
func (s *Store) ListMaterials(studentID int64) ([]model.StudyMaterial, error) {
	rows, err := s.db.Query(
		`SELECT id, student_id, title, subject, extracted_text, processing_status, created_at
		 FROM study_materials WHERE student_id = ? ORDER BY created_at DESC`, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMaterials(rows)
}

// ListCompletedMaterials returns the subset of the given material IDs that are
// owned by the student and have finished processing.
func (s *Store) ListCompletedMaterials(studentID int64, ids []string) ([]model.StudyMaterial, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(ids)+1)
	args = append(args, studentID)
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := s.db.Query(
		`SELECT id, student_id, title, subject, extracted_text, processing_status, created_at
		 FROM study_materials
		 WHERE student_id = ? AND processing_status = 'completed' AND id IN (`+placeholders+`)
		 ORDER BY created_at`, args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMaterials(rows)
}

// DeleteMaterial removes a material owned by the student. Returns false when
// no matching row existed.
func (s *Store) DeleteMaterial(id string, studentID int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM study_materials WHERE id = ? AND student_id = ?`, id, studentID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func scanMaterials(rows *sql.Rows) ([]model.StudyMaterial, error) {
	var materials []model.StudyMaterial
	for rows.Next() {
		var m model.StudyMaterial
		if err := rows.Scan(&m.ID, &m.StudentID, &m.Title, &m.Subject, &m.ExtractedText, &m.ProcessingStatus, &m.CreatedAt); err != nil {
			return nil, err
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}
