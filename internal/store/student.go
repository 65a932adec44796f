package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/model"
)

// CreateStudent inserts a new student account.
func (s *Store) CreateStudent(st model.Student) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO students (matric_no, name, email, password_hash, role, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		st.MatricNo, st.Name, st.Email, st.PasswordHash, st.Role, st.Active, time.Now(),
	)
	if err != nil {
		slog.Error("failed to create student", "matric_no", st.MatricNo, "error", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.Info("created student", "id", id, "matric_no", st.MatricNo, "role", st.Role)
	return id, nil
}

// GetStudentByMatricNo returns a student by matriculation number.
func (s *Store) GetStudentByMatricNo(matricNo string) (*model.Student, error) {
	return s.scanStudent(s.db.QueryRow(
		`SELECT id, matric_no, name, email, password_hash, role, active, created_at
		 FROM students WHERE matric_no = ?`, matricNo,
	))
}

// GetStudentByID returns a student by ID.
func (s *Store) GetStudentByID(id int64) (*model.Student, error) {
	return s.scanStudent(s.db.QueryRow(
		`SELECT id, matric_no, name, email, password_hash, role, active, created_at
		 FROM students WHERE id = ?`, id,
	))
}

func (s *Store) scanStudent(row *sql.Row) (*model.Student, error) {
	var st model.Student
	err := row.Scan(&st.ID, &st.MatricNo, &st.Name, &st.Email, &st.PasswordHash, &st.Role, &st.Active, &st.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// ListStudents returns all students ordered by ID.
func (s *Store) ListStudents() ([]model.Student, error) {
	rows, err := s.db.Query(
		`SELECT id, matric_no, name, email, password_hash, role, active, created_at
		 FROM students ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var students []model.Student
	for rows.Next() {
		var st model.Student
		if err := rows.Scan(&st.ID, &st.MatricNo, &st.Name, &st.Email, &st.PasswordHash, &st.Role, &st.Active, &st.CreatedAt); err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

// ToggleStudentActive flips the active flag on a student.
func (s *Store) ToggleStudentActive(id int64) error {
	_, err := s.db.Exec(`UPDATE students SET active = NOT active WHERE id = ?`, id)
	return err
}

// StudentCount returns the total number of students.
func (s *Store) StudentCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM students`).Scan(&count)
	return count, err
}

// DeleteStudentCascade removes a student and everything keyed by them:
// exams, study materials, usage ledger, analytics, and auth sessions.
func (s *Store) DeleteStudentCascade(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM exams WHERE student_id = ?`,
		`DELETE FROM study_materials WHERE student_id = ?`,
		`DELETE FROM usage_ledgers WHERE student_id = ?`,
		`DELETE FROM student_analytics WHERE student_id = ?`,
		`DELETE FROM auth_sessions WHERE student_id = ?`,
		`DELETE FROM students WHERE id = ?`,
	} {
		if _, err := tx.Exec(q, id); err != nil {
			return fmt.Errorf("cascade delete student %d: %w", id, err)
		}
	}

	return tx.Commit()
}
