package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/model"
)

// InsertExam stores a new exam instance.
func (s *Store) InsertExam(e model.ExamInstance) error {
	questions, err := json.Marshal(e.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	answers := []byte("{}")
	if e.StudentAnswers != nil {
		if answers, err = json.Marshal(e.StudentAnswers); err != nil {
			return fmt.Errorf("marshal answers: %w", err)
		}
	}
	_, err = s.db.Exec(
		`INSERT INTO exams (id, student_id, title, subject, questions, duration, status, student_answers,
			score, total_points, percentage, time_spent, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.StudentID, e.Title, e.Subject, string(questions), e.Duration, e.Status, string(answers),
		e.Score, e.TotalPoints, e.Percentage, e.TimeSpent, time.Now(),
	)
	return err
}

const examColumns = `id, student_id, title, subject, questions, duration, status, student_answers,
	score, total_points, percentage, time_spent, started_at, completed_at`

// GetExam returns an exam owned by the given student, or nil.
func (s *Store) GetExam(id string, studentID int64) (*model.ExamInstance, error) {
	row := s.db.QueryRow(
		`SELECT `+examColumns+` FROM exams WHERE id = ? AND student_id = ?`, id, studentID,
	)
	e, err := scanExam(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListExams returns one page of a student's exams, newest first.
func (s *Store) ListExams(studentID int64, limit, offset int) ([]model.ExamInstance, error) {
	rows, err := s.db.Query(
		`SELECT `+examColumns+` FROM exams WHERE student_id = ?
		 ORDER BY started_at DESC LIMIT ? OFFSET ?`, studentID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var exams []model.ExamInstance
	for rows.Next() {
		e, err := scanExam(rows.Scan)
		if err != nil {
			return nil, err
		}
		exams = append(exams, *e)
	}
	return exams, rows.Err()
}

// CountExams returns the number of exams a student owns.
func (s *Store) CountExams(studentID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM exams WHERE student_id = ?`, studentID).Scan(&count)
	return count, err
}

// CompleteExam writes the score report onto an exam and moves it from active
// to completed. The status check in the WHERE clause makes the transition a
// compare-and-swap: a second submission finds zero active rows and returns
// false, so a completed exam can never be re-scored.
func (s *Store) CompleteExam(id string, studentID int64, answers map[string]string, score, totalPoints, percentage, timeSpent int) (bool, error) {
	raw, err := json.Marshal(answers)
	if err != nil {
		return false, fmt.Errorf("marshal answers: %w", err)
	}
	res, err := s.db.Exec(
		`UPDATE exams SET student_answers = ?, score = ?, total_points = ?, percentage = ?,
			time_spent = ?, status = 'completed', completed_at = ?
		 WHERE id = ? AND student_id = ? AND status = 'active'`,
		string(raw), score, totalPoints, percentage, timeSpent, time.Now(), id, studentID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteExam removes an exam owned by the student. Returns false when no
// matching row existed.
func (s *Store) DeleteExam(id string, studentID int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM exams WHERE id = ? AND student_id = ?`, id, studentID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Leaderboard aggregates completed exams across all active students,
// best average percentage first.
func (s *Store) Leaderboard(limit int) ([]model.LeaderboardEntry, error) {
	rows, err := s.db.Query(
		`SELECT st.id, st.name, st.matric_no, COUNT(e.id), AVG(e.percentage), MAX(e.score)
		 FROM exams e
		 JOIN students st ON st.id = e.student_id
		 WHERE e.status = 'completed' AND st.active
		 GROUP BY st.id, st.name, st.matric_no
		 ORDER BY AVG(e.percentage) DESC, COUNT(e.id) DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []model.LeaderboardEntry
	for rows.Next() {
		var le model.LeaderboardEntry
		if err := rows.Scan(&le.StudentID, &le.Name, &le.MatricNo, &le.ExamsTaken, &le.AvgPercentage, &le.BestScore); err != nil {
			return nil, err
		}
		entries = append(entries, le)
	}
	return entries, rows.Err()
}

func scanExam(scan func(...any) error) (*model.ExamInstance, error) {
	var e model.ExamInstance
	var questions, answers string
	err := scan(&e.ID, &e.StudentID, &e.Title, &e.Subject, &questions, &e.Duration, &e.Status, &answers,
		&e.Score, &e.TotalPoints, &e.Percentage, &e.TimeSpent, &e.StartedAt, &e.CompletedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(questions), &e.Questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions for exam %s: %w", e.ID, err)
	}
	if answers != "" && answers != "{}" {
		if err := json.Unmarshal([]byte(answers), &e.StudentAnswers); err != nil {
			return nil, fmt.Errorf("unmarshal answers for exam %s: %w", e.ID, err)
		}
	}
	return &e, nil
}
