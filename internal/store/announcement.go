package store

import (
	"time"

	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/model"
)

// CreateAnnouncement stores a portal-wide notice.
func (s *Store) CreateAnnouncement(a model.Announcement) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO announcements (title, body, created_by, created_at) VALUES (?, ?, ?, ?)`,
		a.Title, a.Body, a.CreatedBy, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListAnnouncements returns all announcements, newest first.
func (s *Store) ListAnnouncements() ([]model.Announcement, error) {
	rows, err := s.db.Query(
		`SELECT id, title, body, created_by, created_at FROM announcements ORDER BY id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var announcements []model.Announcement
	for rows.Next() {
		var a model.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.CreatedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		announcements = append(announcements, a)
	}
	return announcements, rows.Err()
}

// DeleteAnnouncement removes an announcement. Returns false when no row existed.
func (s *Store) DeleteAnnouncement(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM announcements WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
