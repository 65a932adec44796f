package store

import (
	"database/sql"
	"time"

	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/model"
)

// GetLedger returns the usage ledger for a student, or nil if none exists yet.
func (s *Store) GetLedger(studentID int64) (*model.UsageLedger, error) {
	var l model.UsageLedger
	err := s.db.QueryRow(
		`SELECT student_id, plan, daily_tokens_used, last_reset_date, premium_expiry_date, total_tokens_used
		 FROM usage_ledgers WHERE student_id = ?`, studentID,
	).Scan(&l.StudentID, &l.Plan, &l.DailyTokensUsed, &l.LastResetDate, &l.PremiumExpiryDate, &l.TotalTokensUsed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// PutLedger inserts or fully replaces a student's usage ledger.
func (s *Store) PutLedger(l model.UsageLedger) error {
	_, err := s.db.Exec(
		`INSERT INTO usage_ledgers (student_id, plan, daily_tokens_used, last_reset_date, premium_expiry_date, total_tokens_used)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(student_id) DO UPDATE SET
			plan = excluded.plan,
			daily_tokens_used = excluded.daily_tokens_used,
			last_reset_date = excluded.last_reset_date,
			premium_expiry_date = excluded.premium_expiry_date,
			total_tokens_used = excluded.total_tokens_used`,
		l.StudentID, l.Plan, l.DailyTokensUsed, l.LastResetDate, l.PremiumExpiryDate, l.TotalTokensUsed,
	)
	return err
}

// IncrementUsage bumps both the daily and the total token counters by one in
// a single statement, creating the ledger with counters at 1 when absent.
func (s *Store) IncrementUsage(studentID int64, today string) (*model.UsageLedger, error) {
	_, err := s.db.Exec(
		`INSERT INTO usage_ledgers (student_id, plan, daily_tokens_used, last_reset_date, total_tokens_used)
		 VALUES (?, 'free', 1, ?, 1)
		 ON CONFLICT(student_id) DO UPDATE SET
			daily_tokens_used = daily_tokens_used + 1,
			total_tokens_used = total_tokens_used + 1`,
		studentID, today,
	)
	if err != nil {
		return nil, err
	}
	return s.GetLedger(studentID)
}

// SetPremium upgrades a student to the premium plan until the given expiry.
func (s *Store) SetPremium(studentID int64, expiry time.Time, today string) error {
	_, err := s.db.Exec(
		`INSERT INTO usage_ledgers (student_id, plan, daily_tokens_used, last_reset_date, premium_expiry_date, total_tokens_used)
		 VALUES (?, 'premium', 0, ?, ?, 0)
		 ON CONFLICT(student_id) DO UPDATE SET
			plan = 'premium',
			premium_expiry_date = excluded.premium_expiry_date`,
		studentID, today, expiry,
	)
	return err
}
