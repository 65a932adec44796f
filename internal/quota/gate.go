// Package quota decides whether a student may invoke the AI features right
// now, maintaining the per-student usage ledger as a side effect.
package quota

import (
	"encoding/json"
	"time"

	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/store"
)

const (
	// DailyLimit is the number of AI requests a free-plan student gets per day.
	DailyLimit = 15
	// PremiumPriceNGN is the premium plan price, carried only for display.
	PremiumPriceNGN = 2500
)

// Remaining is the remaining-token count: either a number or unlimited.
// It serializes as the string "unlimited" for premium students and as a
// plain number otherwise, preserving the wire shape clients expect.
type Remaining struct {
	Unlimited bool
	Tokens    int
}

func (r Remaining) MarshalJSON() ([]byte, error) {
	if r.Unlimited {
		return json.Marshal("unlimited")
	}
	return json.Marshal(r.Tokens)
}

// UsageStatus is the result of a quota check.
type UsageStatus struct {
	CanUseAI          bool       `json:"canUseAI"`
	Plan              model.Plan `json:"plan"`
	DailyTokensUsed   int        `json:"dailyTokensUsed"`
	RemainingTokens   Remaining  `json:"remainingTokens"`
	TotalTokensUsed   int64      `json:"totalTokensUsed"`
	PremiumExpiryDate *time.Time `json:"premiumExpiryDate,omitempty"`
	PremiumPriceNGN   int        `json:"premiumPriceNGN"`
	DailyLimit        int        `json:"dailyLimit"`
}

// Gate computes usage decisions against the ledger store.
type Gate struct {
	store *store.Store
	now   func() time.Time
}

// New creates a Gate using the wall clock.
func New(s *store.Store) *Gate {
	return &Gate{store: s, now: time.Now}
}

// NewWithClock creates a Gate with an injected clock for tests.
func NewWithClock(s *store.Store, now func() time.Time) *Gate {
	return &Gate{store: s, now: now}
}

func (g *Gate) today() string {
	return g.now().Format("2006-01-02")
}

// Check reports whether the student may use AI right now. It creates the
// ledger lazily, resets the daily counter on day rollover, and downgrades
// expired premium plans. Calling it twice in a row never changes the
// daily counter.
func (g *Gate) Check(studentID int64) (*UsageStatus, error) {
	ledger, err := g.store.GetLedger(studentID)
	if err != nil {
		return nil, err
	}

	today := g.today()
	dirty := false

	if ledger == nil {
		ledger = &model.UsageLedger{
			StudentID:     studentID,
			Plan:          model.PlanFree,
			LastResetDate: today,
		}
		dirty = true
	}

	if ledger.LastResetDate != today {
		ledger.DailyTokensUsed = 0
		ledger.LastResetDate = today
		dirty = true
	}

	if ledger.Plan == model.PlanPremium && ledger.PremiumExpiryDate != nil && ledger.PremiumExpiryDate.Before(g.now()) {
		ledger.Plan = model.PlanFree
		ledger.PremiumExpiryDate = nil
		dirty = true
	}

	if dirty {
		if err := g.store.PutLedger(*ledger); err != nil {
			return nil, err
		}
	}

	return g.status(ledger), nil
}

// Increment records one AI request against the student's counters and
// returns the updated ledger. The ledger is seeded at 1 when absent.
func (g *Gate) Increment(studentID int64) (*model.UsageLedger, error) {
	return g.store.IncrementUsage(studentID, g.today())
}

func (g *Gate) status(l *model.UsageLedger) *UsageStatus {
	premium := l.Plan == model.PlanPremium
	remaining := Remaining{Unlimited: premium}
	if !premium {
		remaining.Tokens = DailyLimit - l.DailyTokensUsed
		if remaining.Tokens < 0 {
			remaining.Tokens = 0
		}
	}
	return &UsageStatus{
		CanUseAI:          premium || l.DailyTokensUsed < DailyLimit,
		Plan:              l.Plan,
		DailyTokensUsed:   l.DailyTokensUsed,
		RemainingTokens:   remaining,
		TotalTokensUsed:   l.TotalTokensUsed,
		PremiumExpiryDate: l.PremiumExpiryDate,
		PremiumPriceNGN:   PremiumPriceNGN,
		DailyLimit:        DailyLimit,
	}
}
