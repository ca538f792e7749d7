package models

import "time"

type UserAccount struct {
	UserID           string    `json:"user_id" db:"user_id"`
	CreditsCents     int64     `json:"-" db:"credits_cents"`
	QuestionsAsked   int       `json:"questions_asked" db:"questions_asked"`
	ReportsGenerated int       `json:"reports_generated" db:"reports_generated"`
	SpentCents       int64     `json:"-" db:"spent_cents"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

func (u *UserAccount) CreditsBalance() float64 {
	return CentsToDollars(u.CreditsCents)
}

type UsageEvent struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	Kind          string    `db:"kind"`
	Label         string    `db:"label"`
	CorrelationID string    `db:"correlation_id"`
	AmountCents   int64     `db:"amount_cents"`
	Success       bool      `db:"success"`
	CreatedAt     time.Time `db:"created_at"`
}

type Pricing struct {
	PricePerQuestion float64 `json:"price_per_question"`
	PricePerReport   float64 `json:"price_per_report"`
}

type UsageSummary struct {
	CreditsBalance   float64 `json:"credits_balance"`
	QuestionsAsked   int     `json:"questions_asked"`
	ReportsGenerated int     `json:"reports_generated"`
	TotalSpent       float64 `json:"total_spent"`
	Pricing          Pricing `json:"pricing"`
}

func CentsToDollars(cents int64) float64 {
	return float64(cents) / 100
}

func DollarsToCents(dollars float64) int64 {
	if dollars < 0 {
		return -int64(-dollars*100 + 0.5)
	}
	return int64(dollars*100 + 0.5)
}
