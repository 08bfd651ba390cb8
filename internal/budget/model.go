package budget

import "time"

const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

// Budget caps expense spending for a user over a recurring window,
// optionally scoped to a category and/or wallet. SpentCents is aggregated
// from matching expense transactions at read time, never stored.
type Budget struct {
	ID             int       `db:"id" json:"id"`
	UserID         int       `db:"user_id" json:"user_id"`
	CategoryID     *int      `db:"category_id" json:"category_id,omitempty"`
	WalletID       *int      `db:"wallet_id" json:"wallet_id,omitempty"`
	AmountCents    int64     `db:"amount_cents" json:"amount_cents"`
	Period         string    `db:"period" json:"period"`
	StartDate      time.Time `db:"start_date" json:"start_date"`
	EndDate        time.Time `db:"end_date" json:"end_date"`
	AlertThreshold int       `db:"alert_threshold" json:"alert_threshold"`
	SpentCents     int64     `db:"spent_cents" json:"spent_cents"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Exceeded reports whether spending has reached the alert threshold.
func (b *Budget) Exceeded() bool {
	return b.SpentCents*100 >= b.AmountCents*int64(b.AlertThreshold)
}

type CreateBudgetRequest struct {
	CategoryID     *int   `json:"category_id"`
	WalletID       *int   `json:"wallet_id"`
	AmountCents    int64  `json:"amount_cents" binding:"required,gt=0"`
	Period         string `json:"period" binding:"required,oneof=weekly monthly yearly"`
	AlertThreshold int    `json:"alert_threshold" binding:"omitempty,min=1,max=100"`
}

type UpdateBudgetRequest struct {
	AmountCents    *int64  `json:"amount_cents" binding:"omitempty,gt=0"`
	Period         *string `json:"period" binding:"omitempty,oneof=weekly monthly yearly"`
	AlertThreshold *int    `json:"alert_threshold" binding:"omitempty,min=1,max=100"`
}
