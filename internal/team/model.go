package team

import "time"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"

	SplitEqual      = "equal"
	SplitCustom     = "custom"
	SplitPercentage = "percentage"
)

type Team struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Currency  string    `db:"currency" json:"currency"`
	CreatorID int       `db:"creator_id" json:"creator_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Member is a team membership row carrying the member's aggregate balance.
// Balances are totals, not a pairwise ledger: owes says how much the member
// owes the team overall, should_receive how much the team owes them.
type Member struct {
	TeamID             int       `db:"team_id" json:"team_id"`
	UserID             int       `db:"user_id" json:"user_id"`
	Role               string    `db:"role" json:"role"`
	OwesCents          int64     `db:"owes_cents" json:"owes_cents"`
	ShouldReceiveCents int64     `db:"should_receive_cents" json:"should_receive_cents"`
	JoinedAt           time.Time `db:"joined_at" json:"joined_at"`
}

type TeamWithMembers struct {
	Team
	Members []Member `json:"members"`
}

type Expense struct {
	ID          int       `db:"id" json:"id"`
	TeamID      int       `db:"team_id" json:"team_id"`
	PaidBy      int       `db:"paid_by" json:"paid_by"`
	AmountCents int64     `db:"amount_cents" json:"amount_cents"`
	SplitType   string    `db:"split_type" json:"split_type"`
	Title       string    `db:"title" json:"title"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	Splits      []Split   `json:"splits"`
}

type Split struct {
	ExpenseID  int   `db:"expense_id" json:"-"`
	UserID     int   `db:"user_id" json:"user_id"`
	ShareCents int64 `db:"share_cents" json:"share_cents"`
}

// Settlement is an immutable audit record of a debt reduction between two
// members.
type Settlement struct {
	ID          int       `db:"id" json:"id"`
	TeamID      int       `db:"team_id" json:"team_id"`
	FromUser    int       `db:"from_user" json:"from_user"`
	ToUser      int       `db:"to_user" json:"to_user"`
	AmountCents int64     `db:"amount_cents" json:"amount_cents"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type CreateTeamRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Currency string `json:"currency" binding:"omitempty,len=3"`
}

type AddMemberRequest struct {
	UserID int    `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"omitempty,oneof=admin member"`
}

type SplitInput struct {
	UserID     int   `json:"user_id" binding:"required"`
	ShareCents int64 `json:"share_cents" binding:"gte=0"`
}

type RecordExpenseRequest struct {
	AmountCents int64        `json:"amount_cents" binding:"required,gt=0"`
	PaidBy      int          `json:"paid_by" binding:"required"`
	SplitType   string       `json:"split_type" binding:"required,oneof=equal custom percentage"`
	Splits      []SplitInput `json:"splits" binding:"omitempty,dive"`
	Title       string       `json:"title" binding:"omitempty,max=200"`
}

type SettleRequest struct {
	WithUserID  int    `json:"with_user_id" binding:"required"`
	AmountCents *int64 `json:"amount_cents" binding:"omitempty,gt=0"`
}
