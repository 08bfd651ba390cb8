package team

import "context"

type Repository interface {
	CreateTeam(ctx context.Context, creatorID int, name, currency string) (*Team, error)
	GetTeam(ctx context.Context, teamID int) (*TeamWithMembers, error)
	ListTeamsForUser(ctx context.Context, userID int) ([]Team, error)
	DeleteTeam(ctx context.Context, teamID int) error

	GetMember(ctx context.Context, teamID, userID int) (*Member, error)
	AddMember(ctx context.Context, teamID, userID int, role string) (*Member, error)
	RemoveMember(ctx context.Context, teamID, userID int) error

	// RecordExpense persists the expense with its splits and applies the
	// balance deltas to the member rows in one database transaction.
	RecordExpense(ctx context.Context, e *Expense, deltas map[int]BalanceDelta) (*Expense, error)

	// Settle inserts a settlement audit record and reduces the debtor's owes
	// and the creditor's should_receive (floored at zero) atomically. When
	// explicit is nil the amount defaults to min(owes, should_receive),
	// resolved against the locked member rows.
	Settle(ctx context.Context, teamID, fromUser, toUser int, explicit *int64) (*Settlement, error)

	ListExpenses(ctx context.Context, teamID int) ([]Expense, error)
	ListSettlements(ctx context.Context, teamID int) ([]Settlement, error)
}
