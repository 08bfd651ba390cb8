package team

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"centavo/internal/db"
)

var (
	ErrTeamNotFound    = errors.New("team not found")
	ErrMemberNotFound  = errors.New("member not found")
	ErrAlreadyMember   = errors.New("user is already a team member")
	ErrNothingToSettle = errors.New("nothing to settle")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(database *sqlx.DB) Repository {
	return &repository{db: database}
}

func (r *repository) CreateTeam(ctx context.Context, creatorID int, name, currency string) (*Team, error) {
	if currency == "" {
		currency = "USD"
	}

	var t Team
	err := db.RunInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx,
			`INSERT INTO teams (name, currency, creator_id)
			 VALUES ($1, $2, $3)
			 RETURNING id, name, currency, creator_id, created_at`,
			name, currency, creatorID,
		).StructScan(&t)
		if err != nil {
			return err
		}

		// The creator joins as admin with zeroed balances.
		_, err = tx.ExecContext(ctx,
			`INSERT INTO team_members (team_id, user_id, role) VALUES ($1, $2, 'admin')`,
			t.ID, creatorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *repository) GetTeam(ctx context.Context, teamID int) (*TeamWithMembers, error) {
	var t Team
	err := r.db.GetContext(ctx, &t,
		`SELECT id, name, currency, creator_id, created_at FROM teams WHERE id = $1`,
		teamID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}

	members := []Member{}
	err = r.db.SelectContext(ctx, &members,
		`SELECT team_id, user_id, role, owes_cents, should_receive_cents, joined_at
		 FROM team_members
		 WHERE team_id = $1
		 ORDER BY joined_at ASC`,
		teamID,
	)
	if err != nil {
		return nil, err
	}

	return &TeamWithMembers{Team: t, Members: members}, nil
}

func (r *repository) ListTeamsForUser(ctx context.Context, userID int) ([]Team, error) {
	teams := []Team{}
	err := r.db.SelectContext(ctx, &teams,
		`SELECT t.id, t.name, t.currency, t.creator_id, t.created_at
		 FROM teams t
		 JOIN team_members m ON m.team_id = t.id
		 WHERE m.user_id = $1
		 ORDER BY t.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	return teams, nil
}

func (r *repository) DeleteTeam(ctx context.Context, teamID int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, teamID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTeamNotFound
	}

	return nil
}

func (r *repository) GetMember(ctx context.Context, teamID, userID int) (*Member, error) {
	var m Member
	err := r.db.GetContext(ctx, &m,
		`SELECT team_id, user_id, role, owes_cents, should_receive_cents, joined_at
		 FROM team_members
		 WHERE team_id = $1 AND user_id = $2`,
		teamID, userID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *repository) AddMember(ctx context.Context, teamID, userID int, role string) (*Member, error) {
	if role == "" {
		role = RoleMember
	}

	var m Member
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO team_members (team_id, user_id, role)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (team_id, user_id) DO NOTHING
		 RETURNING team_id, user_id, role, owes_cents, should_receive_cents, joined_at`,
		teamID, userID, role,
	).StructScan(&m)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAlreadyMember
	}
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *repository) RemoveMember(ctx context.Context, teamID, userID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`,
		teamID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrMemberNotFound
	}

	return nil
}

// lockMembers locks the member rows in ascending user id order and fails
// with ErrMemberNotFound when any user is not on the team.
func lockMembers(ctx context.Context, tx *sqlx.Tx, teamID int, userIDs []int) (map[int]*Member, error) {
	seen := make(map[int]struct{}, len(userIDs))
	ids := make([]int, 0, len(userIDs))
	for _, id := range userIDs {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)

	rows := []Member{}
	err := tx.SelectContext(ctx, &rows,
		`SELECT team_id, user_id, role, owes_cents, should_receive_cents, joined_at
		 FROM team_members
		 WHERE team_id = $1 AND user_id = ANY($2)
		 ORDER BY user_id
		 FOR UPDATE`,
		teamID, pq.Array(ids),
	)
	if err != nil {
		return nil, err
	}
	if len(rows) != len(ids) {
		return nil, ErrMemberNotFound
	}

	members := make(map[int]*Member, len(rows))
	for i := range rows {
		members[rows[i].UserID] = &rows[i]
	}

	return members, nil
}

func (r *repository) RecordExpense(ctx context.Context, e *Expense, deltas map[int]BalanceDelta) (*Expense, error) {
	var created Expense
	err := db.RunInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		userIDs := make([]int, 0, len(deltas))
		for id := range deltas {
			userIDs = append(userIDs, id)
		}
		if _, err := lockMembers(ctx, tx, e.TeamID, userIDs); err != nil {
			return err
		}

		err := tx.QueryRowxContext(ctx,
			`INSERT INTO team_expenses (team_id, paid_by, amount_cents, split_type, title)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, team_id, paid_by, amount_cents, split_type, title, created_at`,
			e.TeamID, e.PaidBy, e.AmountCents, e.SplitType, e.Title,
		).StructScan(&created)
		if err != nil {
			return err
		}

		for _, s := range e.Splits {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO team_expense_splits (expense_id, user_id, share_cents)
				 VALUES ($1, $2, $3)`,
				created.ID, s.UserID, s.ShareCents); err != nil {
				return err
			}
		}

		ids := make([]int, 0, len(deltas))
		for id := range deltas {
			ids = append(ids, id)
		}
		sort.Ints(ids)

		for _, userID := range ids {
			d := deltas[userID]
			if d.OwesCents == 0 && d.ShouldReceiveCents == 0 {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE team_members
				 SET owes_cents = owes_cents + $1,
				     should_receive_cents = should_receive_cents + $2
				 WHERE team_id = $3 AND user_id = $4`,
				d.OwesCents, d.ShouldReceiveCents, e.TeamID, userID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	created.Splits = e.Splits
	return &created, nil
}

func (r *repository) Settle(ctx context.Context, teamID, fromUser, toUser int, explicit *int64) (*Settlement, error) {
	var s Settlement
	err := db.RunInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		members, err := lockMembers(ctx, tx, teamID, []int{fromUser, toUser})
		if err != nil {
			return err
		}

		debtor := members[fromUser]
		creditor := members[toUser]

		amountCents := SettlementAmount(explicit, debtor.OwesCents, creditor.ShouldReceiveCents)
		if amountCents <= 0 {
			return ErrNothingToSettle
		}

		err = tx.QueryRowxContext(ctx,
			`INSERT INTO settlements (team_id, from_user, to_user, amount_cents)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, team_id, from_user, to_user, amount_cents, created_at`,
			teamID, fromUser, toUser, amountCents,
		).StructScan(&s)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE team_members SET owes_cents = $1 WHERE team_id = $2 AND user_id = $3`,
			clampedSub(debtor.OwesCents, amountCents), teamID, fromUser); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE team_members SET should_receive_cents = $1 WHERE team_id = $2 AND user_id = $3`,
			clampedSub(creditor.ShouldReceiveCents, amountCents), teamID, toUser)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *repository) ListExpenses(ctx context.Context, teamID int) ([]Expense, error) {
	expenses := []Expense{}
	err := r.db.SelectContext(ctx, &expenses,
		`SELECT id, team_id, paid_by, amount_cents, split_type, title, created_at
		 FROM team_expenses
		 WHERE team_id = $1
		 ORDER BY created_at DESC`,
		teamID,
	)
	if err != nil {
		return nil, err
	}

	if len(expenses) == 0 {
		return expenses, nil
	}

	ids := make([]int, len(expenses))
	index := make(map[int]*Expense, len(expenses))
	for i := range expenses {
		ids[i] = expenses[i].ID
		index[expenses[i].ID] = &expenses[i]
	}

	splits := []Split{}
	err = r.db.SelectContext(ctx, &splits,
		`SELECT expense_id, user_id, share_cents
		 FROM team_expense_splits
		 WHERE expense_id = ANY($1)
		 ORDER BY expense_id, user_id`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, err
	}

	for _, s := range splits {
		e := index[s.ExpenseID]
		e.Splits = append(e.Splits, s)
	}

	return expenses, nil
}

func (r *repository) ListSettlements(ctx context.Context, teamID int) ([]Settlement, error) {
	settlements := []Settlement{}
	err := r.db.SelectContext(ctx, &settlements,
		`SELECT id, team_id, from_user, to_user, amount_cents, created_at
		 FROM settlements
		 WHERE team_id = $1
		 ORDER BY created_at DESC`,
		teamID,
	)
	if err != nil {
		return nil, err
	}

	return settlements, nil
}
