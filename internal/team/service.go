package team

import (
	"context"
	"errors"

	"centavo/internal/api"
	"centavo/internal/logger"
	"centavo/internal/metrics"
	"centavo/internal/user"
)

type Service interface {
	CreateTeam(ctx context.Context, creatorID int, req CreateTeamRequest) (*Team, error)
	GetTeam(ctx context.Context, requesterID, teamID int) (*TeamWithMembers, error)
	ListTeams(ctx context.Context, userID int) ([]Team, error)
	DeleteTeam(ctx context.Context, requesterID, teamID int) error

	AddMember(ctx context.Context, requesterID, teamID int, req AddMemberRequest) (*Member, error)
	RemoveMember(ctx context.Context, requesterID, teamID, memberID int) error

	RecordExpense(ctx context.Context, requesterID, teamID int, req RecordExpenseRequest) (*Expense, error)
	SettleDebt(ctx context.Context, requesterID, teamID int, req SettleRequest) (*Settlement, error)

	ListExpenses(ctx context.Context, requesterID, teamID int) ([]Expense, error)
	ListSettlements(ctx context.Context, requesterID, teamID int) ([]Settlement, error)
}

type service struct {
	repo     Repository
	userRepo user.Repository
}

func NewService(repo Repository, userRepo user.Repository) Service {
	return &service{repo: repo, userRepo: userRepo}
}

// requireTeam loads the team and checks the requester is a member. Teams a
// user does not belong to are reported as missing, not forbidden.
func (s *service) requireTeam(ctx context.Context, requesterID, teamID int) (*TeamWithMembers, *Member, error) {
	t, err := s.repo.GetTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, ErrTeamNotFound) {
			return nil, nil, api.NotFound("team not found")
		}
		return nil, nil, api.Storage(err)
	}

	for i := range t.Members {
		if t.Members[i].UserID == requesterID {
			return t, &t.Members[i], nil
		}
	}

	return nil, nil, api.NotFound("team not found")
}

func (s *service) CreateTeam(ctx context.Context, creatorID int, req CreateTeamRequest) (*Team, error) {
	t, err := s.repo.CreateTeam(ctx, creatorID, req.Name, req.Currency)
	if err != nil {
		return nil, api.Storage(err)
	}

	logger.Infof("Team %d created by user %d", t.ID, creatorID)
	return t, nil
}

func (s *service) GetTeam(ctx context.Context, requesterID, teamID int) (*TeamWithMembers, error) {
	t, _, err := s.requireTeam(ctx, requesterID, teamID)
	return t, err
}

func (s *service) ListTeams(ctx context.Context, userID int) ([]Team, error) {
	teams, err := s.repo.ListTeamsForUser(ctx, userID)
	if err != nil {
		return nil, api.Storage(err)
	}
	return teams, nil
}

func (s *service) DeleteTeam(ctx context.Context, requesterID, teamID int) error {
	t, _, err := s.requireTeam(ctx, requesterID, teamID)
	if err != nil {
		return err
	}

	if t.CreatorID != requesterID {
		return api.Forbidden("only the team creator can delete the team")
	}

	if err := s.repo.DeleteTeam(ctx, teamID); err != nil {
		return api.Storage(err)
	}

	return nil
}

func (s *service) AddMember(ctx context.Context, requesterID, teamID int, req AddMemberRequest) (*Member, error) {
	_, requester, err := s.requireTeam(ctx, requesterID, teamID)
	if err != nil {
		return nil, err
	}

	if requester.Role != RoleAdmin {
		return nil, api.Forbidden("only admins can add members")
	}

	if _, err := s.userRepo.FindByID(ctx, req.UserID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, api.NotFound("user not found")
		}
		return nil, api.Storage(err)
	}

	m, err := s.repo.AddMember(ctx, teamID, req.UserID, req.Role)
	if err != nil {
		if errors.Is(err, ErrAlreadyMember) {
			return nil, api.Conflict("user is already a team member")
		}
		return nil, api.Storage(err)
	}

	return m, nil
}

func (s *service) RemoveMember(ctx context.Context, requesterID, teamID, memberID int) error {
	t, requester, err := s.requireTeam(ctx, requesterID, teamID)
	if err != nil {
		return err
	}

	// The creator anchors the team and can never be removed, not even by
	// themself.
	if memberID == t.CreatorID {
		return api.Conflict("the team creator cannot be removed")
	}

	if memberID != requesterID && requester.Role != RoleAdmin {
		return api.Forbidden("only admins can remove other members")
	}

	if err := s.repo.RemoveMember(ctx, teamID, memberID); err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return api.NotFound("member not found")
		}
		return api.Storage(err)
	}

	return nil
}

func (s *service) RecordExpense(ctx context.Context, requesterID, teamID int, req RecordExpenseRequest) (*Expense, error) {
	t, _, err := s.requireTeam(ctx, requesterID, teamID)
	if err != nil {
		return nil, err
	}

	memberSet := make(map[int]struct{}, len(t.Members))
	memberIDs := make([]int, 0, len(t.Members))
	for _, m := range t.Members {
		memberSet[m.UserID] = struct{}{}
		memberIDs = append(memberIDs, m.UserID)
	}

	if _, ok := memberSet[req.PaidBy]; !ok {
		return nil, api.Validation("paid_by must be a team member")
	}

	var splits map[int]int64
	if req.SplitType == SplitEqual {
		splits = EqualSplits(req.AmountCents, memberIDs)
	} else {
		if len(req.Splits) == 0 {
			return nil, api.Validation("splits are required for custom and percentage split types")
		}
		splits = make(map[int]int64, len(req.Splits))
		var sum int64
		for _, s := range req.Splits {
			if _, ok := memberSet[s.UserID]; !ok {
				return nil, api.Validation("every split user must be a team member")
			}
			if _, dup := splits[s.UserID]; dup {
				return nil, api.Validation("duplicate user in splits")
			}
			splits[s.UserID] = s.ShareCents
			sum += s.ShareCents
		}
		if sum != req.AmountCents {
			return nil, api.Validation("split shares must sum to the expense amount")
		}
	}

	expense := &Expense{
		TeamID:      teamID,
		PaidBy:      req.PaidBy,
		AmountCents: req.AmountCents,
		SplitType:   req.SplitType,
		Title:       req.Title,
	}
	for userID, share := range splits {
		expense.Splits = append(expense.Splits, Split{UserID: userID, ShareCents: share})
	}

	deltas := ExpenseDeltas(req.PaidBy, req.AmountCents, splits)

	created, err := s.repo.RecordExpense(ctx, expense, deltas)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, api.NotFound("member not found")
		}
		return nil, api.Storage(err)
	}

	metrics.RecordTeamExpense(req.SplitType)

	return created, nil
}

func (s *service) SettleDebt(ctx context.Context, requesterID, teamID int, req SettleRequest) (*Settlement, error) {
	if _, _, err := s.requireTeam(ctx, requesterID, teamID); err != nil {
		return nil, err
	}

	if req.WithUserID == requesterID {
		return nil, api.Validation("cannot settle with yourself")
	}

	if _, err := s.repo.GetMember(ctx, teamID, req.WithUserID); err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, api.NotFound("member not found")
		}
		return nil, api.Storage(err)
	}

	settlement, err := s.repo.Settle(ctx, teamID, requesterID, req.WithUserID, req.AmountCents)
	if err != nil {
		switch {
		case errors.Is(err, ErrNothingToSettle):
			return nil, api.Conflict("nothing to settle")
		case errors.Is(err, ErrMemberNotFound):
			return nil, api.NotFound("member not found")
		default:
			return nil, api.Storage(err)
		}
	}

	metrics.RecordSettlement()

	return settlement, nil
}

func (s *service) ListExpenses(ctx context.Context, requesterID, teamID int) ([]Expense, error) {
	if _, _, err := s.requireTeam(ctx, requesterID, teamID); err != nil {
		return nil, err
	}

	expenses, err := s.repo.ListExpenses(ctx, teamID)
	if err != nil {
		return nil, api.Storage(err)
	}

	return expenses, nil
}

func (s *service) ListSettlements(ctx context.Context, requesterID, teamID int) ([]Settlement, error) {
	if _, _, err := s.requireTeam(ctx, requesterID, teamID); err != nil {
		return nil, err
	}

	settlements, err := s.repo.ListSettlements(ctx, teamID)
	if err != nil {
		return nil, api.Storage(err)
	}

	return settlements, nil
}
