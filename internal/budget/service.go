package budget

import (
	"context"
	"errors"
	"time"

	"centavo/internal/api"
	"centavo/internal/category"
	"centavo/internal/wallet"
)

type Service interface {
	Create(ctx context.Context, userID int, req CreateBudgetRequest) (*Budget, error)
	Get(ctx context.Context, userID, id int) (*Budget, error)
	List(ctx context.Context, userID int) ([]Budget, error)
	Update(ctx context.Context, userID, id int, req UpdateBudgetRequest) (*Budget, error)
	Delete(ctx context.Context, userID, id int) error
}

type service struct {
	repo         Repository
	categoryRepo category.Repository
	walletRepo   wallet.Repository
}

func NewService(repo Repository, categoryRepo category.Repository, walletRepo wallet.Repository) Service {
	return &service{
		repo:         repo,
		categoryRepo: categoryRepo,
		walletRepo:   walletRepo,
	}
}

func (s *service) Create(ctx context.Context, userID int, req CreateBudgetRequest) (*Budget, error) {
	if req.CategoryID != nil {
		cat, err := s.categoryRepo.GetVisible(ctx, userID, *req.CategoryID)
		if err != nil {
			if errors.Is(err, category.ErrCategoryNotFound) {
				return nil, api.NotFound("category not found")
			}
			return nil, api.Storage(err)
		}
		if cat.Type != category.TypeExpense {
			return nil, api.Validation("budgets can only track expense categories")
		}
	}

	if req.WalletID != nil {
		if _, err := s.walletRepo.GetByID(ctx, userID, *req.WalletID); err != nil {
			if errors.Is(err, wallet.ErrWalletNotFound) {
				return nil, api.NotFound("wallet not found")
			}
			return nil, api.Storage(err)
		}
	}

	threshold := req.AlertThreshold
	if threshold == 0 {
		threshold = 80
	}

	start, end := PeriodWindow(req.Period, time.Now())

	b := &Budget{
		UserID:         userID,
		CategoryID:     req.CategoryID,
		WalletID:       req.WalletID,
		AmountCents:    req.AmountCents,
		Period:         req.Period,
		StartDate:      start,
		EndDate:        end,
		AlertThreshold: threshold,
	}

	created, err := s.repo.Create(ctx, b)
	if err != nil {
		return nil, api.Storage(err)
	}

	return created, nil
}

func (s *service) Get(ctx context.Context, userID, id int) (*Budget, error) {
	b, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, ErrBudgetNotFound) {
			return nil, api.NotFound("budget not found")
		}
		return nil, api.Storage(err)
	}
	return b, nil
}

func (s *service) List(ctx context.Context, userID int) ([]Budget, error) {
	budgets, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, api.Storage(err)
	}
	return budgets, nil
}

func (s *service) Update(ctx context.Context, userID, id int, req UpdateBudgetRequest) (*Budget, error) {
	b, err := s.repo.Update(ctx, userID, id, req)
	if err != nil {
		if errors.Is(err, ErrBudgetNotFound) {
			return nil, api.NotFound("budget not found")
		}
		return nil, api.Storage(err)
	}
	return b, nil
}

func (s *service) Delete(ctx context.Context, userID, id int) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, ErrBudgetNotFound) {
			return api.NotFound("budget not found")
		}
		return api.Storage(err)
	}
	return nil
}
