package transaction

import (
	"context"
	"errors"
	"time"

	"centavo/internal/api"
	"centavo/internal/category"
	"centavo/internal/logger"
	"centavo/internal/metrics"
)

// ExpenseObserver is notified after an expense has been committed, so budget
// thresholds can be re-evaluated outside the ledger's atomic unit.
type ExpenseObserver interface {
	ExpenseRecorded(ctx context.Context, userID, walletID int, categoryID *int, amountCents int64, occurredAt time.Time)
}

type Service interface {
	Create(ctx context.Context, userID int, req CreateTransactionRequest) (*Transaction, error)
	Update(ctx context.Context, userID, id int, req UpdateTransactionRequest) (*Transaction, error)
	Delete(ctx context.Context, userID, id int) error
	Get(ctx context.Context, userID, id int) (*Transaction, error)
	List(ctx context.Context, userID int, filter ListFilter) (*ListResult, error)
}

type service struct {
	repo         Repository
	categoryRepo category.Repository
	observer     ExpenseObserver
}

func NewService(repo Repository, categoryRepo category.Repository, observer ExpenseObserver) Service {
	return &service{
		repo:         repo,
		categoryRepo: categoryRepo,
		observer:     observer,
	}
}

func (s *service) Create(ctx context.Context, userID int, req CreateTransactionRequest) (*Transaction, error) {
	if req.Type == TypeTransfer {
		if req.ToWalletID == nil {
			return nil, api.Validation("to_wallet_id is required for transfers")
		}
		if *req.ToWalletID == req.WalletID {
			return nil, api.Validation("transfer source and destination must differ")
		}
		req.CategoryID = nil
	} else {
		if req.CategoryID == nil {
			return nil, api.Validation("category_id is required")
		}
		req.ToWalletID = nil

		cat, err := s.categoryRepo.GetVisible(ctx, userID, *req.CategoryID)
		if err != nil {
			if errors.Is(err, category.ErrCategoryNotFound) {
				return nil, api.NotFound("category not found")
			}
			return nil, api.Storage(err)
		}
		if cat.Type != req.Type {
			return nil, api.Validation("category type does not match transaction type")
		}
	}

	occurredAt := time.Now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	t := &Transaction{
		UserID:      userID,
		WalletID:    req.WalletID,
		ToWalletID:  req.ToWalletID,
		CategoryID:  req.CategoryID,
		Type:        req.Type,
		AmountCents: req.AmountCents,
		Title:       req.Title,
		Description: req.Description,
		OccurredAt:  occurredAt,
	}

	created, err := s.repo.Create(ctx, t)
	if err != nil {
		if errors.Is(err, ErrWalletNotFound) {
			return nil, api.NotFound("wallet not found")
		}
		return nil, api.Storage(err)
	}

	metrics.RecordTransaction(created.Type)

	if created.Type == TypeExpense && s.observer != nil {
		s.observer.ExpenseRecorded(ctx, userID, created.WalletID, created.CategoryID, created.AmountCents, created.OccurredAt)
	}

	return created, nil
}

func (s *service) Update(ctx context.Context, userID, id int, req UpdateTransactionRequest) (*Transaction, error) {
	if req.CategoryID != nil {
		cat, err := s.categoryRepo.GetVisible(ctx, userID, *req.CategoryID)
		if err != nil {
			if errors.Is(err, category.ErrCategoryNotFound) {
				return nil, api.NotFound("category not found")
			}
			return nil, api.Storage(err)
		}
		if req.Type != nil && *req.Type != TypeTransfer && cat.Type != *req.Type {
			return nil, api.Validation("category type does not match transaction type")
		}
	}

	updated, err := s.repo.Update(ctx, userID, id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrTransactionNotFound):
			return nil, api.NotFound("transaction not found")
		case errors.Is(err, ErrWalletNotFound):
			return nil, api.NotFound("wallet not found")
		case errors.Is(err, ErrSameWallet), errors.Is(err, ErrToWalletRequired), errors.Is(err, ErrCategoryRequired):
			return nil, api.Validation(err.Error())
		default:
			return nil, api.Storage(err)
		}
	}

	return updated, nil
}

func (s *service) Delete(ctx context.Context, userID, id int) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			return api.NotFound("transaction not found")
		}
		return api.Storage(err)
	}

	metrics.RecordTransactionDeleted()
	logger.Debugf("Transaction %d deleted by user %d", id, userID)

	return nil
}

func (s *service) Get(ctx context.Context, userID, id int) (*Transaction, error) {
	t, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			return nil, api.NotFound("transaction not found")
		}
		return nil, api.Storage(err)
	}

	return t, nil
}

func (s *service) List(ctx context.Context, userID int, filter ListFilter) (*ListResult, error) {
	result, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, api.Storage(err)
	}

	return result, nil
}
