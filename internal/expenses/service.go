package expenses

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/comanda-pos/backend/pkg/db/models"
	"github.com/comanda-pos/backend/pkg/enums"
	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
	"github.com/comanda-pos/backend/pkg/money"
)

// Input is the payload for recording or editing an expense.
type Input struct {
	Category    enums.ExpenseCategory
	Description string
	Amount      decimal.Decimal
	IncurredAt  time.Time
}

// Service records business costs.
type Service interface {
	Create(ctx context.Context, input Input) (*models.Expense, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	ListByRange(ctx context.Context, from, to time.Time, category *enums.ExpenseCategory) ([]models.Expense, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*models.Expense, error)
	Delete(ctx context.Context, id uuid.UUID) error
	TotalsByCategory(ctx context.Context, from, to time.Time) (map[enums.ExpenseCategory]decimal.Decimal, error)
}

type service struct {
	repo Repository
}

// NewService builds the expense service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	return &service{repo: repo}, nil
}

func validateInput(input Input) error {
	if !input.Category.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid expense category %q", input.Category))
	}
	if input.Description == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}
	if input.IncurredAt.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "incurred_at is required")
	}
	return money.ValidatePositiveAmount(input.Amount, "amount")
}

func (s *service) Create(ctx context.Context, input Input) (*models.Expense, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	expense := &models.Expense{
		Category:    input.Category,
		Description: input.Description,
		Amount:      input.Amount,
		IncurredAt:  input.IncurredAt,
	}
	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("creating expense: %w", err)
	}
	return expense, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByRange(ctx context.Context, from, to time.Time, category *enums.ExpenseCategory) ([]models.Expense, error) {
	if category != nil && !category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid expense category %q", *category))
	}
	return s.repo.ListByRange(ctx, from, to, category)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*models.Expense, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	expense, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	expense.Category = input.Category
	expense.Description = input.Description
	expense.Amount = input.Amount
	expense.IncurredAt = input.IncurredAt
	if err := s.repo.Update(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) TotalsByCategory(ctx context.Context, from, to time.Time) (map[enums.ExpenseCategory]decimal.Decimal, error) {
	rows, err := s.repo.ListByRange(ctx, from, to, nil)
	if err != nil {
		return nil, err
	}
	totals := make(map[enums.ExpenseCategory]decimal.Decimal)
	for _, row := range rows {
		totals[row.Category] = totals[row.Category].Add(row.Amount)
	}
	return totals, nil
}
