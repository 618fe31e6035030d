package tables

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/comanda-pos/backend/pkg/db/models"
	"github.com/comanda-pos/backend/pkg/enums"
	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
)

// Service manages the floor plan and table occupancy. Occupy and Release
// run against the caller's transaction so order creation can seat a table
// atomically with the order row.
type Service interface {
	Create(ctx context.Context, number, capacity int) (*models.DiningTable, error)
	Get(ctx context.Context, id uuid.UUID) (*models.DiningTable, error)
	List(ctx context.Context) ([]models.DiningTable, error)
	SetStatus(ctx context.Context, id uuid.UUID, status enums.TableStatus) (*models.DiningTable, error)
	Delete(ctx context.Context, id uuid.UUID) error

	Occupy(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	Release(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds the table service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, number, capacity int) (*models.DiningTable, error) {
	if number <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "table number must be positive")
	}
	if capacity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "capacity must be positive")
	}

	table := &models.DiningTable{
		Number:   number,
		Capacity: capacity,
		Status:   enums.TableStatusAvailable,
	}
	if err := s.repo.Create(ctx, table); err != nil {
		return nil, fmt.Errorf("creating table: %w", err)
	}
	return table, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.DiningTable, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]models.DiningTable, error) {
	return s.repo.List(ctx)
}

func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status enums.TableStatus) (*models.DiningTable, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid table status %q", status))
	}
	table, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	table.Status = status
	if err := s.repo.Update(ctx, table); err != nil {
		return nil, err
	}
	return table, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	table, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if table.Status == enums.TableStatusOccupied {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot delete an occupied table")
	}
	return s.repo.Delete(ctx, id)
}

// Occupy seats a table for a new order. Only an available table can be
// taken.
func (s *service) Occupy(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	repo := s.repo.WithTx(tx)
	table, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if table.Status == enums.TableStatusOccupied {
		return pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("table %d is already occupied", table.Number))
	}
	table.Status = enums.TableStatusOccupied
	return repo.Update(ctx, table)
}

// Release frees a table after its order settles or cancels. A table that
// disappeared is not an error.
func (s *service) Release(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	repo := s.repo.WithTx(tx)
	table, err := repo.GetByID(ctx, id)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return nil
		}
		return err
	}
	table.Status = enums.TableStatusAvailable
	return repo.Update(ctx, table)
}
