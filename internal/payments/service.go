package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/comanda-pos/backend/internal/audit"
	"github.com/comanda-pos/backend/internal/orders"
	"github.com/comanda-pos/backend/pkg/db/models"
	"github.com/comanda-pos/backend/pkg/enums"
	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
	"github.com/comanda-pos/backend/pkg/money"
)

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// TableKeeper frees the table once an order settles.
type TableKeeper interface {
	Release(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

// PayInput settles an order.
type PayInput struct {
	OrderID  uuid.UUID
	Method   enums.PaymentMethod
	Received decimal.Decimal
}

// Service settles orders and records the money taken.
type Service interface {
	Pay(ctx context.Context, input PayInput) (*models.Payment, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
	ListByRange(ctx context.Context, from, to time.Time) ([]models.Payment, error)
}

type service struct {
	repo      Repository
	orderRepo orders.Repository
	tx        TxRunner
	tables    TableKeeper
	audit     audit.Recorder
}

// NewService builds the payment service.
func NewService(repo Repository, orderRepo orders.Repository, tx TxRunner, tables TableKeeper, recorder audit.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if tables == nil {
		return nil, fmt.Errorf("table keeper is required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	return &service{repo: repo, orderRepo: orderRepo, tx: tx, tables: tables, audit: recorder}, nil
}

// Pay records the payment and closes the order. Cash must cover the total;
// card and qr always settle exactly.
func (s *service) Pay(ctx context.Context, input PayInput) (*models.Payment, error) {
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.Method))
	}

	var payment *models.Payment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByID(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot pay a %s order", order.Status))
		}
		if len(order.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cannot pay an empty order")
		}

		received := input.Received
		change := decimal.Zero
		if input.Method == enums.PaymentMethodCash {
			if err := money.ValidateAmount(received, "received"); err != nil {
				return err
			}
			if received.LessThan(order.Total) {
				return pkgerrors.New(pkgerrors.CodeValidation, "received amount does not cover the total").
					WithDetails(map[string]any{
						"total":    order.Total.String(),
						"received": received.String(),
					})
			}
			change = money.Round(received.Sub(order.Total))
		} else {
			received = order.Total
		}

		payment = &models.Payment{
			OrderID:  order.ID,
			Method:   input.Method,
			Amount:   order.Total,
			Received: received,
			Change:   change,
		}
		if err := s.repo.WithTx(tx).Create(ctx, payment); err != nil {
			return fmt.Errorf("creating payment: %w", err)
		}

		now := time.Now().UTC()
		order.Status = enums.OrderStatusCompleted
		order.CompletedAt = &now
		if order.TableID != nil {
			if err := s.tables.Release(ctx, tx, *order.TableID); err != nil {
				return err
			}
			order.TableID = nil
		}
		if err := orderRepo.Update(ctx, order); err != nil {
			return err
		}

		return s.audit.Record(ctx, tx, enums.AuditActionOrderPaid, models.Order{}.TableName(), order.ID, map[string]any{
			"method": input.Method,
			"amount": order.Total.String(),
			"change": change.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	return s.repo.ListByOrder(ctx, orderID)
}

func (s *service) ListByRange(ctx context.Context, from, to time.Time) ([]models.Payment, error) {
	return s.repo.ListByRange(ctx, from, to)
}
