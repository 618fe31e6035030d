package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/comanda-pos/backend/internal/orders"
	"github.com/comanda-pos/backend/pkg/db/models"
	"github.com/comanda-pos/backend/pkg/enums"
	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
)

type stubPaymentRepo struct {
	created *models.Payment
}

func (s *stubPaymentRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	s.created = payment
	return nil
}

func (s *stubPaymentRepo) ListByOrder(context.Context, uuid.UUID) ([]models.Payment, error) {
	return nil, nil
}

func (s *stubPaymentRepo) ListByRange(context.Context, time.Time, time.Time) ([]models.Payment, error) {
	return nil, nil
}

// stubOrderRepo overrides only the methods Pay touches; anything else
// panics through the embedded nil interface.
type stubOrderRepo struct {
	orders.Repository
	order *models.Order
	saved *models.Order
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.order, nil
}

func (s *stubOrderRepo) Update(ctx context.Context, order *models.Order) error {
	s.saved = order
	return nil
}

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type noopTables struct {
	released []uuid.UUID
}

func (n *noopTables) Release(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	n.released = append(n.released, id)
	return nil
}

type noopAudit struct {
	actions []enums.AuditAction
}

func (n *noopAudit) Record(ctx context.Context, tx *gorm.DB, action enums.AuditAction, entityTable string, entityID uuid.UUID, details any) error {
	n.actions = append(n.actions, action)
	return nil
}

func (n *noopAudit) List(context.Context, string, uuid.UUID, int) ([]models.AuditLog, error) {
	return nil, nil
}

func payableOrder() *models.Order {
	return &models.Order{
		ID:     uuid.New(),
		Status: enums.OrderStatusServed,
		Type:   enums.OrderTypeDineIn,
		Total:  decimal.RequireFromString("22.50"),
		Items:  []models.OrderLineItem{{Quantity: 1}},
	}
}

func newPayFixture(t *testing.T, order *models.Order) (Service, *stubPaymentRepo, *stubOrderRepo, *noopTables, *noopAudit) {
	t.Helper()
	paymentRepo := &stubPaymentRepo{}
	orderRepo := &stubOrderRepo{order: order}
	tablesStub := &noopTables{}
	auditStub := &noopAudit{}
	svc, err := NewService(paymentRepo, orderRepo, passthroughTx{}, tablesStub, auditStub)
	require.NoError(t, err)
	return svc, paymentRepo, orderRepo, tablesStub, auditStub
}

func TestPayCashComputesChangeAndClosesOrder(t *testing.T) {
	order := payableOrder()
	tableID := uuid.New()
	order.TableID = &tableID
	svc, paymentRepo, orderRepo, tablesStub, auditStub := newPayFixture(t, order)

	payment, err := svc.Pay(context.Background(), PayInput{
		OrderID:  order.ID,
		Method:   enums.PaymentMethodCash,
		Received: decimal.RequireFromString("25.00"),
	})
	require.NoError(t, err)

	assert.True(t, payment.Amount.Equal(decimal.RequireFromString("22.50")))
	assert.True(t, payment.Change.Equal(decimal.RequireFromString("2.50")))
	require.NotNil(t, paymentRepo.created)

	require.NotNil(t, orderRepo.saved)
	assert.Equal(t, enums.OrderStatusCompleted, orderRepo.saved.Status)
	assert.NotNil(t, orderRepo.saved.CompletedAt)
	assert.Equal(t, []uuid.UUID{tableID}, tablesStub.released)
	assert.Nil(t, orderRepo.saved.TableID, "settled orders must not keep the table reference")
	assert.Contains(t, auditStub.actions, enums.AuditActionOrderPaid)
}

func TestPayCashRejectsShortPayment(t *testing.T) {
	order := payableOrder()
	svc, _, orderRepo, _, _ := newPayFixture(t, order)

	_, err := svc.Pay(context.Background(), PayInput{
		OrderID:  order.ID,
		Method:   enums.PaymentMethodCash,
		Received: decimal.RequireFromString("20.00"),
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Nil(t, orderRepo.saved)
}

func TestPayCardSettlesExactly(t *testing.T) {
	order := payableOrder()
	svc, paymentRepo, _, _, _ := newPayFixture(t, order)

	payment, err := svc.Pay(context.Background(), PayInput{
		OrderID: order.ID,
		Method:  enums.PaymentMethodCard,
	})
	require.NoError(t, err)
	assert.True(t, payment.Received.Equal(order.Total))
	assert.True(t, payment.Change.IsZero())
	require.NotNil(t, paymentRepo.created)
}

func TestPayTerminalOrderRejected(t *testing.T) {
	order := payableOrder()
	order.Status = enums.OrderStatusCancelled
	svc, _, _, _, _ := newPayFixture(t, order)

	_, err := svc.Pay(context.Background(), PayInput{
		OrderID: order.ID,
		Method:  enums.PaymentMethodCash,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestPayEmptyOrderRejected(t *testing.T) {
	order := payableOrder()
	order.Items = nil
	svc, _, _, _, _ := newPayFixture(t, order)

	_, err := svc.Pay(context.Background(), PayInput{
		OrderID: order.ID,
		Method:  enums.PaymentMethodCard,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
