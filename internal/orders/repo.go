package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/comanda-pos/backend/pkg/db"
	"github.com/comanda-pos/backend/pkg/db/models"
	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
)

// Repository is the order persistence surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, error)
	Update(ctx context.Context, order *models.Order) error

	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	ListStale(ctx context.Context, olderThan time.Time) ([]models.Order, error)

	FindMatchingLineItems(ctx context.Context, orderID, menuItemID uuid.UUID, unitPrice decimal.Decimal, notes string) ([]models.OrderLineItem, error)
	CreateLineItem(ctx context.Context, item *models.OrderLineItem) error
	GetLineItem(ctx context.Context, orderID, lineItemID uuid.UUID) (*models.OrderLineItem, error)
	UpdateLineItem(ctx context.Context, item *models.OrderLineItem) error
	DeleteLineItem(ctx context.Context, lineItemID uuid.UUID) error
	ReplaceLineItemAddons(ctx context.Context, lineItemID uuid.UUID, addons []models.OrderItemAddon) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds the order repository.
func NewRepository(conn *gorm.DB) (Repository, error) {
	if conn == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &repository{db: conn}, nil
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_line_items.created_at ASC")
		}).
		Preload("Items.Addons").
		First(&order, "id = ?", id).Error
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Addons").
		Order("created_at DESC")

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.TableID != nil {
		query = query.Where("table_id = ?", *filter.TableID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []models.Order
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).
		Omit("Items").
		Save(order).Error
}

func (r *repository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *repository) ListStale(ctx context.Context, olderThan time.Time) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Addons").
		Where("status IN ?", []string{"pending", "preparing"}).
		Where("updated_at < ?", olderThan).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindMatchingLineItems narrows merge candidates in SQL; the caller still
// compares addon signatures in memory. A NULL notes column matches the
// empty string so normalization survives the round trip.
func (r *repository) FindMatchingLineItems(ctx context.Context, orderID, menuItemID uuid.UUID, unitPrice decimal.Decimal, notes string) ([]models.OrderLineItem, error) {
	query := r.db.WithContext(ctx).
		Preload("Addons").
		Where("order_id = ? AND menu_item_id = ? AND unit_price = ?", orderID, menuItemID, unitPrice)
	if notes == "" {
		query = query.Where("notes IS NULL OR TRIM(notes) = ''")
	} else {
		query = query.Where("TRIM(notes) = ?", notes)
	}

	var rows []models.OrderLineItem
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CreateLineItem(ctx context.Context, item *models.OrderLineItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) GetLineItem(ctx context.Context, orderID, lineItemID uuid.UUID) (*models.OrderLineItem, error) {
	var item models.OrderLineItem
	err := r.db.WithContext(ctx).
		Preload("Addons").
		First(&item, "id = ? AND order_id = ?", lineItemID, orderID).Error
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) UpdateLineItem(ctx context.Context, item *models.OrderLineItem) error {
	return r.db.WithContext(ctx).
		Omit("Addons").
		Save(item).Error
}

func (r *repository) DeleteLineItem(ctx context.Context, lineItemID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Delete(&models.OrderItemAddon{}, "line_item_id = ?", lineItemID).Error; err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&models.OrderLineItem{}, "id = ?", lineItemID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
	}
	return nil
}

func (r *repository) ReplaceLineItemAddons(ctx context.Context, lineItemID uuid.UUID, addons []models.OrderItemAddon) error {
	if err := r.db.WithContext(ctx).
		Delete(&models.OrderItemAddon{}, "line_item_id = ?", lineItemID).Error; err != nil {
		return err
	}
	if len(addons) == 0 {
		return nil
	}
	for i := range addons {
		addons[i].LineItemID = lineItemID
	}
	return r.db.WithContext(ctx).Create(&addons).Error
}
