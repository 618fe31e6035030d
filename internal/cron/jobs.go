package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/comanda-pos/backend/internal/inventory"
	"github.com/comanda-pos/backend/internal/orders"
	"github.com/comanda-pos/backend/pkg/db/models"
	"github.com/comanda-pos/backend/pkg/logger"
)

// StaleOrderJob cancels orders that sat untouched in pending or preparing
// for longer than maxAge, returning their stock.
type StaleOrderJob struct {
	repo    orders.Repository
	service orders.Service
	maxAge  time.Duration
	logger  *logger.Logger
}

func NewStaleOrderJob(repo orders.Repository, service orders.Service, maxAge time.Duration, logg *logger.Logger) *StaleOrderJob {
	return &StaleOrderJob{repo: repo, service: service, maxAge: maxAge, logger: logg}
}

func (j *StaleOrderJob) Name() string { return "stale_order_cancel" }

func (j *StaleOrderJob) Run(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-j.maxAge)
	stale, err := j.repo.ListStale(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("listing stale orders: %w", err)
	}

	var errs error
	for _, order := range stale {
		logCtx := j.logger.WithOrderID(ctx, order.ID.String())
		if _, err := j.service.Cancel(ctx, order.ID, "auto-cancelled after inactivity"); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", order.OrderNumber, err))
			continue
		}
		j.logger.Info(logCtx, fmt.Sprintf("auto-cancelled stale order %s", order.OrderNumber))
	}
	return errs
}

// LowStockJob logs a warning for every item at or below its minimum.
type LowStockJob struct {
	service inventory.Service
	logger  *logger.Logger
}

func NewLowStockJob(service inventory.Service, logg *logger.Logger) *LowStockJob {
	return &LowStockJob{service: service, logger: logg}
}

func (j *LowStockJob) Name() string { return "low_stock_warning" }

func (j *LowStockJob) Run(ctx context.Context) error {
	items, err := j.service.LowStock(ctx)
	if err != nil {
		return fmt.Errorf("listing low stock: %w", err)
	}
	for _, item := range items {
		j.warn(ctx, item, fmt.Sprintf("stock low: %s at %s %s (minimum %s)",
			item.Name, item.CurrentStock, item.Unit, item.MinimumStock))
	}
	return nil
}

func (j *LowStockJob) warn(ctx context.Context, item models.InventoryItem, msg string) {
	logCtx := j.logger.WithInventoryItemID(ctx, item.ID.String())
	j.logger.Warn(logCtx, msg)
}

// ExpiredStockJob flags items whose expiry date falls inside the warning
// window.
type ExpiredStockJob struct {
	service inventory.Service
	window  time.Duration
	logger  *logger.Logger
}

func NewExpiredStockJob(service inventory.Service, window time.Duration, logg *logger.Logger) *ExpiredStockJob {
	return &ExpiredStockJob{service: service, window: window, logger: logg}
}

func (j *ExpiredStockJob) Name() string { return "expiring_stock_warning" }

func (j *ExpiredStockJob) Run(ctx context.Context) error {
	items, err := j.service.ExpiringWithin(ctx, j.window)
	if err != nil {
		return fmt.Errorf("listing expiring stock: %w", err)
	}
	now := time.Now().UTC()
	for _, item := range items {
		if item.ExpiryDate == nil {
			continue
		}
		logCtx := j.logger.WithInventoryItemID(ctx, item.ID.String())
		if item.ExpiryDate.Before(now) {
			j.logger.Warn(logCtx, fmt.Sprintf("%s expired on %s", item.Name, item.ExpiryDate.Format("2006-01-02")))
			continue
		}
		j.logger.Warn(logCtx, fmt.Sprintf("%s expires on %s", item.Name, item.ExpiryDate.Format("2006-01-02")))
	}
	return nil
}
