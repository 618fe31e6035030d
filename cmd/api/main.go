package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/comanda-pos/backend/api/controllers"
	"github.com/comanda-pos/backend/api/routes"
	"github.com/comanda-pos/backend/internal/audit"
	"github.com/comanda-pos/backend/internal/cron"
	"github.com/comanda-pos/backend/internal/expenses"
	"github.com/comanda-pos/backend/internal/inventory"
	"github.com/comanda-pos/backend/internal/menu"
	"github.com/comanda-pos/backend/internal/orders"
	"github.com/comanda-pos/backend/internal/payments"
	"github.com/comanda-pos/backend/internal/tables"
	"github.com/comanda-pos/backend/pkg/config"
	"github.com/comanda-pos/backend/pkg/db"
	"github.com/comanda-pos/backend/pkg/logger"
	"github.com/comanda-pos/backend/pkg/metrics"
	"github.com/comanda-pos/backend/pkg/migrate"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Missing .env is fine in production; environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logg := logger.New(logger.Options{
		ServiceName: "comanda-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer client.Close()

	if cfg.Features.AutoMigrate {
		if err := migrate.Up(ctx, client.DB(), cfg.DB); err != nil {
			return err
		}
		logg.Info(ctx, "migrations applied")
	}

	set := metrics.New()

	auditSvc, err := audit.NewService(client.DB(), logg)
	if err != nil {
		return err
	}

	inventoryRepo, err := inventory.NewRepository(client.DB())
	if err != nil {
		return err
	}
	adjuster, err := inventory.NewAdjuster(inventoryRepo, auditSvc, logg)
	if err != nil {
		return err
	}
	inventorySvc, err := inventory.NewService(inventoryRepo, client, auditSvc, logg)
	if err != nil {
		return err
	}

	menuRepo, err := menu.NewRepository(client.DB())
	if err != nil {
		return err
	}
	menuSvc, err := menu.NewService(menuRepo, client)
	if err != nil {
		return err
	}

	tableRepo, err := tables.NewRepository(client.DB())
	if err != nil {
		return err
	}
	tableSvc, err := tables.NewService(tableRepo)
	if err != nil {
		return err
	}

	orderRepo, err := orders.NewRepository(client.DB())
	if err != nil {
		return err
	}
	orderSvc, err := orders.NewService(
		orderRepo, client, adjuster, menuRepo, tableSvc, auditSvc,
		orders.NewInflight(), logg, cfg.Sales.TaxRateDecimal(),
	)
	if err != nil {
		return err
	}

	paymentRepo, err := payments.NewRepository(client.DB())
	if err != nil {
		return err
	}
	paymentSvc, err := payments.NewService(paymentRepo, orderRepo, client, tableSvc, auditSvc)
	if err != nil {
		return err
	}

	expenseRepo, err := expenses.NewRepository(client.DB())
	if err != nil {
		return err
	}
	expenseSvc, err := expenses.NewService(expenseRepo)
	if err != nil {
		return err
	}

	runner, err := cron.NewRunner(cfg.Cron.Interval, logg, set,
		cron.NewStaleOrderJob(orderRepo, orderSvc, cfg.Cron.StaleOrderMaxAge, logg),
		cron.NewLowStockJob(inventorySvc, logg),
		cron.NewExpiredStockJob(inventorySvc, time.Duration(cfg.Cron.ExpiryWarningDays)*24*time.Hour, logg),
	)
	if err != nil {
		return err
	}
	go runner.Start(ctx)

	router := routes.New(routes.Controllers{
		Health:    controllers.NewHealthController(client, logg),
		Orders:    controllers.NewOrdersController(orderSvc, logg),
		Menu:      controllers.NewMenuController(menuSvc, logg),
		Inventory: controllers.NewInventoryController(inventorySvc, cfg.Cron.ExpiryWarningDays, logg),
		Tables:    controllers.NewTablesController(tableSvc, logg),
		Payments:  controllers.NewPaymentsController(paymentSvc, logg),
		Expenses:  controllers.NewExpensesController(expenseSvc, logg),
		Audit:     controllers.NewAuditController(auditSvc, logg),
	}, logg, set, cfg.App.CORSOrigins)

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, fmt.Sprintf("listening on %s", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	logg.Info(context.Background(), "server stopped")
	return nil
}
