package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/comanda-pos/backend/pkg/config"
	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
	"github.com/comanda-pos/backend/pkg/logger"
)

// Client wraps the shared GORM connection.
type Client struct {
	conn *gorm.DB

	// writeGate serializes write transactions for the embedded sqlite
	// driver; postgres deployments leave it nil and lean on the server.
	writeGate chan struct{}

	txMaxWait     time.Duration
	txMaxDuration time.Duration
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New boots a GORM client using the provided configuration.
func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	var dialector gorm.Dialector
	if cfg.IsSQLite() {
		dialector = sqlite.Open(cfg.DSN)
	} else {
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.DSN,
			PreferSimpleProtocol: true,
		})
	}

	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening db connection: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}

	applyPoolSettings(sqlDB, cfg)

	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	client := &Client{
		conn:          conn,
		txMaxWait:     cfg.TxMaxWait,
		txMaxDuration: cfg.TxMaxDuration,
	}
	if cfg.IsSQLite() {
		client.writeGate = make(chan struct{}, 1)
	}

	if logg != nil {
		logg.Info(ctx, "database connection established")
	}

	return client, nil
}

func applyPoolSettings(sqlDB *sql.DB, cfg config.DBConfig) {
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
}

// DB returns the underlying GORM connection.
func (c *Client) DB() *gorm.DB {
	return c.conn
}

// Ping verifies the datasource is reachable.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close shuts down the pooled connections.
func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx executes fn inside a transaction, rolling back on error/panic.
//
// Two budgets bound the call: txMaxWait caps how long we wait for the
// single-writer gate before giving up, and txMaxDuration caps how long the
// transaction body may run. Either budget expiring aborts with a TIMEOUT
// error and no committed effects.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if c.writeGate != nil {
		release, err := c.acquireWriteGate(ctx)
		if err != nil {
			return err
		}
		defer release()
	}

	runCtx := ctx
	if c.txMaxDuration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.txMaxDuration)
		defer cancel()
	}

	tx := c.conn.WithContext(runCtx).Begin()
	if tx.Error != nil {
		return translateTimeout(tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return translateTimeout(err)
	}

	if err := tx.Commit().Error; err != nil {
		return translateTimeout(err)
	}
	return nil
}

func (c *Client) acquireWriteGate(ctx context.Context) (func(), error) {
	wait := c.txMaxWait
	if wait <= 0 {
		select {
		case c.writeGate <- struct{}{}:
			return func() { <-c.writeGate }, nil
		case <-ctx.Done():
			return nil, translateTimeout(ctx.Err())
		}
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case c.writeGate <- struct{}{}:
		return func() { <-c.writeGate }, nil
	case <-ctx.Done():
		return nil, translateTimeout(ctx.Err())
	case <-timer.C:
		return nil, pkgerrors.New(pkgerrors.CodeTimeout, "timed out waiting to begin transaction")
	}
}

func translateTimeout(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "transaction exceeded its time budget")
	}
	return err
}
