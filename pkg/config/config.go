package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Sales    SalesConfig
	Cron     CronConfig
	Features FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"COMANDA_APP_ENV" default:"dev"`
	Port         string   `envconfig:"COMANDA_APP_PORT" default:"8321"`
	LogLevel     string   `envconfig:"COMANDA_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"COMANDA_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"COMANDA_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	// Driver selects the dialect: sqlite for a single terminal, postgres
	// when several terminals share one database server.
	Driver string `envconfig:"COMANDA_DB_DRIVER" default:"sqlite"`
	// DSN is the sqlite file path or the postgres connection string.
	DSN string `envconfig:"COMANDA_DB_DSN" default:"comanda.db"`

	MaxOpenConns    int           `envconfig:"COMANDA_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"COMANDA_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"COMANDA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COMANDA_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// TxMaxWait bounds how long a caller waits to begin a write
	// transaction; TxMaxDuration bounds how long the transaction may run.
	// Exceeding either aborts with a TIMEOUT error and no partial effects.
	TxMaxWait     time.Duration `envconfig:"COMANDA_DB_TX_MAX_WAIT" default:"5s"`
	TxMaxDuration time.Duration `envconfig:"COMANDA_DB_TX_MAX_DURATION" default:"15s"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func (db DBConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(db.Driver)) {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported db driver %q (expected sqlite or postgres)", db.Driver)
	}
	if strings.TrimSpace(db.DSN) == "" {
		return fmt.Errorf("%s is required", EnvDBDSN)
	}
	return nil
}

// IsSQLite reports whether the embedded single-writer driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

type SalesConfig struct {
	// TaxRate is a fraction (0.08 = 8%). Current policy is zero: totals
	// carry the tax column but nothing is added.
	TaxRate         string `envconfig:"COMANDA_SALES_TAX_RATE" default:"0"`
	DefaultCurrency string `envconfig:"COMANDA_SALES_CURRENCY" default:"USD"`
}

// TaxRateDecimal parses the configured tax rate, defaulting to zero on bad input.
func (s SalesConfig) TaxRateDecimal() decimal.Decimal {
	rate, err := decimal.NewFromString(strings.TrimSpace(s.TaxRate))
	if err != nil || rate.IsNegative() {
		return decimal.Zero
	}
	return rate
}

type CronConfig struct {
	Interval          time.Duration `envconfig:"COMANDA_CRON_INTERVAL" default:"15m"`
	StaleOrderMaxAge  time.Duration `envconfig:"COMANDA_CRON_STALE_ORDER_MAX_AGE" default:"12h"`
	ExpiryWarningDays int           `envconfig:"COMANDA_CRON_EXPIRY_WARNING_DAYS" default:"3"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"COMANDA_AUTO_MIGRATE" default:"false"`
}
