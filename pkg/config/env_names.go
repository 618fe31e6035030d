package config

// EnvPrefix scopes every environment variable this service reads.
const EnvPrefix = "comanda"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN    = "COMANDA_DB_DSN"
	EnvDBDriver = "COMANDA_DB_DRIVER"
)
