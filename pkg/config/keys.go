package config

const EnvPrefix = "REFURBSTOCK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
	DefaultSQLiteDSN = "storage.db"
)

const (
	EnvAppEnv   = "REFURBSTOCK_APP_ENV"
	EnvPort     = "REFURBSTOCK_APP_PORT"
	EnvLogLevel = "REFURBSTOCK_LOG_LEVEL"

	EnvDBDSN    = "REFURBSTOCK_DB_DSN"
	EnvDBDriver = "REFURBSTOCK_DB_DRIVER"
	EnvDBHost   = "REFURBSTOCK_DB_HOST"
	EnvDBPort   = "REFURBSTOCK_DB_PORT"
	EnvDBUser   = "REFURBSTOCK_DB_USER"
	EnvDBName   = "REFURBSTOCK_DB_NAME"

	EnvRedisURL = "REFURBSTOCK_REDIS_URL"

	EnvJWTSecret  = "REFURBSTOCK_JWT_SECRET"
	EnvJWTIssuer  = "REFURBSTOCK_JWT_ISSUER"
	EnvJWTExpMins = "REFURBSTOCK_JWT_EXPIRATION_MINUTES"

	EnvOperatorUsername     = "REFURBSTOCK_OPERATOR_USERNAME"
	EnvOperatorPasswordHash = "REFURBSTOCK_OPERATOR_PASSWORD_HASH"

	EnvImportMaxUploadMB = "REFURBSTOCK_IMPORT_MAX_UPLOAD_MB"
	EnvImportArchiveDir  = "REFURBSTOCK_IMPORT_ARCHIVE_DIR"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
