package config

// EnvPrefix is passed to envconfig; individual fields carry the full
// LIBRARIA_* names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv = "LIBRARIA_APP_ENV"
	EnvPort   = "LIBRARIA_APP_PORT"

	EnvDBDSN  = "LIBRARIA_DB_DSN"
	EnvDBHost = "LIBRARIA_DB_HOST"
	EnvDBUser = "LIBRARIA_DB_USER"
	EnvDBName = "LIBRARIA_DB_NAME"

	EnvRedisURL = "LIBRARIA_REDIS_URL"

	EnvUserServiceURL = "LIBRARIA_USER_SERVICE_URL"
	EnvBookServiceURL = "LIBRARIA_BOOK_SERVICE_URL"
	EnvLoanServiceURL = "LIBRARIA_LOAN_SERVICE_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
