package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Directory    DirectoryConfig
	Loan         LoanConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	// The flag wins over the driver variable so a dev .env only has to
	// flip one switch.
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LIBRARIA_APP_ENV" required:"true"`
	Port         string `envconfig:"LIBRARIA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LIBRARIA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LIBRARIA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LIBRARIA_DB_DSN"`
	Driver string `envconfig:"LIBRARIA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LIBRARIA_DB_HOST"`
	LegacyPort     int    `envconfig:"LIBRARIA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LIBRARIA_DB_USER"`
	LegacyPassword string `envconfig:"LIBRARIA_DB_PASSWORD"`
	LegacyName     string `envconfig:"LIBRARIA_DB_NAME"`
	LegacySSLMode  string `envconfig:"LIBRARIA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LIBRARIA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LIBRARIA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LIBRARIA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LIBRARIA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LIBRARIA_REDIS_URL"`
	Address      string        `envconfig:"LIBRARIA_REDIS_ADDR"`
	Password     string        `envconfig:"LIBRARIA_REDIS_PASSWORD"`
	DB           int           `envconfig:"LIBRARIA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LIBRARIA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LIBRARIA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LIBRARIA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LIBRARIA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LIBRARIA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// DirectoryConfig carries the collaborator base URLs, resolved once at
// startup and injected into the clients.
type DirectoryConfig struct {
	UserServiceURL string        `envconfig:"LIBRARIA_USER_SERVICE_URL"`
	BookServiceURL string        `envconfig:"LIBRARIA_BOOK_SERVICE_URL"`
	LoanServiceURL string        `envconfig:"LIBRARIA_LOAN_SERVICE_URL"`
	CallTimeout    time.Duration `envconfig:"LIBRARIA_DIRECTORY_TIMEOUT" default:"5s"`
	BatchFanout    int           `envconfig:"LIBRARIA_DIRECTORY_BATCH_FANOUT" default:"4"`
}

type LoanConfig struct {
	PeriodDays int `envconfig:"LIBRARIA_LOAN_PERIOD_DAYS" default:"30"`
}

// Period returns the default loan period applied when a caller omits the
// due date.
func (l LoanConfig) Period() time.Duration {
	days := l.PeriodDays
	if days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"LIBRARIA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"LIBRARIA_AUTO_MIGRATE" default:"false"`
	Idempotency bool `envconfig:"LIBRARIA_FEATURE_IDEMPOTENCY" default:"true"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	// The legacy variables only describe a Postgres endpoint; a sqlite
	// run must name its file (or :memory:) in the DSN directly.
	if strings.EqualFold(db.Driver, DBDriverSQLite) {
		return fmt.Errorf("%s is required when the sqlite driver is selected", EnvDBDSN)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
