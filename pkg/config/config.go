package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Operator      OperatorConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Import        ImportConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadPassword reads only the argon2 parameters, for tooling that runs
// without the rest of the environment.
func LoadPassword() (PasswordConfig, error) {
	var cfg PasswordConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return PasswordConfig{}, fmt.Errorf("parsing password config: %w", err)
	}
	return cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"REFURBSTOCK_APP_ENV" required:"true"`
	Port         string   `envconfig:"REFURBSTOCK_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"REFURBSTOCK_LOG_LEVEL" default:"info"`
	LogFormat    string   `envconfig:"REFURBSTOCK_LOG_FORMAT" default:"json"`
	LogWarnStack bool     `envconfig:"REFURBSTOCK_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"REFURBSTOCK_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"REFURBSTOCK_DB_DSN"`
	Driver string `envconfig:"REFURBSTOCK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"REFURBSTOCK_DB_HOST"`
	LegacyPort     int    `envconfig:"REFURBSTOCK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"REFURBSTOCK_DB_USER"`
	LegacyPassword string `envconfig:"REFURBSTOCK_DB_PASSWORD"`
	LegacyName     string `envconfig:"REFURBSTOCK_DB_NAME"`
	LegacySSLMode  string `envconfig:"REFURBSTOCK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"REFURBSTOCK_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"REFURBSTOCK_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"REFURBSTOCK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"REFURBSTOCK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the single-file sqlite store.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"REFURBSTOCK_REDIS_URL"`
	Address      string        `envconfig:"REFURBSTOCK_REDIS_ADDR"`
	Password     string        `envconfig:"REFURBSTOCK_REDIS_PASSWORD"`
	DB           int           `envconfig:"REFURBSTOCK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REFURBSTOCK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REFURBSTOCK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REFURBSTOCK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REFURBSTOCK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"REFURBSTOCK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"REFURBSTOCK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"REFURBSTOCK_JWT_ISSUER" default:"refurbstock"`
	ExpirationMinutes int    `envconfig:"REFURBSTOCK_JWT_EXPIRATION_MINUTES" default:"480"`
}

// SessionTTL is how long an access session stays registered in redis.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"REFURBSTOCK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"REFURBSTOCK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"REFURBSTOCK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"REFURBSTOCK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"REFURBSTOCK_ARGON_KEY_LEN" default:"32"`
}

// OperatorConfig holds the single operator account allowed to use the API.
type OperatorConfig struct {
	Username     string `envconfig:"REFURBSTOCK_OPERATOR_USERNAME" default:"admin"`
	PasswordHash string `envconfig:"REFURBSTOCK_OPERATOR_PASSWORD_HASH"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"REFURBSTOCK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit int           `envconfig:"REFURBSTOCK_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"REFURBSTOCK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"REFURBSTOCK_AUTO_MIGRATE" default:"false"`
}

type ImportConfig struct {
	MaxUploadMB int    `envconfig:"REFURBSTOCK_IMPORT_MAX_UPLOAD_MB" default:"10"`
	ArchiveDir  string `envconfig:"REFURBSTOCK_IMPORT_ARCHIVE_DIR"`
}

// MaxUploadBytes converts the configured upload cap into bytes.
func (i ImportConfig) MaxUploadBytes() int64 {
	if i.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(i.MaxUploadMB) << 20
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	if db.IsSQLite() {
		db.DSN = DefaultSQLiteDSN
		return nil
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
