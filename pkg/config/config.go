package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "MANGO"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "MANGO_DB_DSN"
	EnvDBHost = "MANGO_DB_HOST"
	EnvDBUser = "MANGO_DB_USER"
	EnvDBName = "MANGO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Cart         CartConfig
	Checkout     CheckoutConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
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

type AppConfig struct {
	Env          string `envconfig:"MANGO_APP_ENV" required:"true"`
	Port         string `envconfig:"MANGO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MANGO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MANGO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MANGO_DB_DSN"`
	Driver string `envconfig:"MANGO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MANGO_DB_HOST"`
	LegacyPort     int    `envconfig:"MANGO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MANGO_DB_USER"`
	LegacyPassword string `envconfig:"MANGO_DB_PASSWORD"`
	LegacyName     string `envconfig:"MANGO_DB_NAME"`
	LegacySSLMode  string `envconfig:"MANGO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MANGO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MANGO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MANGO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MANGO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MANGO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MANGO_REDIS_ADDR"`
	Password     string        `envconfig:"MANGO_REDIS_PASSWORD"`
	DB           int           `envconfig:"MANGO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MANGO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MANGO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MANGO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MANGO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MANGO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MANGO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MANGO_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MANGO_JWT_EXPIRATION_MINUTES" default:"43200"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MANGO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MANGO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MANGO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MANGO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MANGO_ARGON_KEY_LEN" default:"32"`
}

type CartConfig struct {
	SnapshotTTL time.Duration `envconfig:"MANGO_CART_SNAPSHOT_TTL" default:"720h"`
}

type CheckoutConfig struct {
	SessionTTL time.Duration `envconfig:"MANGO_CHECKOUT_SESSION_TTL" default:"2h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"MANGO_CORS_ALLOWED_ORIGINS"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MANGO_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
