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
	JWT          JWTConfig
	Payments     PaymentsConfig
	RateLimit    RateLimitConfig
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
	Env          string `envconfig:"THREADBAZAAR_APP_ENV" required:"true"`
	Port         string `envconfig:"THREADBAZAAR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"THREADBAZAAR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"THREADBAZAAR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"THREADBAZAAR_DB_DSN"`
	Driver string `envconfig:"THREADBAZAAR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"THREADBAZAAR_DB_HOST"`
	LegacyPort     int    `envconfig:"THREADBAZAAR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"THREADBAZAAR_DB_USER"`
	LegacyPassword string `envconfig:"THREADBAZAAR_DB_PASSWORD"`
	LegacyName     string `envconfig:"THREADBAZAAR_DB_NAME"`
	LegacySSLMode  string `envconfig:"THREADBAZAAR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"THREADBAZAAR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"THREADBAZAAR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"THREADBAZAAR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"THREADBAZAAR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"THREADBAZAAR_REDIS_URL" required:"true"`
	Password     string        `envconfig:"THREADBAZAAR_REDIS_PASSWORD"`
	DB           int           `envconfig:"THREADBAZAAR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"THREADBAZAAR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"THREADBAZAAR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"THREADBAZAAR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"THREADBAZAAR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"THREADBAZAAR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"THREADBAZAAR_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"THREADBAZAAR_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"THREADBAZAAR_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AccessTokenTTL returns the access token lifetime configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PaymentsConfig struct {
	RazorpayKeyID     string `envconfig:"THREADBAZAAR_RAZORPAY_KEY_ID"`
	RazorpayKeySecret string `envconfig:"THREADBAZAAR_RAZORPAY_KEY_SECRET"`
	RazorpayBaseURL   string `envconfig:"THREADBAZAAR_RAZORPAY_BASE_URL" default:"https://api.razorpay.com/v1"`
	WebhookSecret     string `envconfig:"THREADBAZAAR_RAZORPAY_WEBHOOK_SECRET"`

	CommissionPercent float64 `envconfig:"THREADBAZAAR_COMMISSION_PERCENT" default:"5"`
	Currency          string  `envconfig:"THREADBAZAAR_PAYMENT_CURRENCY" default:"INR"`
}

// RateLimitConfig throttles the unauthenticated webhook surface. A zero
// window disables the limiter.
type RateLimitConfig struct {
	WebhookWindow     time.Duration `envconfig:"THREADBAZAAR_WEBHOOK_RATE_WINDOW" default:"1m"`
	WebhookIPLimit    int           `envconfig:"THREADBAZAAR_WEBHOOK_RATE_IP_LIMIT" default:"120"`
	WebhookOrderLimit int           `envconfig:"THREADBAZAAR_WEBHOOK_RATE_ORDER_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"THREADBAZAAR_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"THREADBAZAAR_AUTO_MIGRATE" default:"false"`
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
