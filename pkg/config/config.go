package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	FeatureFlags  FeatureFlagsConfig
	Checkout      CheckoutConfig
	Razorpay      RazorpayConfig
	SMTP          SMTPConfig
	Notifications NotificationsConfig
	Uploads       UploadsConfig
	OCR           OCRConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if cfg.Checkout.DeliveryFee.IsNegative() {
		return nil, fmt.Errorf("%s must be non-negative", EnvCheckoutDeliveryFee)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env           string   `envconfig:"RXCART_APP_ENV" required:"true"`
	Port          string   `envconfig:"RXCART_APP_PORT" required:"true"`
	LogLevel      string   `envconfig:"RXCART_LOG_LEVEL" default:"info"`
	LogWarnStack  bool     `envconfig:"RXCART_LOG_WARN_STACK" default:"false"`
	PublicBaseURL string   `envconfig:"RXCART_PUBLIC_BASE_URL" default:"http://localhost:3000"`
	CORSOrigins   []string `envconfig:"RXCART_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "development")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"RXCART_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"RXCART_DB_DSN"`
	Driver string `envconfig:"RXCART_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"RXCART_DB_HOST"`
	Port     int    `envconfig:"RXCART_DB_PORT" default:"5432"`
	User     string `envconfig:"RXCART_DB_USER"`
	Password string `envconfig:"RXCART_DB_PASSWORD"`
	Name     string `envconfig:"RXCART_DB_NAME"`
	SSLMode  string `envconfig:"RXCART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RXCART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RXCART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RXCART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RXCART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RXCART_REDIS_URL"`
	Address      string        `envconfig:"RXCART_REDIS_ADDR"`
	Password     string        `envconfig:"RXCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"RXCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RXCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RXCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RXCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RXCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RXCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig holds the verification settings for access tokens minted by the
// identity service.
type JWTConfig struct {
	Secret            string `envconfig:"RXCART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"RXCART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"RXCART_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"RXCART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"RXCART_AUTO_MIGRATE" default:"false"`
}

type CheckoutConfig struct {
	DeliveryFee decimal.Decimal `envconfig:"RXCART_CHECKOUT_DELIVERY_FEE" default:"50.00"`
	Currency    string          `envconfig:"RXCART_CHECKOUT_CURRENCY" default:"INR"`
}

type RazorpayConfig struct {
	KeyID          string        `envconfig:"RXCART_RAZORPAY_KEY_ID"`
	KeySecret      string        `envconfig:"RXCART_RAZORPAY_KEY_SECRET"`
	IdempotencyTTL time.Duration `envconfig:"RXCART_RAZORPAY_IDEMPOTENCY_TTL" default:"168h"`
}

// Enabled reports whether online payments can be offered.
func (r RazorpayConfig) Enabled() bool {
	return r.KeyID != "" && r.KeySecret != ""
}

type SMTPConfig struct {
	Host      string        `envconfig:"RXCART_SMTP_HOST"`
	Port      int           `envconfig:"RXCART_SMTP_PORT" default:"587"`
	Username  string        `envconfig:"RXCART_SMTP_USERNAME"`
	Password  string        `envconfig:"RXCART_SMTP_PASSWORD"`
	From      string        `envconfig:"RXCART_SMTP_FROM" default:"no-reply@rxcart.local"`
	TLSPolicy string        `envconfig:"RXCART_SMTP_TLS_POLICY" default:"opportunistic"`
	Timeout   time.Duration `envconfig:"RXCART_SMTP_TIMEOUT" default:"15s"`
}

type NotificationsConfig struct {
	MaxAttempts       int           `envconfig:"RXCART_NOTIFICATIONS_MAX_ATTEMPTS" default:"3"`
	BaseBackoff       time.Duration `envconfig:"RXCART_NOTIFICATIONS_BASE_BACKOFF" default:"1s"`
	FanOutConcurrency int           `envconfig:"RXCART_NOTIFICATIONS_FANOUT_CONCURRENCY" default:"4"`
	BreakerFailures   uint32        `envconfig:"RXCART_NOTIFICATIONS_BREAKER_FAILURES" default:"5"`
	BreakerTimeout    time.Duration `envconfig:"RXCART_NOTIFICATIONS_BREAKER_TIMEOUT" default:"30s"`
}

type UploadsConfig struct {
	Dir      string `envconfig:"RXCART_UPLOADS_DIR" default:"var/uploads"`
	MaxBytes int64  `envconfig:"RXCART_UPLOADS_MAX_BYTES" default:"5242880"`
}

type OCRConfig struct {
	Binary   string        `envconfig:"RXCART_OCR_BINARY" default:"tesseract"`
	Language string        `envconfig:"RXCART_OCR_LANGUAGE" default:"eng"`
	Timeout  time.Duration `envconfig:"RXCART_OCR_TIMEOUT" default:"30s"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"RXCART_CRON_INTERVAL" default:"15m"`
	LockTTL  time.Duration `envconfig:"RXCART_CRON_LOCK_TTL" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dsnPartEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
