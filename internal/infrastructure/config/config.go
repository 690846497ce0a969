package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/seafresh/backend/internal/domain/promotion"
	"github.com/seafresh/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	Google    GoogleOAuthConfig
	Razorpay  RazorpayConfig
	Email     EmailConfig
	Storage   StorageConfig
	Shop      ShopConfig
	Spin      SpinConfig
	Log       LogConfig
	Telemetry TelemetryConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Invoice   InvoiceConfig
	Scheduler SchedulerConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name      string
	Env       string
	Port      string
	ClientURL string // storefront origin, used for OAuth redirects and email links
}

// IsProduction returns true in the production environment
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxHeaderBytes  int
	MaxBodySize     int64
	TrustedProxies  []string
	MetricsEnabled  bool
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// SessionConfig holds the session cookie settings
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Domain     string
	Secure     bool
	SameSite   string // strict, lax or none
	Secret     string // signs the OAuth state
}

// GoogleOAuthConfig holds the Google sign-in client
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled returns true when Google sign-in is configured
func (g GoogleOAuthConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

// RazorpayConfig holds the payment gateway credentials
type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	BaseURL       string
	Timeout       time.Duration
}

// EmailConfig holds the transactional email settings
type EmailConfig struct {
	ResendAPIKey string
	From         string
	InboxAddress string // receives contact form messages
}

// StorageConfig holds the S3-compatible image bucket
type StorageConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	UsePathStyle    bool
	MaxImageBytes   int64
}

// ShopConfig holds storefront business settings
type ShopConfig struct {
	Name                  string
	Currency              string
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	CODEnabled            bool
	MaxItemQuantity       int
	LowStockThreshold     int
	PendingOrderTTL       time.Duration
}

// Pricing returns the shipping rules applied to quotes and orders
func (s ShopConfig) Pricing() trade.PricingPolicy {
	return trade.PricingPolicy{ShippingFee: s.ShippingFee, FreeShippingThreshold: s.FreeShippingThreshold}
}

// SpinConfig holds the reward wheel settings
type SpinConfig struct {
	Cooldown       time.Duration
	RewardTTL      time.Duration
	MinOrderAmount decimal.Decimal
	Segments       []promotion.Segment
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	Output     string // stdout, stderr, or file path
	TimeFormat string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	DBTraceEnabled    bool
	DBSlowQueryThresh time.Duration
}

// RateLimitConfig holds per-IP request limits
type RateLimitConfig struct {
	Enabled         bool
	Requests        int
	Window          time.Duration
	AuthRequests    int
	AuthWindow      time.Duration
	ContactRequests int
	ContactWindow   time.Duration
	SpinRequests    int
	SpinWindow      time.Duration
}

// CORSConfig holds cross-origin settings
type CORSConfig struct {
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
}

// InvoiceConfig holds invoice PDF rendering settings
type InvoiceConfig struct {
	Enabled       bool
	ChromeURL     string // remote DevTools endpoint; empty launches a local browser
	RenderTimeout time.Duration
	GSTIN         string
	Address       string
}

// SchedulerConfig holds background job settings
type SchedulerConfig struct {
	Enabled       bool
	SweepInterval time.Duration
	JobTimeout    time.Duration
}

// Load loads configuration from config.toml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with SEAFRESH_ prefix (e.g., SEAFRESH_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/seafresh")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("SEAFRESH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:      v.GetString("app.name"),
			Env:       v.GetString("app.env"),
			Port:      v.GetString("app.port"),
			ClientURL: v.GetString("app.client_url"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			IdleTimeout:     v.GetDuration("server.idle_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			MaxHeaderBytes:  v.GetInt("server.max_header_bytes"),
			MaxBodySize:     v.GetInt64("server.max_body_size"),
			TrustedProxies:  v.GetStringSlice("server.trusted_proxies"),
			MetricsEnabled:  v.GetBool("metrics.enabled"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Session: SessionConfig{
			CookieName: v.GetString("session.cookie_name"),
			TTL:        v.GetDuration("session.ttl"),
			Domain:     v.GetString("session.domain"),
			Secure:     v.GetBool("session.secure"),
			SameSite:   v.GetString("session.same_site"),
			Secret:     v.GetString("session.secret"),
		},
		Google: GoogleOAuthConfig{
			ClientID:     v.GetString("oauth.google.client_id"),
			ClientSecret: v.GetString("oauth.google.client_secret"),
			RedirectURL:  v.GetString("oauth.google.redirect_url"),
		},
		Razorpay: RazorpayConfig{
			KeyID:         v.GetString("razorpay.key_id"),
			KeySecret:     v.GetString("razorpay.key_secret"),
			WebhookSecret: v.GetString("razorpay.webhook_secret"),
			BaseURL:       v.GetString("razorpay.base_url"),
			Timeout:       v.GetDuration("razorpay.timeout"),
		},
		Email: EmailConfig{
			ResendAPIKey: v.GetString("email.resend_api_key"),
			From:         v.GetString("email.from"),
			InboxAddress: v.GetString("email.inbox_address"),
		},
		Storage: StorageConfig{
			Endpoint:        v.GetString("storage.endpoint"),
			Region:          v.GetString("storage.region"),
			Bucket:          v.GetString("storage.bucket"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			PublicBaseURL:   v.GetString("storage.public_base_url"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
			MaxImageBytes:   v.GetInt64("storage.max_image_bytes"),
		},
		Shop: ShopConfig{
			Name:                  v.GetString("shop.name"),
			Currency:              v.GetString("shop.currency"),
			ShippingFee:           decimalOf(v, "shop.shipping_fee"),
			FreeShippingThreshold: decimalOf(v, "shop.free_shipping_threshold"),
			CODEnabled:            v.GetBool("shop.cod_enabled"),
			MaxItemQuantity:       v.GetInt("shop.max_item_quantity"),
			LowStockThreshold:     v.GetInt("shop.low_stock_threshold"),
			PendingOrderTTL:       v.GetDuration("shop.pending_order_ttl"),
		},
		Spin: SpinConfig{
			Cooldown:       v.GetDuration("spin.cooldown"),
			RewardTTL:      v.GetDuration("spin.reward_ttl"),
			MinOrderAmount: decimalOf(v, "spin.min_order_amount"),
		},
		Log: LogConfig{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			Output:     v.GetString("log.output"),
			TimeFormat: v.GetString("log.time_format"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
		},
		RateLimit: RateLimitConfig{
			Enabled:         v.GetBool("ratelimit.enabled"),
			Requests:        v.GetInt("ratelimit.requests"),
			Window:          v.GetDuration("ratelimit.window"),
			AuthRequests:    v.GetInt("ratelimit.auth_requests"),
			AuthWindow:      v.GetDuration("ratelimit.auth_window"),
			ContactRequests: v.GetInt("ratelimit.contact_requests"),
			ContactWindow:   v.GetDuration("ratelimit.contact_window"),
			SpinRequests:    v.GetInt("ratelimit.spin_requests"),
			SpinWindow:      v.GetDuration("ratelimit.spin_window"),
		},
		CORS: CORSConfig{
			AllowOrigins: v.GetStringSlice("cors.allow_origins"),
			AllowMethods: v.GetStringSlice("cors.allow_methods"),
			AllowHeaders: v.GetStringSlice("cors.allow_headers"),
		},
		Invoice: InvoiceConfig{
			Enabled:       v.GetBool("invoice.enabled"),
			ChromeURL:     v.GetString("invoice.chrome_url"),
			RenderTimeout: v.GetDuration("invoice.render_timeout"),
			GSTIN:         v.GetString("invoice.gstin"),
			Address:       v.GetString("invoice.address"),
		},
		Scheduler: SchedulerConfig{
			Enabled:       v.GetBool("scheduler.enabled"),
			SweepInterval: v.GetDuration("scheduler.sweep_interval"),
			JobTimeout:    v.GetDuration("scheduler.job_timeout"),
		},
	}

	if v.IsSet("spin.segments") {
		hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
		))
		if err := v.UnmarshalKey("spin.segments", &cfg.Spin.Segments, hook); err != nil {
			return nil, fmt.Errorf("invalid spin.segments: %w", err)
		}
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func decimalOf(v *viper.Viper, key string) decimal.Decimal {
	raw := v.GetString(key)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "seafresh-api"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.ClientURL == "" {
		cfg.App.ClientURL = "http://localhost:5173"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 20 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 6 << 20 // leaves room for a 5MB image plus form overhead
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "seafresh"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}

	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "seafresh_sid"
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 7 * 24 * time.Hour
	}
	if cfg.Session.SameSite == "" {
		cfg.Session.SameSite = "lax"
	}
	if cfg.Session.Secret == "" {
		cfg.Session.Secret = devSecret
	}

	if cfg.Razorpay.BaseURL == "" {
		cfg.Razorpay.BaseURL = "https://api.razorpay.com/v1"
	}
	if cfg.Razorpay.Timeout == 0 {
		cfg.Razorpay.Timeout = 15 * time.Second
	}

	if cfg.Email.From == "" {
		cfg.Email.From = "SeaFresh <orders@seafresh.in>"
	}

	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "ap-south-1"
	}
	if cfg.Storage.MaxImageBytes == 0 {
		cfg.Storage.MaxImageBytes = 5 << 20
	}

	if cfg.Shop.Name == "" {
		cfg.Shop.Name = "SeaFresh"
	}
	if cfg.Shop.Currency == "" {
		cfg.Shop.Currency = "INR"
	}
	if cfg.Shop.ShippingFee.IsZero() {
		cfg.Shop.ShippingFee = decimal.NewFromInt(50)
	}
	if cfg.Shop.FreeShippingThreshold.IsZero() {
		cfg.Shop.FreeShippingThreshold = decimal.NewFromInt(999)
	}
	if cfg.Shop.MaxItemQuantity == 0 {
		cfg.Shop.MaxItemQuantity = 20
	}
	if cfg.Shop.LowStockThreshold == 0 {
		cfg.Shop.LowStockThreshold = 5
	}
	if cfg.Shop.PendingOrderTTL == 0 {
		cfg.Shop.PendingOrderTTL = 30 * time.Minute
	}

	if cfg.Spin.Cooldown == 0 {
		cfg.Spin.Cooldown = 24 * time.Hour
	}
	if cfg.Spin.RewardTTL == 0 {
		cfg.Spin.RewardTTL = 7 * 24 * time.Hour
	}
	if len(cfg.Spin.Segments) == 0 {
		cfg.Spin.Segments = promotion.DefaultSegments()
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}

	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 120
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = time.Minute
	}
	if cfg.RateLimit.AuthRequests == 0 {
		cfg.RateLimit.AuthRequests = 10
	}
	if cfg.RateLimit.AuthWindow == 0 {
		cfg.RateLimit.AuthWindow = 15 * time.Minute
	}
	if cfg.RateLimit.ContactRequests == 0 {
		cfg.RateLimit.ContactRequests = 5
	}
	if cfg.RateLimit.ContactWindow == 0 {
		cfg.RateLimit.ContactWindow = time.Hour
	}
	if cfg.RateLimit.SpinRequests == 0 {
		cfg.RateLimit.SpinRequests = 5
	}
	if cfg.RateLimit.SpinWindow == 0 {
		cfg.RateLimit.SpinWindow = time.Minute
	}

	// no wildcard default: cookies are sent cross-origin so origins must be explicit
	if len(cfg.CORS.AllowOrigins) == 0 {
		cfg.CORS.AllowOrigins = []string{cfg.App.ClientURL}
	}
	if len(cfg.CORS.AllowMethods) == 0 {
		cfg.CORS.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(cfg.CORS.AllowHeaders) == 0 {
		cfg.CORS.AllowHeaders = []string{"Content-Type", "X-Request-ID"}
	}

	if cfg.Invoice.RenderTimeout == 0 {
		cfg.Invoice.RenderTimeout = 30 * time.Second
	}

	if cfg.Scheduler.SweepInterval == 0 {
		cfg.Scheduler.SweepInterval = 5 * time.Minute
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 2 * time.Minute
	}
}

const devSecret = "dev-only-session-secret-change-me"

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.Session.SameSite {
	case "strict", "lax", "none":
	default:
		return fmt.Errorf("session.same_site must be strict, lax or none, got %q", c.Session.SameSite)
	}
	if c.Session.SameSite == "none" && !c.Session.Secure {
		return fmt.Errorf("session.same_site=none requires session.secure=true")
	}

	if c.Shop.ShippingFee.IsNegative() || c.Shop.FreeShippingThreshold.IsNegative() {
		return fmt.Errorf("shop.shipping_fee and shop.free_shipping_threshold cannot be negative")
	}
	if c.Shop.Currency != "INR" {
		return fmt.Errorf("shop.currency must be INR, got %q", c.Shop.Currency)
	}
	if c.Storage.MaxImageBytes <= 0 || c.Storage.MaxImageBytes > c.HTTP.MaxBodySize {
		return fmt.Errorf("storage.max_image_bytes must be positive and not exceed server.max_body_size")
	}

	if c.App.IsProduction() {
		if c.Session.Secret == devSecret || len(c.Session.Secret) < 32 {
			return fmt.Errorf("session.secret must be set to at least 32 characters in production")
		}
		if !c.Session.Secure {
			return fmt.Errorf("session.secure must be true in production (HTTPS required for secure cookies)")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Razorpay.KeyID == "" || c.Razorpay.KeySecret == "" || c.Razorpay.WebhookSecret == "" {
			return fmt.Errorf("razorpay.key_id, razorpay.key_secret and razorpay.webhook_secret are required in production")
		}
		for _, origin := range c.CORS.AllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors.allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
