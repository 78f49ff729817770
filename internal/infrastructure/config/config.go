package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultJWTSecret is the development secret; production refuses to start with it
const DefaultJWTSecret = "groupbuy-dev-secret-change-me-0123456789"

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Log        LogConfig
	HTTP       HTTPConfig
	GroupBuy   GroupBuyConfig
	Settlement SettlementConfig
	Outbox     OutboxConfig
	Realtime   RealtimeConfig
	Storage    StorageConfig
	Telemetry  TelemetryConfig
	Profiling  ProfilingConfig
	Swagger    SwaggerConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// IsProduction reports whether the app runs with production safeguards
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
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
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	SlowThreshold   time.Duration
	LogLevel        string // silent, error, warn, info
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port for the redis client
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                 string
	RefreshSecret          string
	Issuer                 string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	MaxRefreshCount        int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	ShutdownTimeout    time.Duration
	MaxHeaderBytes     int
	MaxBodySize        int64
	RateLimitEnabled   bool
	RateLimitRPS       float64
	RateLimitBurst     int
	AuthRateLimitRPS   float64
	AuthRateLimitBurst int
	CORSAllowOrigins   []string
	TrustedProxies     []string
}

// GroupBuyConfig holds marketplace rules
type GroupBuyConfig struct {
	MaxDuration   time.Duration // furthest allowed deadline from creation
	JoinRetries   int           // attempts on optimistic lock conflicts
	DefaultPageSz int
}

// SettlementConfig holds the lifecycle engine configuration
type SettlementConfig struct {
	Enabled    bool
	Schedule   string // robfig/cron spec, e.g. "@every 30s"
	Workers    int
	QueueSize  int
	BatchSize  int
	JobTimeout time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// OutboxConfig holds transactional outbox processing configuration
type OutboxConfig struct {
	Enabled          bool
	BatchSize        int
	PollInterval     time.Duration
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
	IdempotencyTTL   time.Duration
}

// RealtimeConfig holds websocket settings
type RealtimeConfig struct {
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	MaxMessageSize int64
	SendBuffer     int
	AllowedOrigins []string
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Enabled           bool
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PublicBaseURL     string
	PresignExpiration time.Duration
	MaxImageSize      int64
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	LogsEnabled       bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	DBTraceEnabled    bool
}

// ProfilingConfig holds Pyroscope continuous profiling configuration
type ProfilingConfig struct {
	Enabled       bool
	ServerAddress string
	SpanProfiles  bool
}

// SwaggerConfig holds API documentation endpoint configuration
type SwaggerConfig struct {
	Enabled    bool
	AllowedIPs []string // single IPs or CIDRs; empty allows everyone
}

// Load loads configuration from config.toml and environment variables.
// Priority (highest to lowest):
//  1. Environment variables with GB_ prefix (e.g. GB_DATABASE_PASSWORD), including a local .env file
//  2. config.toml
//  3. Built-in defaults
func Load() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("GB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
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
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetDuration("database.conn_max_idle_time"),
			SlowThreshold:   v.GetDuration("database.slow_threshold"),
			LogLevel:        v.GetString("database.log_level"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                 v.GetString("jwt.secret"),
			RefreshSecret:          v.GetString("jwt.refresh_secret"),
			Issuer:                 v.GetString("jwt.issuer"),
			AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
			RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
			MaxRefreshCount:        v.GetInt("jwt.max_refresh_count"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:        v.GetDuration("http.read_timeout"),
			WriteTimeout:       v.GetDuration("http.write_timeout"),
			IdleTimeout:        v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:    v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:     v.GetInt("http.max_header_bytes"),
			MaxBodySize:        v.GetInt64("http.max_body_size"),
			RateLimitEnabled:   v.GetBool("http.rate_limit_enabled"),
			RateLimitRPS:       v.GetFloat64("http.rate_limit_rps"),
			RateLimitBurst:     v.GetInt("http.rate_limit_burst"),
			AuthRateLimitRPS:   v.GetFloat64("http.auth_rate_limit_rps"),
			AuthRateLimitBurst: v.GetInt("http.auth_rate_limit_burst"),
			CORSAllowOrigins:   v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:     v.GetStringSlice("http.trusted_proxies"),
		},
		GroupBuy: GroupBuyConfig{
			MaxDuration:   v.GetDuration("groupbuy.max_duration"),
			JoinRetries:   v.GetInt("groupbuy.join_retries"),
			DefaultPageSz: v.GetInt("groupbuy.default_page_size"),
		},
		Settlement: SettlementConfig{
			Enabled:    !v.IsSet("settlement.enabled") || v.GetBool("settlement.enabled"),
			Schedule:   v.GetString("settlement.schedule"),
			Workers:    v.GetInt("settlement.workers"),
			QueueSize:  v.GetInt("settlement.queue_size"),
			BatchSize:  v.GetInt("settlement.batch_size"),
			JobTimeout: v.GetDuration("settlement.job_timeout"),
			MaxRetries: v.GetInt("settlement.max_retries"),
			RetryDelay: v.GetDuration("settlement.retry_delay"),
		},
		Outbox: OutboxConfig{
			Enabled:          !v.IsSet("outbox.enabled") || v.GetBool("outbox.enabled"),
			BatchSize:        v.GetInt("outbox.batch_size"),
			PollInterval:     v.GetDuration("outbox.poll_interval"),
			CleanupRetention: v.GetDuration("outbox.cleanup_retention"),
			CleanupInterval:  v.GetDuration("outbox.cleanup_interval"),
			IdempotencyTTL:   v.GetDuration("outbox.idempotency_ttl"),
		},
		Realtime: RealtimeConfig{
			PingInterval:   v.GetDuration("realtime.ping_interval"),
			WriteTimeout:   v.GetDuration("realtime.write_timeout"),
			MaxMessageSize: v.GetInt64("realtime.max_message_size"),
			SendBuffer:     v.GetInt("realtime.send_buffer"),
			AllowedOrigins: v.GetStringSlice("realtime.allowed_origins"),
		},
		Storage: StorageConfig{
			Enabled:           v.GetBool("storage.enabled"),
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PublicBaseURL:     v.GetString("storage.public_base_url"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
			MaxImageSize:      v.GetInt64("storage.max_image_size"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
		},
		Profiling: ProfilingConfig{
			Enabled:       v.GetBool("profiling.enabled"),
			ServerAddress: v.GetString("profiling.server_address"),
			SpanProfiles:  v.GetBool("profiling.span_profiles"),
		},
		Swagger: SwaggerConfig{
			Enabled:    v.GetBool("swagger.enabled"),
			AllowedIPs: v.GetStringSlice("swagger.allowed_ips"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "groupbuy-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
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
		cfg.Database.DBName = "groupbuy"
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
		cfg.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 5 * time.Minute
	}
	if cfg.Database.SlowThreshold == 0 {
		cfg.Database.SlowThreshold = 200 * time.Millisecond
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}

	if cfg.JWT.Secret == "" && !cfg.App.IsProduction() {
		cfg.JWT.Secret = DefaultJWTSecret
	}
	if cfg.JWT.RefreshSecret == "" {
		cfg.JWT.RefreshSecret = cfg.JWT.Secret
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "groupbuy"
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 15 * time.Minute
	}
	if cfg.JWT.RefreshTokenExpiration == 0 {
		cfg.JWT.RefreshTokenExpiration = 7 * 24 * time.Hour
	}
	if cfg.JWT.MaxRefreshCount == 0 {
		cfg.JWT.MaxRefreshCount = 100
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
		if !cfg.App.IsProduction() {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 2 << 20
	}
	if cfg.HTTP.RateLimitRPS == 0 {
		cfg.HTTP.RateLimitRPS = 20
	}
	if cfg.HTTP.RateLimitBurst == 0 {
		cfg.HTTP.RateLimitBurst = 40
	}
	if cfg.HTTP.AuthRateLimitRPS == 0 {
		cfg.HTTP.AuthRateLimitRPS = 0.2
	}
	if cfg.HTTP.AuthRateLimitBurst == 0 {
		cfg.HTTP.AuthRateLimitBurst = 5
	}
	if len(cfg.HTTP.CORSAllowOrigins) == 0 {
		cfg.HTTP.CORSAllowOrigins = []string{"http://localhost:5173"}
	}

	if cfg.GroupBuy.MaxDuration == 0 {
		cfg.GroupBuy.MaxDuration = 30 * 24 * time.Hour
	}
	if cfg.GroupBuy.JoinRetries == 0 {
		cfg.GroupBuy.JoinRetries = 3
	}
	if cfg.GroupBuy.DefaultPageSz == 0 {
		cfg.GroupBuy.DefaultPageSz = 20
	}

	if cfg.Settlement.Schedule == "" {
		cfg.Settlement.Schedule = "@every 30s"
	}
	if cfg.Settlement.Workers == 0 {
		cfg.Settlement.Workers = 4
	}
	if cfg.Settlement.QueueSize == 0 {
		cfg.Settlement.QueueSize = 256
	}
	if cfg.Settlement.BatchSize == 0 {
		cfg.Settlement.BatchSize = 100
	}
	if cfg.Settlement.JobTimeout == 0 {
		cfg.Settlement.JobTimeout = 30 * time.Second
	}
	if cfg.Settlement.MaxRetries == 0 {
		cfg.Settlement.MaxRetries = 5
	}
	if cfg.Settlement.RetryDelay == 0 {
		cfg.Settlement.RetryDelay = 2 * time.Second
	}

	if cfg.Outbox.BatchSize == 0 {
		cfg.Outbox.BatchSize = 100
	}
	if cfg.Outbox.PollInterval == 0 {
		cfg.Outbox.PollInterval = time.Second
	}
	if cfg.Outbox.CleanupRetention == 0 {
		cfg.Outbox.CleanupRetention = 7 * 24 * time.Hour
	}
	if cfg.Outbox.CleanupInterval == 0 {
		cfg.Outbox.CleanupInterval = time.Hour
	}
	if cfg.Outbox.IdempotencyTTL == 0 {
		cfg.Outbox.IdempotencyTTL = 24 * time.Hour
	}

	if cfg.Realtime.PingInterval == 0 {
		cfg.Realtime.PingInterval = 30 * time.Second
	}
	if cfg.Realtime.WriteTimeout == 0 {
		cfg.Realtime.WriteTimeout = 10 * time.Second
	}
	if cfg.Realtime.MaxMessageSize == 0 {
		cfg.Realtime.MaxMessageSize = 4096
	}
	if cfg.Realtime.SendBuffer == 0 {
		cfg.Realtime.SendBuffer = 64
	}

	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}
	if cfg.Storage.MaxImageSize == 0 {
		cfg.Storage.MaxImageSize = 5 << 20
	}

	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 && !cfg.App.IsProduction() {
		cfg.Telemetry.SamplingRatio = 1.0
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Settlement.Workers < 1 {
		return fmt.Errorf("settlement.workers must be at least 1")
	}
	if c.GroupBuy.JoinRetries < 1 {
		return fmt.Errorf("groupbuy.join_retries must be at least 1")
	}
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}

	if c.App.IsProduction() {
		if c.JWT.Secret == "" || c.JWT.Secret == DefaultJWTSecret {
			return fmt.Errorf("jwt.secret must be set in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("http.cors_allow_origins cannot be '*' in production")
			}
		}
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
