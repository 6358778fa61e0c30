package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	LabelAPI LabelAPIConfig `yaml:"label_api"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" env:"SERVER_MAX_UPLOAD_BYTES" env-default:"10485760"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"AUTH_JWT_SECRET"       env-required:"true"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"labelai"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"1h"`
	ResetTokenTTL  time.Duration `yaml:"reset_token_ttl"  env:"AUTH_RESET_TOKEN_TTL"  env-default:"1h"`
	BcryptCost     int           `yaml:"bcrypt_cost"      env:"AUTH_BCRYPT_COST"      env-default:"10"`
}

// LabelAPIConfig holds settings for the remote label-processing service
// and its resilience policy.
type LabelAPIConfig struct {
	BaseURL         string        `yaml:"base_url"         env:"LABEL_API_BASE_URL"         env-required:"true"`
	CallTimeout     time.Duration `yaml:"call_timeout"     env:"LABEL_API_CALL_TIMEOUT"     env-default:"30s"`
	RetryAttempts   int           `yaml:"retry_attempts"   env:"LABEL_API_RETRY_ATTEMPTS"   env-default:"3"`
	RetryBackoff    time.Duration `yaml:"retry_backoff"    env:"LABEL_API_RETRY_BACKOFF"    env-default:"2s"`
	BreakerWindow   uint32        `yaml:"breaker_window"   env:"LABEL_API_BREAKER_WINDOW"   env-default:"10"`
	BreakerRate     float64       `yaml:"breaker_rate"     env:"LABEL_API_BREAKER_RATE"     env-default:"0.5"`
	BreakerWait     time.Duration `yaml:"breaker_wait"     env:"LABEL_API_BREAKER_WAIT"     env-default:"10s"`
	BreakerInterval time.Duration `yaml:"breaker_interval" env:"LABEL_API_BREAKER_INTERVAL" env-default:"10s"`
	MaxConcurrent   int64         `yaml:"max_concurrent"   env:"LABEL_API_MAX_CONCURRENT"   env-default:"25"`
	QueueWhenFull   bool          `yaml:"queue_when_full"  env:"LABEL_API_QUEUE_WHEN_FULL"  env-default:"false"`
	BatchParallel   int           `yaml:"batch_parallel"   env:"LABEL_API_BATCH_PARALLEL"   env-default:"5"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
