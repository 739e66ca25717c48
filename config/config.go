package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port string `env:"PORT" envDefault:"8080" validate:"required"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	// No fallback secret: the server refuses to start without one.
	JWTSecret string `env:"JWT_SECRET,required" validate:"required,min=32"`

	S3Bucket        string `env:"S3_BUCKET,required"     validate:"required"`
	S3Region        string `env:"S3_REGION"              envDefault:"us-east-1"`
	S3AccessKey     string `env:"S3_ACCESS_KEY,required" validate:"required"`
	S3SecretKey     string `env:"S3_SECRET_KEY,required" validate:"required"`
	S3Endpoint      string `env:"S3_ENDPOINT"` // set for MinIO / non-AWS hosts
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL,required" validate:"required,url"`

	GeminiAPIKey string `env:"GEMINI_API_KEY,required" validate:"required"`
	GeminiModel  string `env:"GEMINI_MODEL"            envDefault:"gemini-2.0-flash"`

	// Queries shorter than this threshold are answered with a plain
	// substring match and never reach the AI provider.
	SearchAIMinQueryLen int `env:"SEARCH_AI_MIN_QUERY_LEN" envDefault:"10" validate:"min=1,max=200"`
	SearchTimeoutSec    int `env:"SEARCH_TIMEOUT_SEC"      envDefault:"10" validate:"min=1,max=120"`

	RedisAddr          string `env:"REDIS_ADDR"` // empty disables the keyword cache
	KeywordCacheTTLSec int    `env:"KEYWORD_CACHE_TTL_SEC" envDefault:"3600" validate:"min=1"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
