package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
)

type Config struct {
	Primary     Primary           `koanf:"primary"`
	Server      ServerConfig      `koanf:"server"`
	Idempotency IdempotencyConfig `koanf:"idempotency"`
	Breaker     BreakerConfig     `koanf:"breaker"`
	Pricing     PricingConfig     `koanf:"pricing"`
	Events      EventsConfig      `koanf:"events"`
	Logger      LoggerConfig      `koanf:"logger"`
	Worker      WorkerConfig      `koanf:"worker"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port         string        `koanf:"port" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"required"`
}

type IdempotencyConfig struct {
	TTL time.Duration `koanf:"ttl" validate:"required"`
	// EnforceRequestHash rejects a reused key carrying a different request
	// body. Disable it to get "key wins" semantics where the cached result
	// is returned regardless of payload.
	EnforceRequestHash bool `koanf:"enforce_request_hash"`
}

type BreakerConfig struct {
	Timeout                  time.Duration `koanf:"timeout" validate:"required"`
	ErrorThresholdPercentage int           `koanf:"error_threshold_percentage" validate:"required,gte=1,lte=100"`
	ResetTimeout             time.Duration `koanf:"reset_timeout" validate:"required"`
	VolumeThreshold          int           `koanf:"volume_threshold" validate:"required,gte=1"`
}

type PricingConfig struct {
	FailureRate float64       `koanf:"failure_rate" validate:"gte=0,lte=1"`
	MinLatency  time.Duration `koanf:"min_latency"`
	MaxLatency  time.Duration `koanf:"max_latency"`
}

type EventsConfig struct {
	BufferSize int `koanf:"buffer_size" validate:"required,gte=1"`
}

type LoggerConfig struct {
	Level string `koanf:"level"`
}

type WorkerConfig struct {
	Interval time.Duration `koanf:"interval" validate:"required"`
}

// NewLogger builds the process logger at the configured level.
func (c LoggerConfig) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}

// defaults cover every knob; QUOTE_-prefixed environment variables override
// them (double underscore separates nesting, e.g. QUOTE_BREAKER__TIMEOUT).
var defaults = map[string]interface{}{
	"primary.env":                        "development",
	"server.port":                        "8080",
	"server.read_timeout":                "15s",
	"server.write_timeout":               "15s",
	"server.idle_timeout":                "60s",
	"idempotency.ttl":                    "24h",
	"idempotency.enforce_request_hash":   true,
	"breaker.timeout":                    "2s",
	"breaker.error_threshold_percentage": 50,
	"breaker.reset_timeout":              "30s",
	"breaker.volume_threshold":           10,
	"pricing.failure_rate":               0.2,
	"pricing.min_latency":                "50ms",
	"pricing.max_latency":                "500ms",
	"events.buffer_size":                 256,
	"logger.level":                       "info",
	"worker.interval":                    "5m",
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		logger.Error("failed to load default configuration", "error", err)
		return nil, err
	}

	err := k.Load(env.Provider("QUOTE_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "QUOTE_")),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}
