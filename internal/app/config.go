package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// LedgerSource selects where rows come from: "csv" or "postgres".
	LedgerSource string `envconfig:"LEDGER_SOURCE" default:"csv"`
	DataFile     string `envconfig:"DATA_FILE" default:"cortex.csv"`
	LedgerTable  string `envconfig:"LEDGER_TABLE" default:"ledger_rows"`
	PGDSN        string `envconfig:"PG_DSN" default:""`

	RedisAddr      string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	AnswerCacheTTL time.Duration `envconfig:"ANSWER_CACHE_TTL" default:"10m"`

	// FuzzyThreshold is the entity-resolution similarity floor in [0,1].
	FuzzyThreshold float64 `envconfig:"FUZZY_THRESHOLD" default:"0.80"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIModel  string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`

	AskRateLimit int `envconfig:"ASK_RATE_LIMIT" default:"30"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.FuzzyThreshold <= 0 || cfg.FuzzyThreshold > 1 {
		return nil, errors.New("fuzzy threshold must be in (0, 1]")
	}
	if cfg.LedgerSource != "csv" && cfg.LedgerSource != "postgres" {
		return nil, errors.New("ledger source must be csv or postgres")
	}
	if cfg.LedgerSource == "postgres" && cfg.PGDSN == "" {
		return nil, errors.New("postgres ledger source requires PG_DSN")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// ClassifierConfigured reports whether the ask endpoint can classify
// questions.
func (c *Config) ClassifierConfigured() bool {
	return c != nil && c.OpenAIAPIKey != ""
}
