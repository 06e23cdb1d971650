package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the essay question API.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseURL      string
	RedisURL         string
	NATSURL          string
	JWTSecret        string
	ScoringURL       string
	ScoringTimeout   time.Duration
	QuestionCacheTTL time.Duration
	GradeChannel     string
	OpenAIAPIKey     string
	OpenAIModel      string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ESSAYQ")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "EssayQ API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("scoring.url", "http://localhost:5001/api/essay-score")
	v.SetDefault("scoring.timeout", "20s")
	v.SetDefault("question.cache_ttl", "5m")
	v.SetDefault("grade.channel", "essayq:grades")
	v.SetDefault("openai.model", "gpt-4o-mini")

	timeout, err := time.ParseDuration(v.GetString("scoring.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid scoring timeout: %w", err)
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	cacheTTL, err := time.ParseDuration(v.GetString("question.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid question cache ttl: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		NATSURL:          v.GetString("nats.url"),
		JWTSecret:        v.GetString("jwt.secret"),
		ScoringURL:       v.GetString("scoring.url"),
		ScoringTimeout:   timeout,
		QuestionCacheTTL: cacheTTL,
		GradeChannel:     v.GetString("grade.channel"),
		OpenAIAPIKey:     v.GetString("openai_api_key"),
		OpenAIModel:      v.GetString("openai.model"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}

// ScoringBackendConfig holds the configuration of the reference scoring
// backend binary.
type ScoringBackendConfig struct {
	AppName      string
	AppPort      string
	OpenAIAPIKey string
	OpenAIModel  string
}

// HTTPAddress returns the address the scoring backend should listen on.
func (c ScoringBackendConfig) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// LoadScoringBackend reads the reference scoring backend configuration.
func LoadScoringBackend() (ScoringBackendConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ESSAYQ")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("scoringd.name", "EssayQ Scoring Backend")
	v.SetDefault("scoringd.port", "5001")
	v.SetDefault("openai.model", "gpt-4o-mini")

	cfg := ScoringBackendConfig{
		AppName:      v.GetString("scoringd.name"),
		AppPort:      v.GetString("scoringd.port"),
		OpenAIAPIKey: v.GetString("openai_api_key"),
		OpenAIModel:  v.GetString("openai.model"),
	}

	if cfg.OpenAIAPIKey == "" {
		return ScoringBackendConfig{}, fmt.Errorf("openai api key must be provided")
	}

	return cfg, nil
}
