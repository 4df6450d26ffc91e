package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	AuthModeOpen  = "open"
	AuthModeToken = "token"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"

	DefaultPersona = "You are Lena, a warm woman who remembers the user and their previous conversations."
)

type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   string `env:"PORT" envDefault:"5000"`

	DatabaseDriver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DatabaseURL    string `env:"DATABASE_URL" envDefault:"app.db"`

	// AuthMode "open" signs users up on their first message, "token" requires
	// registration and a bearer token on /chat.
	AuthMode         string        `env:"AUTH_MODE" envDefault:"open"`
	JWTSecret        string        `env:"JWT_SECRET_KEY"`
	JWTTTL           time.Duration `env:"JWT_TTL" envDefault:"24h"`
	RevokedTokensMax int           `env:"REVOKED_TOKENS_MAX" envDefault:"10000"`

	Provider        string        `env:"COMPLETION_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY"`
	OpenAIModel     string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL   string        `env:"OPENAI_BASE_URL"`
	GeminiAPIKey    string        `env:"GEMINI_API_KEY"`
	GeminiModel     string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	GeminiBaseURL   string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"60s"`

	HistoryLimit int    `env:"HISTORY_LIMIT" envDefault:"10"`
	Persona      string `env:"PERSONA"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"https://lena-frontend.vercel.app,http://localhost:3000"`

	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"10s"`
	RateLimitCapacity int           `env:"RATE_LIMIT_CAPACITY" envDefault:"5"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load reads .env (skipped in production) and then the process environment.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}
	return Parse()
}

// Parse builds a Config from the current environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.AppEnv = strings.ToLower(strings.TrimSpace(c.AppEnv))
	c.AuthMode = strings.ToLower(strings.TrimSpace(c.AuthMode))
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(c.DatabaseDriver))
	if strings.TrimSpace(c.Persona) == "" {
		c.Persona = DefaultPersona
	}
	origins := c.CORSOrigins[:0]
	for _, o := range c.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORSOrigins = origins
}

func (c *Config) Validate() error {
	if !slices.Contains([]string{"development", "staging", "production"}, c.AppEnv) {
		return fmt.Errorf("APP_ENV must be 'development', 'staging' or 'production', got %q", c.AppEnv)
	}
	if !slices.Contains([]string{AuthModeOpen, AuthModeToken}, c.AuthMode) {
		return fmt.Errorf("AUTH_MODE must be %q or %q, got %q", AuthModeOpen, AuthModeToken, c.AuthMode)
	}
	if c.AuthMode == AuthModeToken && c.JWTSecret == "" {
		return errors.New("JWT_SECRET_KEY must be set when AUTH_MODE=token")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if !slices.Contains([]string{ProviderOpenAI, ProviderGemini, ProviderMock}, c.Provider) {
		return fmt.Errorf("COMPLETION_PROVIDER must be openai, gemini or mock, got %q", c.Provider)
	}
	if c.HistoryLimit < 0 {
		return errors.New("HISTORY_LIMIT must not be negative")
	}
	if c.RateLimitCapacity <= 0 || c.RateLimitWindow <= 0 {
		return errors.New("RATE_LIMIT_WINDOW and RATE_LIMIT_CAPACITY must be positive")
	}
	return nil
}

func (c *Config) TokenAuth() bool {
	return c.AuthMode == AuthModeToken
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// ProviderModel is the model identifier sent to the selected completion provider.
func (c *Config) ProviderModel() string {
	switch c.Provider {
	case ProviderGemini:
		return c.GeminiModel
	case ProviderMock:
		return "mock"
	default:
		return c.OpenAIModel
	}
}
