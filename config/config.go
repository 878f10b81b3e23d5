package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mrinaald/ai-newsroom/agent"
	"github.com/mrinaald/ai-newsroom/logging"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Supported providers.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// Environment variables read by ApplyEnv.
const (
	EnvProvider      = "NEWSROOM_PROVIDER"
	EnvModel         = "NEWSROOM_MODEL"
	EnvBaseURL       = "NEWSROOM_BASE_URL"
	EnvStrategy      = "NEWSROOM_STRATEGY"
	EnvLogLevel      = "NEWSROOM_LOG_LEVEL"
	EnvOllamaBaseURL = "OLLAMA_BASE_URL"
)

// Retry mirrors agent.RetryPolicy.
type Retry struct {
	MaxAttempts int           `yaml:"max_attempts" validate:"gte=1"`
	Pause       time.Duration `yaml:"pause" validate:"gte=0s"`
}

// Search configures the Researcher's web search.
type Search struct {
	Enabled       bool    `yaml:"enabled"`
	MaxResults    int     `yaml:"max_results" validate:"gte=0"`
	RatePerSecond float64 `yaml:"rate_per_second" validate:"gte=0"`
}

// Logging configures the process logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Metrics configures the Prometheus endpoint. An empty Addr disables it.
type Metrics struct {
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}

// Config is the complete newsroom configuration.
type Config struct {
	Provider    string        `yaml:"provider" validate:"oneof=ollama openai anthropic mock"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url" validate:"omitempty,url"`
	APIKey      string        `yaml:"api_key,omitempty"`
	Temperature float64       `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int           `yaml:"max_tokens" validate:"gte=0"`
	Strategy    string        `yaml:"strategy"`
	StepBudget  int           `yaml:"step_budget" validate:"gte=1"`
	Retry       Retry         `yaml:"retry"`
	CallTimeout time.Duration `yaml:"call_timeout" validate:"gte=0s"`
	Search      Search        `yaml:"search"`
	Logging     Logging       `yaml:"logging"`
	Metrics     Metrics       `yaml:"metrics"`
}

// Default returns the built-in configuration: a local Ollama llama3.1 at
// temperature 0 with DuckDuckGo search and a step budget of 10.
func Default() *Config {
	retry := agent.DefaultRetryPolicy()
	return &Config{
		Provider:    ProviderOllama,
		Temperature: 0,
		MaxTokens:   4096,
		Strategy:    string(agent.StrategyDeterministic),
		StepBudget:  10,
		Retry:       Retry{MaxAttempts: retry.MaxAttempts, Pause: retry.Pause},
		CallTimeout: 2 * time.Minute,
		Search:      Search{Enabled: true, MaxResults: 5, RatePerSecond: 1},
		Logging:     Logging{Level: "info", Format: "text"},
	}
}

// Load reads path on top of the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse the config file %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays the environment variables returned by getenv. A nil
// getenv reads the process environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	set(&c.Provider, EnvProvider)
	set(&c.Model, EnvModel)
	set(&c.Strategy, EnvStrategy)
	set(&c.Logging.Level, EnvLogLevel)
	if c.Provider == ProviderOllama {
		set(&c.BaseURL, EnvOllamaBaseURL)
	}
	set(&c.BaseURL, EnvBaseURL)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate reports every problem at once, wrapped in ErrInvalidConfig.
// Field rules come from the validate struct tags; cross-field and semantic
// checks follow.
func (c *Config) Validate() error {
	var errs []error

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		for _, fe := range verrs {
			errs = append(errs, fieldError(fe))
		}
	}

	if _, err := agent.ParseStrategy(c.Strategy); err != nil {
		errs = append(errs, err)
	}
	if c.Search.Enabled && c.Search.MaxResults < 1 {
		errs = append(errs, fmt.Errorf("search.max_results must be positive when search is enabled, got %d", c.Search.MaxResults))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func fieldError(fe validator.FieldError) error {
	path := fe.Namespace()
	if i := strings.Index(path, "."); i >= 0 {
		path = path[i+1:]
	}
	rule := fe.Tag()
	if fe.Param() != "" {
		rule += "=" + fe.Param()
	}
	return fmt.Errorf("%s must satisfy %s, got %v", path, rule, fe.Value())
}

// RetryPolicy converts the retry section.
func (c *Config) RetryPolicy() agent.RetryPolicy {
	return agent.RetryPolicy{MaxAttempts: c.Retry.MaxAttempts, Pause: c.Retry.Pause}
}

// LoggerConfig converts the logging section. Invalid levels fall back to info.
func (c *Config) LoggerConfig() *logging.Config {
	cfg := logging.DefaultConfig()
	if lvl, err := logging.ParseLevel(c.Logging.Level); err == nil {
		cfg.Level = lvl
	}
	cfg.Format = c.Logging.Format
	return cfg
}
