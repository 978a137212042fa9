// Package config loads runtime configuration from an optional YAML file,
// then applies environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thywilljoshua/study-companion/internal/ai"
	"github.com/thywilljoshua/study-companion/internal/ingest"
	"github.com/thywilljoshua/study-companion/internal/study"
)

const (
	// DefaultPath is read when --config is not given. It may be absent.
	DefaultPath = "companion.yml"

	defaultListen      = ":8501"
	defaultEnv         = "development"
	defaultSessionTTL  = 2 * time.Hour
	defaultUploadMB    = 20
	defaultLLMTimeout  = 120 * time.Second
	defaultServiceName = "study-companion"

	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	Env            string        `yaml:"env"`
	Listen         string        `yaml:"listen"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	LLM            LLMConfig     `yaml:"llm"`
	Prompts        PromptConfig  `yaml:"prompts"`
	PDF            PDFConfig     `yaml:"pdf"`
	Upload         UploadConfig  `yaml:"upload"`
	Session        SessionConfig `yaml:"session"`
	Tracing        TracingConfig `yaml:"tracing"`
}

type LLMConfig struct {
	Provider        string        `yaml:"provider"`
	Model           string        `yaml:"model"`
	APIKeyEnv       string        `yaml:"api_key_env"`
	BaseURL         string        `yaml:"base_url"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
	Timeout         time.Duration `yaml:"timeout"`

	// APIKey is filled from the environment by ResolveAPIKey, never from
	// the file.
	APIKey string `yaml:"-"`
}

type PromptConfig struct {
	Summary    string `yaml:"summary"`
	Chat       string `yaml:"chat"`
	CharBudget int    `yaml:"char_budget"`
	// Levels maps a level id to the wording used in the summary prompt,
	// e.g. beginner: Débutant.
	Levels map[string]string `yaml:"levels"`
}

type PDFConfig struct {
	Backend string `yaml:"backend"`
}

type UploadConfig struct {
	MaxMB int `yaml:"max_mb"`
}

type SessionConfig struct {
	Store       string        `yaml:"store"`
	TTL         time.Duration `yaml:"ttl"`
	RedisURL    string        `yaml:"redis_url"`
	RedisPrefix string        `yaml:"redis_prefix"`
}

type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Exporter    string  `yaml:"exporter"` // stdout | otlp
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
	ServiceName string  `yaml:"service_name"`
}

// ConfigError reports configuration that prevents the program from
// starting.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "config: " + e.Err.Error()
	}
	return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func Default() Config {
	return Config{
		Env:    defaultEnv,
		Listen: defaultListen,
		LLM: LLMConfig{
			Provider: ai.ProviderGemini,
			Model:    ai.DefaultModel(ai.ProviderGemini),
			Timeout:  defaultLLMTimeout,
		},
		Prompts: PromptConfig{CharBudget: study.DefaultCharBudget},
		PDF:     PDFConfig{Backend: ingest.BackendLedongthuc},
		Upload:  UploadConfig{MaxMB: defaultUploadMB},
		Session: SessionConfig{Store: StoreMemory, TTL: defaultSessionTTL},
		Tracing: TracingConfig{Exporter: "stdout", SampleRatio: 1, ServiceName: defaultServiceName},
	}
}

// Load reads path (DefaultPath when empty), applies environment overrides
// from getenv (os.Getenv when nil) and validates the result. Only an
// explicitly named file must exist.
func Load(path string, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultPath
	}

	cfg := Default()
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(content, &cfg); err != nil {
			return nil, &ConfigError{Field: path, Err: err}
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, &ConfigError{Field: path, Err: err}
	}

	applyEnv(&cfg, getenv)
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decode(content []byte, cfg *Config) error {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

func applyEnv(cfg *Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.Listen, "COMPANION_LISTEN")
	set(&cfg.Env, "COMPANION_ENV")
	providerBefore := cfg.LLM.Provider
	set(&cfg.LLM.Provider, "COMPANION_LLM_PROVIDER")
	if cfg.LLM.Provider != providerBefore && getenv("COMPANION_LLM_MODEL") == "" {
		// A model name from another provider is never valid.
		cfg.LLM.Model = ""
	}
	set(&cfg.LLM.Model, "COMPANION_LLM_MODEL")
	set(&cfg.Session.RedisURL, "COMPANION_REDIS_URL")
	if cfg.Session.RedisURL != "" && getenv("COMPANION_REDIS_URL") != "" {
		cfg.Session.Store = StoreRedis
	}
}

func (c *Config) normalize() error {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	if c.Env == "" {
		c.Env = defaultEnv
	}

	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	switch c.LLM.Provider {
	case ai.ProviderGemini, ai.ProviderOpenAI, ai.ProviderAnthropic:
	default:
		return &ConfigError{Field: "llm.provider", Err: fmt.Errorf("unknown provider %q", c.LLM.Provider)}
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		c.LLM.Model = ai.DefaultModel(c.LLM.Provider)
	}
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = DefaultKeyEnv(c.LLM.Provider)
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = defaultLLMTimeout
	}

	if c.Prompts.CharBudget <= 0 {
		c.Prompts.CharBudget = study.DefaultCharBudget
	}
	if _, err := c.StudyPrompts(); err != nil {
		return err
	}

	c.PDF.Backend = strings.ToLower(strings.TrimSpace(c.PDF.Backend))
	if c.PDF.Backend == "" {
		c.PDF.Backend = ingest.BackendLedongthuc
	}
	if _, err := ingest.New(c.PDF.Backend); err != nil {
		return &ConfigError{Field: "pdf.backend", Err: err}
	}

	if c.Upload.MaxMB <= 0 {
		c.Upload.MaxMB = defaultUploadMB
	}

	c.Session.Store = strings.ToLower(strings.TrimSpace(c.Session.Store))
	switch c.Session.Store {
	case "":
		c.Session.Store = StoreMemory
	case StoreMemory:
	case StoreRedis:
		if c.Session.RedisURL == "" {
			return &ConfigError{Field: "session.redis_url", Err: errors.New("required when session.store is redis")}
		}
	default:
		return &ConfigError{Field: "session.store", Err: fmt.Errorf("unknown store %q", c.Session.Store)}
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = defaultSessionTTL
	}

	if c.Tracing.SampleRatio <= 0 || c.Tracing.SampleRatio > 1 {
		c.Tracing.SampleRatio = 1
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = defaultServiceName
	}
	return nil
}

// DefaultKeyEnv names the environment variable holding the provider's key.
func DefaultKeyEnv(provider string) string {
	switch provider {
	case ai.ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ai.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

// ResolveAPIKey reads the provider credential. A missing key is fatal.
func (c *Config) ResolveAPIKey(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	key := strings.TrimSpace(getenv(c.LLM.APIKeyEnv))
	if key == "" {
		return &ConfigError{Field: "llm", Err: fmt.Errorf("%s is not set", c.LLM.APIKeyEnv)}
	}
	c.LLM.APIKey = key
	return nil
}

func (c *Config) IsDev() bool { return c.Env == "development" || c.Env == "dev" }

func (c *Config) MaxUploadBytes() int64 { return int64(c.Upload.MaxMB) << 20 }

// StudyPrompts builds the prompt set from the prompts section.
func (c *Config) StudyPrompts() (*study.Prompts, error) {
	labels := make(map[study.Level]string, len(c.Prompts.Levels))
	for id, name := range c.Prompts.Levels {
		l := study.Level(strings.ToLower(strings.TrimSpace(id)))
		if !l.Valid() {
			return nil, &ConfigError{Field: "prompts.levels", Err: fmt.Errorf("%w: %q", study.ErrUnknownLevel, id)}
		}
		labels[l] = name
	}
	p, err := study.NewPrompts(c.Prompts.Summary, c.Prompts.Chat, c.Prompts.CharBudget, labels)
	if err != nil {
		return nil, &ConfigError{Field: "prompts", Err: err}
	}
	return p, nil
}

// AIOptions is the generator configuration derived from the LLM section.
func (c *Config) AIOptions() ai.Options {
	return ai.Options{
		Provider:        c.LLM.Provider,
		Model:           c.LLM.Model,
		APIKey:          c.LLM.APIKey,
		BaseURL:         c.LLM.BaseURL,
		MaxOutputTokens: c.LLM.MaxOutputTokens,
	}
}
