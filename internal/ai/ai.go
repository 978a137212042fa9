package ai

import (
	"context"
	"fmt"
	"strings"
)

// Generator is the text-generation capability the study flows depend on:
// one prompt in, one completion out, synchronously.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Provider() string
	Model() string
}

// GenerationError covers every failure of a generation call: network, auth,
// quota, model errors and unusable responses alike.
type GenerationError struct {
	Provider string
	Model    string
	Err      error
}

func (e *GenerationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s generation (%s) failed: %v", e.Provider, e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func wrapErr(g Generator, err error) error {
	if err == nil {
		return nil
	}
	return &GenerationError{Provider: g.Provider(), Model: g.Model(), Err: err}
}

// Options selects and configures a provider.
type Options struct {
	Provider        string
	Model           string
	APIKey          string
	BaseURL         string
	MaxOutputTokens int
}

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch normalizeProvider(provider) {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderAnthropic:
		return "claude-haiku-4-5-20251001"
	default:
		return "gemini-2.5-flash"
	}
}

// New builds the generator for opts.Provider.
func New(ctx context.Context, opts Options) (Generator, error) {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel(opts.Provider)
	}
	switch normalizeProvider(opts.Provider) {
	case "", ProviderGemini:
		return NewGemini(ctx, opts.APIKey, model)
	case ProviderOpenAI:
		return NewOpenAI(opts.APIKey, model, opts.BaseURL)
	case ProviderAnthropic:
		return NewAnthropic(opts.APIKey, model, opts.BaseURL, opts.MaxOutputTokens)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
}

func normalizeProvider(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
