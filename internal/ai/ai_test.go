package ai

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type stubGenerator struct {
	out string
	err error
}

func (s stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if s.err != nil {
		return "", wrapErr(s, s.err)
	}
	return s.out, nil
}
func (stubGenerator) Provider() string { return "stub" }
func (stubGenerator) Model() string    { return "stub-1" }

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "## Concepts\n- a", "## Concepts\n- a"},
		{"markdown fence", "```markdown\n## Concepts\n- a\n```", "## Concepts\n- a"},
		{"bare fence", "```\nhello\n```", "hello"},
		{"unterminated fence kept", "```go\nx := 1", "```go\nx := 1"},
		{"surrounding space", "  \n```md\nbody\n```\n ", "body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.in); got != tt.want {
				t.Errorf("StripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerationErrorUnwrap(t *testing.T) {
	base := errors.New("quota exceeded")
	_, err := stubGenerator{err: base}.Generate(context.Background(), "p")

	var gerr *GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("error %v is not a GenerationError", err)
	}
	if gerr.Provider != "stub" || gerr.Model != "stub-1" {
		t.Errorf("provider/model = %s/%s", gerr.Provider, gerr.Model)
	}
	if !errors.Is(err, base) {
		t.Error("GenerationError should unwrap to the provider error")
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	if _, err := New(context.Background(), Options{Provider: "llama", APIKey: "k"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	for _, p := range []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic} {
		if _, err := New(context.Background(), Options{Provider: p}); err == nil {
			t.Errorf("provider %s: expected missing key error", p)
		}
	}
}

func TestNewOpenAIAndAnthropicDefaults(t *testing.T) {
	g, err := New(context.Background(), Options{Provider: "OpenAI", APIKey: "k"})
	if err != nil {
		t.Fatalf("New openai: %v", err)
	}
	if g.Model() != "gpt-4o-mini" || g.Provider() != ProviderOpenAI {
		t.Errorf("openai generator = %s/%s", g.Provider(), g.Model())
	}

	g, err = New(context.Background(), Options{Provider: "anthropic", APIKey: "k", Model: "claude-x"})
	if err != nil {
		t.Fatalf("New anthropic: %v", err)
	}
	if g.Model() != "claude-x" {
		t.Errorf("anthropic model = %s", g.Model())
	}
}

func TestTracedRecordsSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	g := Traced(stubGenerator{out: "done"})
	out, err := g.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "done" {
		t.Errorf("out = %q", out)
	}

	_, err = Traced(stubGenerator{err: errors.New("boom")}).Generate(context.Background(), "prompt")
	var gerr *GenerationError
	if !errors.As(err, &gerr) {
		t.Errorf("traced error lost its type: %v", err)
	}

	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].Name() != "ai.generate" {
		t.Errorf("span name = %q", spans[0].Name())
	}
}
