package study

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/thywilljoshua/study-companion/internal/ai"
)

type recordingGenerator struct {
	prompts []string
	reply   string
	err     error
}

func (r *recordingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	r.prompts = append(r.prompts, prompt)
	if r.err != nil {
		return "", &ai.GenerationError{Provider: "fake", Model: "fake-1", Err: r.err}
	}
	return r.reply, nil
}
func (r *recordingGenerator) Provider() string { return "fake" }
func (r *recordingGenerator) Model() string    { return "fake-1" }

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		budget int
		want   string
	}{
		{"shorter passes through", "short", 10, "short"},
		{"exact length", "abcde", 5, "abcde"},
		{"cut", "abcdefgh", 3, "abc"},
		{"runes not bytes", "ééééé", 2, "éé"},
		{"zero budget keeps all", "abc", 0, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.budget); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.budget, got, tt.want)
			}
		})
	}
}

func TestTruncateIdempotent(t *testing.T) {
	s := strings.Repeat("x", 100)
	once := Truncate(s, 40)
	if Truncate(once, 40) != once {
		t.Error("truncating twice should change nothing")
	}
}

func TestSummarizeSendsTruncatedText(t *testing.T) {
	gen := &recordingGenerator{reply: "```markdown\n## 1. Key Concepts\n```"}
	prompts, err := NewPrompts("{{.Level}}|{{.Content}}", "", 10, nil)
	if err != nil {
		t.Fatalf("NewPrompts: %v", err)
	}
	s := NewSummarizer(gen, prompts)

	out, err := s.Summarize(context.Background(), "0123456789ABCDEF", Advanced, "course")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if out != "## 1. Key Concepts" {
		t.Errorf("summary = %q, fences should be stripped", out)
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("generator called %d times, want 1", len(gen.prompts))
	}
	if gen.prompts[0] != "Advanced|0123456789" {
		t.Errorf("prompt = %q", gen.prompts[0])
	}
}

func TestSummarizeShortTextUnmodified(t *testing.T) {
	gen := &recordingGenerator{reply: "ok"}
	prompts, _ := NewPrompts("{{.Content}}", "", 6000, nil)
	s := NewSummarizer(gen, prompts)

	text := "A\nB\n"
	if _, err := s.Summarize(context.Background(), text, Beginner, "t"); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if gen.prompts[0] != text {
		t.Errorf("prompt = %q, want %q", gen.prompts[0], text)
	}
}

func TestSummarizeEmptyTextFailsClosed(t *testing.T) {
	gen := &recordingGenerator{reply: "never"}
	s := NewSummarizer(gen, nil)

	for _, text := range []string{"", "  \n"} {
		_, err := s.Summarize(context.Background(), text, Beginner, "t")
		if !errors.Is(err, ErrEmptyText) {
			t.Errorf("Summarize(%q) err = %v, want ErrEmptyText", text, err)
		}
	}
	if len(gen.prompts) != 0 {
		t.Errorf("generator called %d times, want 0", len(gen.prompts))
	}
}

func TestSummarizeFenceOnlyReplyFails(t *testing.T) {
	for _, reply := range []string{"```markdown\n```", "```\n  \n```", "   "} {
		gen := &recordingGenerator{reply: reply}
		s := NewSummarizer(gen, nil)

		out, err := s.Summarize(context.Background(), "text", Beginner, "t")
		var gerr *ai.GenerationError
		if !errors.As(err, &gerr) {
			t.Fatalf("reply %q: expected GenerationError, got %v (summary %q)", reply, err, out)
		}
		if gerr.Provider != "fake" || gerr.Model != "fake-1" {
			t.Errorf("error = %+v", gerr)
		}
	}
}

func TestPromptsLevelLabels(t *testing.T) {
	labels := map[Level]string{Beginner: "Débutant", Advanced: " Avancé "}
	p, err := NewPrompts("{{.Level}}", "", 0, labels)
	if err != nil {
		t.Fatalf("NewPrompts: %v", err)
	}
	tests := []struct {
		level Level
		want  string
	}{
		{Beginner, "Débutant"},
		{Intermediate, "Intermediate"},
		{Advanced, "Avancé"},
	}
	for _, tt := range tests {
		got, err := p.Summary(tt.level, "t", "x")
		if err != nil {
			t.Fatalf("Summary: %v", err)
		}
		if got != tt.want {
			t.Errorf("Summary(%s) = %q, want %q", tt.level, got, tt.want)
		}
	}

	if _, err := NewPrompts("", "", 0, map[Level]string{"expert": "Expert"}); !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("unknown level key: err = %v, want ErrUnknownLevel", err)
	}
	if _, err := NewPrompts("", "", 0, map[Level]string{Beginner: " "}); err == nil {
		t.Error("expected error for blank label")
	}
}

func TestSummarizeGenerationError(t *testing.T) {
	gen := &recordingGenerator{err: errors.New("401 unauthorized")}
	s := NewSummarizer(gen, nil)

	_, err := s.Summarize(context.Background(), "text", Intermediate, "t")
	var gerr *ai.GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}

func TestDefaultSummaryPromptMentionsLevel(t *testing.T) {
	p := MustDefaultPrompts()
	out, err := p.Summary(Intermediate, "Physics", "Newton's laws")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !strings.Contains(out, "Intermediate student") || !strings.Contains(out, "Newton's laws") {
		t.Errorf("prompt missing level or content:\n%s", out)
	}
}

func TestAskWithSummarySendsOnlySummaryAndQuestion(t *testing.T) {
	gen := &recordingGenerator{reply: "answer"}
	a := NewAssistant(gen, nil)
	ref := &Reference{Title: "Optics", Summary: "Light bends in lenses."}

	if _, err := a.Ask(context.Background(), ref, "first question"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if _, err := a.Ask(context.Background(), ref, "why do lenses focus?"); err != nil {
		t.Fatalf("Ask: %v", err)
	}

	p := gen.prompts[1]
	if !strings.Contains(p, "Light bends in lenses.") || !strings.Contains(p, "why do lenses focus?") {
		t.Errorf("prompt missing summary or question:\n%s", p)
	}
	if strings.Contains(p, "first question") || strings.Contains(p, "answer") {
		t.Errorf("prompt leaked earlier turns:\n%s", p)
	}
}

func TestAskWithoutSummarySendsQuestionAlone(t *testing.T) {
	gen := &recordingGenerator{reply: "answer"}
	a := NewAssistant(gen, nil)

	if _, err := a.Ask(context.Background(), nil, "what is entropy?"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if gen.prompts[0] != "what is entropy?" {
		t.Errorf("prompt = %q, want the bare question", gen.prompts[0])
	}
}

func TestAskRejectsBlankQuestion(t *testing.T) {
	gen := &recordingGenerator{}
	a := NewAssistant(gen, nil)
	if _, err := a.Ask(context.Background(), nil, "   "); !errors.Is(err, ErrEmptyQuestion) {
		t.Errorf("err = %v, want ErrEmptyQuestion", err)
	}
	if len(gen.prompts) != 0 {
		t.Error("generator should not be called")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"beginner":     Beginner,
		"Intermediate": Intermediate,
		" ADVANCED ":   Advanced,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseLevel("expert"); !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("ParseLevel(expert) err = %v", err)
	}
}

func TestLevelNextCycles(t *testing.T) {
	if Beginner.Next() != Intermediate || Intermediate.Next() != Advanced || Advanced.Next() != Beginner {
		t.Error("levels should cycle beginner → intermediate → advanced → beginner")
	}
}

func TestNewPromptsRejectsBadTemplate(t *testing.T) {
	if _, err := NewPrompts("{{.Level", "", 0, nil); err == nil {
		t.Error("expected parse error")
	}
	p, err := NewPrompts("{{.Nope}}", "", 0, nil)
	if err != nil {
		t.Fatalf("NewPrompts: %v", err)
	}
	if _, err := p.Summary(Beginner, "t", "x"); err == nil {
		t.Error("expected execution error for unknown field")
	}
}
