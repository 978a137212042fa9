// Package study holds the two generation flows of a study session: the
// pedagogical summary of a course and the question answering around it.
package study

import (
	"context"
	"errors"
	"strings"

	"github.com/thywilljoshua/study-companion/internal/ai"
)

var (
	// ErrEmptyText means there is no extracted text to summarize.
	ErrEmptyText = errors.New("document has no extractable text")
	// ErrEmptyQuestion means the chat input was blank.
	ErrEmptyQuestion = errors.New("question is empty")

	errEmptyReply = errors.New("empty response")
)

type Summarizer struct {
	gen     ai.Generator
	prompts *Prompts
}

func NewSummarizer(gen ai.Generator, prompts *Prompts) *Summarizer {
	if prompts == nil {
		prompts = MustDefaultPrompts()
	}
	return &Summarizer{gen: gen, prompts: prompts}
}

// Summarize makes exactly one generation call, or none when text is empty.
func (s *Summarizer) Summarize(ctx context.Context, text string, level Level, title string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	if !level.Valid() {
		return "", ErrUnknownLevel
	}
	prompt, err := s.prompts.Summary(level, title, text)
	if err != nil {
		return "", err
	}
	out, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	out = ai.StripCodeFences(out)
	if strings.TrimSpace(out) == "" {
		return "", &ai.GenerationError{Provider: s.gen.Provider(), Model: s.gen.Model(), Err: errEmptyReply}
	}
	return out, nil
}

// Reference is the standing summary a question is asked against.
type Reference struct {
	Title   string
	Summary string
}

type Assistant struct {
	gen     ai.Generator
	prompts *Prompts
}

func NewAssistant(gen ai.Generator, prompts *Prompts) *Assistant {
	if prompts == nil {
		prompts = MustDefaultPrompts()
	}
	return &Assistant{gen: gen, prompts: prompts}
}

// Ask answers one question. The model sees the standing summary and the
// question only; earlier turns of the conversation are never sent. Without
// a reference the question is sent as is.
func (a *Assistant) Ask(ctx context.Context, ref *Reference, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}
	prompt := question
	if ref != nil {
		var err error
		prompt, err = a.prompts.Chat(ref.Title, ref.Summary, question)
		if err != nil {
			return "", err
		}
	}
	return a.gen.Generate(ctx, prompt)
}
