package ai

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/thywilljoshua/study-companion/internal/ai"

type traced struct {
	next   Generator
	tracer trace.Tracer
}

// Traced records one span per generation call on the global tracer provider.
func Traced(g Generator) Generator {
	return &traced{next: g, tracer: otel.Tracer(tracerName)}
}

func (t *traced) Provider() string { return t.next.Provider() }
func (t *traced) Model() string    { return t.next.Model() }

func (t *traced) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := t.tracer.Start(ctx, "ai.generate", trace.WithAttributes(
		attribute.String("llm.provider", t.next.Provider()),
		attribute.String("llm.model", t.next.Model()),
		attribute.Int("llm.prompt_chars", len(prompt)),
	))
	defer span.End()

	out, err := t.next.Generate(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return "", err
	}
	span.SetAttributes(attribute.Int("llm.completion_chars", len(out)))
	return out, nil
}
