package ai

import (
	"context"
	"errors"
	"strings"

	genai "google.golang.org/genai"
)

type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}
	if model == "" {
		model = DefaultModel(ProviderGemini)
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &Gemini{client: c, model: model}, nil
}

func (g *Gemini) Provider() string { return ProviderGemini }
func (g *Gemini) Model() string    { return g.model }

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	res, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, nil)
	if err != nil {
		return "", wrapErr(g, err)
	}
	out := res.Text()
	if strings.TrimSpace(out) == "" {
		return "", wrapErr(g, errors.New("empty response"))
	}
	return out, nil
}

// StripCodeFences removes a markdown code fence wrapping the whole response.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		firstNewline := strings.Index(s, "\n")
		if firstNewline == -1 {
			return s
		}
		if !strings.HasSuffix(s, "```") {
			return s
		}
		s = s[firstNewline+1:]
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}

	return s
}
