package ai

import (
	"context"
	"errors"
	"strings"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

type OpenAI struct {
	client openai.Client
	model  string
}

func NewOpenAI(apiKey, model, baseURL string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("missing OPENAI_API_KEY")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimRight(strings.TrimSpace(baseURL), "/"); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	return &OpenAI{client: openai.NewClient(opts...), model: model}, nil
}

func (o *OpenAI) Provider() string { return ProviderOpenAI }
func (o *OpenAI) Model() string    { return o.model }

func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	res, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", wrapErr(o, err)
	}
	if len(res.Choices) == 0 {
		return "", wrapErr(o, errors.New("response has no choices"))
	}
	out := res.Choices[0].Message.Content
	if strings.TrimSpace(out) == "" {
		return "", wrapErr(o, errors.New("empty response"))
	}
	return out, nil
}
