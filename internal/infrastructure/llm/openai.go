package llm

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/domain"
	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/ports"
)

// OpenAIOracle scores articles through the Chat Completions API.
type OpenAIOracle struct {
	client *openai.Client
	opts   ClientOptions
}

var _ ports.ScoringOracle = (*OpenAIOracle)(nil)

// NewOpenAIOracle builds a client from an API key supplied out-of-band.
func NewOpenAIOracle(apiKey string, opts ClientOptions) *OpenAIOracle {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIOracle{client: &client, opts: opts}
}

// Score submits title+snippet and parses the structured verdict.
func (o *OpenAIOracle) Score(ctx context.Context, article domain.Article) (domain.Verdict, error) {
	if o.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.CallTimeout)
		defer cancel()
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.opts.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildPrompt(article, o.opts.SnippetRunes)),
		},
	})
	if err != nil {
		return domain.Verdict{}, classifyOpenAIErr(err)
	}

	if len(resp.Choices) == 0 {
		return domain.Verdict{}, &domain.ScoringError{Err: errors.New("empty openai response")}
	}

	verdict, err := parseVerdict(resp.Choices[0].Message.Content)
	if err != nil {
		return domain.Verdict{}, &domain.ScoringError{Err: err}
	}
	return verdict, nil
}

func classifyOpenAIErr(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return &domain.ScoringError{Transient: transientStatus(apierr.StatusCode), Err: err}
	}
	return &domain.ScoringError{Transient: true, Err: err}
}
