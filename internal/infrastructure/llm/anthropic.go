package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/domain"
	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/ports"
)

// ClientOptions carries the provider-independent oracle tuning knobs.
type ClientOptions struct {
	Model        string
	CallTimeout  time.Duration
	SnippetRunes int
}

// AnthropicOracle scores articles through the Anthropic Messages API.
type AnthropicOracle struct {
	client *anthropic.Client
	opts   ClientOptions
}

var _ ports.ScoringOracle = (*AnthropicOracle)(nil)

// NewAnthropicOracle builds a client from an API key supplied out-of-band.
func NewAnthropicOracle(apiKey string, opts ClientOptions) *AnthropicOracle {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicOracle{client: &client, opts: opts}
}

// Score submits title+snippet and parses the structured verdict.
func (o *AnthropicOracle) Score(ctx context.Context, article domain.Article) (domain.Verdict, error) {
	if o.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.CallTimeout)
		defer cancel()
	}

	resp, err := o.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(o.opts.Model),
		MaxTokens: 256,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(article, o.opts.SnippetRunes))),
		},
	})
	if err != nil {
		return domain.Verdict{}, classifyAnthropicErr(err)
	}

	if len(resp.Content) == 0 {
		return domain.Verdict{}, &domain.ScoringError{Err: errors.New("empty anthropic response")}
	}

	verdict, err := parseVerdict(resp.Content[0].Text)
	if err != nil {
		return domain.Verdict{}, &domain.ScoringError{Err: err}
	}
	return verdict, nil
}

func classifyAnthropicErr(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return &domain.ScoringError{Transient: transientStatus(apierr.StatusCode), Err: err}
	}
	// Transport-level failures (timeouts, resets) are worth retrying.
	return &domain.ScoringError{Transient: true, Err: err}
}

// transientStatus treats throttling and server-side failures as retryable;
// anything else means the request itself is wrong.
func transientStatus(status int) bool {
	switch {
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return true
	case status >= 500:
		return true
	default:
		return false
	}
}
