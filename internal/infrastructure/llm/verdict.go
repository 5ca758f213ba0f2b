// Package llm implements the scoring oracle against Anthropic and OpenAI
// APIs: one prompt, one structured verdict, transient/permanent error
// classification, and bounded retry.
package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/domain"
)

const systemPrompt = `You are a financial news analyst. Rate the article you are given.

Respond with JSON only, no other text:
{
  "sentiment": "positive" | "neutral" | "negative",
  "importance": 0-10 integer, how much this matters to financial markets,
  "summary": "one sentence on why it matters"
}`

// defaultSnippetRunes caps the snippet portion of the oracle payload.
const defaultSnippetRunes = 500

// buildPrompt assembles the user message. The title always goes through in
// full; only the snippet is truncated to the rune ceiling.
func buildPrompt(article domain.Article, snippetRunes int) string {
	if snippetRunes <= 0 {
		snippetRunes = defaultSnippetRunes
	}

	snippet := article.Snippet
	if runes := []rune(snippet); len(runes) > snippetRunes {
		snippet = string(runes[:snippetRunes]) + "…"
	}

	var b strings.Builder
	b.WriteString("Title: ")
	b.WriteString(article.Title)
	if snippet != "" {
		b.WriteString("\nSummary: ")
		b.WriteString(snippet)
	}
	if len(article.Keywords) > 0 {
		b.WriteString("\nMatched keywords: ")
		b.WriteString(strings.Join(article.Keywords, ", "))
	}
	return b.String()
}

// parseVerdict decodes the model response into a verdict. Anything outside
// the expected schema is a broken contract: the caller wraps it as a
// permanent scoring error and never retries.
func parseVerdict(content string) (domain.Verdict, error) {
	var parsed struct {
		Sentiment  string `json:"sentiment"`
		Importance int    `json:"importance"`
		Summary    string `json:"summary"`
	}

	cleaned := cleanJSONResponse(content)
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return domain.Verdict{}, fmt.Errorf("decode verdict: %w (content: %.120s)", err, content)
	}

	sentiment, ok := domain.ParseSentiment(strings.ToLower(strings.TrimSpace(parsed.Sentiment)))
	if !ok {
		return domain.Verdict{}, fmt.Errorf("sentiment %q outside taxonomy", parsed.Sentiment)
	}
	if parsed.Importance < domain.ImportanceMin || parsed.Importance > domain.ImportanceMax {
		return domain.Verdict{}, fmt.Errorf("importance %d out of range", parsed.Importance)
	}

	return domain.Verdict{
		Sentiment:  sentiment,
		Importance: parsed.Importance,
		Summary:    strings.TrimSpace(parsed.Summary),
	}, nil
}

// cleanJSONResponse strips markdown fences and surrounding prose some
// models wrap around their JSON.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}
