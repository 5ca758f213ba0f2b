// Package report renders a finished run into an HTML document, one ranked
// card per scored article plus the honest failure counters.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/domain"
	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/ports"
)

const reportTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Fintech News Digest — {{ .Date }}</title>
<style>
  body { font-family: Arial, sans-serif; margin: 24px; color: #222; }
  .meta { color: #666; font-size: 13px; margin-bottom: 16px; }
  .warning { background: #fff4e5; border: 1px solid #f0c36d; padding: 8px 12px; margin-bottom: 16px; }
  .article { border-bottom: 1px solid #ddd; padding: 12px 0; }
  .title a { color: #1a0dab; text-decoration: none; }
  .metrics span { margin-right: 12px; font-size: 13px; }
  .positive { color: #1e7e34; font-weight: bold; }
  .negative { color: #c0392b; font-weight: bold; }
  .neutral { color: #666; font-weight: bold; }
  .snippet, .analysis { margin: 6px 0; font-size: 14px; }
  .keywords, .source { color: #888; font-size: 12px; }
</style>
</head>
<body>
<h1>Fintech News Digest</h1>
<div class="meta">
  Run {{ .Summary.RunID }} — {{ .Generated }}<br>
  {{ .Summary.Fetched }} fetched, {{ .Summary.Matched }} matched,
  {{ .Summary.Deduped }} deduped, {{ .Summary.Scored }} scored
</div>
{{ if .Warnings }}<div class="warning">{{ range .Warnings }}{{ . }}<br>{{ end }}</div>{{ end }}
{{ if .Summary.Articles }}
{{ range .Summary.Articles }}
<div class="article">
  <h2 class="title"><a href="{{ .URL }}">{{ .Title }}</a></h2>
  <div class="metrics">
    <span>Importance: {{ .Importance }}/10</span>
    <span class="{{ .Sentiment }}">{{ .Sentiment }}</span>
  </div>
  {{ if .Snippet }}<div class="snippet">{{ .Snippet }}</div>{{ end }}
  {{ if .Summary }}<div class="analysis">{{ .Summary }}</div>{{ end }}
  {{ if .Keywords }}<div class="keywords">Keywords: {{ join .Keywords ", " }}</div>{{ end }}
  <div class="source">Source: {{ .SourceID }}</div>
</div>
{{ end }}
{{ else }}
<p>No scored articles this run.</p>
{{ end }}
</body>
</html>`

// HTMLRenderer implements ports.ReportRenderer on html/template, which
// also escapes scraped titles and snippets.
type HTMLRenderer struct {
	tmpl *template.Template
	now  func() time.Time
}

var _ ports.ReportRenderer = (*HTMLRenderer)(nil)

// NewHTMLRenderer parses the built-in template.
func NewHTMLRenderer() *HTMLRenderer {
	tmpl := template.Must(template.New("report").
		Funcs(template.FuncMap{"join": strings.Join}).
		Parse(reportTemplate))
	return &HTMLRenderer{tmpl: tmpl, now: time.Now}
}

// Render produces the report document. Failure counters become visible
// warnings so an incomplete run never looks complete.
func (r *HTMLRenderer) Render(summary domain.RunSummary) ([]byte, error) {
	data := struct {
		Summary   domain.RunSummary
		Date      string
		Generated string
		Warnings  []string
	}{
		Summary:   summary,
		Date:      summary.StartedAt.Format("2006-01-02"),
		Generated: r.now().UTC().Format("2006-01-02 15:04:05 MST"),
		Warnings:  warnings(summary),
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute report template: %w", err)
	}
	return buf.Bytes(), nil
}

func warnings(summary domain.RunSummary) []string {
	var out []string
	if summary.Phase == domain.PhaseFailed {
		out = append(out, "This run failed before completing; the report below is partial.")
	}
	if summary.FailedSources > 0 {
		out = append(out, fmt.Sprintf("%d source(s) could not be fetched.", summary.FailedSources))
	}
	if summary.Unscored > 0 {
		out = append(out, fmt.Sprintf("%d article(s) were not scored (budget or scoring failures) and are omitted.", summary.Unscored))
	}
	if summary.Suppressed > 0 {
		out = append(out, fmt.Sprintf("%d article(s) were suppressed as already reported.", summary.Suppressed))
	}
	return out
}
