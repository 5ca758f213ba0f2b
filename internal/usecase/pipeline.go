package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/dedup"
	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/domain"
	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/filter"
	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/normalize"
	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
// Renderer, Sink, and History are optional; a nil Oracle disables scoring
// entirely (every article counts as unscored).
type PipelineDeps struct {
	Adapters []ports.SourceAdapter
	Oracle   ports.ScoringOracle
	Renderer ports.ReportRenderer
	Sink     ports.NotificationSink
	History  ports.HistoryStore
	Logger   *slog.Logger

	Keywords     []string
	FetchTimeout time.Duration // per adapter, isolated
	RunTimeout   time.Duration // whole run; zero = unbounded
	CallBudget   int           // max oracle calls per run; zero = unlimited
	ScoreWorkers int           // concurrent in-flight oracle calls
}

// Pipeline turns configured sources into a ranked, scored article set.
// One run per invocation; the pipeline owns all intermediate collections
// and keeps no state between runs.
type Pipeline struct {
	adapters []ports.SourceAdapter
	oracle   ports.ScoringOracle
	renderer ports.ReportRenderer
	sink     ports.NotificationSink
	history  ports.HistoryStore
	logger   *slog.Logger

	keywords     []string
	fetchTimeout time.Duration
	runTimeout   time.Duration
	callBudget   int
	scoreWorkers int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	workers := deps.ScoreWorkers
	if workers <= 0 {
		workers = 1
	}
	return &Pipeline{
		adapters:     deps.Adapters,
		oracle:       deps.Oracle,
		renderer:     deps.Renderer,
		sink:         deps.Sink,
		history:      deps.History,
		logger:       deps.Logger,
		keywords:     deps.Keywords,
		fetchTimeout: deps.FetchTimeout,
		runTimeout:   deps.RunTimeout,
		callBudget:   deps.CallBudget,
		scoreWorkers: workers,
	}
}

// Run executes one batch: fetch → filter → dedup → score → rank, then hands
// the result to the report/notification collaborators. Per-item failures
// are isolated into summary counters; only zero-usable-input conditions
// fail the run. Even a failed run carries its summary so callers can report
// honestly.
func (p *Pipeline) Run(ctx context.Context) (domain.RunSummary, error) {
	summary := domain.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Phase:     domain.PhaseInit,
	}

	if len(p.adapters) == 0 {
		summary.Phase = domain.PhaseFailed
		summary.FinishedAt = time.Now().UTC()
		return summary, &domain.ConfigurationError{Reason: "no sources configured"}
	}

	if p.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.runTimeout)
		defer cancel()
	}

	summary.Phase = domain.PhaseFetching
	stubs := p.fetchAll(ctx, &summary)
	summary.Fetched = len(stubs)

	if summary.FailedSources == len(p.adapters) {
		summary.Phase = domain.PhaseFailed
		summary.FinishedAt = time.Now().UTC()
		p.deliver(ctx, summary)
		return summary, fmt.Errorf("all %d sources failed", len(p.adapters))
	}

	summary.Phase = domain.PhaseFiltering
	matched := p.filterStubs(stubs)
	summary.Matched = len(matched)

	if len(matched) == 0 && len(p.keywords) > 0 {
		// Sources were reachable but nothing matched the topics. Report a
		// failed run rather than a silently empty one.
		summary.Phase = domain.PhaseFailed
		summary.FinishedAt = time.Now().UTC()
		p.deliver(ctx, summary)
		return summary, fmt.Errorf("no articles matched %d keywords across %d fetched stubs",
			len(p.keywords), summary.Fetched)
	}

	summary.Phase = domain.PhaseDeduping
	deduped := dedup.Collapse(matched)
	summary.Deduped = len(deduped)

	deduped = p.suppressSeen(ctx, deduped, &summary)

	summary.Phase = domain.PhaseScoring
	scored := p.scoreAll(ctx, deduped, &summary)

	rank(scored)
	summary.Articles = scored
	summary.Scored = len(scored)
	summary.Phase = domain.PhaseDone
	summary.FinishedAt = time.Now().UTC()

	p.markSeen(ctx, scored)
	p.deliver(ctx, summary)

	p.info("run complete",
		"run_id", summary.RunID,
		"fetched", summary.Fetched,
		"matched", summary.Matched,
		"deduped", summary.Deduped,
		"suppressed", summary.Suppressed,
		"scored", summary.Scored,
		"unscored", summary.Unscored,
		"failed_sources", summary.FailedSources,
	)

	return summary, nil
}

// fetchAll drives every adapter concurrently, each under its own timeout.
// Results land in per-adapter buckets so aggregation preserves configured
// source order regardless of completion order.
func (p *Pipeline) fetchAll(ctx context.Context, summary *domain.RunSummary) []domain.Stub {
	buckets := make([][]domain.Stub, len(p.adapters))
	failures := make([]error, len(p.adapters))

	var wg sync.WaitGroup
	for i, adapter := range p.adapters {
		wg.Add(1)
		go func(i int, adapter ports.SourceAdapter) {
			defer wg.Done()

			fetchCtx := ctx
			if p.fetchTimeout > 0 {
				var cancel context.CancelFunc
				fetchCtx, cancel = context.WithTimeout(ctx, p.fetchTimeout)
				defer cancel()
			}

			stubs, err := adapter.Fetch(fetchCtx)
			if err != nil {
				failures[i] = err
				return
			}
			buckets[i] = stubs
		}(i, adapter)
	}
	wg.Wait()

	var all []domain.Stub
	for i, adapter := range p.adapters {
		switch {
		case failures[i] != nil:
			summary.FailedSources++
			p.warn("source failed", "source", adapter.ID(), "error", failures[i])
		case len(buckets[i]) == 0:
			summary.EmptySources++
			p.info("source empty", "source", adapter.ID(), "detail", domain.ErrEmptyResult)
		default:
			all = append(all, buckets[i]...)
		}
	}
	return all
}

func (p *Pipeline) filterStubs(stubs []domain.Stub) []domain.Article {
	matched := make([]domain.Article, 0, len(stubs))
	for _, stub := range stubs {
		article := normalize.Article(stub)
		hits, ok := filter.Matches(article, p.keywords)
		if !ok {
			continue
		}
		article.Keywords = hits
		matched = append(matched, article)
	}
	return matched
}

// suppressSeen drops articles already reported on a previous run. Runs
// before scoring so suppressed articles never spend oracle budget. A
// history failure degrades to "suppress nothing".
func (p *Pipeline) suppressSeen(ctx context.Context, articles []domain.Article, summary *domain.RunSummary) []domain.Article {
	if p.history == nil || len(articles) == 0 {
		return articles
	}

	fingerprints := make([]string, len(articles))
	for i, art := range articles {
		fingerprints[i] = art.Fingerprint
	}

	seen, err := p.history.Seen(ctx, fingerprints)
	if err != nil {
		p.warn("history lookup failed, suppressing nothing", "error", err)
		return articles
	}

	kept := articles[:0]
	for _, art := range articles {
		if seen[art.Fingerprint] {
			summary.Suppressed++
			continue
		}
		kept = append(kept, art)
	}
	return kept
}

// scoreAll fans the deduped set over a bounded worker pool. The call budget
// is one atomic counter shared by all workers; a worker that cannot reserve
// a slot records the article as unscored instead of calling the oracle.
func (p *Pipeline) scoreAll(ctx context.Context, articles []domain.Article, summary *domain.RunSummary) []domain.ScoredArticle {
	if len(articles) == 0 {
		return nil
	}
	if p.oracle == nil {
		summary.Unscored = len(articles)
		return nil
	}

	var (
		budget   atomic.Int64
		unscored atomic.Int64
		results  = make([]*domain.ScoredArticle, len(articles))
		jobs     = make(chan int)
		wg       sync.WaitGroup
	)
	budget.Store(int64(p.callBudget))

	workers := p.scoreWorkers
	if workers > len(articles) {
		workers = len(articles)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				article := articles[idx]

				if p.callBudget > 0 && budget.Add(-1) < 0 {
					unscored.Add(1)
					p.info("budget exhausted, skipping article",
						"fingerprint", article.Fingerprint, "detail", domain.ErrBudgetExhausted)
					continue
				}

				verdict, err := p.oracle.Score(ctx, article)
				if err != nil {
					unscored.Add(1)
					p.warn("article dropped after scoring failure",
						"fingerprint", article.Fingerprint, "error", err)
					continue
				}
				results[idx] = &domain.ScoredArticle{Article: article, Verdict: verdict}
			}
		}()
	}

	for idx := range articles {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	scored := make([]domain.ScoredArticle, 0, len(articles))
	for _, res := range results {
		if res != nil {
			scored = append(scored, *res)
		}
	}
	summary.Unscored = int(unscored.Load())
	return scored
}

// rank orders the final set: importance descending, then recency descending
// (unknown timestamps sort last), then fingerprint ascending so repeated
// runs over identical input produce identical output.
func rank(articles []domain.ScoredArticle) {
	sort.Slice(articles, func(i, j int) bool {
		a, b := articles[i], articles[j]
		if a.Importance != b.Importance {
			return a.Importance > b.Importance
		}
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return a.Fingerprint < b.Fingerprint
	})
}

func (p *Pipeline) markSeen(ctx context.Context, scored []domain.ScoredArticle) {
	if p.history == nil || len(scored) == 0 {
		return
	}
	fingerprints := make([]string, len(scored))
	for i, art := range scored {
		fingerprints[i] = art.Fingerprint
	}
	if err := p.history.MarkSeen(ctx, fingerprints); err != nil {
		p.warn("history update failed", "error", err)
	}
}

// deliver renders and sends the report. Delivery problems are logged only;
// scoring and ranking already completed.
func (p *Pipeline) deliver(ctx context.Context, summary domain.RunSummary) {
	if p.renderer == nil {
		return
	}

	document, err := p.renderer.Render(summary)
	if err != nil {
		p.warn("report rendering failed", "run_id", summary.RunID, "error", err)
		return
	}

	if p.sink == nil {
		return
	}

	subject := fmt.Sprintf("Fintech News Digest — %s", summary.StartedAt.Format("2006-01-02"))
	if err := p.sink.Send(ctx, subject, document); err != nil {
		p.warn("report delivery failed", "run_id", summary.RunID, "error", err)
		return
	}
	p.info("report delivered", "run_id", summary.RunID)
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
