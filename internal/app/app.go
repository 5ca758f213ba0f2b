package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/config"
	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/domain"
	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/infrastructure/email"
	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/infrastructure/history"
	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/infrastructure/llm"
	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/infrastructure/report"
	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/infrastructure/scheduler"
	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/infrastructure/scrape"
	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/logging"
	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/ports"
	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/scraper"
	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/usecase"
)

// Application wires configuration to the pipeline and its lifecycle.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance. Configuration problems
// surface here, before any fetching happens.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.Pipeline.FetchTimeoutDuration()}

	registry := scraper.NewRegistry()
	registry.Register(scrape.NewHTMLStrategy(httpClient, cfg.UserAgents, baseLogger.With("component", "scrape.html")))
	registry.Register(scrape.NewRSSStrategy(httpClient))

	adapters := make([]ports.SourceAdapter, 0, len(cfg.Sites))
	for _, site := range cfg.Sites {
		strategy, err := registry.Resolve(site.Strategy)
		if err != nil {
			return nil, &domain.ConfigurationError{Reason: fmt.Sprintf("site %s: %v", site.Name, err)}
		}
		adapter := scraper.NewSiteAdapter(toScraperSite(site), strategy)
		adapters = append(adapters, scraper.NewRetryAdapter(adapter,
			cfg.Pipeline.FetchAttempts,
			cfg.Pipeline.FetchRetryBaseDuration(),
			cfg.Pipeline.FetchRetryMaxDuration(),
			baseLogger.With("component", "fetch")))
	}

	oracle, err := buildOracle(cfg.Oracle, baseLogger)
	if err != nil {
		return nil, err
	}

	var sink ports.NotificationSink
	if cfg.Email.APIKey != "" && len(cfg.Email.Recipients) > 0 {
		sink = email.NewBrevoSink(cfg.Email.APIKey, cfg.Email.SenderName, cfg.Email.SenderEmail, cfg.Email.Recipients)
	} else {
		baseLogger.Warn("email disabled: missing Brevo key or recipients")
	}

	var store ports.HistoryStore
	if cfg.History.RedisAddr != "" {
		store = history.NewRedisStore(cfg.History.RedisAddr, cfg.History.KeyPrefix, cfg.History.TTLDuration())
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Adapters:     adapters,
		Oracle:       oracle,
		Renderer:     report.NewHTMLRenderer(),
		Sink:         sink,
		History:      store,
		Logger:       baseLogger.With("component", "pipeline"),
		Keywords:     cfg.Keywords,
		FetchTimeout: cfg.Pipeline.FetchTimeoutDuration(),
		RunTimeout:   cfg.Pipeline.RunTimeoutDuration(),
		CallBudget:   cfg.Oracle.CallBudget,
		ScoreWorkers: cfg.Oracle.Workers,
	})

	return &Application{cfg: cfg, logger: baseLogger, pipeline: pipeline}, nil
}

// Run executes one batch, or keeps running on the configured cron
// schedule when one is set.
func (a *Application) Run(ctx context.Context) error {
	if a.cfg.Scheduler.CronExpression == "" {
		_, err := a.pipeline.Run(ctx)
		return err
	}

	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return err
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression)

	<-ctx.Done()
	return sched.Stop(context.Background())
}

func buildOracle(cfg config.OracleConfig, logger *slog.Logger) (ports.ScoringOracle, error) {
	if cfg.APIKey == "" {
		return nil, &domain.ConfigurationError{Reason: "no oracle API key configured"}
	}

	opts := llm.ClientOptions{
		Model:        cfg.Model,
		CallTimeout:  cfg.CallTimeoutDuration(),
		SnippetRunes: cfg.SnippetRunes,
	}

	var oracle ports.ScoringOracle
	switch cfg.Provider {
	case "anthropic":
		oracle = llm.NewAnthropicOracle(cfg.APIKey, opts)
	case "openai":
		oracle = llm.NewOpenAIOracle(cfg.APIKey, opts)
	default:
		return nil, &domain.ConfigurationError{Reason: "unsupported oracle provider " + cfg.Provider}
	}

	return llm.NewRetrier(oracle, cfg.MaxAttempts, cfg.RetryBaseDuration(), cfg.RetryMaxDuration(),
		logger.With("component", "oracle")), nil
}

func toScraperSite(site config.SiteConfig) scraper.Site {
	return scraper.Site{
		Name:     site.Name,
		URL:      site.URL,
		Strategy: site.Strategy,
		Selectors: scraper.Selectors{
			Article: site.Selectors.Article,
			Title:   site.Selectors.Title,
			Summary: site.Selectors.Summary,
			Time:    site.Selectors.Time,
		},
		TimeLayout: site.TimeLayout,
		Options:    site.Options,
	}
}
