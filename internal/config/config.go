package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/domain"
)

const (
	defaultTimezone    = "UTC"
	configPathEnv      = "DIGEST_CONFIG"
	anthropicAPIKeyEnv = "ANTHROPIC_API_KEY"
	openAIAPIKeyEnv    = "OPENAI_API_KEY"
	llmProviderEnv     = "LLM_PROVIDER"
	llmModelEnv        = "LLM_MODEL"
	brevoAPIKeyEnv     = "BREVO_API_KEY"
	senderEmailEnv     = "SENDER_EMAIL"
	recipientsEnv      = "RECIPIENT_EMAILS"
	redisAddrEnv       = "REDIS_ADDR"
)

// Config holds everything one pipeline run needs, read once at startup.
type Config struct {
	Logging    LoggingConfig   `yaml:"logging"`
	Scheduler  SchedulerConfig `yaml:"scheduler"`
	Keywords   []string        `yaml:"keywords"`
	Sites      []SiteConfig    `yaml:"sites"`
	UserAgents []string        `yaml:"userAgents"`
	Oracle     OracleConfig    `yaml:"oracle"`
	Pipeline   PipelineConfig  `yaml:"pipeline"`
	Email      EmailConfig     `yaml:"email"`
	History    HistoryConfig   `yaml:"history"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig defines the optional recurring-run mode. An empty cron
// expression means one batch run per invocation.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// SiteConfig describes a single news site with its scrape strategy.
type SiteConfig struct {
	Name       string            `yaml:"name"`
	Strategy   string            `yaml:"strategy"`
	URL        string            `yaml:"url"`
	Selectors  SelectorConfig    `yaml:"selectors"`
	TimeLayout string            `yaml:"timeLayout"`
	Options    map[string]string `yaml:"options"`
}

// SelectorConfig lists CSS selector fallbacks for the HTML strategy.
type SelectorConfig struct {
	Article []string `yaml:"article"`
	Title   []string `yaml:"title"`
	Summary []string `yaml:"summary"`
	Time    []string `yaml:"time"`
}

// OracleConfig defines how to contact the scoring oracle and how much to
// spend on it per run.
type OracleConfig struct {
	Provider     string `yaml:"provider"` // anthropic | openai
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	MaxAttempts  int    `yaml:"maxAttempts"`
	CallBudget   int    `yaml:"callBudget"` // max oracle calls per run
	Workers      int    `yaml:"workers"`    // concurrent in-flight calls
	CallTimeout  string `yaml:"callTimeout"`
	RetryBase    string `yaml:"retryBase"`
	RetryMax     string `yaml:"retryMax"`
	SnippetRunes int    `yaml:"snippetRunes"`
}

// CallTimeoutDuration parses the per-call timeout, defaulting to 20s.
func (o OracleConfig) CallTimeoutDuration() time.Duration {
	return parseDuration(o.CallTimeout, 20*time.Second)
}

// RetryBaseDuration parses the backoff base delay, defaulting to 500ms.
func (o OracleConfig) RetryBaseDuration() time.Duration {
	return parseDuration(o.RetryBase, 500*time.Millisecond)
}

// RetryMaxDuration parses the backoff ceiling, defaulting to 8s.
func (o OracleConfig) RetryMaxDuration() time.Duration {
	return parseDuration(o.RetryMax, 8*time.Second)
}

// PipelineConfig bounds run latency.
type PipelineConfig struct {
	FetchTimeout   string `yaml:"fetchTimeout"` // per adapter, covers all attempts
	RunTimeout     string `yaml:"runTimeout"`   // whole run; empty = unbounded
	FetchAttempts  int    `yaml:"fetchAttempts"`
	FetchRetryBase string `yaml:"fetchRetryBase"`
	FetchRetryMax  string `yaml:"fetchRetryMax"`
}

// FetchTimeoutDuration parses the per-adapter timeout, defaulting to 30s.
func (p PipelineConfig) FetchTimeoutDuration() time.Duration {
	return parseDuration(p.FetchTimeout, 30*time.Second)
}

// RunTimeoutDuration parses the global run deadline; zero means none.
func (p PipelineConfig) RunTimeoutDuration() time.Duration {
	return parseDuration(p.RunTimeout, 0)
}

// FetchRetryBaseDuration parses the fetch backoff base, defaulting to 2s.
func (p PipelineConfig) FetchRetryBaseDuration() time.Duration {
	return parseDuration(p.FetchRetryBase, 2*time.Second)
}

// FetchRetryMaxDuration parses the fetch backoff ceiling, defaulting to 30s.
func (p PipelineConfig) FetchRetryMaxDuration() time.Duration {
	return parseDuration(p.FetchRetryMax, 30*time.Second)
}

// EmailConfig wires the Brevo transactional sender.
type EmailConfig struct {
	SenderName  string   `yaml:"senderName"`
	SenderEmail string   `yaml:"senderEmail"`
	Recipients  []string `yaml:"recipients"`
	APIKey      string   `yaml:"apiKey"`
}

// HistoryConfig enables the optional run-to-run suppression store.
type HistoryConfig struct {
	RedisAddr string `yaml:"redisAddr"`
	TTL       string `yaml:"ttl"`
	KeyPrefix string `yaml:"keyPrefix"`
}

// TTLDuration parses the seen-marker lifetime, defaulting to 7 days.
func (h HistoryConfig) TTLDuration() time.Duration {
	return parseDuration(h.TTL, 7*24*time.Hour)
}

// Load reads YAML configuration (if present) and applies environment
// overrides for secrets.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

// Validate reports the fatal conditions that must abort the process before
// any fetching happens. Note that an empty keyword list is allowed: it
// means "match everything".
func (c Config) Validate() error {
	if len(c.Sites) == 0 {
		return &domain.ConfigurationError{Reason: "no sites configured"}
	}
	for i, site := range c.Sites {
		if site.Name == "" {
			return &domain.ConfigurationError{Reason: fmt.Sprintf("site #%d has no name", i)}
		}
		if site.URL == "" {
			return &domain.ConfigurationError{Reason: fmt.Sprintf("site %s has no url", site.Name)}
		}
		if site.Strategy == "" {
			return &domain.ConfigurationError{Reason: fmt.Sprintf("site %s has no strategy", site.Name)}
		}
	}

	switch c.Oracle.Provider {
	case "anthropic", "openai":
	default:
		return &domain.ConfigurationError{Reason: "oracle provider must be anthropic or openai, got " + c.Oracle.Provider}
	}
	if c.Oracle.MaxAttempts < 1 {
		return &domain.ConfigurationError{Reason: "oracle maxAttempts must be at least 1"}
	}
	if c.Oracle.CallBudget < 0 {
		return &domain.ConfigurationError{Reason: "oracle callBudget cannot be negative"}
	}
	if c.Oracle.Workers < 1 {
		return &domain.ConfigurationError{Reason: "oracle workers must be at least 1"}
	}
	if c.Pipeline.FetchAttempts < 1 {
		return &domain.ConfigurationError{Reason: "pipeline fetchAttempts must be at least 1"}
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(llmProviderEnv); v != "" {
		c.Oracle.Provider = v
	}
	if v := os.Getenv(llmModelEnv); v != "" {
		c.Oracle.Model = v
	}

	switch c.Oracle.Provider {
	case "openai":
		if v := os.Getenv(openAIAPIKeyEnv); v != "" {
			c.Oracle.APIKey = v
		}
	default:
		if v := os.Getenv(anthropicAPIKeyEnv); v != "" {
			c.Oracle.APIKey = v
		}
	}

	if v := os.Getenv(brevoAPIKeyEnv); v != "" {
		c.Email.APIKey = v
	}
	if v := os.Getenv(senderEmailEnv); v != "" {
		c.Email.SenderEmail = v
	}
	if v := os.Getenv(recipientsEnv); v != "" {
		var recipients []string
		for _, addr := range strings.Split(v, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				recipients = append(recipients, addr)
			}
		}
		c.Email.Recipients = recipients
	}

	if v := os.Getenv(redisAddrEnv); v != "" {
		c.History.RedisAddr = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if len(override.Keywords) > 0 {
		base.Keywords = override.Keywords
	}
	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}
	if len(override.UserAgents) > 0 {
		base.UserAgents = override.UserAgents
	}

	base.Oracle = mergeOracle(base.Oracle, override.Oracle)
	base.Pipeline = mergePipeline(base.Pipeline, override.Pipeline)
	base.Email = mergeEmail(base.Email, override.Email)
	base.History = mergeHistory(base.History, override.History)

	return base
}

func mergeOracle(base, override OracleConfig) OracleConfig {
	if override.Provider != "" {
		base.Provider = override.Provider
	}
	if override.Model != "" {
		base.Model = override.Model
	}
	if override.APIKey != "" {
		base.APIKey = override.APIKey
	}
	if override.MaxAttempts != 0 {
		base.MaxAttempts = override.MaxAttempts
	}
	if override.CallBudget != 0 {
		base.CallBudget = override.CallBudget
	}
	if override.Workers != 0 {
		base.Workers = override.Workers
	}
	if override.CallTimeout != "" {
		base.CallTimeout = override.CallTimeout
	}
	if override.RetryBase != "" {
		base.RetryBase = override.RetryBase
	}
	if override.RetryMax != "" {
		base.RetryMax = override.RetryMax
	}
	if override.SnippetRunes != 0 {
		base.SnippetRunes = override.SnippetRunes
	}
	return base
}

func mergePipeline(base, override PipelineConfig) PipelineConfig {
	if override.FetchTimeout != "" {
		base.FetchTimeout = override.FetchTimeout
	}
	if override.RunTimeout != "" {
		base.RunTimeout = override.RunTimeout
	}
	if override.FetchAttempts != 0 {
		base.FetchAttempts = override.FetchAttempts
	}
	if override.FetchRetryBase != "" {
		base.FetchRetryBase = override.FetchRetryBase
	}
	if override.FetchRetryMax != "" {
		base.FetchRetryMax = override.FetchRetryMax
	}
	return base
}

func mergeEmail(base, override EmailConfig) EmailConfig {
	if override.SenderName != "" {
		base.SenderName = override.SenderName
	}
	if override.SenderEmail != "" {
		base.SenderEmail = override.SenderEmail
	}
	if len(override.Recipients) > 0 {
		base.Recipients = override.Recipients
	}
	if override.APIKey != "" {
		base.APIKey = override.APIKey
	}
	return base
}

func mergeHistory(base, override HistoryConfig) HistoryConfig {
	if override.RedisAddr != "" {
		base.RedisAddr = override.RedisAddr
	}
	if override.TTL != "" {
		base.TTL = override.TTL
	}
	if override.KeyPrefix != "" {
		base.KeyPrefix = override.KeyPrefix
	}
	return base
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("config: bad duration %q, using %s", raw, fallback)
		return fallback
	}
	return d
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{Timezone: defaultTimezone, location: tz},
		Keywords: []string{
			"fintech", "payments", "fed", "inflation", "interest rate",
		},
		Sites: []SiteConfig{
			{
				Name:     "finextra",
				Strategy: "html",
				URL:      "https://www.finextra.com/latest-news",
				Selectors: SelectorConfig{
					Article: []string{"div.news-item", "article.news-article"},
					Title:   []string{"h3 a.news-title", "h2 a.article-title"},
					Summary: []string{"div.news-summary", "p.article-excerpt"},
				},
			},
			{
				Name:     "pymnts",
				Strategy: "rss",
				URL:      "https://www.pymnts.com/feed/",
			},
		},
		UserAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/92.0.4515.107 Safari/537.36",
		},
		Oracle: OracleConfig{
			Provider:     "anthropic",
			Model:        "claude-3-7-sonnet-20250219",
			MaxAttempts:  3,
			CallBudget:   25,
			Workers:      3,
			CallTimeout:  "20s",
			SnippetRunes: 500,
		},
		Pipeline: PipelineConfig{
			FetchTimeout:  "30s",
			FetchAttempts: 3,
		},
		Email: EmailConfig{
			SenderName:  "Fintech News Digest",
			SenderEmail: "noreply@fintechnewsdigest.example",
		},
		History: HistoryConfig{
			KeyPrefix: "digest:seen:",
			TTL:       "168h",
		},
	}
}
