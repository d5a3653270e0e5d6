package main

import (
	"context"
	"math/rand"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/jonathan/founder-outreach/internal/claim"
	"github.com/jonathan/founder-outreach/internal/classify"
	"github.com/jonathan/founder-outreach/internal/config"
	"github.com/jonathan/founder-outreach/internal/directory"
	"github.com/jonathan/founder-outreach/internal/draft"
	"github.com/jonathan/founder-outreach/internal/fetch"
	"github.com/jonathan/founder-outreach/internal/insight"
	"github.com/jonathan/founder-outreach/internal/llm"
	"github.com/jonathan/founder-outreach/internal/mailer"
	"github.com/jonathan/founder-outreach/internal/people"
	"github.com/jonathan/founder-outreach/internal/pipeline"
	"github.com/jonathan/founder-outreach/internal/store"
)

// initStore opens and migrates the configured record store.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		st, err = store.NewSQLite(cfg.Store.SQLitePath)
	case config.DriverPostgres:
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// initClaims returns a Redis claimer when configured. A Redis that cannot be
// reached is logged and replaced by a no-op claimer.
func initClaims(ctx context.Context, logger *zap.Logger) claim.Claimer {
	if cfg.Redis.URL == "" {
		return claim.Noop{}
	}
	ttl := time.Duration(cfg.Redis.ClaimTTLSecs) * time.Second
	c, err := claim.NewFromURL(ctx, cfg.Redis.URL, ttl, logger)
	if err != nil {
		logger.Warn("redis unavailable, domain claims disabled", zap.Error(err))
		return claim.Noop{}
	}
	return c
}

func llmConfig() *llm.Config {
	c := llm.DefaultConfig().
		WithModel(llm.TierLite, cfg.Gemini.LiteModel).
		WithModel(llm.TierStandard, cfg.Gemini.StandardModel).
		WithModel(llm.TierAdvanced, cfg.Gemini.AdvancedModel)
	c.Temperature = cfg.Gemini.Temperature
	return c
}

func fetchOptions() *fetch.Options {
	opts := fetch.DefaultOptions()
	opts.Timeout = time.Duration(cfg.Fetch.TimeoutSecs) * time.Second
	opts.RequestsPerSecond = cfg.Fetch.RequestsPerSecond
	opts.UseBrowser = cfg.Fetch.UseBrowser
	if cfg.Fetch.UserAgent != "" {
		opts.UserAgent = cfg.Fetch.UserAgent
	}
	return opts
}

func directoryConfig() directory.Config {
	dc := directory.DefaultConfig()
	dc.Origin = cfg.Directory.Origin
	dc.CategorySample = cfg.Directory.CategorySample
	dc.Concurrency = cfg.Directory.Concurrency
	if len(cfg.Directory.BlockedHosts) > 0 {
		dc.BlockedHosts = cfg.Directory.BlockedHosts
	}
	return dc
}

func initComposer() *draft.Composer {
	return draft.NewComposer(draft.Sender{
		Name:        cfg.Sender.Name,
		Title:       cfg.Sender.Title,
		CalendarURL: cfg.Sender.CalendarURL,
		GitHub:      cfg.Sender.GitHub,
		LinkedIn:    cfg.Sender.LinkedIn,
	})
}

// initMailer sends over SMTP when configured and only logs otherwise.
func initMailer(records mailer.Records, logger *zap.Logger) *mailer.Service {
	var sender mailer.Sender = mailer.NewLogSender(logger)
	if cfg.SMTP.Configured() {
		sender = mailer.NewSMTPSender(cfg.SMTP)
	}
	return mailer.NewService(sender, records, logger)
}

// initFallback returns the search fallback for founder names, or nil when no
// search engine is configured.
func initFallback(ctx context.Context, logger *zap.Logger) people.Finder {
	if !cfg.Capabilities().Search {
		return nil
	}
	cs, err := people.NewCustomSearch(ctx, cfg.Search.APIKey, cfg.Search.CX)
	if err != nil {
		logger.Warn("search fallback disabled", zap.Error(err))
		return nil
	}
	return people.NewSearchFallback(cs)
}

// scanSeed returns the category sampling seed; zero picks a time-based one.
func scanSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}

// initPipeline assembles a scan pipeline over st.
func initPipeline(ctx context.Context, st store.Store, seed int64, onProgress pipeline.ProgressCallback) (*pipeline.Pipeline, error) {
	logger := zap.L()

	caps := cfg.Capabilities()
	logger.Info("capabilities",
		zap.Bool("gemini", caps.Gemini),
		zap.Bool("search", caps.Search),
		zap.Bool("redis", caps.Redis),
		zap.Bool("smtp", caps.SMTP),
		zap.String("store", cfg.Store.Driver),
	)

	client, err := llm.NewClient(ctx, llmConfig(), cfg.Gemini.APIKey)
	if err != nil {
		return nil, eris.Wrap(err, "init generative client")
	}

	fetcher := fetch.NewClient(fetchOptions(), logger)
	dc := directoryConfig()
	rng := rand.New(rand.NewSource(scanSeed(seed)))

	return pipeline.New(pipeline.Components{
		Collector:  directory.NewCollector(dc, fetcher, rng, logger),
		Pages:      fetcher,
		Parser:     directory.DetailParser{BlockedHosts: dc.BlockedHosts},
		Gate:       store.NewGate(st, cfg.Scan.FreshnessWindow()),
		Store:      st,
		Classifier: classify.New(fetcher, cfg.Scan.Keywords),
		People:     people.NewResolver(client, initFallback(ctx, logger), logger),
		Insight:    insight.NewGenerator(client, logger),
		Composer:   initComposer(),
		Claims:     initClaims(ctx, logger),
		Logger:     logger,
	}, pipeline.Options{
		Pace:       cfg.Scan.Pace(),
		OnProgress: onProgress,
	}), nil
}
