package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/thywilljoshua/study-companion/internal/ai"
	"github.com/thywilljoshua/study-companion/internal/config"
	"github.com/thywilljoshua/study-companion/internal/ingest"
	"github.com/thywilljoshua/study-companion/internal/logging"
	"github.com/thywilljoshua/study-companion/internal/session"
	"github.com/thywilljoshua/study-companion/internal/study"
	"github.com/thywilljoshua/study-companion/internal/tracing"
)

// app is everything a command needs once configuration is loaded.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	gen    ai.Generator
	engine *session.Engine

	stopTracing tracing.Shutdown
}

type setupOptions struct {
	// logFile sends logs to a file instead of stderr.
	logFile string
}

// setup loads configuration, resolves the API key and wires the session
// engine. A missing key fails here, before any interaction.
func setup(ctx context.Context, configPath string, opts setupOptions) (*app, error) {
	cfg, err := config.Load(configPath, nil)
	if err != nil {
		return nil, err
	}
	if err := cfg.ResolveAPIKey(nil); err != nil {
		return nil, err
	}

	var log *zap.Logger
	if opts.logFile != "" {
		log, err = logging.ToFile(cfg.Env, opts.logFile)
	} else {
		log, err = logging.New(cfg.Env)
	}
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	stop, err := tracing.Init(ctx, cfg.Tracing, cfg.Env, log)
	if err != nil {
		log.Warn("tracing disabled", zap.Error(err))
	}

	gen, err := ai.New(ctx, cfg.AIOptions())
	if err != nil {
		return nil, &config.ConfigError{Field: "llm", Err: err}
	}
	gen = ai.Traced(gen)

	extractor, err := ingest.New(cfg.PDF.Backend)
	if err != nil {
		return nil, &config.ConfigError{Field: "pdf.backend", Err: err}
	}
	prompts, err := cfg.StudyPrompts()
	if err != nil {
		return nil, err
	}

	engine := session.NewEngine(extractor,
		study.NewSummarizer(gen, prompts),
		study.NewAssistant(gen, prompts),
		session.WithLogger(log),
		session.WithModel(gen.Model()),
	)

	log.Info("companion configured",
		zap.String("provider", gen.Provider()),
		zap.String("model", gen.Model()),
		zap.String("pdf_backend", extractor.Backend()),
		zap.Int("char_budget", prompts.Budget()))

	return &app{cfg: cfg, log: log, gen: gen, engine: engine, stopTracing: stop}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.stopTracing(ctx); err != nil {
		a.log.Warn("tracing shutdown", zap.Error(err))
	}
	_ = a.log.Sync()
}
