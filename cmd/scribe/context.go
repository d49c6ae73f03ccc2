package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"scribe/internal/batch"
	"scribe/internal/config"
	"scribe/internal/extract"
	"scribe/internal/ledger"
	"scribe/internal/logging"
	"scribe/internal/prompts"
	"scribe/internal/recognize"
	"scribe/internal/services/gemini"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromSettings(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) recognitionClient(cfg *config.Config) *gemini.Client {
	return gemini.NewClient(gemini.Config{
		APIKey:            cfg.Gemini.APIKey,
		BaseURL:           cfg.Gemini.BaseURL,
		Model:             cfg.Gemini.Model,
		TimeoutSeconds:    cfg.Gemini.TimeoutSeconds,
		UploadPollSeconds: cfg.Gemini.UploadPollSeconds,
		UploadWaitSeconds: cfg.Gemini.UploadWaitSeconds,
		Temperature:       cfg.Gemini.Temperature,
		MaxOutputTokens:   cfg.Gemini.MaxOutputTokens,
	})
}

// openLedger opens the run history store. Ledger trouble is never fatal
// to a pass; the caller gets a nil store and recognition proceeds.
func (c *commandContext) openLedger(cfg *config.Config, logger *slog.Logger) *ledger.Store {
	store, err := ledger.Open(cfg.Paths.LedgerPath)
	if err != nil {
		logger.Warn("run ledger unavailable", logging.Error(err))
		return nil
	}
	return store
}

// newOrchestrator assembles the full pipeline for one task. The
// returned cleanup closes the ledger store.
func (c *commandContext) newOrchestrator(task prompts.Task, language string) (*batch.Orchestrator, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}

	client := c.recognitionClient(cfg)
	strategy := recognize.New(client,
		recognize.WithLogger(logging.NewComponentLogger(logger, "recognize")),
		recognize.WithInlineMax(int64(cfg.Recognition.InlineMaxMB)<<20),
		recognize.WithRetryPolicy(cfg.Recognition.MaxRetries,
			time.Duration(cfg.Recognition.RetryBaseSeconds)*time.Second))

	var extractor extract.Extractor
	if task == prompts.TaskTranscribe {
		extractor = extract.NewAudio(cfg.FFmpegBinary(), cfg.FFprobeBinary(),
			time.Duration(cfg.Recognition.SegmentMinutes)*time.Minute)
	} else {
		extractor = extract.NewPDF()
	}

	store := c.openLedger(cfg, logger)
	opts := []batch.Option{
		batch.WithLogger(logging.NewComponentLogger(logger, "batch")),
		batch.WithResultColumn(cfg.Recognition.ResultColumn),
	}
	if store != nil {
		opts = append(opts, batch.WithLedger(store))
	}

	orchestrator := batch.New(strategy, extractor, prompts.NewCatalog(cfg.Paths.PromptsDir), task, language, opts...)
	cleanup := func() {
		if store != nil {
			_ = store.Close()
		}
	}
	return orchestrator, cleanup, nil
}
