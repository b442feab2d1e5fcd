package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"support-intake-go/internal/config"
	"support-intake-go/internal/dataset"
	"support-intake-go/internal/faq"
	"support-intake-go/internal/jsonfile"
	"support-intake-go/internal/logger"
	"support-intake-go/internal/notify"
	"support-intake-go/internal/processor"
	"support-intake-go/internal/reply"
	"support-intake-go/internal/schedule"
	"support-intake-go/internal/sentiment"
	"support-intake-go/internal/transcription"
)

// app holds everything built once at startup.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	faq       *faq.Store
	schedules schedule.Store
	queue     *notify.Queue
	proc      *processor.Processor
}

func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Options{
		Environment: cfg.Environment,
		Level:       cfg.Log.Level,
		Output:      os.Stderr,
	})
	return cfg, log, nil
}

// openStores opens the FAQ and schedule stores, seeding the FAQ from
// faq.seed_xlsx when the FAQ file does not exist yet.
func openStores(cfg *config.Config, log *logger.Logger) (*faq.Store, schedule.Store, error) {
	var seed faq.List
	if cfg.FAQ.SeedXLSX != "" {
		ok, err := jsonfile.Exists(filepath.Join(cfg.Storage.DataDir, faq.FileName))
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			seed, err = dataset.LoadFAQ(cfg.FAQ.SeedXLSX)
			if err != nil {
				return nil, nil, fmt.Errorf("seeding faq: %w", err)
			}
			log.WithField("path", cfg.FAQ.SeedXLSX).WithField("entries", len(seed)).Info("seeding faq from workbook")
		}
	}

	faqs, err := faq.Open(cfg.Storage.DataDir, seed)
	if err != nil {
		return nil, nil, fmt.Errorf("opening faq store: %w", err)
	}
	store, err := schedule.Open(cfg.Storage.Backend, cfg.Storage.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening schedule store: %w", err)
	}
	return faqs, store, nil
}

// newApp wires the full pipeline. Offline builds skip the remote clients
// and are used by the maintenance commands.
func newApp(ctx context.Context, offline bool) (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	faqs, store, err := openStores(cfg, log)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, faq: faqs, schedules: store}
	deps := processor.Deps{
		FAQ:       faqs,
		Schedules: store,
		Log:       log,
	}
	if !offline {
		a.queue = notify.NewQueue(notify.NewSMTPMailer(cfg.Mail, log), cfg.Mail.QueueSize, log)
		deps.Transcriber = transcription.New(cfg.Transcription, log)
		deps.Classifier = sentiment.New(cfg.Sentiment, log)
		deps.Replies = reply.New(ctx, cfg.Reply, log)
		deps.Notifier = a.queue
		deps.UploadsDir = cfg.Storage.UploadsDir
	}
	a.proc = processor.New(deps)
	return a, nil
}

func (a *app) Close() error {
	return a.schedules.Close()
}
