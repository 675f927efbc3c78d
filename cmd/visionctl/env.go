package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/samvad-hq/vision-client/internal/config"
	"github.com/samvad-hq/vision-client/internal/logger"
	"github.com/samvad-hq/vision-client/internal/storage"
	"github.com/samvad-hq/vision-client/pkg/apiclient"
	"github.com/samvad-hq/vision-client/pkg/notifiers"
)

// env holds the dependencies shared by all commands. Fields left nil are
// built from configuration on first use.
type env struct {
	cfg    *config.Config
	log    logger.Logger
	client *apiclient.Client
	store  storage.Store
	out    io.Writer
	errOut io.Writer

	ownsLogger bool
}

// setup loads configuration, logging and the API client.
func (e *env) setup() error {
	if e.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		e.cfg = cfg
	}
	if e.log == nil {
		sugar, err := logger.Init(e.cfg)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		e.log = logger.New(sugar)
		e.ownsLogger = true
		logger.DebugObj("visionctl configured", "config_meta", map[string]any{
			"app_env":       e.cfg.Env,
			"api_base_url":  e.cfg.APIBaseURL,
			"api_prefix":    e.cfg.APIPrefix,
			"strict_status": e.cfg.StrictStatus,
			"journal_type":  e.cfg.JournalType,
		})
	}
	if e.client == nil {
		opts := []apiclient.Option{
			apiclient.WithBaseURL(e.cfg.APIBaseURL),
			apiclient.WithPrefix(e.cfg.APIPrefix),
			apiclient.WithTimeout(e.cfg.HTTPTimeout),
			apiclient.WithLogger(e.log),
		}
		if !e.cfg.StrictStatus {
			opts = append(opts, apiclient.WithCompatibilityMode())
		}
		e.client = apiclient.New(opts...)
	}
	return nil
}

// journal opens the task journal on demand.
func (e *env) journal() (storage.Store, error) {
	if e.store != nil {
		return e.store, nil
	}
	store, err := storage.NewStore(e.cfg.JournalType, e.cfg.JournalPath, storage.Options{
		TaskTTL:         e.cfg.JournalTTL,
		CleanupInterval: e.cfg.JournalCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	e.store = store
	return store, nil
}

// fanout builds the configured notifiers. No notifiers file means none.
func (e *env) fanout(ctx context.Context) (*notifiers.Fanout, error) {
	if e.cfg.NotifiersFile == "" {
		return notifiers.NewFanout(nil), nil
	}
	reg, err := notifiers.LoadRegistry(e.cfg.NotifiersFile)
	if err != nil {
		return nil, fmt.Errorf("load notifiers: %w", err)
	}
	enabled := reg.Enabled()
	built, err := notifiers.BuildAll(ctx, notifiers.DefaultRegistry(), enabled, e.log)
	if err != nil {
		return nil, fmt.Errorf("build notifiers: %w", err)
	}
	summaries := make([]map[string]string, 0, len(enabled))
	for _, c := range enabled {
		summaries = append(summaries, map[string]string{"id": c.ID, "type": c.Type})
	}
	e.log.InfoObj("notifiers loaded", "notifiers_meta", summaries)
	return notifiers.NewFanout(built), nil
}

func (e *env) close() {
	var errs []error
	if e.store != nil {
		errs = append(errs, e.store.Close())
	}
	if e.ownsLogger {
		_ = logger.Close()
	}
	if err := errors.Join(errs...); err != nil && e.errOut != nil {
		fmt.Fprintf(e.errOut, "close: %v\n", err)
	}
}
