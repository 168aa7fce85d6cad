package main

import (
	"fmt"

	"go.uber.org/zap"

	"dutch-tutor/internal/config"
	"dutch-tutor/internal/kvstore"
	"dutch-tutor/internal/learning"
	"dutch-tutor/internal/llm"
	"dutch-tutor/internal/locale"
	"dutch-tutor/internal/storage"
	"dutch-tutor/internal/tutor"
)

// app holds the process-wide collaborators shared by every subcommand.
type app struct {
	kv      kvstore.Store
	store   *learning.Store
	journal storage.Recorder
}

func openKV(cfg *config.Config) (kvstore.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreFile:
		return kvstore.NewFileStore(cfg.StoreFilePath)
	case config.StoreSQLite:
		return kvstore.NewSQLiteStore(cfg.StoreSQLitePath)
	case config.StoreMemory:
		return kvstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
}

func newApp() (*app, error) {
	kv, err := openKV(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	store := learning.NewStore(kv, learning.WithLogger(logger.Named("learning")))
	store.Load()

	a := &app{kv: kv, store: store}
	if cfg.JournalFilePath != "" {
		rec, err := storage.NewFileRecorder(cfg.JournalFilePath)
		if err != nil {
			logger.Warn("failed to init exchange journal", zap.Error(err))
		} else {
			a.journal = rec
		}
	}
	logger.Debug("store opened", zap.String("backend", string(cfg.StoreBackend)))
	return a, nil
}

func (a *app) Close() {
	if err := a.kv.Close(); err != nil {
		logger.Warn("failed to close store", zap.Error(err))
	}
}

// credential prefers the environment, then a key saved at runtime.
func (a *app) credential() string {
	if c := cfg.Credential(); c != "" {
		return c
	}
	saved, ok, err := a.kv.Get(kvstore.KeyCredential)
	if err != nil {
		logger.Warn("saved credential unreadable", zap.Error(err))
		return ""
	}
	if !ok {
		return ""
	}
	return saved
}

// newTutor builds the orchestrator. Without requireClient a provider that
// cannot be built is tolerated, since progress, clear and lang never call it.
func (a *app) newTutor(r tutor.Renderer, requireClient bool) (*tutor.Tutor, error) {
	client, err := llm.NewFactory(cfg).CreateClient(string(cfg.LLMProvider))
	if err != nil {
		if requireClient {
			return nil, fmt.Errorf("create llm client: %w", err)
		}
		logger.Debug("llm client unavailable", zap.Error(err))
		client = llm.Unavailable{Err: err}
	}
	return tutor.New(tutor.Options{
		Client:          client,
		Learning:        a.store,
		KV:              a.kv,
		Renderer:        r,
		Journal:         a.journal,
		Logger:          logger.Named("tutor"),
		Credential:      a.credential(),
		Language:        locale.MustParse(cfg.TeachingLanguage),
		Temperature:     cfg.Temperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
		Timeout:         cfg.RequestTimeout,
	})
}
