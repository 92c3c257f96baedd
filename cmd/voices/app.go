package main

import (
	"github.com/0xcro3dile/voices-of-independence/internal/adapters/backend"
	"github.com/0xcro3dile/voices-of-independence/internal/adapters/catalog"
	"github.com/0xcro3dile/voices-of-independence/internal/domain/entities"
	"github.com/0xcro3dile/voices-of-independence/internal/domain/usecases"
	"github.com/0xcro3dile/voices-of-independence/internal/infrastructure/config"
	"github.com/0xcro3dile/voices-of-independence/internal/infrastructure/logger"
	"github.com/0xcro3dile/voices-of-independence/internal/infrastructure/metrics"
)

// app is the wired dependency graph shared by every command.
type app struct {
	cfg     *config.Config
	logger  *logger.ZapLogger
	catalog *catalog.Store
	metrics *metrics.Recorder
	session *usecases.QuerySession
}

func newApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.NewZapLogger(logger.Options{
		File:       cfg.Log.File,
		Level:      cfg.Log.Level,
		Production: cfg.Log.Production,
	})
	if err != nil {
		return nil, err
	}

	store, err := catalog.NewEmbedded()
	if err != nil {
		return nil, err
	}

	recorder := metrics.NewRecorder()
	gateway := backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout)
	session := usecases.NewQuerySession(gateway, usecases.NewSourceResolver(store), usecases.SessionOptions{
		Limit:          cfg.Query.Limit,
		DefaultPersona: cfg.DefaultPersona(),
		Logger:         log,
		Metrics:        recorder,
	})

	log.Debug("main", "client ready", map[string]interface{}{
		"backend":    cfg.Backend.URL,
		"mode":       string(cfg.DefaultPersona()),
		"limit":      cfg.Query.Limit,
		"documents":  len(store.Documents()),
		"session_id": session.State().SessionID,
	})

	return &app{
		cfg:     cfg,
		logger:  log,
		catalog: store,
		metrics: recorder,
		session: session,
	}, nil
}

// usePersona applies a --mode flag value. Empty keeps the configured default.
func (a *app) usePersona(mode string) error {
	if mode == "" {
		return nil
	}
	p, err := entities.ParsePersona(mode)
	if err != nil {
		return err
	}
	return a.session.SelectPersona(p)
}

func (a *app) Close() {
	a.session.Close()
	_ = a.catalog.Close()
	_ = a.logger.Sync()
}
