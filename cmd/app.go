package cmd

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"task-lifecycle.com/task-lifecycle/internal/cache"
	config "task-lifecycle.com/task-lifecycle/internal/configs"
	"task-lifecycle.com/task-lifecycle/internal/services"
)

// app holds the wiring shared by every command.
type app struct {
	cfg      config.Config
	log      zerolog.Logger
	db       *gorm.DB
	registry *prometheus.Registry
	pipeline *services.Pipeline
	closers  []func()
}

func newApp() (*app, error) {
	cfg := config.Load()
	logger := config.NewLogger(cfg.LogLevel, cfg.LogPretty)

	db, err := config.NewDatabase(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		log:      logger,
		db:       db,
		registry: prometheus.NewRegistry(),
	}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, func() { _ = sqlDB.Close() })
	}

	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	templateCache, err := a.templateCache()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.pipeline = services.NewPipeline(db, templateCache, nil, services.NewMetrics(a.registry), logger)
	return a, nil
}

func (a *app) templateCache() (cache.TemplateCache, error) {
	ttl := time.Duration(a.cfg.TemplateCacheTTLSeconds) * time.Second

	if a.cfg.RedisAddr == "" {
		a.log.Info().Msg("REDIS_HOST not set, using in-process template cache")
		mem := cache.NewMemoryTemplateCache(ttl)
		services.RegisterCacheSize(a.registry, mem.Len)
		return mem, nil
	}

	client, err := config.NewRedisClient(a.cfg.RedisAddr)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)

	return cache.NewRedisTemplateCache(client, a.cfg.TemplateCachePrefix, ttl, a.log), nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
