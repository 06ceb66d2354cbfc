package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/Liutianci99/grad-pilipala/internal/apiclient"
	"github.com/Liutianci99/grad-pilipala/internal/console"
	"github.com/Liutianci99/grad-pilipala/internal/navigation"
	"github.com/Liutianci99/grad-pilipala/internal/notify"
	"github.com/Liutianci99/grad-pilipala/internal/platform/config"
	"github.com/Liutianci99/grad-pilipala/internal/platform/httpserver"
	"github.com/Liutianci99/grad-pilipala/internal/platform/logger"
	"github.com/Liutianci99/grad-pilipala/internal/platform/metrics"
	platformredis "github.com/Liutianci99/grad-pilipala/internal/platform/redis"
	"github.com/Liutianci99/grad-pilipala/internal/session"
	"github.com/Liutianci99/grad-pilipala/internal/session/store"
)

// app holds the wired dependencies shared by every command, including the
// commands run inside one shell.
type app struct {
	envFile string

	ready   bool
	cfg     config.Config
	logger  *slog.Logger
	state   *session.State
	redis   *platformredis.Client
	scope   *store.Redis
	service *console.Service
	table   *navigation.Table
	router  *navigation.Router
	ops     *errgroup.Group
	stopOps context.CancelFunc
}

func (a *app) init(ctx context.Context, stderr io.Writer) error {
	if a.ready {
		return nil
	}
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	a.logger = logger.New(cfg.LogLevel, stderr)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	var storage session.Storage
	switch cfg.Session.Backend {
	case config.SessionRedis:
		a.redis, err = platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect session store: %w", err)
		}
		a.scope = store.NewRedis(a.redis.Client, cfg.Session.Scope, store.WithTTL(cfg.Session.TTL))
		storage = a.scope
	default:
		storage = store.NewMemory()
	}
	a.state = session.New(storage, a.logger)

	notifier := notify.NewTerminal(stderr)
	client := apiclient.New(apiclient.Config{
		BaseURL:   cfg.API.URL,
		APIPrefix: cfg.API.Prefix,
		Timeout:   cfg.API.Timeout,
	}, a.state, notifier,
		apiclient.WithLogger(a.logger),
		apiclient.WithMetrics(m),
	)
	a.service, err = console.New(client, a.state, notifier,
		console.WithLogger(a.logger),
		console.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	a.table, err = navigation.NewTable(navigation.DefaultRoutes())
	if err != nil {
		return err
	}
	if err := a.table.Validate(); err != nil {
		return err
	}
	a.router = navigation.NewRouter(a.table, navigation.NewGuard(a.state, a.logger), a.logger,
		navigation.WithRouterMetrics(m),
	)

	if cfg.MetricsAddr != "" {
		a.startOps(ctx, prometheus.Gatherers{registry, prometheus.DefaultGatherer})
	}
	a.ready = true
	return nil
}

// startOps serves metrics and health next to the command until close.
func (a *app) startOps(ctx context.Context, gatherer prometheus.Gatherer) {
	var checks []httpserver.HealthCheck
	if a.redis != nil {
		checks = append(checks, a.redis.Health)
	}
	srv := httpserver.New(a.cfg.MetricsAddr, httpserver.OpsRouter(gatherer, checks...))

	opsCtx, cancel := context.WithCancel(ctx)
	a.stopOps = cancel
	a.ops, opsCtx = errgroup.WithContext(opsCtx)
	a.ops.Go(func() error {
		return httpserver.Run(opsCtx, srv)
	})
	a.logger.Info("serving metrics", "addr", a.cfg.MetricsAddr)
}

func (a *app) close() error {
	var errs []error
	if a.stopOps != nil {
		a.stopOps()
		if err := a.ops.Wait(); err != nil {
			errs = append(errs, fmt.Errorf("metrics server: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
