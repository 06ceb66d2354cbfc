package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/Liutianci99/grad-pilipala/internal/fakeapi"
	"github.com/Liutianci99/grad-pilipala/internal/platform/config"
	"github.com/Liutianci99/grad-pilipala/internal/platform/httpserver"
	"github.com/Liutianci99/grad-pilipala/internal/platform/logger"
)

const tokenIssuer = "fakeapi"

// main serves the stub backend until interrupted.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile, addr string
	cmd := &cobra.Command{
		Use:          "fakeapi",
		Short:        "Serve an in-memory stand-in for the logistics backend",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("addr") {
				cfg.FakeAPI.Addr = addr
			}
			if cmd.Flags().Changed("planning-delay") {
				cfg.FakeAPI.PlanningDelay, _ = cmd.Flags().GetDuration("planning-delay")
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load when present")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address, overrides FAKEAPI_ADDR")
	cmd.Flags().Duration("planning-delay", 0, "simulated route planning time, overrides FAKEAPI_PLANNING_DELAY")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	log := logger.New(cfg.LogLevel, os.Stderr)

	store, err := fakeapi.NewStore(fakeapi.DefaultAccounts(), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	tokens := fakeapi.NewTokenService(cfg.FakeAPI.JWTSigningKey, tokenIssuer, fakeapi.DefaultTokenTTL)
	api := fakeapi.NewServer(store, tokens, log, fakeapi.WithPlanningDelay(cfg.FakeAPI.PlanningDelay))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting fakeapi", "addr", cfg.FakeAPI.Addr)
		return httpserver.Run(ctx, httpserver.New(cfg.FakeAPI.Addr, api.Routes()))
	})
	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			log.Info("serving metrics", "addr", cfg.MetricsAddr)
			return httpserver.Run(ctx, httpserver.New(cfg.MetricsAddr, httpserver.OpsRouter(prometheus.DefaultGatherer)))
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("fakeapi stopped", "error", err)
		return err
	}
	return nil
}
