package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/probeops/pingprobe/internal/config"
	"github.com/probeops/pingprobe/internal/httpapi"
	"github.com/probeops/pingprobe/internal/httpapi/middleware"
	"github.com/probeops/pingprobe/internal/logging"
	"github.com/probeops/pingprobe/internal/metrics"
	"github.com/probeops/pingprobe/internal/notify"
	"github.com/probeops/pingprobe/internal/probe"
	"github.com/probeops/pingprobe/internal/repo"
	"github.com/probeops/pingprobe/internal/repo/memory"
	"github.com/probeops/pingprobe/internal/repo/postgres"
	"github.com/probeops/pingprobe/internal/scheduler"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		targets repo.TargetStore
		results repo.ResultStore
		alerts  repo.AlertStore
	)
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			log.Fatal(err)
		}
		defer pg.Close()
		if err := pg.Migrate(ctx); err != nil {
			log.Fatal(err)
		}
		targets, results, alerts = pg, pg, pg
		logger.Info("store_postgres")
	} else {
		mem := memory.New()
		targets, results, alerts = mem, mem, mem
		logger.Info("store_memory")
	}

	prober, err := probe.NewProber(cfg.PingPath)
	if err != nil {
		log.Fatal(err)
	}
	checker := probe.NewPingChecker(prober, cfg.ProbeAttempts, cfg.ProbeTimeout)

	collector := metrics.New()

	api := httpapi.NewServer(logger, targets, results, checker, collector)
	api.Keys = middleware.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	api.RPM = cfg.PublicRPM
	api.Burst = cfg.PublicBurst

	rechecker := scheduler.NewRechecker(
		logger, targets, results, checker, collector,
		cfg.RecheckInterval,
		cfg.ProbeTimeout*8, // generous per-target ceiling on top of the prober's own
		cfg.RecheckConcurrency,
	)
	go rechecker.Run(ctx)

	if slack := notify.NewSlack(cfg.SlackWebhook); slack != nil {
		alerter := scheduler.NewAlerter(results, alerts, slack, collector, scheduler.AlerterConfig{
			AlertOnRecovery: cfg.AlertOnRecovery,
			Cooldown:        cfg.AlertCooldown,
			PollInterval:    cfg.RecheckInterval,
		})
		go func() { _ = alerter.Run(ctx) }()
		logger.Info("alerter_enabled")
	}

	srv := &http.Server{Addr: cfg.Addr, Handler: api.Router()}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	logger.Info("api_listen", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
