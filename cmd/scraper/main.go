package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/app"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/config"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/schedule"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/observability"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/platform/logging"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/scheduler"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}
	stopPyroscope, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}
	pprofSrv, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		logger.Error("start pprof server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	exitCode := 0
	if runOnceRequested(os.Args[1:]) {
		exitCode = runOnce(ctx, a, logger)
	} else {
		exitCode = runDaemon(ctx, cfg, a, logger)
	}

	a.Close()
	if err := observability.StopPprofServer(pprofSrv, logger, 5*time.Second); err != nil {
		logger.Error("stop pprof server", "error", err)
	}
	if err := stopPyroscope(); err != nil {
		logger.Error("stop pyroscope", "error", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := shutdownUptrace(shutdownCtx); err != nil {
		logger.Error("shutdown uptrace", "error", err)
	}

	_ = logger.Sync()
	os.Exit(exitCode)
}

func runOnceRequested(args []string) bool {
	for _, arg := range args {
		switch strings.TrimSpace(arg) {
		case "--once", "-once", "once", "run-now":
			return true
		}
	}
	return false
}

// runOnce executes a single full cycle and reports it through the exit code,
// for cron-less environments and manual backfills.
func runOnce(ctx context.Context, a *app.App, logger *logging.Logger) int {
	summary, err := a.Sync.RunCycle(ctx)
	if err != nil {
		logger.Error("one-shot sync cycle failed", "error", err)
		return 1
	}
	logger.Info("one-shot sync cycle complete",
		"observed", summary.Reconciliation.Observed,
		"inserted", summary.Reconciliation.Inserted,
		"updated", summary.Reconciliation.Updated,
		"notified", summary.Reconciliation.Notified,
	)
	return 0
}

func runDaemon(ctx context.Context, cfg config.Config, a *app.App, logger *logging.Logger) int {
	expr, err := loadSchedule(ctx, cfg, a, logger)
	if err != nil {
		logger.Error("load schedule", "error", err)
		return 1
	}

	sched := scheduler.New(ctx, func(jobCtx context.Context) error {
		_, err := a.Sync.RunCycle(jobCtx)
		return err
	}, logger)

	if err := sched.SetSchedule(expr); err != nil {
		logger.Error("apply schedule", "cron", expr, "error", err)
		return 1
	}
	sched.Start()

	changes, err := a.Schedules.Watch(ctx)
	if err != nil {
		logger.Error("watch schedule changes", "error", err)
		sched.Stop()
		return 1
	}
	go reloadOnChange(ctx, a, sched, changes, logger)

	logger.Info("scraper daemon running", "cron", expr)
	<-ctx.Done()

	logger.Info("shutting down, waiting for in-flight cycle")
	sched.Stop()
	return 0
}

// loadSchedule reads the stored cron expression, seeding the store with the
// configured default on first run.
func loadSchedule(ctx context.Context, cfg config.Config, a *app.App, logger *logging.Logger) (string, error) {
	item, err := a.ScheduleSvc.Get(ctx, schedule.JobScraper)
	if err == nil {
		return item.CronExpression, nil
	}
	if !errors.Is(err, usecase.ErrNotFound) {
		return "", err
	}

	logger.Info("no stored schedule, seeding default", "cron", cfg.DefaultCronExpression)
	if err := a.ScheduleSvc.Set(ctx, schedule.JobScraper, cfg.DefaultCronExpression); err != nil {
		return "", err
	}
	return cfg.DefaultCronExpression, nil
}

// reloadOnChange re-reads the stored expression whenever the change feed
// fires. A bad stored value keeps the previous schedule running.
func reloadOnChange(ctx context.Context, a *app.App, sched *scheduler.Scheduler, changes <-chan struct{}, logger *logging.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			item, err := a.ScheduleSvc.Get(ctx, schedule.JobScraper)
			if err != nil {
				logger.Error("reload schedule after change", "error", err)
				continue
			}
			if err := sched.SetSchedule(item.CronExpression); err != nil {
				logger.Error("apply changed schedule, keeping previous",
					"cron", item.CronExpression, "error", err)
			}
		}
	}
}
