// Package main is the entry point of the halaqa attendance tracker.
//
// The binary is a command line tool over the local data file. The serve
// subcommand additionally runs the HTTP API and, when enabled, the daily
// report scheduler.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/badr-center/halaqa-tracker/config"
	"github.com/badr-center/halaqa-tracker/internal/application/command"
	"github.com/badr-center/halaqa-tracker/internal/application/query"
	"github.com/badr-center/halaqa-tracker/internal/application/tracker"
	"github.com/badr-center/halaqa-tracker/internal/domain/report"
	"github.com/badr-center/halaqa-tracker/internal/domain/shared"
	"github.com/badr-center/halaqa-tracker/internal/infrastructure/external/clipboard"
	"github.com/badr-center/halaqa-tracker/internal/infrastructure/external/telegram"
	"github.com/badr-center/halaqa-tracker/internal/infrastructure/metrics"
	"github.com/badr-center/halaqa-tracker/internal/infrastructure/persistence/memory"
	"github.com/badr-center/halaqa-tracker/internal/infrastructure/persistence/redis"
	"github.com/badr-center/halaqa-tracker/internal/infrastructure/persistence/sqlite"
	"github.com/badr-center/halaqa-tracker/internal/infrastructure/scheduler"
	"github.com/badr-center/halaqa-tracker/internal/infrastructure/scheduler/jobs"
	"github.com/badr-center/halaqa-tracker/internal/interface/cli"
	httpserver "github.com/badr-center/halaqa-tracker/internal/interface/http"
	"github.com/badr-center/halaqa-tracker/internal/interface/http/handlers"
	"github.com/badr-center/halaqa-tracker/pkg/logger"
	"github.com/badr-center/halaqa-tracker/pkg/timeutil"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()

	switch {
	case err == nil:
	case errors.Is(err, cli.ErrHelp):
		os.Exit(2)
	case shared.IsValidation(err):
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	slogger := setupLogger(cfg)
	log := logger.New(logger.Options{
		Output:    os.Stderr,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		Format:    logger.ParseFormat(cfg.Observability.LogFormat),
		AddCaller: cfg.App.Debug,
	})

	timeutil.SetZone(cfg.App.Location)
	today := timeutil.Now()
	slogger.Debug("starting", "env", cfg.App.Environment, "timezone", cfg.App.Timezone, "today", timeutil.FormatDateStr(today))

	// ─────────────────────────────────────────────────────────────────────────
	// 3. STORAGE
	// ─────────────────────────────────────────────────────────────────────────
	var storage tracker.Storage
	var backups cli.BackupStore
	var pingers []namedPinger

	if cfg.Storage.InMemory {
		slogger.Debug("using in-memory storage")
		storage = memory.NewStorage()
	} else {
		sqlCfg := sqlite.DefaultConfig()
		sqlCfg.Path = cfg.Storage.Path
		sqlCfg.BusyTimeout = cfg.Storage.BusyTimeout
		sqlCfg.BackupsPerSlot = cfg.Storage.BackupsPerSlot

		db, err := sqlite.OpenStorage(ctx, sqlCfg, log)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				slogger.Warn("failed to close storage", "error", err)
			}
		}()
		storage = db
		backups = db
		pingers = append(pingers, namedPinger{name: "storage", p: db})
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var statsCache tracker.StatsCache
	if cfg.Redis.Enabled {
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		if cfg.Redis.DialTimeout > 0 {
			redisCfg.DialTimeout = cfg.Redis.DialTimeout
		}

		cache, err := redis.NewCache(redisCfg)
		if err != nil {
			slogger.Warn("failed to connect to Redis, statistics cache disabled", "error", err)
		} else {
			defer cache.Close()
			statsCache = redis.NewStatsCache(cache, cfg.Redis.StatsTTL)
			pingers = append(pingers, namedPinger{name: "redis", p: cache, optional: true})
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	store := tracker.New(tracker.Options{
		Storage: storage,
		Cache:   statsCache,
		Logger:  log,
		Clock:   timeutil.Now,
	})
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}

	hijri := report.FixedHijri{Date: report.HijriDate{
		Day:   cfg.Report.HijriDay,
		Month: cfg.Report.HijriMonth,
		Year:  cfg.Report.HijriYear,
	}}
	composer := report.NewComposer(cfg.Report.HalaqaName, cfg.Report.CenterName, hijri)

	getDay := query.NewGetDayHandler(store, hijri)
	getStats := query.NewGetStatisticsHandler(store)
	reports := query.NewComposeReportHandler(store, composer, cfg.Report.TeacherName)
	shareReport := command.NewShareReportHandler(reports, log)
	importData := command.NewImportDataHandler(store)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. SHARING
	// ─────────────────────────────────────────────────────────────────────────
	var chat command.Sharer
	if cfg.Telegram.Enabled() {
		tgCfg := telegram.DefaultClientConfig(cfg.Telegram.Token)
		if cfg.Telegram.BaseURL != "" {
			tgCfg.BaseURL = cfg.Telegram.BaseURL
		}
		if cfg.Telegram.Timeout > 0 {
			tgCfg.Timeout = cfg.Telegram.Timeout
		}
		tgCfg.Logger = log
		chat = telegram.NewChatSharer(telegram.NewClient(tgCfg), cfg.Telegram.ChatID)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. COMMAND LINE
	// ─────────────────────────────────────────────────────────────────────────
	serve := func(ctx context.Context) error {
		return serveHTTP(ctx, cfg, slogger, log, serveDeps{
			api: httpserver.Dependencies{
				Store:         store,
				GetDay:        getDay,
				GetStatistics: getStats,
				Reports:       reports,
				ShareReport:   shareReport,
				Sharers:       chatSharers(chat),
				Today:         today,
				Logger:        log,
			},
			pingers: pingers,
		})
	}

	return cli.New(cli.Dependencies{
		Store:         store,
		GetDay:        getDay,
		GetStatistics: getStats,
		Reports:       reports,
		ShareReport:   shareReport,
		ImportData:    importData,
		Backups:       backups,
		Clipboard:     clipboard.NewSharer(),
		Chat:          chat,
		Serve:         serve,
		Today:         today,
		Out:           os.Stdout,
		Err:           os.Stderr,
	}).Run(ctx, os.Args)
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVE
// ══════════════════════════════════════════════════════════════════════════════

type namedPinger struct {
	name     string
	p        handlers.Pinger
	optional bool
}

type serveDeps struct {
	api     httpserver.Dependencies
	pingers []namedPinger
}

// serveHTTP runs the API and the scheduler until ctx is cancelled.
func serveHTTP(ctx context.Context, cfg *config.Config, slogger *slog.Logger, log *logger.Logger, deps serveDeps) error {
	health := handlers.NewCompositeHealthChecker(cfg.App.Version)
	for _, np := range deps.pingers {
		if np.optional {
			health.AddOptionalCheck(np.name, handlers.PingCheck(np.p))
			continue
		}
		health.AddCheck(np.name, handlers.PingCheck(np.p))
	}
	deps.api.HealthChecker = health

	var m *metrics.Metrics
	if cfg.Observability.MetricsEnabled {
		m = metrics.New()
		deps.api.Metrics = m
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Scheduler
	// ─────────────────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		if len(deps.api.Sharers) == 0 {
			slogger.Warn("scheduler enabled but no chat is configured, daily report disabled")
		} else {
			schedCfg := scheduler.DefaultConfig()
			schedCfg.Logger = log
			schedCfg.Location = cfg.App.Location
			sched = scheduler.New(schedCfg)

			job := jobs.NewDailyReportJob(deps.api.ShareReport, deps.api.Sharers, timeutil.Now, log)
			if err := sched.Register(job, cfg.Scheduler.ReportCron); err != nil {
				return fmt.Errorf("failed to register daily report: %w", err)
			}
			if m != nil {
				sched.OnJobComplete(func(r scheduler.JobResult) {
					m.ObserveJob(r.JobName, r.Success)
				})
			}
			if err := sched.Start(ctx); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
			slogger.Info("scheduler started", "report_cron", cfg.Scheduler.ReportCron)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	httpCfg := httpserver.DefaultConfig()
	httpCfg.Host = cfg.HTTP.Host
	httpCfg.Port = cfg.HTTP.Port
	if cfg.HTTP.ReadTimeout > 0 {
		httpCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	}
	if cfg.HTTP.WriteTimeout > 0 {
		httpCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	}
	if len(cfg.HTTP.AllowedOrigins) > 0 {
		httpCfg.EnableCORS = true
		httpCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins
	}

	server := httpserver.NewServer(httpCfg, deps.api)
	errCh := server.StartAsync()
	slogger.Info("halaqa tracker is running", "address", httpCfg.Address())

	var serveErr error
	select {
	case <-ctx.Done():
		slogger.Info("received shutdown signal")
	case serveErr = <-errCh:
		if serveErr != nil {
			slogger.Error("HTTP server error", "error", serveErr)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Graceful shutdown
	// ─────────────────────────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if sched != nil {
		if err := sched.Stop(); err != nil {
			slogger.Warn("failed to stop scheduler", "error", err)
		}
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		slogger.Error("HTTP server shutdown error", "error", err)
	}

	slogger.Info("halaqa tracker stopped")
	return serveErr
}

func chatSharers(chat command.Sharer) []command.Sharer {
	if chat == nil {
		return nil
	}
	return []command.Sharer{chat}
}

// setupLogger configures slog: JSON in production, text otherwise. Output goes
// to stderr so command output on stdout stays clean.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.App.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level, AddSource: cfg.App.Debug}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}
