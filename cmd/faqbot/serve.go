package faqbot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/igorsilveira/faqbot/pkg/config"
	"github.com/igorsilveira/faqbot/pkg/faq"
	"github.com/igorsilveira/faqbot/pkg/gateway"
	"github.com/igorsilveira/faqbot/pkg/scheduler"
	"github.com/igorsilveira/faqbot/pkg/store"
	"github.com/igorsilveira/faqbot/pkg/telemetry"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the FAQ chat server",
	RunE:  runServe,
}

var (
	servePort int
	serveBind string
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides server.port)")
	serveCmd.Flags().StringVar(&serveBind, "bind", "", "bind mode or address: loopback, lan, or an IP (overrides server.bind)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Current()
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveBind != "" {
		cfg.Server.Bind = serveBind
	}

	if err := config.EnsureDataDir(); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	logger := telemetry.SetupLogger(cfg.Log.Level, cfg.Log.Format, nil)
	slog.SetDefault(logger)
	logger.Info("starting faqbot server",
		slog.String("version", version),
		slog.Int("port", cfg.Server.Port),
		slog.String("bind", cfg.Server.Bind),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx = telemetry.WithLogger(ctx, logger)

	shutdownTracer, err := telemetry.InitTracer(ctx, telemetry.TracerConfig{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		Version:     version,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", slog.String("err", err.Error()))
		}
	}()

	var queryLog *store.QueryLog
	if cfg.Store.Enabled {
		db, err := store.Open(cfg.Store.DSN)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer func() { _ = store.Close(db) }()

		queryLog, err = store.New(db)
		if err != nil {
			return fmt.Errorf("initializing query log: %w", err)
		}
	}

	gw := gateway.New(gateway.Config{
		Bind:      cfg.Server.Bind,
		Port:      cfg.Server.Port,
		QueryLog:  queryLog,
		Logger:    logger,
		AuthToken: cfg.Server.AuthToken,
	})

	reloader := faq.NewReloader(cfg.FAQ.Path, faq.Options{
		Threshold: cfg.FAQ.Threshold,
		Greeting:  cfg.FAQ.Greeting,
		Goodbye:   cfg.FAQ.Goodbye,
		Fallback:  cfg.FAQ.Fallback,
	}, func(bot *faq.Bot) {
		gw.SetEngine(bot)
		telemetry.Metrics.FAQsLoaded.Set(float64(len(bot.FAQs())))
		logger.Info("FAQs loaded",
			slog.String("path", cfg.FAQ.Path),
			slog.Int("count", len(bot.FAQs())),
			slog.Float64("threshold", bot.Threshold()),
		)
	})
	if _, err := reloader.Check(); err != nil {
		telemetry.Metrics.ErrorsTotal.WithLabelValues("faq_load").Inc()
		logger.Error("failed to load FAQs, chat endpoints will return 503",
			slog.String("path", cfg.FAQ.Path),
			slog.String("err", err.Error()),
		)
	}

	sched, err := backgroundJobs(cfg, reloader, queryLog)
	if err != nil {
		return err
	}
	go sched.Run(ctx)

	if err := gw.Start(ctx); err != nil {
		return fmt.Errorf("gateway: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

// backgroundJobs schedules FAQ reloading and query log pruning when
// configured.
func backgroundJobs(cfg *config.Config, reloader *faq.Reloader, queryLog *store.QueryLog) (*scheduler.Scheduler, error) {
	sched := scheduler.New()

	if cfg.FAQ.ReloadInterval != "" {
		err := sched.Add(scheduler.Job{
			Name:     "faq-reload",
			Schedule: cfg.FAQ.ReloadInterval,
			Func: func(ctx context.Context) error {
				_, err := reloader.Check()
				return err
			},
		})
		if err != nil {
			return nil, fmt.Errorf("faq.reload_interval: %w", err)
		}
	}

	retention, err := cfg.Store.RetentionPeriod()
	if err != nil {
		return nil, err
	}
	if queryLog != nil && retention > 0 {
		err := sched.Add(scheduler.Job{
			Name:     "query-log-prune",
			Schedule: "@hourly",
			Func: func(ctx context.Context) error {
				n, err := queryLog.Prune(ctx, time.Now().UTC().Add(-retention))
				if err != nil {
					return err
				}
				if n > 0 {
					telemetry.FromContext(ctx).Info("pruned query log", slog.Int64("entries", n))
				}
				return nil
			},
		})
		if err != nil {
			return nil, err
		}
	}

	return sched, nil
}
