package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"tgnvoda/internal/components/chrono"
	"tgnvoda/internal/components/telemetry"
	"tgnvoda/internal/config"
	"tgnvoda/internal/coordinator"
	"tgnvoda/internal/scrapers/tgnvoda"
	"tgnvoda/lib/util/serviceutil"
)

func main() {
	configPath := flag.String("config", "", "Path to tgnvoda.json5, searched for upwards from the working directory by default.")
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	cfg, err := config.Read(*configPath)
	if err != nil {
		telemetry.InitSlog(*verbose)
		serviceutil.Fatal("read config", err)
	}
	telemetry.InitSlog(*verbose || cfg.Debug)

	otel, err := telemetry.Setup(ctx, "tgnvoda", cfg.Otlp)
	if err != nil {
		serviceutil.Fatal("init telemetry", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := otel.Shutdown(shutdownCtx)
		if err != nil {
			slog.Warn("telemetry shutdown", "err", err)
		}
	}()
	if cfg.Otlp.Metrics.Enabled() {
		err = telemetry.InstrumentPerfStats(ctx)
		if err != nil {
			slog.Warn("perf stats", "err", err)
		}
	}

	tel := telemetry.SlogAPI{}
	clock, err := chrono.NewStandardImpl()
	if err != nil {
		serviceutil.Fatal("load timezone", err)
	}
	cron := chrono.NewStandardCron(tel, clock.Location())
	defer cron.Stop()

	bus := coordinator.NewEventBus()
	bus.Subscribe(coordinator.EventHistory, func(e coordinator.Event) {
		event := e.(coordinator.HistoryEvent)
		slog.Info("tgn_voda.get_history", "entry", event.EntryID, "items", len(event.Items))
	})

	scheduler := coordinator.NewScheduler(cron, tel)
	coordinators := map[string]*coordinator.Coordinator{}
	for _, account := range cfg.Accounts {
		client, err := tgnvoda.NewClient(account.ClientOptions(), tel)
		if err != nil {
			serviceutil.Fatal("init client "+account.EntryID(), err)
		}
		c, err := coordinator.New(account.EntryID(), client, bus, clock, tel)
		if err != nil {
			serviceutil.Fatal("init coordinator "+account.EntryID(), err)
		}
		coordinators[account.EntryID()] = c

		err = scheduler.Add(ctx, c, account.Interval())
		if err != nil {
			slog.Warn("first refresh failed, will retry on schedule", "entry", account.EntryID(), "err", err)
			continue
		}
		slog.Info("account ready", "entry", account.EntryID(), "title", account.Title(), "interval", account.Interval())
	}

	if cfg.Listen != "" {
		go func() {
			err := serviceutil.StartHttpServer(ctx, cfg.Listen, newAPI(coordinators))
			if err != nil {
				serviceutil.Fatal("http api", err)
			}
		}()
	}

	<-ctx.Done()
	slog.Info("shutting down")
}
