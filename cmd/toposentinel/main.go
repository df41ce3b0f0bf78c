package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"TopoSentinel/internal/collector"
	"TopoSentinel/internal/config"
	"TopoSentinel/internal/pipeline"
	"TopoSentinel/internal/recorder"
	"TopoSentinel/internal/report"
	"TopoSentinel/internal/scheduler"
	"TopoSentinel/internal/topology"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] TopoSentinel starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "stooq":
		fetcher = collector.NewStooqFetcher(cfg.Proxy)
	case "mock":
		fetcher = &collector.MockFetcher{}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	col := collector.NewCollector(fetcher, cfg.Tickers, cfg.DataSource.Retries)

	// Init reporter
	rep, err := report.NewReporter(cfg.Output.Dir)
	if err != nil {
		log.Fatalf("[FATAL] init reporter: %v", err)
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	p := pipeline.New(cfg, col, topology.NewRipsEngine(), rep, rec)

	// One-shot mode: run and exit.
	if cfg.Schedule.RefreshCron == "" {
		if _, err := p.Run(); err != nil {
			log.Fatalf("[FATAL] run: %v", err)
		}
		log.Println("[INFO] run complete")
		return
	}

	// Scheduled mode: stay resident and refresh on the cron schedule.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, p)
	if err := sched.Register(cfg.Schedule.RefreshCron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing refresh now")
		go sched.RunNow()
	}

	log.Println("[INFO] TopoSentinel is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] TopoSentinel stopped")
}
