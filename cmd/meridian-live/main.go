package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meridian/internal/broker"
	"meridian/internal/config"
	"meridian/internal/engine"
	"meridian/internal/feed"
	"meridian/internal/limits"
	"meridian/internal/plugin"
	"meridian/internal/store"
)

func main() {
	symbol := flag.String("symbol", "", "symbol to trade (required)")
	capital := flag.Float64("capital", 0, "initial capital (overrides config)")
	flag.Parse()

	if *symbol == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfgPath := "config/meridian.yaml"
	if p := os.Getenv("MERIDIAN_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Dual logger: stdout + /tmp log file.
	logFileName := fmt.Sprintf("/tmp/meridian-live-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.Create(logFileName)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	w := io.MultiWriter(os.Stdout, logFile)
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	pstore := store.NewParquetStore(cfg.Storage.DataDir)
	opts := feed.AlpacaOpts{
		APIKey:          cfg.Alpaca.APIKey,
		APISecret:       cfg.Alpaca.APISecret,
		DataURL:         cfg.Alpaca.DataURL,
		Feed:            cfg.Alpaca.DataFeed,
		RateLimitPerMin: cfg.Feed.RateLimitPerMin,
	}
	if cfg.Feed.CacheBars {
		opts.Cache = pstore
	}
	source := feed.NewAlpacaSource(opts)

	var b broker.Broker
	if cfg.Trading.PaperMode {
		b = broker.NewPaperBroker()
	} else {
		b = broker.NewAlpacaBroker(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.BaseURL)
	}

	registry := plugin.NewRegistry(logger)
	for _, p := range plugin.Defaults() {
		registry.Register(p)
	}
	registry.EnableOnly(cfg.Trading.Plugins)

	gate := limits.NewGate(limits.Config{
		NoTradeWindow:        time.Duration(cfg.Limits.NoTradeWindowMin) * time.Minute,
		MaxConsecutiveLosses: cfg.Limits.MaxConsecutiveLosses,
		MinDailyWinRate:      cfg.Limits.MinDailyWinRate,
	})

	eng := engine.New(engine.Options{
		Source:   source,
		Registry: registry,
		Gate:     gate,
		Broker:   b,
		Logger:   logger,
	})

	initialCapital := cfg.Trading.InitialCapital
	if *capital > 0 {
		initialCapital = *capital
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("starting live session",
		"symbol", *symbol,
		"broker", b.Name(),
		"capital", initialCapital,
		"logFile", logFileName,
	)
	if err := eng.RunRealtime(ctx, *symbol, initialCapital); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("live session error: %v", err)
	}
}
