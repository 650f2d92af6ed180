package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meridian/internal/config"
	"meridian/internal/engine"
	"meridian/internal/feed"
	"meridian/internal/limits"
	"meridian/internal/plugin"
	"meridian/internal/store"
	"meridian/internal/util"
)

func main() {
	symbol := flag.String("symbol", "", "symbol to backtest (required)")
	startStr := flag.String("start", "", "start date, YYYY-MM-DD (required)")
	endStr := flag.String("end", "", "end date, YYYY-MM-DD (defaults to today)")
	timeframe := flag.String("timeframe", "", "bar timeframe (1Min, 5Min, 15Min, 1Hour, 1Day)")
	capital := flag.Float64("capital", 0, "initial capital (overrides config)")
	offline := flag.Bool("offline", false, "read bars from the local cache instead of the API")
	noSave := flag.Bool("no-save", false, "do not archive the run to the results database")
	flag.Parse()

	if *symbol == "" || *startStr == "" {
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

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	start, err := time.Parse("2006-01-02", *startStr)
	if err != nil {
		log.Fatalf("invalid start date %q: %v", *startStr, err)
	}
	end := time.Now().UTC()
	if *endStr != "" {
		if end, err = time.Parse("2006-01-02", *endStr); err != nil {
			log.Fatalf("invalid end date %q: %v", *endStr, err)
		}
	}

	tf := cfg.Trading.Timeframe
	if *timeframe != "" {
		tf = *timeframe
	}
	initialCapital := cfg.Trading.InitialCapital
	if *capital > 0 {
		initialCapital = *capital
	}

	pstore := store.NewParquetStore(cfg.Storage.DataDir)

	var source feed.BarSource
	if *offline {
		source = feed.NewParquetSource(pstore)
	} else {
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
		source = feed.NewAlpacaSource(opts)
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
		Logger:   logger,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	result := eng.RunBacktest(ctx, engine.Params{
		Symbol:         *symbol,
		Start:          start,
		End:            end,
		Timeframe:      tf,
		InitialCapital: initialCapital,
	})

	printResult(result)

	if !*noSave && cfg.Storage.SQLitePath != "" {
		runs, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening results database: %v", err)
		}
		defer runs.Close()

		id, err := runs.SaveRun(ctx, &store.RunRecord{
			Symbol:         result.Symbol,
			Start:          result.Start,
			End:            result.End,
			Timeframe:      result.Timeframe,
			InitialCapital: result.InitialCapital,
			Status:         result.Status,
			FinalPnL:       result.PnL,
			Trades:         result.Trades,
			Equity:         result.Equity,
		})
		if err != nil {
			log.Fatalf("archiving run: %v", err)
		}
		fmt.Printf("\nrun archived as #%d\n", id)
	}
}

func printResult(r *engine.BacktestResult) {
	fmt.Printf("Backtest %s  %s .. %s  (%s)\n",
		r.Symbol, r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"), r.Timeframe)
	fmt.Printf("  status:         %s\n", r.Status)
	fmt.Printf("  initial:        %.2f\n", r.InitialCapital)
	fmt.Printf("  final value:    %.2f\n", r.FinalValue)
	fmt.Printf("  pnl:            %+.2f\n", r.PnL)
	fmt.Printf("  trades:         %d\n", len(r.Trades))
	fmt.Printf("  total return:   %+.2f%%\n", r.Metrics.TotalReturnPct)
	fmt.Printf("  win rate:       %.1f%% over %d round trips\n", r.Metrics.WinRate*100, r.Metrics.RoundTrips)
	fmt.Printf("  profit factor:  %.2f\n", r.Metrics.ProfitFactor)
	fmt.Printf("  max drawdown:   %.2f%%\n", r.Metrics.MaxDrawdownPct)
	fmt.Printf("  sharpe:         %.2f\n", r.Metrics.SharpeRatio)

	for _, tr := range r.Trades {
		fmt.Printf("  %s  %-4s  %10.2f x %.0f\n",
			tr.Time.Format("2006-01-02 15:04"), tr.Side, tr.Price, tr.Shares)
	}
}
