package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"meridian/internal/config"
	"meridian/internal/store"
)

const version = "0.1.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: meridian-cli <command> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  version        Print the CLI version\n")
		fmt.Fprintf(os.Stderr, "  runs [n]       List the n most recent archived runs (default 20)\n")
		fmt.Fprintf(os.Stderr, "  run <id>       Show one archived run in full\n")
		fmt.Fprintf(os.Stderr, "  symbols        List symbols with cached bar data\n")
		fmt.Fprintf(os.Stderr, "\n")
	}

	if len(os.Args) < 2 {
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

	ctx := context.Background()

	switch os.Args[1] {
	case "version":
		fmt.Printf("meridian-cli %s\n", version)

	case "runs":
		limit := 20
		if len(os.Args) > 2 {
			if limit, err = strconv.Atoi(os.Args[2]); err != nil {
				log.Fatalf("invalid limit %q: %v", os.Args[2], err)
			}
		}
		runs := openRunStore(cfg)
		defer runs.Close()

		summaries, err := runs.ListRuns(ctx, limit)
		if err != nil {
			log.Fatalf("listing runs: %v", err)
		}
		if len(summaries) == 0 {
			fmt.Println("no archived runs")
			return
		}
		fmt.Printf("%-5s %-8s %-10s  %-10s %-6s %-8s %10s %7s\n",
			"ID", "SYMBOL", "START", "END", "TF", "STATUS", "PNL", "TRADES")
		for _, s := range summaries {
			fmt.Printf("%-5d %-8s %-10s  %-10s %-6s %-8s %10.2f %7d\n",
				s.ID, s.Symbol,
				s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"),
				s.Timeframe, s.Status, s.FinalPnL, s.TradeCount)
		}

	case "run":
		if len(os.Args) < 3 {
			log.Fatal("run: missing id")
		}
		id, err := strconv.ParseInt(os.Args[2], 10, 64)
		if err != nil {
			log.Fatalf("invalid run id %q: %v", os.Args[2], err)
		}
		runs := openRunStore(cfg)
		defer runs.Close()

		run, err := runs.GetRun(ctx, id)
		if err != nil {
			log.Fatalf("loading run: %v", err)
		}
		fmt.Printf("run #%d  %s  %s .. %s  (%s)\n", run.ID, run.Symbol,
			run.Start.Format("2006-01-02"), run.End.Format("2006-01-02"), run.Timeframe)
		fmt.Printf("  status:   %s\n", run.Status)
		fmt.Printf("  initial:  %.2f\n", run.InitialCapital)
		fmt.Printf("  pnl:      %+.2f\n", run.FinalPnL)
		fmt.Printf("  trades:   %d\n", len(run.Trades))
		for _, tr := range run.Trades {
			fmt.Printf("    %s  %-4s  %10.2f x %.0f\n",
				tr.Time.Format("2006-01-02 15:04"), tr.Side, tr.Price, tr.Shares)
		}

	case "symbols":
		pstore := store.NewParquetStore(cfg.Storage.DataDir)
		symbols, err := pstore.ListSymbols(ctx)
		if err != nil {
			log.Fatalf("listing symbols: %v", err)
		}
		if len(symbols) == 0 {
			fmt.Println("no cached symbols")
			return
		}
		for _, s := range symbols {
			fmt.Println(s)
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		flag.Usage()
		os.Exit(1)
	}
}

func openRunStore(cfg *config.Config) *store.SQLiteStore {
	runs, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening results database: %v", err)
	}
	return runs
}
