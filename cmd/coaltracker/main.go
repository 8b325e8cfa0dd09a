package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"coaltracker/internal"
	"coaltracker/internal/config"
	"coaltracker/internal/dataset"
	"coaltracker/internal/fetch"
	"coaltracker/internal/storage"
	"coaltracker/internal/strategy"
)

const outputBase = "global_coal_plant_tracker_data"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	must(err)
	log := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch os.Args[1] {
	case "scrape":
		fs := flag.NewFlagSet("scrape", flag.ExitOnError)
		skip := fs.String("skip", "", "comma-separated strategy names to skip (known_assets, live_api, rendered_page)")
		noArchive := fs.Bool("no-archive", false, "do not record this run in the local database")
		must(fs.Parse(os.Args[2:]))
		must(runScrape(ctx, cfg, log, *skip, *noArchive))
	case "report":
		must(runReport(cfg))
	case "history":
		fs := flag.NewFlagSet("history", flag.ExitOnError)
		limit := fs.Int("limit", 20, "number of runs to show")
		must(fs.Parse(os.Args[2:]))
		must(runHistory(cfg, *limit))
	default:
		usage()
		os.Exit(2)
	}
}

func runScrape(ctx context.Context, cfg config.Config, log *slog.Logger, skip string, noArchive bool) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "unexpected error: %v\n", r)
			os.Exit(1)
		}
	}()

	traceID := newTraceID()
	log = log.With("traceId", traceID)
	log.Info("scrape started")

	client := fetch.NewClient(cfg, log)

	embedded := strategy.NewEmbeddedDataExtractor(client, cfg.TrackerURL, cfg.Sources.InlinePatterns, cfg.ProbeTimeout, log)
	paginator := strategy.NewPaginatedCollector(client, cfg.ProbeTimeout, cfg.PageDelay, cfg.MaxPages, log)
	chain := strategy.NewChain(log, filterStrategies(skip,
		strategy.NewKnownAssetFetcher(client, cfg.Sources.AssetURLs, cfg.DownloadTimeout, cfg.MinAssetRecords, log),
		strategy.NewLiveApiProbe(client, cfg.BaseURL, cfg.TrackerURL, cfg.Sources.EndpointPaths, cfg.ProbeTimeout, embedded, paginator, log),
		strategy.NewRenderedPageExtractor(client, cfg.TrackerURL, cfg.Headless, cfg.DownloadTimeout, log),
	)...)

	start := time.Now()
	raw, winner := chain.Resolve(ctx)
	if err := ctx.Err(); err != nil {
		fmt.Println("Scrape interrupted before completion.")
		return nil
	}

	data := dataset.Clean(raw)
	elapsed := time.Since(start)

	var csvPath, xlsxPath, summaryPath string
	if len(data) > 0 {
		report := dataset.Summarize(data)

		csvPath = filepath.Join(cfg.OutputDir, outputBase+".csv")
		xlsxPath = filepath.Join(cfg.OutputDir, outputBase+".xlsx")
		summaryPath = filepath.Join(cfg.OutputDir, outputBase+"_summary.txt")

		if err := dataset.WriteCSV(data, csvPath); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		if err := dataset.WriteXLSX(data, xlsxPath); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		if err := dataset.WriteSummary(report, summaryPath); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}

		fmt.Printf("Successfully scraped %d records via %s\n", len(data), winner)
		fmt.Printf("Data saved to %s and %s\n", csvPath, xlsxPath)
		fmt.Printf("Summary saved to %s\n", summaryPath)
		fmt.Println("\nColumns:")
		for _, field := range internal.Fields {
			fmt.Printf("  %s\n", field)
		}
	} else {
		fmt.Println("No data could be scraped from any source.")
		fmt.Println("The site may require different access methods or the data may be behind authentication.")
	}

	if !noArchive {
		if err := archiveRun(cfg, log, traceID, winner, data, elapsed, csvPath, xlsxPath, summaryPath); err != nil {
			log.Warn("run archive failed", "err", err)
		}
	}

	log.Info("scrape finished", "records", len(data), "strategy", winner, "duration", elapsed)
	return nil
}

func archiveRun(cfg config.Config, log *slog.Logger, traceID, winner string, data internal.Dataset,
	elapsed time.Duration, csvPath, xlsxPath, summaryPath string) error {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	runID, err := db.InsertRun(traceID, winner, len(data), float64(elapsed.Milliseconds()), csvPath, xlsxPath, summaryPath)
	if err != nil {
		return err
	}
	if len(data) > 0 {
		if err := db.StoreRecords(runID, data); err != nil {
			return err
		}
	}
	log.Debug("run archived", "runId", runID)
	return nil
}

// runReport rebuilds and prints the summary from the most recent
// archived run, without touching the network.
func runReport(cfg config.Config) error {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	data, err := db.LatestDataset()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		fmt.Println("No archived runs with data. Run `coaltracker scrape` first.")
		return nil
	}

	fmt.Print(dataset.Summarize(dataset.Clean(data)).Format())
	return nil
}

func runHistory(cfg config.Config, limit int) error {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("%-5s %-10s %-15s %8s %10s  %s\n", "ID", "TRACE", "STRATEGY", "RECORDS", "DURATION", "CREATED")
	for _, run := range runs {
		strategyName := run.Strategy
		if strategyName == "" {
			strategyName = "(none)"
		}
		fmt.Printf("%-5d %-10s %-15s %8d %9.0fms  %s\n",
			run.ID, run.TraceID, strategyName, run.Records, run.DurationMs, run.CreatedAt)
	}
	return nil
}

// filterStrategies drops the named strategies from the chain order.
func filterStrategies(skip string, strategies ...strategy.Strategy) []strategy.Strategy {
	skipped := map[string]bool{}
	for _, name := range strings.Split(skip, ",") {
		if name = strings.TrimSpace(name); name != "" {
			skipped[name] = true
		}
	}
	out := make([]strategy.Strategy, 0, len(strategies))
	for _, s := range strategies {
		if !skipped[s.Name()] {
			out = append(out, s)
		}
	}
	return out
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func newTraceID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%08x", time.Now().UnixNano()&0xffffffff)
	}
	return hex.EncodeToString(buf)
}

func must(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "interrupted")
		os.Exit(130)
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: coaltracker <command> [flags]

commands:
  scrape    run the acquisition chain and export CSV/XLSX/summary
  report    print the summary of the latest archived run
  history   list recorded runs`)
}
