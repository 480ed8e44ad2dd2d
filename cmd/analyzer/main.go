// Command analyzer prints a one-shot financial analysis for a symbol or a
// JSON file of yearly records.
//
// Usage:
//
//	analyzer -symbol RELIANCE -format markdown
//	analyzer -input financials.json -format json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"StockAnalyzer/internal/collector"
	"StockAnalyzer/internal/config"
	"StockAnalyzer/internal/insight"
	"StockAnalyzer/internal/model"
	"StockAnalyzer/internal/report"
	"StockAnalyzer/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfgPath := flag.String("config", "configs/config.yaml", "path to config file")
	symbol := flag.String("symbol", "", "stock symbol, e.g. RELIANCE or TCS.NS")
	input := flag.String("input", "", "JSON file of yearly records to analyze instead of fetching (- for stdin)")
	years := flag.Int("years", 0, "number of fiscal years to fetch (default from config)")
	format := flag.String("format", "text", "output format: text, markdown, html, json")
	noCache := flag.Bool("no-cache", false, "skip the durable cache")
	flag.Parse()

	if *symbol == "" && *input == "" {
		fmt.Fprintln(os.Stderr, "one of -symbol or -input is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if *years > 0 {
		cfg.DataSource.Years = *years
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	a, err := run(ctx, cfg, *symbol, *input, *noCache)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	if err := render(os.Stdout, a, *format); err != nil {
		log.Fatalf("[FATAL] render: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, symbol, input string, noCache bool) (*model.Analysis, error) {
	gen := insight.NewGenerator(cfg.Insights)

	// -symbol only labels the output when records come from a file
	if input != "" {
		recs, err := readRecords(input)
		if err != nil {
			return nil, err
		}
		label := symbol
		if label == "" {
			label = input
		}
		a, err := collector.NewCollector(nil, nil, gen, cfg.DataSource.Years).AnalyzeRecords(label, recs)
		if err != nil {
			return nil, err
		}
		a.Source = "file"
		return a, nil
	}

	fetcher, err := collector.NewFetcher(cfg.DataSource.Provider, cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.RateLimit)
	if err != nil {
		return nil, err
	}
	var st store.Store = store.NewNoopStore()
	if !noCache {
		if st, err = store.Open(ctx, cfg.Database.SQLitePath, cfg.Database.PostgresURL); err != nil {
			log.Printf("[WARN] open store, continuing without cache: %v", err)
			st = store.NewNoopStore()
		}
	}
	defer st.Close()

	cached := collector.NewCachedFetcher(fetcher, st, cfg.Cache.TTL)
	resolver := collector.NewResolver(cfg.DataSource.ExchangeSuffix, cfg.DataSource.Aliases)
	return collector.NewCollector(cached, resolver, gen, cfg.DataSource.Years).Analyze(ctx, symbol)
}

func readRecords(path string) ([]model.YearlyFinancials, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	var recs []model.YearlyFinancials
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	return recs, nil
}

func render(w io.Writer, a *model.Analysis, format string) error {
	switch format {
	case "text":
		_, err := io.WriteString(w, report.Text(a))
		return err
	case "markdown", "md":
		_, err := io.WriteString(w, report.Markdown(a))
		return err
	case "html":
		out, err := report.HTML(a)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	case "json":
		out, err := report.JSON(a)
		if err != nil {
			return err
		}
		_, err = w.Write(append(out, '\n'))
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
