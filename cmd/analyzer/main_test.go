package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"StockAnalyzer/internal/calculator"
	"StockAnalyzer/internal/config"
)

const records = `[
 {"fiscal_year": 2021, "revenue": 1000, "operating_profit": 150, "profit_after_tax": 100, "shares_outstanding": 10},
 {"fiscal_year": 2022, "revenue": 1100, "operating_profit": 176, "profit_after_tax": 115, "shares_outstanding": 10},
 {"fiscal_year": 2023, "revenue": 1210, "operating_profit": null, "profit_after_tax": 130, "earnings_per_share": 13.2}
]`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fin.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func TestRun_FromFile(t *testing.T) {
	a, err := run(context.Background(), testConfig(t), "DEMO", writeInput(t, records), true)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if a.Symbol != "DEMO" || a.Source != "file" || a.Metrics.Len() != 3 {
		t.Fatalf("unexpected analysis: %+v", a)
	}

	for _, format := range []string{"text", "markdown", "html", "json"} {
		var buf bytes.Buffer
		if err := render(&buf, a, format); err != nil {
			t.Errorf("render %s: %v", format, err)
		}
		if !strings.Contains(buf.String(), "2023") {
			t.Errorf("%s output missing FY2023", format)
		}
	}
	if err := render(&bytes.Buffer{}, a, "pdf"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestRun_MalformedFile(t *testing.T) {
	_, err := run(context.Background(), testConfig(t), "", writeInput(t, `[{"fiscal_year":2023},{"fiscal_year":2022}]`), true)
	if !errors.Is(err, calculator.ErrMalformedInput) {
		t.Errorf("expected malformed input error, got %v", err)
	}
	if _, err := run(context.Background(), testConfig(t), "", writeInput(t, `{oops`), true); err == nil {
		t.Error("expected decode error")
	}
}
