package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"StockAnalyzer/internal/calculator"
	"StockAnalyzer/internal/insight"
	"StockAnalyzer/internal/model"
)

func sampleAnalysis(t *testing.T) *model.Analysis {
	t.Helper()
	s, err := calculator.ComputeMetrics([]model.YearlyFinancials{
		{FiscalYear: 2022, Revenue: model.Some(1e9), OperatingProfit: model.Some(1.5e8), ProfitAfterTax: model.Some(-2e7), EarningsPerShare: model.Some(-2)},
		{FiscalYear: 2023, Revenue: model.Some(1.1e9), OperatingProfit: model.Some(1.8e8), ProfitAfterTax: model.Some(5e7), EarningsPerShare: model.Some(5)},
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	return &model.Analysis{Symbol: "A&B.NS", Metrics: s, Insights: insight.Generate(s)}
}

func TestFormatAnalysis(t *testing.T) {
	msg := FormatAnalysis(sampleAnalysis(t))
	for _, want := range []string{"<b>A&amp;B.NS</b>", "<pre>", "₹100.00 Cr", "15.00%", "CAGR (1 yrs)", "💡"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "A&B") {
		t.Error("symbol must be HTML-escaped")
	}
}

func TestFormatDigest(t *testing.T) {
	msg := FormatDigest([]DigestItem{
		{Query: "AB", Analysis: sampleAnalysis(t)},
		{Query: "<bad>", Err: errors.New("invalid stock symbol")},
	})
	if !strings.Contains(msg, "Rev CAGR 10.00%") {
		t.Errorf("digest missing CAGR:\n%s", msg)
	}
	if !strings.Contains(msg, "❌ <b>&lt;bad&gt;</b>: invalid stock symbol") {
		t.Errorf("digest missing error line:\n%s", msg)
	}
	if !strings.Contains(FormatDigest(nil), "empty") {
		t.Error("empty digest should say so")
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		cmd  string
		args []string
	}{
		{"/analyze tcs", "/analyze", []string{"tcs"}},
		{"/Analyze@StockBot  reliance  ", "/analyze", []string{"reliance"}},
		{"/help", "/help", []string{}},
		{"   ", "", nil},
	}
	for _, tt := range tests {
		cmd, args := ParseCommand(tt.in)
		if cmd != tt.cmd || len(args) != len(tt.args) {
			t.Errorf("ParseCommand(%q) = %q %v", tt.in, cmd, args)
			continue
		}
		for i := range args {
			if args[i] != tt.args[i] {
				t.Errorf("ParseCommand(%q) args = %v", tt.in, args)
			}
		}
	}
}

func TestSplitMessage(t *testing.T) {
	if got := splitMessage("short", 10); len(got) != 1 || got[0] != "short" {
		t.Errorf("short message split: %q", got)
	}

	text := strings.Repeat("line of text ₹\n", 50)
	chunks := splitMessage(text, 100)
	if strings.Join(chunks, "") != text {
		t.Fatal("chunks must reassemble to the original text")
	}
	for _, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 100 {
			t.Errorf("chunk of %d runes exceeds limit", n)
		}
		if !strings.HasSuffix(c, "\n") {
			t.Errorf("chunk should end at a line boundary: %q", c)
		}
	}

	long := strings.Repeat("x", 250)
	chunks = splitMessage(long, 100)
	if len(chunks) != 3 || strings.Join(chunks, "") != long {
		t.Errorf("long line split into %d chunks", len(chunks))
	}
}

type fakeTelegram struct {
	mu       sync.Mutex
	sent     []string
	failures int
	polls    int
	cancel   context.CancelFunc
}

func (f *fakeTelegram) handler(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		if f.failures > 0 {
			f.failures--
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		var p struct {
			ChatID string `json:"chat_id"`
			Text   string `json:"text"`
		}
		json.NewDecoder(r.Body).Decode(&p)
		f.sent = append(f.sent, p.Text)
		w.Write([]byte(`{"ok":true}`))
	case strings.HasSuffix(r.URL.Path, "/getUpdates"):
		f.polls++
		if f.polls == 1 {
			w.Write([]byte(`{"ok":true,"result":[
				{"update_id":7,"message":{"text":"/analyze tcs","chat":{"id":42}}},
				{"update_id":8,"message":{"text":"/help","chat":{"id":99}}}
			]}`))
			return
		}
		f.cancel()
		w.Write([]byte(`{"ok":true,"result":[]}`))
	}
}

func newTestNotifier(srvURL string) *TelegramNotifier {
	n := NewTelegramNotifier("token", "42", "")
	n.BaseURL = srvURL
	n.retryBase = time.Millisecond
	return n
}

func TestSendWithRetry(t *testing.T) {
	fake := &fakeTelegram{failures: 2}
	srv := httptest.NewServer(http.HandlerFunc(fake.handler))
	defer srv.Close()

	n := newTestNotifier(srv.URL)
	if err := n.SendWithRetry(context.Background(), "hello", 3); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(fake.sent) != 1 || fake.sent[0] != "hello" {
		t.Errorf("sent = %v", fake.sent)
	}

	fake.failures = 10
	if err := n.SendWithRetry(context.Background(), "again", 1); err == nil {
		t.Error("expected retries to be exhausted")
	}
}

func TestStartPolling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fake := &fakeTelegram{cancel: cancel}
	srv := httptest.NewServer(http.HandlerFunc(fake.handler))
	defer srv.Close()

	var gotCmd string
	var gotArgs []string
	n := newTestNotifier(srv.URL)
	n.StartPolling(ctx, func(_ context.Context, cmd string, args []string) string {
		gotCmd, gotArgs = cmd, args
		return "reply to " + cmd
	})

	if gotCmd != "/analyze" || len(gotArgs) != 1 || gotArgs[0] != "tcs" {
		t.Errorf("handler got %q %v", gotCmd, gotArgs)
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.sent) != 1 || fake.sent[0] != "reply to /analyze" {
		t.Errorf("expected only the configured chat to get a reply, sent = %v", fake.sent)
	}
}
