package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"

	"StockAnalyzer/internal/collector"
	"StockAnalyzer/internal/notifier"

	"github.com/robfig/cron/v3"
)

// Sender delivers a formatted message.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the watchlist digest on a cron schedule and answers bot commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Notifier  Sender
	Watchlist []string
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, sender Sender, watchlist []string) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Notifier:  sender,
		Watchlist: watchlist,
		Ctx:       ctx,
	}
}

// Register adds the digest job. Schedules use the six-field cron format with seconds.
func (s *Scheduler) Register(digestCron string) error {
	if _, err := s.Cron.AddFunc(digestCron, s.digestTask); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunDigestNow executes the digest immediately (for RUN_ON_START).
func (s *Scheduler) RunDigestNow() {
	s.digestTask()
}

func (s *Scheduler) digestTask() {
	log.Printf("[INFO] running watchlist digest (%d symbols)", len(s.Watchlist))
	s.trySend(s.Digest(s.Ctx))
}

// Digest analyzes every watchlist symbol. Failures are reported per symbol
// and do not stop the rest.
func (s *Scheduler) Digest(ctx context.Context) string {
	items := make([]notifier.DigestItem, 0, len(s.Watchlist))
	for _, q := range s.Watchlist {
		if ctx.Err() != nil {
			break
		}
		a, err := s.Collector.Analyze(ctx, q)
		if err != nil {
			log.Printf("[WARN] digest %s: %v", q, err)
		}
		items = append(items, notifier.DigestItem{Query: q, Analysis: a, Err: err})
	}
	return notifier.FormatDigest(items)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string, args []string) string {
	switch command {
	case "/analyze", "/a":
		if len(args) == 0 {
			return "Usage: /analyze &lt;symbol&gt;, e.g. /analyze RELIANCE"
		}
		query := strings.Join(args, " ")
		a, err := s.Collector.Analyze(ctx, query)
		if err != nil {
			log.Printf("[WARN] analyze %q: %v", query, err)
			return notifier.FormatError(query, err)
		}
		return notifier.FormatAnalysis(a)
	case "/watchlist":
		return s.Digest(ctx)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
