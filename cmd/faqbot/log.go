package faqbot

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/igorsilveira/faqbot/pkg/config"
	"github.com/igorsilveira/faqbot/pkg/store"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the log of answered questions",
	RunE:  runLog,
}

type logOptions struct {
	category  string
	unmatched bool
	limit     int
	since     string
	until     string
	stats     bool
}

var logOpts logOptions

func init() {
	logCmd.Flags().StringVar(&logOpts.category, "category", "", "filter by FAQ category")
	logCmd.Flags().BoolVar(&logOpts.unmatched, "unmatched", false, "only show questions that fell back")
	logCmd.Flags().IntVar(&logOpts.limit, "limit", 50, "maximum number of entries")
	logCmd.Flags().StringVar(&logOpts.since, "since", "", "show entries since (e.g. 2024-01-01)")
	logCmd.Flags().StringVar(&logOpts.until, "until", "", "show entries up to and including a day (e.g. 2024-01-31)")
	logCmd.Flags().BoolVar(&logOpts.stats, "stats", false, "print totals instead of entries")
}

func runLog(cmd *cobra.Command, args []string) error {
	return showLog(context.Background(), cmd.OutOrStdout(), config.Current().Store.DSN, logOpts)
}

func (o logOptions) filter() (store.Filter, error) {
	f := store.Filter{
		Category:  o.category,
		Unmatched: o.unmatched,
		Limit:     o.limit,
	}

	if o.since != "" {
		t, err := time.Parse("2006-01-02", o.since)
		if err != nil {
			return store.Filter{}, fmt.Errorf("invalid --since format (use YYYY-MM-DD): %w", err)
		}
		f.Since = t
	}
	if o.until != "" {
		t, err := time.Parse("2006-01-02", o.until)
		if err != nil {
			return store.Filter{}, fmt.Errorf("invalid --until format (use YYYY-MM-DD): %w", err)
		}
		f.Until = t.Add(24*time.Hour - time.Nanosecond)
	}
	if o.stats {
		f.Limit = 0
	}
	return f, nil
}

func showLog(ctx context.Context, w io.Writer, dsn string, opts logOptions) error {
	filter, err := opts.filter()
	if err != nil {
		return err
	}

	db, err := store.Open(dsn)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() { _ = store.Close(db) }()

	queryLog, err := store.New(db)
	if err != nil {
		return fmt.Errorf("initializing query log: %w", err)
	}

	if opts.stats {
		stats, err := queryLog.Stats(ctx, filter)
		if err != nil {
			return fmt.Errorf("computing stats: %w", err)
		}
		rate := 0.0
		if stats.Total > 0 {
			rate = float64(stats.Matched) / float64(stats.Total) * 100
		}
		fmt.Fprintf(w, "questions: %d\n", stats.Total)
		fmt.Fprintf(w, "matched:   %d (%.1f%%)\n", stats.Matched, rate)
		fmt.Fprintf(w, "avg confidence: %.3f\n", stats.AvgConfidence)
		return nil
	}

	entries, err := queryLog.Query(ctx, filter)
	if err != nil {
		return fmt.Errorf("querying log: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No questions logged.")
		return nil
	}

	for _, e := range entries {
		ts := e.Timestamp.Format("2006-01-02 15:04:05")
		category := e.Category
		if category == "" {
			category = "-"
		}
		fmt.Fprintf(w, "[%s] %-9s conf=%.3f category=%-20s %q\n",
			ts, e.Transport, e.Confidence, category, e.Question,
		)
	}

	fmt.Fprintf(w, "\n%d entries\n", len(entries))
	return nil
}
