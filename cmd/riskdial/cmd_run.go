package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"RiskDial/internal/model"
	"RiskDial/internal/notifier"
)

var (
	runDate   string
	runJSON   bool
	runNotify bool
)

// runCmd executes a single daily run and exits.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one daily run now",
	Long: `Collect all sources, score the factors, persist the snapshot and any new
alerts, and print the daily report.

Examples:
  riskdial run
  riskdial run --date 2025-05-20 --json
  riskdial run --notify=false`,
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runDate, "date", "", "UTC day to score (YYYY-MM-DD, default today)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print the snapshot as JSON")
	runCmd.Flags().BoolVar(&runNotify, "notify", true, "Send the report and alerts to Telegram")
}

// asOfFor resolves the --date flag to a run timestamp: the end of that UTC
// day, capped at now.
func asOfFor(date string, now time.Time) (time.Time, error) {
	now = now.UTC()
	if date == "" {
		return now, nil
	}
	day, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: %w", date, err)
	}
	end := day.Add(24*time.Hour - time.Second)
	if end.After(now) {
		return now, nil
	}
	return end, nil
}

func runOnce(cmd *cobra.Command, args []string) error {
	asOf, err := asOfFor(runDate, time.Now())
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	if !runNotify {
		a.runner.Notifier = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out, err := a.runner.RunDaily(ctx, asOf)
	if err != nil {
		return err
	}
	if runJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out.Snapshot)
	}
	fmt.Println(notifier.FormatDailyReport(out.Snapshot, cfg.Symbol))
	for _, al := range out.Alerts {
		fmt.Println(notifier.FormatAlert(al))
	}
	return nil
}
