package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"RiskDial/internal/recorder"
)

var historyDays int

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Printf("config OK: %d sources, %d pillars, %d factors, %d bands\n",
			len(cfg.Sources), len(cfg.Pillars), len(cfg.Factors), len(cfg.Bands))
		return nil
	},
}

var bandsCmd = &cobra.Command{
	Use:   "bands",
	Short: "Print the configured risk bands",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tRANGE\tLABEL\tRECOMMENDATION")
		for _, b := range cfg.Bands {
			fmt.Fprintf(w, "%s\t%d-%d\t%s\t%s\n", b.Key, b.Lo, b.Hi, b.Label, b.Recommendation)
		}
		return w.Flush()
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print recent composite scores from the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.SQLitePath == "" {
			return fmt.Errorf("database.sqlite_path is not configured")
		}
		db, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			return err
		}
		defer db.Close()

		points, err := db.ScoreHistory(historyDays)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tSCORE\tBAND")
		for _, p := range points {
			fmt.Fprintf(w, "%s\t%d\t%s\n", p.Date, *p.Score, cfg.Bands.Classify(*p.Score).Key)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(validateCmd, bandsCmd, historyCmd)
	historyCmd.Flags().IntVar(&historyDays, "days", 30, "Number of most recent days to show")
}
