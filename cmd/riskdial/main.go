package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

// rootCmd is the base command for the RiskDial CLI.
var rootCmd = &cobra.Command{
	Use:   "riskdial",
	Short: "Daily composite risk dial for a crypto asset",
	Long: `RiskDial scores a set of market factors once per day, blends them into a
0-100 composite risk score, classifies it into a band and raises alerts on
band changes and ETF flow zero-crosses.`,
	SilenceUsage: true,
}

func init() {
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultPath, "Path to the YAML configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
