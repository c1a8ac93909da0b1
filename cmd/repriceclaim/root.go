package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/repricer/internal/config"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "repriceclaim",
	Short: "Medicare claims repricing engine",
	Long:  "Reprices PFS and IPPS claims against a loaded reference-data directory, standalone or in batch against Postgres/Parquet.",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DataDirectory, "data-dir", os.Getenv("REPRICER_DATA_DIR"), "Path to the reference-data JSON directory (or set REPRICER_DATA_DIR)")
	pf.Float64Var(&cfg.ConversionFactor, "conversion-factor", 0, "PFS conversion factor override (0 = use the store default)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("DATABASE_URL"), "Postgres connection string for batch persistence (or set DATABASE_URL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
