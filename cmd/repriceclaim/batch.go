package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gyeh/repricer/internal/batch"
	"github.com/gyeh/repricer/internal/claimmodel"
	"github.com/gyeh/repricer/internal/db"
	"github.com/gyeh/repricer/internal/exitcode"
	"github.com/gyeh/repricer/internal/export"
	"github.com/gyeh/repricer/internal/logging"
	"github.com/gyeh/repricer/internal/refdata"
)

var (
	batchClaimsDir  string
	batchWorkers    int
	batchParquetOut string
	batchPersist    bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Reprice a directory of claim JSON files concurrently",
	RunE:  runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringVar(&batchClaimsDir, "claims-dir", "", "Directory of claim JSON files (required)")
	f.IntVar(&batchWorkers, "workers", 4, "Number of concurrent workers")
	f.StringVar(&batchParquetOut, "parquet-out", "", "Optional path to write a Parquet analytics export")
	f.BoolVar(&batchPersist, "persist", false, "Persist results to Postgres (requires --dsn)")
	_ = batchCmd.MarkFlagRequired("claims-dir")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	store, err := refdata.Load(cfg.DataDirectory, cfg.ConversionFactor, log)
	if err != nil {
		log.Error().Err(err).Msg("reference data load failed")
		os.Exit(exitcode.ValidationError)
	}

	claims, err := loadClaimsDir(batchClaimsDir)
	if err != nil {
		log.Error().Err(err).Msg("load claims directory failed")
		os.Exit(exitcode.UsageError)
	}

	summary, results, err := batch.Run(ctx, store, log, claims, batchWorkers)
	if err != nil {
		log.Error().Err(err).Msg("batch run failed")
		os.Exit(exitcode.ValidationError)
	}

	if batchParquetOut != "" {
		if err := export.WriteParquet(batchParquetOut, results); err != nil {
			log.Error().Err(err).Msg("parquet export failed")
			os.Exit(exitcode.ExportError)
		}
	}

	if batchPersist {
		if err := cfg.ValidateWithDSN(); err != nil {
			log.Error().Err(err).Msg("config validation failed")
			os.Exit(exitcode.UsageError)
		}
		pool, err := db.NewPool(ctx, cfg.DSN)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			os.Exit(exitcode.DBConnError)
		}
		defer pool.Close()

		batchRunID, err := db.PersistBatch(ctx, pool, summary, batchWorkers, results)
		if err != nil {
			log.Error().Err(err).Msg("persist results failed")
			os.Exit(exitcode.DBConnError)
		}
		log.Info().Str("batch_run_id", batchRunID.String()).Msg("batch results persisted")
	}

	fmt.Printf("Batch complete: %d claims processed, %d with fatal errors, total allowed $%.2f (%.1fs)\n",
		summary.ClaimsProcessed, summary.ClaimsWithFatalErrors, summary.TotalAllowed, summary.Duration.Seconds())

	if summary.ClaimsWithFatalErrors > 0 {
		os.Exit(exitcode.PartialSuccess)
	}
	return nil
}

func loadClaimsDir(dir string) ([]claimmodel.Claim, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read claims dir: %w", err)
	}
	var claims []claimmodel.Claim
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		var c claimmodel.Claim
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", entry.Name(), err)
		}
		claims = append(claims, c)
	}
	return claims, nil
}
