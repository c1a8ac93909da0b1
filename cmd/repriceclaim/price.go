package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/repricer/internal/claimmodel"
	"github.com/gyeh/repricer/internal/exitcode"
	"github.com/gyeh/repricer/internal/logging"
	"github.com/gyeh/repricer/internal/refdata"
	"github.com/gyeh/repricer/internal/repricer"
)

var priceFile string

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Reprice a single claim from a JSON file",
	RunE:  runPrice,
}

func init() {
	priceCmd.Flags().StringVar(&priceFile, "claim", "", "Path to a claim JSON file (required)")
	_ = priceCmd.MarkFlagRequired("claim")
	rootCmd.AddCommand(priceCmd)
}

func runPrice(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	store, err := refdata.Load(cfg.DataDirectory, cfg.ConversionFactor, log)
	if err != nil {
		log.Error().Err(err).Msg("reference data load failed")
		os.Exit(exitcode.ValidationError)
	}

	data, err := os.ReadFile(priceFile)
	if err != nil {
		log.Error().Err(err).Msg("read claim file failed")
		os.Exit(exitcode.UsageError)
	}
	var claim claimmodel.Claim
	if err := json.Unmarshal(data, &claim); err != nil {
		log.Error().Err(err).Msg("parse claim file failed")
		os.Exit(exitcode.UsageError)
	}

	repriced, err := repricer.RepriceClaim(store, claim)
	if err != nil {
		log.Error().Err(err).Str("claim_id", claim.ClaimID).Msg("reprice failed")
		os.Exit(exitcode.ValidationError)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(repriced)
}
