package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/repricer/internal/exitcode"
	"github.com/gyeh/repricer/internal/grouper"
	"github.com/gyeh/repricer/internal/logging"
	"github.com/gyeh/repricer/internal/refdata"
)

var groupFile string

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Run the MS-DRG grouper on a grouper-input JSON file",
	RunE:  runGroup,
}

func init() {
	groupCmd.Flags().StringVar(&groupFile, "input", "", "Path to a grouper input JSON file (required)")
	_ = groupCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(groupCmd)
}

func runGroup(cmd *cobra.Command, args []string) error {
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

	data, err := os.ReadFile(groupFile)
	if err != nil {
		log.Error().Err(err).Msg("read grouper input file failed")
		os.Exit(exitcode.UsageError)
	}
	var in grouper.Input
	if err := json.Unmarshal(data, &in); err != nil {
		log.Error().Err(err).Msg("parse grouper input file failed")
		os.Exit(exitcode.UsageError)
	}

	result := grouper.Group(store, in)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
