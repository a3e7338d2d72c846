package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/enem-prep/backend/internal/database"
	"github.com/enem-prep/backend/internal/items"
	"github.com/enem-prep/backend/internal/logger"
)

var (
	bankPath string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "irtctl",
	Short: "Offline IRT scoring, calibration and exam assembly",
	Long: `irtctl runs the proficiency estimator, item calibrator and exam
assembler against JSON files and the local SQLite item bank.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&bankPath, "bank", "./data/local_bank.db", "path to the local SQLite item bank")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *logger.Logger {
	if !verbose {
		return logger.Nop()
	}
	log, err := logger.New("dev")
	if err != nil {
		return logger.Nop()
	}
	return log
}

func openBank() (*items.LocalStore, func(), error) {
	db, err := database.OpenLocal(bankPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open bank %s: %w", bankPath, err)
	}
	return items.NewLocalStore(db), func() { db.Close() }, nil
}

func readJSONFile(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
