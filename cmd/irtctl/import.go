package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/enem-prep/backend/internal/config"
	"github.com/enem-prep/backend/internal/database"
	"github.com/enem-prep/backend/internal/items"
	"github.com/enem-prep/backend/internal/models"
)

var importPrimary bool

var importCmd = &cobra.Command{
	Use:   "import <items.json>",
	Short: "Load a JSON array of items into the local bank",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		batch, err := items.DecodeItems(f)
		if err != nil {
			return err
		}

		if importPrimary {
			return importToPrimary(cmd, batch)
		}

		store, closeBank, err := openBank()
		if err != nil {
			return err
		}
		defer closeBank()

		written, err := store.UpsertItems(cmd.Context(), batch)
		if err != nil {
			return err
		}
		total, err := store.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d items, bank %s now holds %d\n", written, bankPath, total)
		return nil
	},
}

// importToPrimary writes the batch to the Postgres store configured by the
// environment, applying migrations first.
func importToPrimary(cmd *cobra.Command, batch []models.Item) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.Connect(cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		return err
	}

	if err := items.NewStore(db).UpsertItems(cmd.Context(), batch); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d items into %s\n", len(batch), cfg.DB.Name)
	return nil
}

func init() {
	importCmd.Flags().BoolVar(&importPrimary, "primary", false, "import into the Postgres store instead of the local bank")
	rootCmd.AddCommand(importCmd)
}
