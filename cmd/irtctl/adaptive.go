package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/enem-prep/backend/internal/irt"
	"github.com/enem-prep/backend/internal/models"
)

var (
	adaptiveTheta0 float64
	adaptiveMax    int
	adaptiveAreas  []string
)

var adaptiveCmd = &cobra.Command{
	Use:   "adaptive",
	Short: "Plan an adaptive item sequence over the local bank",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeBank, err := openBank()
		if err != nil {
			return err
		}
		defer closeBank()

		bank, err := store.AllItems(cmd.Context())
		if err != nil {
			return err
		}

		keep := map[models.Area]bool{}
		for _, a := range adaptiveAreas {
			keep[models.Area(strings.ToUpper(a))] = true
		}
		pool := make([]irt.PoolItem, 0, len(bank))
		for _, item := range bank {
			if len(keep) > 0 && !keep[item.Area] {
				continue
			}
			pool = append(pool, irt.PoolItem{ID: item.ID, Params: item.Params()})
		}

		ids := irt.GenerateAdaptiveSequence(adaptiveTheta0, pool, adaptiveMax)
		return printJSON(cmd, models.AdaptiveSequenceResponse{
			ItemIDs:   ids,
			Requested: adaptiveMax,
			Returned:  len(ids),
		})
	},
}

func init() {
	adaptiveCmd.Flags().Float64Var(&adaptiveTheta0, "theta0", 0, "starting ability")
	adaptiveCmd.Flags().IntVar(&adaptiveMax, "max", 15, "maximum number of items")
	adaptiveCmd.Flags().StringSliceVar(&adaptiveAreas, "areas", nil, "restrict the pool to these areas")
	rootCmd.AddCommand(adaptiveCmd)
}
