package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/enem-prep/backend/internal/irt"
)

var (
	calibrateItemID string
	calibrateSave   bool
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate <samples.json>",
	Short: "Calibrate one item from a JSON array of {theta, correct} samples",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var samples []irt.CalibrationSample
		if err := readJSONFile(args[0], &samples); err != nil {
			return err
		}

		if !calibrateSave {
			res, err := calibrate(samples, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		}

		store, closeBank, err := openBank()
		if err != nil {
			return err
		}
		defer closeBank()

		item, err := store.GetItem(cmd.Context(), calibrateItemID)
		if err != nil {
			return err
		}
		res, err := calibrate(samples, item.IRT)
		if err != nil {
			return err
		}
		if err := store.UpdateParameters(cmd.Context(), res.ItemID, res.Params); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "saved parameters for %s to %s\n", res.ItemID, bankPath)
		return printJSON(cmd, res)
	},
}

func calibrate(samples []irt.CalibrationSample, initial *irt.Parameters) (irt.CalibrationResult, error) {
	res, err := irt.CalibrateItem(calibrateItemID, samples, initial)
	if err != nil {
		return res, err
	}
	if cerr := res.ConvergenceErr(); cerr != nil {
		newLogger().Warn("calibration did not converge", "err", cerr)
	}
	return res, nil
}

func init() {
	calibrateCmd.Flags().StringVar(&calibrateItemID, "item", "", "item id")
	calibrateCmd.Flags().BoolVar(&calibrateSave, "save", false, "start from and write back to the item in the local bank")
	calibrateCmd.MarkFlagRequired("item")
	rootCmd.AddCommand(calibrateCmd)
}
