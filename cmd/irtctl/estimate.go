package main

import (
	"github.com/spf13/cobra"

	"github.com/enem-prep/backend/internal/irt"
	"github.com/enem-prep/backend/internal/models"
)

var estimateTheta0 float64

var estimateCmd = &cobra.Command{
	Use:   "estimate <responses.json>",
	Short: "Estimate proficiency from a JSON array of responses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var responses []irt.ResponsePattern
		if err := readJSONFile(args[0], &responses); err != nil {
			return err
		}

		est, err := irt.EstimateProficiencyFrom(responses, estimateTheta0)
		if err != nil {
			return err
		}
		if cerr := est.ConvergenceErr(); cerr != nil {
			newLogger().Warn("estimate did not converge", "err", cerr)
		}

		return printJSON(cmd, models.EstimateResponse{
			Estimate:        est,
			Score:           irt.ProficiencyToScore(est.Theta),
			ScoreLower:      irt.ProficiencyToScore(est.ConfidenceInterval.Lower),
			ScoreUpper:      irt.ProficiencyToScore(est.ConfidenceInterval.Upper),
			TestReliability: irt.TestReliability(responses),
		})
	},
}

func init() {
	estimateCmd.Flags().Float64Var(&estimateTheta0, "theta0", 0, "starting ability")
	rootCmd.AddCommand(estimateCmd)
}
