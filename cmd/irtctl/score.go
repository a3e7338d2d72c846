package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/enem-prep/backend/internal/irt"
	"github.com/enem-prep/backend/internal/models"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Convert between ability (theta) and the 200-1000 display scale",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		switch {
		case flags.Changed("theta"):
			theta, _ := flags.GetFloat64("theta")
			return printJSON(cmd, models.ScoreConversion{Theta: theta, Score: irt.ProficiencyToScore(theta)})
		case flags.Changed("score"):
			score, _ := flags.GetFloat64("score")
			theta := irt.ScoreToProficiency(score)
			return printJSON(cmd, models.ScoreConversion{Theta: theta, Score: irt.ProficiencyToScore(theta)})
		default:
			return errors.New("one of --theta or --score is required")
		}
	},
}

func init() {
	scoreCmd.Flags().Float64("theta", 0, "ability to convert to a score")
	scoreCmd.Flags().Float64("score", 0, "score to convert to an ability")
	scoreCmd.MarkFlagsMutuallyExclusive("theta", "score")
	rootCmd.AddCommand(scoreCmd)
}
