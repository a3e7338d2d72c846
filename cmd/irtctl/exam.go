package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/enem-prep/backend/internal/exam"
	"github.com/enem-prep/backend/internal/models"
)

var (
	examMode  string
	examAreas []string
	examCount int
	examYear  int
	examSeed  string
	examDist  []int
)

var examCmd = &cobra.Command{
	Use:   "exam",
	Short: "Assemble an exam from the local bank, backfilling with synthetic items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := models.ExamConfig{
			Mode:         models.ExamMode(strings.ToUpper(examMode)),
			NumQuestions: examCount,
			Year:         examYear,
			RandomSeed:   examSeed,
		}
		for _, a := range examAreas {
			cfg.Areas = append(cfg.Areas, models.Area(strings.ToUpper(a)))
		}
		if len(examDist) > 0 {
			if len(examDist) != 3 {
				return fmt.Errorf("--dist takes easy,medium,hard counts, got %d values", len(examDist))
			}
			cfg.Distribution = &models.DifficultyDistribution{Easy: examDist[0], Medium: examDist[1], Hard: examDist[2]}
		}

		store, closeBank, err := openBank()
		if err != nil {
			return err
		}
		defer closeBank()

		res, err := exam.NewAssembler(newLogger(), store).GenerateExam(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

func init() {
	modes := make([]string, 0, 4)
	for _, m := range exam.SupportedModes() {
		modes = append(modes, string(m))
	}
	examCmd.Flags().StringVar(&examMode, "mode", string(models.ModeQuick), "exam mode: "+strings.Join(modes, ", "))
	examCmd.Flags().StringSliceVar(&examAreas, "areas", nil, "areas to include (LC, CH, CN, MT)")
	examCmd.Flags().IntVar(&examCount, "count", 0, "number of questions")
	examCmd.Flags().IntVar(&examYear, "year", 0, "booklet year for OFFICIAL exams")
	examCmd.Flags().StringVar(&examSeed, "seed", "", "seed for a reproducible exam")
	examCmd.Flags().IntSliceVar(&examDist, "dist", nil, "easy,medium,hard counts for CUSTOM exams")
	rootCmd.AddCommand(examCmd)
}
