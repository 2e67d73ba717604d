package handlers

import (
	"startiq/internal/render"

	"github.com/spf13/cobra"
)

// NewScoreCmd creates the score command
func NewScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <startupID>",
		Short: "Compute green flags and an AI score for a startup",
		Long: `Compute green flags and a 0-100 AI score from a startup's cached
insights and store both on the insight record.

Example:
  startiq score s_123`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, args[0])
		},
	}
}

func runScore(cmd *cobra.Command, startupID string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.services.Scores.ScoreStartup(ctx, startupID)
	if err != nil {
		return err
	}

	if jsonOutput {
		return render.JSON(cmd.OutOrStdout(), result)
	}
	return render.Score(cmd.OutOrStdout(), result)
}
