package handlers

import (
	"startiq/internal/render"

	"github.com/spf13/cobra"
)

// NewDealNoteCmd creates the dealnote command
func NewDealNoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dealnote <investorUID> <startupID>",
		Short: "Generate a deal note for an investor and a startup",
		Long: `Generate a deal note: highlights, fit and a verdict.

Both the investor and the startup need cached insights. A note younger
than seven days is returned as stored with risks and the AI score taken
from the startup's current insights.

Example:
  startiq dealnote inv_42 s_123`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDealNote(cmd, args[0], args[1])
		},
	}
}

func runDealNote(cmd *cobra.Command, investorUID, startupID string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.services.DealNotes.Generate(ctx, investorUID, startupID)
	if err != nil {
		return err
	}

	if jsonOutput {
		return render.JSON(cmd.OutOrStdout(), result)
	}
	return render.DealNote(cmd.OutOrStdout(), result)
}
