package handlers

import (
	"context"

	"startiq/internal/render"

	"github.com/spf13/cobra"
)

// NewInsightCmd creates the insight command group
func NewInsightCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insight",
		Short: "Generate or fetch cached insights",
		Long: `Generate or fetch cached AI insights.

Insights younger than seven days are served from the store. Older or
missing insights are regenerated and saved.

Examples:
  startiq insight startup s_123
  startiq insight investor inv_42 --json`,
	}

	cmd.AddCommand(newInsightStartupCmd())
	cmd.AddCommand(newInsightInvestorCmd())

	return cmd
}

func newInsightStartupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "startup <startupID>",
		Short: "Insights and red flags for a startup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsightStartup(cmd, args[0])
		},
	}
}

func newInsightInvestorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "investor <investorID>",
		Short: "Insights for an investor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsightInvestor(cmd, args[0])
		},
	}
}

func runInsightStartup(cmd *cobra.Command, startupID string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.services.Insights.StartupInsight(ctx, startupID)
	if err != nil {
		return err
	}

	if jsonOutput {
		return render.JSON(cmd.OutOrStdout(), result)
	}
	return render.StartupInsight(cmd.OutOrStdout(), result)
}

func runInsightInvestor(cmd *cobra.Command, investorID string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.services.Insights.InvestorInsight(ctx, investorID)
	if err != nil {
		return err
	}

	if jsonOutput {
		return render.JSON(cmd.OutOrStdout(), result)
	}
	return render.InvestorInsight(cmd.OutOrStdout(), result)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
