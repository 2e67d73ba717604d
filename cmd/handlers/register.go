package handlers

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"startiq/internal/render"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var (
		uid      string
		data     string
		dataFile string
	)

	cmd := &cobra.Command{
		Use:   "register <role>",
		Short: "Register a founder, startup or investor",
		Long: `Register a user profile under the collection for its role.

Founders and startups are stored in founders, investors in investors.
The profile is a JSON object given inline with --data or read from a
file with --data-file. A random UID is generated when --uid is omitted.

Examples:
  startiq register founder --uid u_1 --data '{"startupID":"s_123","startupName":"Acme"}'
  startiq register investor --data-file investor.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := parseProfile(data, dataFile)
			if err != nil {
				return err
			}
			if uid == "" {
				uid = uuid.NewString()
			}
			return runRegister(cmd, uid, args[0], profile)
		},
	}

	cmd.Flags().StringVar(&uid, "uid", "", "user ID (default: random UUID)")
	cmd.Flags().StringVar(&data, "data", "", "profile as a JSON object")
	cmd.Flags().StringVar(&dataFile, "data-file", "", "path to a JSON profile")
	cmd.MarkFlagsMutuallyExclusive("data", "data-file")

	return cmd
}

func runRegister(cmd *cobra.Command, uid, role string, profile map[string]any) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.services.Users.Register(ctx, uid, role, profile)
	if err != nil {
		return err
	}

	if jsonOutput {
		return render.JSON(cmd.OutOrStdout(), result)
	}
	return render.Registration(cmd.OutOrStdout(), result)
}

// parseProfile decodes the registration profile from an inline value or a file.
func parseProfile(inline, path string) (map[string]any, error) {
	raw := strings.TrimSpace(inline)
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
		}
		raw = strings.TrimSpace(string(content))
	}
	if raw == "" {
		return map[string]any{}, nil
	}

	var profile map[string]any
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return nil, fmt.Errorf("profile must be a JSON object: %w", err)
	}
	if profile == nil {
		profile = map[string]any{}
	}
	return profile, nil
}
