package cli

import (
	"errors"
	"fmt"

	"github.com/axellelanca/urlalias/cmd"
	customerrors "github.com/axellelanca/urlalias/internal/errors"
	"github.com/spf13/cobra"
)

// DeactivateCmd switches an alias off.
var DeactivateCmd = &cobra.Command{
	Use:   "deactivate <code>",
	Short: "Deactivates an alias for good.",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		a, err := cmd.OpenApp(c.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Aliases.DeactivateAlias(c.Context(), args[0]); err != nil {
			if errors.Is(err, customerrors.ErrAliasNotFound) {
				return fmt.Errorf("alias %q not found", args[0])
			}
			return fmt.Errorf("failed to deactivate alias: %w", err)
		}
		fmt.Fprintf(c.OutOrStdout(), "Alias %s deactivated.\n", args[0])
		return nil
	},
}

func init() {
	cmd.RootCmd.AddCommand(DeactivateCmd)
}
