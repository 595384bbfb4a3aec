package cli

import (
	"errors"
	"fmt"

	"github.com/axellelanca/urlalias/cmd"
	customerrors "github.com/axellelanca/urlalias/internal/errors"
	"github.com/spf13/cobra"
)

// CreateUserCmd registers API credentials.
var CreateUserCmd = &cobra.Command{
	Use:   "create-user <username> <password>",
	Short: "Creates a user allowed to call the authenticated API.",
	Args:  cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		a, err := cmd.OpenApp(c.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := a.Auth.CreateUser(c.Context(), args[0], args[1])
		switch {
		case errors.Is(err, customerrors.ErrUsernameTaken):
			return fmt.Errorf("user %q already exists", args[0])
		case errors.Is(err, customerrors.ErrInvalidUser):
			return fmt.Errorf("username must be 1 to 20 characters and password must not be empty")
		case err != nil:
			return fmt.Errorf("failed to create user: %w", err)
		}
		fmt.Fprintf(c.OutOrStdout(), "User %s created.\n", user.Username)
		return nil
	},
}

func init() {
	cmd.RootCmd.AddCommand(CreateUserCmd)
}
