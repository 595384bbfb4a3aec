package cli

import (
	"errors"
	"fmt"

	"github.com/axellelanca/urlalias/cmd"
	customerrors "github.com/axellelanca/urlalias/internal/errors"
	"github.com/spf13/cobra"
)

var longURLFlag string

// CreateCmd représente la commande 'create'
var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Creates a short alias for a long URL.",
	Long: `This command shortens the given URL and prints the generated alias.

Example:
  urlalias create --url="https://www.google.com/search?q=go+lang"`,
	RunE: func(c *cobra.Command, args []string) error {
		a, err := cmd.OpenApp(c.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		alias, err := a.Aliases.CreateAlias(c.Context(), longURLFlag)
		if err != nil {
			if errors.Is(err, customerrors.ErrInvalidURL) {
				return fmt.Errorf("invalid URL %q: must be an absolute http(s) URL", longURLFlag)
			}
			return fmt.Errorf("failed to create alias: %w", err)
		}

		out := c.OutOrStdout()
		fmt.Fprintln(out, "Alias created:")
		fmt.Fprintf(out, "Code: %s\n", alias.Code)
		fmt.Fprintf(out, "URL: %s\n", a.Aliases.FullURL(alias.Code))
		fmt.Fprintf(out, "Expires: %s\n", alias.ExpiresAt.Format(timeLayout))
		return nil
	},
}

func init() {
	CreateCmd.Flags().StringVar(&longURLFlag, "url", "", "The long URL to shorten")
	CreateCmd.MarkFlagRequired("url")

	cmd.RootCmd.AddCommand(CreateCmd)
}
