package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/axellelanca/urlalias/cmd"
	"github.com/axellelanca/urlalias/internal/services"
	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04:05"

var (
	listPage    int
	listPerPage int
	listActive  string
)

// ListCmd prints one page of aliases.
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists aliases page by page.",
	RunE: func(c *cobra.Command, args []string) error {
		var isActive *bool
		if listActive != "" {
			v, ok := services.ParseBoolFlag(listActive)
			if !ok {
				return fmt.Errorf("--active must be one of true, 1, yes, false, 0, no, got %q", listActive)
			}
			isActive = &v
		}

		a, err := cmd.OpenApp(c.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		page, err := a.Aliases.ListAliases(c.Context(), listPage, listPerPage, isActive)
		if err != nil {
			return fmt.Errorf("failed to list aliases: %w", err)
		}

		w := tabwriter.NewWriter(c.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tACTIVE\tEXPIRES\tTARGET")
		for _, alias := range page.Items {
			fmt.Fprintf(w, "%s\t%t\t%s\t%s\n", alias.Code, alias.IsActive, alias.ExpiresAt.Format(timeLayout), alias.TargetURL)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "Page %d/%d, %d alias(es)\n", page.Page, page.TotalPages, page.TotalItems)
		return nil
	},
}

func init() {
	ListCmd.Flags().IntVar(&listPage, "page", 1, "page number, starting at 1")
	ListCmd.Flags().IntVar(&listPerPage, "per-page", 10, "aliases per page (max 100)")
	ListCmd.Flags().StringVar(&listActive, "active", "", "only active (true, 1, yes) or inactive (false, 0, no) aliases")

	cmd.RootCmd.AddCommand(ListCmd)
}
