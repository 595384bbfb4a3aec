package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/axellelanca/urlalias/cmd"
	customerrors "github.com/axellelanca/urlalias/internal/errors"
	"github.com/spf13/cobra"
)

// StatsCmd représente la commande 'stats'
var StatsCmd = &cobra.Command{
	Use:   "stats [code]",
	Short: "Shows click statistics.",
	Long: `Without argument, prints the clicks of every alias over the last hour and day.
With a code, prints the details and total clicks of that alias.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	cmd.RootCmd.AddCommand(StatsCmd)
}

func runStats(c *cobra.Command, args []string) error {
	a, err := cmd.OpenApp(c.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out := c.OutOrStdout()
	if len(args) == 1 {
		code := args[0]
		alias, totalClicks, err := a.Aliases.GetAliasStats(c.Context(), code)
		if err != nil {
			if errors.Is(err, customerrors.ErrAliasNotFound) {
				return fmt.Errorf("alias %q not found", code)
			}
			return fmt.Errorf("error retrieving statistics: %w", err)
		}

		fmt.Fprintf(out, "Statistics for %s\n", a.Aliases.FullURL(code))
		fmt.Fprintf(out, "Target: %s\n", alias.TargetURL)
		fmt.Fprintf(out, "State: %s\n", alias.StateAt(time.Now().UTC()))
		fmt.Fprintf(out, "Total clicks: %d\n", totalClicks)
		fmt.Fprintf(out, "Created: %s\n", alias.CreatedAt.Format(timeLayout))
		return nil
	}

	rows, err := a.Stats.ComputeStats(c.Context())
	if err != nil {
		return fmt.Errorf("error computing statistics: %w", err)
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "URL\tLAST HOUR\tLAST DAY\tTARGET")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", a.Aliases.FullURL(row.Code), row.LastHourClicks, row.LastDayClicks, row.TargetURL)
	}
	return w.Flush()
}
