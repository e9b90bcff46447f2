package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pakproperty/pakproperty/internal/cli/client"
	"github.com/pakproperty/pakproperty/internal/cli/guard"
)

// NewMyListingsCmd creates the my-listings command
func NewMyListingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "my-listings",
		Short: "Show listings you own",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession()
			if err != nil {
				return err
			}

			cfg := guard.Config{
				AllowedRoles:        []string{"owner", "agent", "admin"},
				RequireVerification: true,
			}
			if !checkGuard(os.Stdout, sess, cfg, "my-listings") {
				return nil
			}

			properties, err := sess.Client().ListMine()
			if err != nil {
				return fmt.Errorf("failed to list your properties: %s", client.ErrorMessage(err, "request failed"))
			}

			if len(properties) == 0 {
				fmt.Println("You have no listings.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tCITY\tRENT\tSTATUS\tVIEWS")
			for _, p := range properties {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d %s\t%s\t%d\n",
					p.ID, p.Title, p.City, p.RentAmount, p.RentCurrency, p.Status, p.Views)
			}
			w.Flush()

			return nil
		},
	}
}
