package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pakproperty/pakproperty/internal/cli/client"
	"github.com/pakproperty/pakproperty/internal/cli/guard"
)

// NewSavedCmd creates the saved-properties command group
func NewSavedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "Manage bookmarked listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSavedList()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <property-id>",
		Short: "Bookmark a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSavedAdd(args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <property-id>",
		Short: "Remove a bookmark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSavedRemove(args[0])
		},
	})

	return cmd
}

func runSavedList() error {
	sess, err := newSession()
	if err != nil {
		return err
	}
	if !checkGuard(os.Stdout, sess, guard.Config{}, "saved") {
		return nil
	}

	saved, err := sess.Client().ListSaved()
	if err != nil {
		return fmt.Errorf("failed to list saved properties: %s", client.ErrorMessage(err, "request failed"))
	}

	if len(saved) == 0 {
		fmt.Println("No saved properties.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROPERTY\tTITLE\tCITY\tRENT\tSTATUS")
	for _, s := range saved {
		p := s.Property
		fmt.Fprintf(w, "%s\t%s\t%s\t%d %s\t%s\n",
			s.PropertyID, p.Title, p.City, p.RentAmount, p.RentCurrency, p.Status)
	}
	w.Flush()

	return nil
}

func runSavedAdd(propertyID string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}
	if !checkGuard(os.Stdout, sess, guard.Config{}, "saved add") {
		return nil
	}

	if err := sess.Client().SaveProperty(propertyID); err != nil {
		return fmt.Errorf("failed to save property: %s", client.ErrorMessage(err, "request failed"))
	}

	fmt.Printf("✓ Property %s saved\n", propertyID)
	return nil
}

func runSavedRemove(propertyID string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}
	if !checkGuard(os.Stdout, sess, guard.Config{}, "saved rm") {
		return nil
	}

	if err := sess.Client().UnsaveProperty(propertyID); err != nil {
		return fmt.Errorf("failed to remove saved property: %s", client.ErrorMessage(err, "request failed"))
	}

	fmt.Printf("✓ Property %s removed from saved\n", propertyID)
	return nil
}
