package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pakproperty/pakproperty/internal/cli/client"
	"github.com/pakproperty/pakproperty/internal/cli/guard"
)

// NewInquiriesCmd creates the inquiries command group
func NewInquiriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inquiries",
		Short: "View and send listing inquiries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInquiriesList()
		},
	}

	var phone string
	sendCmd := &cobra.Command{
		Use:   "send <property-id> <message>",
		Short: "Send an inquiry about a listing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInquiriesSend(args[0], args[1], phone)
		},
	}
	sendCmd.Flags().StringVar(&phone, "phone", "", "Contact phone number to include")
	cmd.AddCommand(sendCmd)

	return cmd
}

func runInquiriesList() error {
	sess, err := newSession()
	if err != nil {
		return err
	}
	if !checkGuard(os.Stdout, sess, guard.Config{}, "inquiries") {
		return nil
	}

	list, err := sess.Client().ListInquiries()
	if err != nil {
		return fmt.Errorf("failed to list inquiries: %s", client.ErrorMessage(err, "request failed"))
	}

	if len(list.Sent) == 0 && len(list.Received) == 0 {
		fmt.Println("No inquiries.")
		return nil
	}

	if len(list.Sent) > 0 {
		fmt.Println("Sent:")
		printInquiries(list.Sent)
	}
	if len(list.Received) > 0 {
		if len(list.Sent) > 0 {
			fmt.Println()
		}
		fmt.Println("Received:")
		printInquiries(list.Received)
	}

	return nil
}

func printInquiries(inquiries []client.Inquiry) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROPERTY\tSTATUS\tMESSAGE\tREPLY")
	for _, inq := range inquiries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			inq.ID, inq.Property.Title, inq.Status, truncate(inq.Message, 40), truncate(inq.Reply, 40))
	}
	w.Flush()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func runInquiriesSend(propertyID, message, phone string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}
	if !checkGuard(os.Stdout, sess, guard.Config{}, "inquiries send") {
		return nil
	}

	if err := sess.Client().CreateInquiry(propertyID, message, phone); err != nil {
		return fmt.Errorf("failed to send inquiry: %s", client.ErrorMessage(err, "request failed"))
	}

	fmt.Println("✓ Inquiry sent")
	return nil
}
