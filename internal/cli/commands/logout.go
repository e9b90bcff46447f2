package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession()
			if err != nil {
				return err
			}

			// Idempotent: logging out while logged out is fine
			sess.Logout()
			fmt.Println("✓ Logged out.")
			return nil
		},
	}
}
