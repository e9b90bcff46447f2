package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pakproperty/pakproperty/internal/cli/guard"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current account",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession()
			if err != nil {
				return err
			}

			if !checkGuard(os.Stdout, sess, guard.Config{}, "whoami") {
				return nil
			}

			user := sess.User()
			fmt.Printf("Email:    %s\n", user.Email)
			fmt.Printf("Name:     %s %s\n", user.FirstName, user.LastName)
			fmt.Printf("Role:     %s\n", user.Role)
			fmt.Printf("Verified: %t\n", user.IsVerified)
			return nil
		},
	}
}
