package commands

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pakproperty/pakproperty/internal/cli/client"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var req client.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a PakProperty account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(req)
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (will prompt if not provided)")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&req.Role, "role", "tenant", "Account role: tenant, owner or agent")

	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("first-name")

	return cmd
}

func runRegister(req client.RegisterRequest) error {
	if req.Password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			req.Password = string(bytePassword)
			fmt.Println()
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag)")
		}
	}

	sess, err := newSession()
	if err != nil {
		return err
	}

	result := sess.Register(req)
	if !result.Success {
		return fmt.Errorf("registration failed: %s", result.Error)
	}

	user := sess.User()
	fmt.Println("✓ Account created!")
	fmt.Printf("  User: %s %s (%s)\n", user.FirstName, user.LastName, user.Email)
	fmt.Printf("  Role: %s\n", user.Role)
	fmt.Println("  A verification link has been emailed to you.")

	return nil
}
