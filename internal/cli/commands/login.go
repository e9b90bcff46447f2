package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the PakProperty API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set PAKPROP_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set PAKPROP_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(email, password string) error {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("PAKPROP_EMAIL")
	}
	if password == "" {
		password = os.Getenv("PAKPROP_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or PAKPROP_EMAIL env var)")
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		// Check if stdin is a terminal (not piped)
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println() // New line after password input
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or PAKPROP_PASSWORD env var)")
		}
	}

	sess, err := newSession()
	if err != nil {
		return err
	}

	result := sess.Login(email, password)
	if !result.Success {
		return fmt.Errorf("login failed: %s", result.Error)
	}

	user := sess.User()
	fmt.Println("✓ Login successful!")
	fmt.Printf("  User: %s %s (%s)\n", user.FirstName, user.LastName, user.Email)
	fmt.Printf("  Role: %s\n", user.Role)
	if !user.IsVerified {
		fmt.Println("  Note: your email address is not verified yet")
	}

	return nil
}
