package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pakproperty/pakproperty/internal/cli/client"
	"github.com/pakproperty/pakproperty/internal/cli/guard"
)

// promptPassword reads a password from the terminal without echo
func promptPassword(label string) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("cannot prompt for %s in non-interactive mode", label)
	}
	fmt.Printf("%s: ", label)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", label, err)
	}
	fmt.Println()
	return string(raw), nil
}

// NewProfileCmd creates the profile update command
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession()
			if err != nil {
				return err
			}
			if !checkGuard(os.Stdout, sess, guard.Config{}, "profile") {
				return nil
			}

			var update client.ProfileUpdate
			if cmd.Flags().Changed("first-name") {
				v, _ := cmd.Flags().GetString("first-name")
				update.FirstName = &v
			}
			if cmd.Flags().Changed("last-name") {
				v, _ := cmd.Flags().GetString("last-name")
				update.LastName = &v
			}
			if cmd.Flags().Changed("phone") {
				v, _ := cmd.Flags().GetString("phone")
				update.Phone = &v
			}
			if update.FirstName == nil && update.LastName == nil && update.Phone == nil {
				return fmt.Errorf("nothing to update: pass --first-name, --last-name or --phone")
			}

			result := sess.UpdateProfile(update)
			if !result.Success {
				return fmt.Errorf("failed to update profile: %s", result.Error)
			}

			user := sess.User()
			fmt.Println("✓ Profile updated")
			fmt.Printf("  Name:  %s %s\n", user.FirstName, user.LastName)
			fmt.Printf("  Phone: %s\n", user.Phone)
			return nil
		},
	}

	cmd.Flags().String("first-name", "", "First name")
	cmd.Flags().String("last-name", "", "Last name")
	cmd.Flags().String("phone", "", "Phone number")

	return cmd
}

// NewChangePasswordCmd creates the change-password command
func NewChangePasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "change-password",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession()
			if err != nil {
				return err
			}
			if !checkGuard(os.Stdout, sess, guard.Config{}, "change-password") {
				return nil
			}

			current, err := promptPassword("Current password")
			if err != nil {
				return err
			}
			next, err := promptPassword("New password")
			if err != nil {
				return err
			}

			result := sess.ChangePassword(current, next)
			if !result.Success {
				return fmt.Errorf("failed to change password: %s", result.Error)
			}

			fmt.Println("✓ Password changed")
			return nil
		},
	}
}

// NewForgotPasswordCmd creates the forgot-password command
func NewForgotPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password <email>",
		Short: "Request a password reset email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession()
			if err != nil {
				return err
			}

			result := sess.ForgotPassword(args[0])
			if !result.Success {
				return fmt.Errorf("failed to request reset: %s", result.Error)
			}

			fmt.Println("If that email is registered, a reset link has been sent.")
			return nil
		},
	}
}

// NewResetPasswordCmd creates the reset-password command
func NewResetPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <token>",
		Short: "Set a new password using a reset token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession()
			if err != nil {
				return err
			}

			password, err := promptPassword("New password")
			if err != nil {
				return err
			}

			result := sess.ResetPassword(args[0], password)
			if !result.Success {
				return fmt.Errorf("failed to reset password: %s", result.Error)
			}

			fmt.Println("✓ Password reset. You can now log in with the new password.")
			return nil
		},
	}
}

// NewVerifyEmailCmd creates the verify-email command
func NewVerifyEmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-email <token>",
		Short: "Confirm your email address with a verification token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession()
			if err != nil {
				return err
			}

			result := sess.VerifyEmail(args[0])
			if !result.Success {
				return fmt.Errorf("failed to verify email: %s", result.Error)
			}

			fmt.Println("✓ Email verified")
			return nil
		},
	}
}

// NewResendVerificationCmd creates the resend-verification command
func NewResendVerificationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resend-verification",
		Short: "Request a new verification email",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession()
			if err != nil {
				return err
			}
			if !checkGuard(os.Stdout, sess, guard.Config{}, "resend-verification") {
				return nil
			}

			result := sess.ResendVerification()
			if !result.Success {
				return fmt.Errorf("failed to resend verification: %s", result.Error)
			}

			fmt.Println("✓ Verification email sent")
			return nil
		},
	}
}
