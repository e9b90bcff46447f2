package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pakproperty/pakproperty/internal/cli/commands"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "pakprop",
	Short: "PakProperty - rental listings from the terminal",
	Long: `PakProperty CLI - Browse rental listings, manage your account and
talk to owners without leaving the terminal.

Your login is stored in the system keyring and reused across invocations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pakprop version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewRegisterCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewListCmd())
	rootCmd.AddCommand(commands.NewMyListingsCmd())
	rootCmd.AddCommand(commands.NewSavedCmd())
	rootCmd.AddCommand(commands.NewInquiriesCmd())
	rootCmd.AddCommand(commands.NewProfileCmd())
	rootCmd.AddCommand(commands.NewChangePasswordCmd())
	rootCmd.AddCommand(commands.NewForgotPasswordCmd())
	rootCmd.AddCommand(commands.NewResetPasswordCmd())
	rootCmd.AddCommand(commands.NewVerifyEmailCmd())
	rootCmd.AddCommand(commands.NewResendVerificationCmd())
	rootCmd.AddCommand(commands.NewConfigCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
