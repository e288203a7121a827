package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of the PSA server",
		Long:  "Remove stored credentials from the CLI configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.PublicKey = ""
			config.PrivateKey = ""
			config.IntegratorUsername = ""
			config.IntegratorPassword = ""
			config.MemberID = ""
			config.Username = ""
			config.Password = ""

			err := saveConfig(config)
			if err != nil {
				return err
			}

			fmt.Println("Logged out")

			return nil
		},
	}
}
