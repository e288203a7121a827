package commands

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"
)

// NewInfoCommand creates the info command.
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show server system information",
		Long:  "Connect to the configured PSA server and display its system information",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := connectClient(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = client.Disconnect() }()

			info, err := client.SystemInfo(ctx)
			if err != nil {
				return err
			}

			return renderOutput(info, func() error {
				table := newTable("Property", "Value")
				_ = table.Append("Version", info.Version)
				_ = table.Append("Cloud", strconv.FormatBool(info.IsCloud))
				_ = table.Append("Time zone", info.ServerTimeZone)

				if info.CloudRegion != "" {
					_ = table.Append("Region", info.CloudRegion)
				}

				return table.Render()
			})
		},
	}
}
