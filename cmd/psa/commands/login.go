package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/psa/pkg/psa"
	"github.com/fivetwenty-io/psa/pkg/psaclient"
)

// ErrCredentialFlagsRequired rejects a login invocation that supplies no
// usable credential combination.
var ErrCredentialFlagsRequired = errors.New("supply an API key pair (--public-key/--private-key), integrator credentials, or a username")

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		host               string
		company            string
		publicKey          string
		privateKey         string
		integratorUsername string
		integratorPassword string
		memberID           string
		username           string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to a PSA server",
		Long:  "Validate credentials against a PSA server and store them in the CLI configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(os.Stdin)

			if host == "" {
				host = viper.GetString("host")
			}

			if host == "" {
				fmt.Print("Server host: ")
				host, _ = reader.ReadString('\n')
				host = strings.TrimSpace(host)
			}

			if company == "" {
				company = viper.GetString("company")
			}

			if company == "" {
				fmt.Print("Company: ")
				company, _ = reader.ReadString('\n')
				company = strings.TrimSpace(company)
			}

			config := &psa.Config{Host: host, Company: company}

			switch {
			case publicKey != "":
				if privateKey == "" {
					fmt.Print("Private key: ")

					secret, err := term.ReadPassword(int(syscall.Stdin))
					if err != nil {
						return fmt.Errorf("failed to read private key: %w", err)
					}

					privateKey = string(secret)

					fmt.Println()
				}

				config.PublicKey = publicKey
				config.PrivateKey = privateKey
			case integratorUsername != "":
				if integratorPassword == "" {
					fmt.Print("Integrator password: ")

					secret, err := term.ReadPassword(int(syscall.Stdin))
					if err != nil {
						return fmt.Errorf("failed to read password: %w", err)
					}

					integratorPassword = string(secret)

					fmt.Println()
				}

				config.IntegratorUsername = integratorUsername
				config.IntegratorPassword = integratorPassword
				config.MemberID = memberID
			case username != "":
				fmt.Print("Password: ")

				secret, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}

				fmt.Println()

				config.Username = username
				config.Password = string(secret)
			default:
				return ErrCredentialFlagsRequired
			}

			// Validate the credentials before persisting anything.
			client, err := psaclient.New(context.Background(), config)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			info, err := client.SystemInfo(context.Background())
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			stored := loadConfig()
			stored.Host = host
			stored.Company = company
			stored.PublicKey = config.PublicKey
			stored.PrivateKey = config.PrivateKey
			stored.IntegratorUsername = config.IntegratorUsername
			stored.IntegratorPassword = config.IntegratorPassword
			stored.MemberID = config.MemberID
			stored.Username = config.Username
			stored.Password = config.Password

			err = saveConfig(stored)
			if err != nil {
				return err
			}

			fmt.Printf("Logged in to %s (server version %s)\n", host, info.Version)

			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "PSA server host")
	cmd.Flags().StringVar(&company, "company", "", "company identifier")
	cmd.Flags().StringVar(&publicKey, "public-key", "", "API key public part")
	cmd.Flags().StringVar(&privateKey, "private-key", "", "API key private part")
	cmd.Flags().StringVar(&integratorUsername, "integrator-username", "", "integrator account username (deprecated)")
	cmd.Flags().StringVar(&integratorPassword, "integrator-password", "", "integrator account password")
	cmd.Flags().StringVar(&memberID, "member-id", "", "member to impersonate in integrator mode")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username for cookie login")

	return cmd
}
