package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/psa/internal/constants"
)

const maskedValue = "***"

// ErrUnknownConfigKey rejects config keys the CLI does not manage.
var ErrUnknownConfigKey = errors.New("unknown configuration key")

// Config is the CLI configuration persisted in ~/.psa/config.yml.
type Config struct {
	Host    string `json:"host,omitempty"    yaml:"host,omitempty"`
	Company string `json:"company,omitempty" yaml:"company,omitempty"`

	PublicKey  string `json:"public_key,omitempty"  yaml:"public_key,omitempty"`
	PrivateKey string `json:"private_key,omitempty" yaml:"private_key,omitempty"`

	IntegratorUsername string `json:"integrator_username,omitempty" yaml:"integrator_username,omitempty"`
	IntegratorPassword string `json:"integrator_password,omitempty" yaml:"integrator_password,omitempty"`
	MemberID           string `json:"member_id,omitempty"           yaml:"member_id,omitempty"`

	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	APIVersion string `json:"api_version,omitempty" yaml:"api_version,omitempty"`
	Output     string `json:"output,omitempty"      yaml:"output,omitempty"`
}

// loadConfig reads the CLI configuration from viper.
func loadConfig() *Config {
	return &Config{
		Host:               viper.GetString("host"),
		Company:            viper.GetString("company"),
		PublicKey:          viper.GetString("public_key"),
		PrivateKey:         viper.GetString("private_key"),
		IntegratorUsername: viper.GetString("integrator_username"),
		IntegratorPassword: viper.GetString("integrator_password"),
		MemberID:           viper.GetString("member_id"),
		Username:           viper.GetString("username"),
		Password:           viper.GetString("password"),
		APIVersion:         viper.GetString("api_version"),
		Output:             viper.GetString("output"),
	}
}

// saveConfig writes the configuration back to the config file.
func saveConfig(config *Config) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}

		configDir := filepath.Join(home, ".psa")

		err = os.MkdirAll(configDir, constants.ConfigDirPerm)
		if err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		configFile = filepath.Join(configDir, "config.yml")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// masked hides credential material in config output.
func (c *Config) masked() *Config {
	clone := *c

	if clone.PrivateKey != "" {
		clone.PrivateKey = maskedValue
	}

	if clone.IntegratorPassword != "" {
		clone.IntegratorPassword = maskedValue
	}

	if clone.Password != "" {
		clone.Password = maskedValue
	}

	return &clone
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage PSA CLI configuration including connection settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with credentials masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig().masked()

			return renderOutput(config, func() error {
				table := newTable("Setting", "Value")

				rows := [][2]string{
					{"host", config.Host},
					{"company", config.Company},
					{"public_key", config.PublicKey},
					{"private_key", config.PrivateKey},
					{"integrator_username", config.IntegratorUsername},
					{"member_id", config.MemberID},
					{"username", config.Username},
					{"api_version", config.APIVersion},
					{"output", config.Output},
				}

				for _, row := range rows {
					value := row[1]
					if value == "" {
						value = NotAvailable
					}

					_ = table.Append(row[0], value)
				}

				return table.Render()
			})
		},
	}
}

func configKeySetter(config *Config, key string) (*string, error) {
	switch key {
	case "host":
		return &config.Host, nil
	case "company":
		return &config.Company, nil
	case "public_key":
		return &config.PublicKey, nil
	case "private_key":
		return &config.PrivateKey, nil
	case "integrator_username":
		return &config.IntegratorUsername, nil
	case "integrator_password":
		return &config.IntegratorPassword, nil
	case "member_id":
		return &config.MemberID, nil
	case "username":
		return &config.Username, nil
	case "password":
		return &config.Password, nil
	case "api_version":
		return &config.APIVersion, nil
	case "output":
		return &config.Output, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownConfigKey, key)
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			field, err := configKeySetter(config, args[0])
			if err != nil {
				return err
			}

			*field = args[1]

			return saveConfig(config)
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			field, err := configKeySetter(config, args[0])
			if err != nil {
				return err
			}

			*field = ""

			return saveConfig(config)
		},
	}
}
