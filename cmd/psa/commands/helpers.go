package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/psa/pkg/psa"
	"github.com/fivetwenty-io/psa/pkg/psaclient"
)

// Output formats.
const (
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"

	NotAvailable = "N/A"
)

// Common static errors used throughout the commands package.
var (
	ErrHostNotConfigured    = errors.New("no host configured: run 'psa login' or set PSA_HOST")
	ErrCompanyNotConfigured = errors.New("no company configured: run 'psa login' or set PSA_COMPANY")
	ErrNotLoggedIn          = errors.New("no credentials configured: run 'psa login'")
	ErrIDRequired           = errors.New("a numeric record ID is required")
)

// clientConfig builds a psa.Config from the CLI configuration.
func clientConfig() (*psa.Config, error) {
	config := loadConfig()

	if config.Host == "" {
		return nil, ErrHostNotConfigured
	}

	if config.Company == "" {
		return nil, ErrCompanyNotConfigured
	}

	if config.PublicKey == "" && config.IntegratorUsername == "" && config.Username == "" {
		return nil, ErrNotLoggedIn
	}

	return &psa.Config{
		Host:               config.Host,
		Company:            config.Company,
		PublicKey:          config.PublicKey,
		PrivateKey:         config.PrivateKey,
		IntegratorUsername: config.IntegratorUsername,
		IntegratorPassword: config.IntegratorPassword,
		MemberID:           config.MemberID,
		Username:           config.Username,
		Password:           config.Password,
		APIVersion:         config.APIVersion,
	}, nil
}

// connectClient builds and connects a client from the CLI configuration.
func connectClient(ctx context.Context) (psa.Client, error) {
	config, err := clientConfig()
	if err != nil {
		return nil, err
	}

	client, err := psaclient.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}

	return client, nil
}

// parseID converts a positional argument into a record ID.
func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: got %q", ErrIDRequired, arg)
	}

	return id, nil
}

// renderOutput writes value as JSON or YAML per the output flag, or calls
// renderTable for the default table format.
func renderOutput(value interface{}, renderTable func() error) error {
	switch viper.GetString("output") {
	case OutputFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(value)
	case OutputFormatYAML:
		return yaml.NewEncoder(os.Stdout).Encode(value)
	default:
		return renderTable()
	}
}

// newTable creates a table writer with the given header.
func newTable(header ...string) *tablewriter.Table {
	columns := make([]interface{}, len(header))
	for i, name := range header {
		columns[i] = name
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header(columns...)

	return table
}

// refName renders a reference for table output.
func refName(ref *psa.Reference) string {
	if ref == nil {
		return NotAvailable
	}

	if ref.Name != "" {
		return ref.Name
	}

	if ref.Identifier != "" {
		return ref.Identifier
	}

	return strconv.Itoa(ref.ID)
}

// queryFromFlags builds query parameters from the standard list flags.
func queryFromFlags(conditions, orderBy string, page, pageSize int, all bool) *psa.QueryParams {
	params := psa.NewQueryParams()

	if conditions != "" {
		params = params.WithConditions(conditions)
	}

	if orderBy != "" {
		params = params.WithOrderBy(orderBy, psa.OrderAsc)
	}

	if page > 0 {
		params = params.WithPage(page)
	}

	if pageSize > 0 {
		params = params.WithPageSize(pageSize)
	}

	if all {
		params = params.WithAll()
	}

	return params
}
