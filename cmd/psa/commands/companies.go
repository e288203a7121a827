package commands

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"
)

// NewCompaniesCommand creates the companies command group.
func NewCompaniesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "companies",
		Aliases: []string{"company"},
		Short:   "Manage companies",
		Long:    "List and inspect company records",
	}

	cmd.AddCommand(newCompaniesListCommand())
	cmd.AddCommand(newCompaniesGetCommand())

	return cmd
}

func newCompaniesListCommand() *cobra.Command {
	var (
		conditions string
		orderBy    string
		page       int
		pageSize   int
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List companies",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := connectClient(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = client.Disconnect() }()

			params := queryFromFlags(conditions, orderBy, page, pageSize, all)

			companies, err := client.Companies().List(ctx, params)
			if err != nil {
				return err
			}

			return renderOutput(companies, func() error {
				table := newTable("ID", "Identifier", "Name", "Status")

				for _, company := range companies {
					_ = table.Append(
						strconv.Itoa(company.ID),
						company.Identifier,
						company.Name,
						refName(company.Status),
					)
				}

				return table.Render()
			})
		},
	}

	cmd.Flags().StringVar(&conditions, "conditions", "", "filter conditions")
	cmd.Flags().StringVar(&orderBy, "order-by", "", "field to sort by (ascending)")
	cmd.Flags().IntVar(&page, "page", 0, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "page size")
	cmd.Flags().BoolVar(&all, "all", false, "fetch every page")

	return cmd
}

func newCompaniesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx := context.Background()

			client, err := connectClient(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = client.Disconnect() }()

			company, err := client.Companies().Get(ctx, id)
			if err != nil {
				return err
			}

			return renderOutput(company, func() error {
				table := newTable("Property", "Value")
				_ = table.Append("ID", strconv.Itoa(company.ID))
				_ = table.Append("Identifier", company.Identifier)
				_ = table.Append("Name", company.Name)
				_ = table.Append("Status", refName(company.Status))
				_ = table.Append("Type", refName(company.Type))
				_ = table.Append("Phone", company.PhoneNumber)
				_ = table.Append("Website", company.Website)

				return table.Render()
			})
		},
	}
}
