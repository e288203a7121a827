package commands

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/psa/pkg/psa"
)

// NewTicketsCommand creates the tickets command group.
func NewTicketsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tickets",
		Aliases: []string{"ticket"},
		Short:   "Manage service tickets",
		Long:    "List, inspect, and update service tickets",
	}

	cmd.AddCommand(newTicketsListCommand())
	cmd.AddCommand(newTicketsGetCommand())
	cmd.AddCommand(newTicketsNotesCommand())
	cmd.AddCommand(newTicketsSetStatusCommand())

	return cmd
}

func newTicketsListCommand() *cobra.Command {
	var (
		conditions string
		orderBy    string
		page       int
		pageSize   int
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List service tickets",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := connectClient(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = client.Disconnect() }()

			params := queryFromFlags(conditions, orderBy, page, pageSize, all)

			tickets, err := client.Tickets().List(ctx, params)
			if err != nil {
				return err
			}

			return renderOutput(tickets, func() error {
				table := newTable("ID", "Summary", "Status", "Company")

				for _, ticket := range tickets {
					_ = table.Append(
						strconv.Itoa(ticket.ID),
						ticket.Summary,
						refName(ticket.Status),
						refName(ticket.Company),
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

func newTicketsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one ticket",
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

			ticket, err := client.Tickets().Get(ctx, id)
			if err != nil {
				return err
			}

			return renderOutput(ticket, func() error {
				table := newTable("Property", "Value")
				_ = table.Append("ID", strconv.Itoa(ticket.ID))
				_ = table.Append("Summary", ticket.Summary)
				_ = table.Append("Board", refName(ticket.Board))
				_ = table.Append("Status", refName(ticket.Status))
				_ = table.Append("Company", refName(ticket.Company))
				_ = table.Append("Priority", refName(ticket.Priority))

				return table.Render()
			})
		},
	}
}

func newTicketsNotesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "notes <id>",
		Short: "List the notes of a ticket",
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

			notes, err := client.Tickets().ListNotes(ctx, id, nil)
			if err != nil {
				return err
			}

			return renderOutput(notes, func() error {
				table := newTable("ID", "Text")

				for _, note := range notes {
					_ = table.Append(strconv.Itoa(note.ID), note.Text)
				}

				return table.Render()
			})
		},
	}
}

func newTicketsSetStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <id> <status-id>",
		Short: "Change a ticket's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			statusID, err := parseID(args[1])
			if err != nil {
				return err
			}

			ctx := context.Background()

			client, err := connectClient(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = client.Disconnect() }()

			ticket, err := client.Tickets().Update(ctx, id, psa.Replace("status/id", statusID))
			if err != nil {
				return err
			}

			return renderOutput(ticket, func() error {
				table := newTable("Property", "Value")
				_ = table.Append("ID", strconv.Itoa(ticket.ID))
				_ = table.Append("Status", refName(ticket.Status))

				return table.Render()
			})
		},
	}
}
