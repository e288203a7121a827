package client

import (
	"context"
	"fmt"

	internalhttp "github.com/fivetwenty-io/psa/internal/http"
	"github.com/fivetwenty-io/psa/pkg/psa"
)

const ticketsPath = "/service/tickets"

// TicketsClient implements psa.TicketsClient.
type TicketsClient struct {
	transport *internalhttp.Client
}

// Get retrieves a ticket by ID.
func (c *TicketsClient) Get(ctx context.Context, id int) (*psa.Ticket, error) {
	return GetOne[psa.Ticket](ctx, c.transport, fmt.Sprintf("%s/%d", ticketsPath, id))
}

// List retrieves tickets matching the query parameters.
func (c *TicketsClient) List(ctx context.Context, params *psa.QueryParams) ([]psa.Ticket, error) {
	return GetList[psa.Ticket](ctx, c.transport, ticketsPath, params)
}

// Search retrieves tickets via POST-based search.
func (c *TicketsClient) Search(ctx context.Context, params *psa.QueryParams) ([]psa.Ticket, error) {
	return Search[psa.Ticket](ctx, c.transport, ticketsPath, params)
}

// Create opens a new ticket.
func (c *TicketsClient) Create(ctx context.Context, ticket *psa.Ticket) (*psa.Ticket, error) {
	return Create[psa.Ticket](ctx, c.transport, ticketsPath, ticket)
}

// Update applies a single patch operation to a ticket.
func (c *TicketsClient) Update(ctx context.Context, id int, op psa.PatchOp) (*psa.Ticket, error) {
	return Update[psa.Ticket](ctx, c.transport, fmt.Sprintf("%s/%d", ticketsPath, id), op)
}

// Delete removes a ticket.
func (c *TicketsClient) Delete(ctx context.Context, id int) error {
	return Delete(ctx, c.transport, fmt.Sprintf("%s/%d", ticketsPath, id))
}

// ListNotes retrieves the notes of a ticket.
func (c *TicketsClient) ListNotes(ctx context.Context, ticketID int, params *psa.QueryParams) ([]psa.TicketNote, error) {
	return GetList[psa.TicketNote](ctx, c.transport, fmt.Sprintf("%s/%d/notes", ticketsPath, ticketID), params)
}

// CreateNote adds a note to the ticket named by note.TicketID. The ticket
// ID identifies the parent in the path, so it is stripped from the body.
func (c *TicketsClient) CreateNote(ctx context.Context, note *psa.TicketNote) (*psa.TicketNote, error) {
	path := fmt.Sprintf("%s/%d/notes", ticketsPath, note.TicketID)

	return Create[psa.TicketNote](ctx, c.transport, path, note, "ticketId")
}
