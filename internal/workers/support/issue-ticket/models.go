// internal/workers/support/issue-ticket/models.go
package issueticket

import "entity-mcp/internal/models"

type Input = models.TicketRequest

// Output exposes ticketId and priority at the top level for gateway conditions.
type Output struct {
	TicketID string         `json:"ticketId"`
	Priority string         `json:"priority"`
	Ticket   *models.Ticket `json:"ticket"`
}
