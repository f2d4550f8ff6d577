package mcpserver

import (
	"context"

	"entity-mcp/internal/common/metrics"
	"entity-mcp/internal/models"
)

const noCouponsText = models.NoCouponsMessage

type recommendCouponsArgs struct {
	Places     []string `json:"places"`
	Times      []string `json:"times,omitempty"`
	Activities []string `json:"activities,omitempty"`
}

type recommendCouponsResult struct {
	Coupons []models.Coupon `json:"coupons"`
}

// recommendCoupons answers with {"coupons": [...]} or the plain no-match text.
// times and activities are accepted but do not influence matching.
func (s *Server) recommendCoupons(_ context.Context, args map[string]interface{}) (string, error) {
	var in recommendCouponsArgs
	if err := decodeArgs(args, &in); err != nil {
		return "", err
	}

	rec, err := s.coupons.Recommend(in.Places, s.catalog.Partners())
	if err != nil {
		return "", err
	}

	if !rec.Found() {
		return noCouponsText, nil
	}

	metrics.CouponsRecommended.Add(float64(len(rec.Coupons)))
	return encodeResult(recommendCouponsResult{Coupons: rec.Coupons})
}

func (s *Server) issueTicket(ctx context.Context, args map[string]interface{}) (string, error) {
	var req models.TicketRequest
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}

	ticket, err := s.tickets.Issue(req)
	if err != nil {
		return "", err
	}
	metrics.TicketsIssued.WithLabelValues(ticket.Priority).Inc()

	if err := s.notifier.Handoff(ctx, ticket); err != nil {
		s.logger.Warn("Ticket issued without hand-off", map[string]interface{}{
			"ticketId": ticket.TicketID,
			"error":    err,
		})
	}

	s.logger.Info("Ticket issued", map[string]interface{}{
		"ticketId": ticket.TicketID,
		"priority": ticket.Priority,
	})
	return encodeResult(ticket)
}
