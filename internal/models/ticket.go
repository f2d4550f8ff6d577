// internal/models/ticket.go
package models

const (
	TicketTypeDeliveryDelay = "delivery_delay"
	TicketStatusOpen        = "open"

	PriorityHigh   = "high"
	PriorityMedium = "medium"

	ActionOfferCancellation    = "offer_cancellation"
	ActionOfferCompensation    = "offer_compensation"
	ActionTrackDelivery        = "track_delivery"
	ActionCustomerNotification = "customer_notification"
)

type Ticket struct {
	TicketID     string         `json:"ticketId"`
	Type         string         `json:"type"`
	Status       string         `json:"status"`
	Priority     string         `json:"priority"`
	CreatedAt    string         `json:"createdAt"`
	CustomerInfo CustomerInfo   `json:"customerInfo"`
	Issue        Issue          `json:"issue"`
	Actions      []TicketAction `json:"actions"`
}

type CustomerInfo struct {
	Name        string `json:"name"`
	OrderNumber string `json:"orderNumber"`
}

type Issue struct {
	Summary          string `json:"summary"`
	Product          string `json:"product"`
	DeliveryStatus   string `json:"deliveryStatus"`
	CustomerDecision string `json:"customerDecision"`
}

type TicketAction struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// TicketRequest holds the complaint fields of an issue_ticket call. Pointers
// distinguish an absent field from an empty one.
type TicketRequest struct {
	OrderNumber      *string `json:"orderNumber,omitempty"`
	CustomerName     *string `json:"customerName,omitempty"`
	Product          *string `json:"product,omitempty"`
	IssueSummary     *string `json:"issueSummary,omitempty"`
	DeliveryStatus   *string `json:"deliveryStatus,omitempty"`
	CustomerDecision *string `json:"customerDecision,omitempty"`
}
