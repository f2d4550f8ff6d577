// internal/support/ticket.go
package support

import (
	"fmt"
	"math/rand/v2"
	"time"

	"entity-mcp/internal/common/errors"
	"entity-mcp/internal/models"
)

const (
	DefaultIDPrefix             = "TKT"
	DefaultCancellationSentinel = "considering cancellation"

	DefaultIssueSummary     = "delivery delay"
	DefaultDeliveryStatus   = "in transit"
	DefaultCustomerDecision = "awaiting delivery"

	// CreatedAtLayout sorts lexically in time order for UTC values.
	CreatedAtLayout = "2006-01-02T15:04:05.000Z07:00"

	idSuffixLength   = 9
	idSuffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// IDGenerator builds ticket identifiers.
type IDGenerator interface {
	NewTicketID(now time.Time) string
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// RandomIDGenerator produces "<prefix>-<unix seconds>-<9 chars A-Z0-9>".
type RandomIDGenerator struct {
	Prefix string
}

func (g RandomIDGenerator) NewTicketID(now time.Time) string {
	suffix := make([]byte, idSuffixLength)
	for i := range suffix {
		suffix[i] = idSuffixAlphabet[rand.IntN(len(idSuffixAlphabet))]
	}
	return fmt.Sprintf("%s-%d-%s", g.Prefix, now.Unix(), suffix)
}

type Config struct {
	IDPrefix             string
	CancellationSentinel string
}

// Synthesizer builds support tickets from delivery complaints.
type Synthesizer struct {
	sentinel string
	clock    Clock
	ids      IDGenerator
}

type Option func(*Synthesizer)

func WithClock(c Clock) Option {
	return func(s *Synthesizer) { s.clock = c }
}

func WithIDGenerator(g IDGenerator) Option {
	return func(s *Synthesizer) { s.ids = g }
}

func NewSynthesizer(config Config, opts ...Option) *Synthesizer {
	prefix := config.IDPrefix
	if prefix == "" {
		prefix = DefaultIDPrefix
	}
	sentinel := config.CancellationSentinel
	if sentinel == "" {
		sentinel = DefaultCancellationSentinel
	}

	s := &Synthesizer{
		sentinel: sentinel,
		clock:    systemClock{},
		ids:      RandomIDGenerator{Prefix: prefix},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates a ticket. orderNumber, customerName and product are required;
// when any is absent the error names all missing fields.
func (s *Synthesizer) Issue(req models.TicketRequest) (*models.Ticket, error) {
	var missing []string
	if req.OrderNumber == nil {
		missing = append(missing, "orderNumber")
	}
	if req.CustomerName == nil {
		missing = append(missing, "customerName")
	}
	if req.Product == nil {
		missing = append(missing, "product")
	}
	if len(missing) > 0 {
		return nil, errors.NewMissingRequiredFieldError(missing...)
	}

	decision := valueOr(req.CustomerDecision, DefaultCustomerDecision)
	cancelling := decision == s.sentinel

	now := s.clock.Now()

	ticket := &models.Ticket{
		TicketID:  s.ids.NewTicketID(now),
		Type:      models.TicketTypeDeliveryDelay,
		Status:    models.TicketStatusOpen,
		Priority:  models.PriorityMedium,
		CreatedAt: now.UTC().Format(CreatedAtLayout),
		CustomerInfo: models.CustomerInfo{
			Name:        *req.CustomerName,
			OrderNumber: *req.OrderNumber,
		},
		Issue: models.Issue{
			Summary:          valueOr(req.IssueSummary, DefaultIssueSummary),
			Product:          *req.Product,
			DeliveryStatus:   valueOr(req.DeliveryStatus, DefaultDeliveryStatus),
			CustomerDecision: decision,
		},
		Actions: recommendedActions(cancelling),
	}
	if cancelling {
		ticket.Priority = models.PriorityHigh
	}

	return ticket, nil
}

func recommendedActions(cancelling bool) []models.TicketAction {
	if cancelling {
		return []models.TicketAction{
			{Type: models.ActionOfferCancellation, Description: "guide cancellation and process refund", Priority: models.PriorityHigh},
			{Type: models.ActionOfferCompensation, Description: "issue delay-compensation coupon", Priority: models.PriorityMedium},
		}
	}
	return []models.TicketAction{
		{Type: models.ActionTrackDelivery, Description: "monitor delivery status", Priority: models.PriorityHigh},
		{Type: models.ActionCustomerNotification, Description: "send estimated-arrival notification", Priority: models.PriorityMedium},
	}
}

func valueOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}
