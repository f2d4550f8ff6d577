// Package notify hands issued tickets to the support desk over SNS and SES.
package notify

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	awsclient "entity-mcp/internal/common/aws"
	"entity-mcp/internal/common/config"
	"entity-mcp/internal/common/errors"
	"entity-mcp/internal/common/logger"
	"entity-mcp/internal/common/metrics"
	"entity-mcp/internal/models"
)

const (
	ChannelSNS = "sns"
	ChannelSES = "ses"
)

type Publisher interface {
	PublishJSON(ctx context.Context, topicARN, subject string, body []byte, attrs map[string]string) (string, error)
}

type Mailer interface {
	SendText(ctx context.Context, from, to, subject, body string) (string, error)
}

type Config struct {
	TopicARN     string
	FromEmail    string
	SupportEmail string
	Timeout      time.Duration
}

// Notifier delivers tickets on every configured channel. A nil *Notifier is
// valid and does nothing.
type Notifier struct {
	config    Config
	publisher Publisher
	mailer    Mailer
	logger    logger.Logger
}

// NewNotifier builds a Notifier; a nil publisher or mailer disables that channel.
func NewNotifier(cfg Config, publisher Publisher, mailer Mailer, log logger.Logger) *Notifier {
	return &Notifier{
		config:    cfg,
		publisher: publisher,
		mailer:    mailer,
		logger:    log.WithFields(map[string]interface{}{"component": "ticket-handoff"}),
	}
}

// FromConfig wires the AWS clients for the enabled channels. It returns nil
// when no channel is enabled.
func FromConfig(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (*Notifier, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	awsCfg, err := awsclient.LoadConfig(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var (
		publisher Publisher
		mailer    Mailer
	)
	if cfg.SNS.Enabled {
		publisher = awsclient.NewSNSClient(awsCfg)
	}
	if cfg.SES.Enabled {
		mailer = awsclient.NewSESClient(awsCfg)
	}

	return NewNotifier(Config{
		TopicARN:     cfg.SNS.TopicARN,
		FromEmail:    cfg.SES.FromEmail,
		SupportEmail: cfg.SES.SupportEmail,
		Timeout:      config.GetDuration(cfg.Timeout),
	}, publisher, mailer, log), nil
}

// Handoff sends the ticket on each channel. Every channel is attempted; the
// returned error joins the failures and must not fail the ticket itself.
func (n *Notifier) Handoff(ctx context.Context, ticket *models.Ticket) error {
	if n == nil || ticket == nil {
		return nil
	}

	if n.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.config.Timeout)
		defer cancel()
	}

	var errs []error
	if n.publisher != nil {
		if err := n.publish(ctx, ticket); err != nil {
			errs = append(errs, n.failed(ChannelSNS, ticket, err))
		}
	}
	if n.mailer != nil {
		if err := n.email(ctx, ticket); err != nil {
			errs = append(errs, n.failed(ChannelSES, ticket, err))
		}
	}
	return stderrors.Join(errs...)
}

func (n *Notifier) publish(ctx context.Context, ticket *models.Ticket) error {
	body, err := json.Marshal(ticket)
	if err != nil {
		return err
	}

	messageID, err := n.publisher.PublishJSON(ctx, n.config.TopicARN, subject(ticket), body, map[string]string{
		"priority": ticket.Priority,
		"type":     ticket.Type,
	})
	if err != nil {
		return err
	}

	n.logger.Debug("Ticket published", map[string]interface{}{
		"ticketId":  ticket.TicketID,
		"messageId": messageID,
	})
	return nil
}

func (n *Notifier) email(ctx context.Context, ticket *models.Ticket) error {
	messageID, err := n.mailer.SendText(ctx, n.config.FromEmail, n.config.SupportEmail, subject(ticket), summary(ticket))
	if err != nil {
		return err
	}

	n.logger.Debug("Ticket emailed", map[string]interface{}{
		"ticketId":  ticket.TicketID,
		"messageId": messageID,
	})
	return nil
}

func (n *Notifier) failed(channel string, ticket *models.Ticket, err error) error {
	metrics.TicketHandoffFailures.WithLabelValues(channel).Inc()
	n.logger.Warn("Ticket hand-off failed", map[string]interface{}{
		"channel":  channel,
		"ticketId": ticket.TicketID,
		"error":    err,
	})
	return errors.NewNotificationSendFailedError(channel, err)
}

func subject(ticket *models.Ticket) string {
	return fmt.Sprintf("[%s] %s ticket %s", ticket.Priority, ticket.Type, ticket.TicketID)
}

func summary(ticket *models.Ticket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ticket: %s\n", ticket.TicketID)
	fmt.Fprintf(&b, "Priority: %s\n", ticket.Priority)
	fmt.Fprintf(&b, "Created: %s\n", ticket.CreatedAt)
	fmt.Fprintf(&b, "Customer: %s (order %s)\n", ticket.CustomerInfo.Name, ticket.CustomerInfo.OrderNumber)
	fmt.Fprintf(&b, "Product: %s\n", ticket.Issue.Product)
	fmt.Fprintf(&b, "Issue: %s\n", ticket.Issue.Summary)
	fmt.Fprintf(&b, "Delivery status: %s\n", ticket.Issue.DeliveryStatus)
	fmt.Fprintf(&b, "Customer decision: %s\n", ticket.Issue.CustomerDecision)
	b.WriteString("\nActions:\n")
	for _, a := range ticket.Actions {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", a.Priority, a.Type, a.Description)
	}
	return b.String()
}
