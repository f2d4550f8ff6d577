package notify

import (
	"context"
	"encoding/json"
	"testing"

	"entity-mcp/internal/common/config"
	"entity-mcp/internal/common/errors"
	"entity-mcp/internal/common/logger"
	"entity-mcp/internal/common/metrics"
	"entity-mcp/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type publishCall struct {
	topicARN string
	subject  string
	body     []byte
	attrs    map[string]string
}

type fakePublisher struct {
	calls []publishCall
	err   error
}

func (f *fakePublisher) PublishJSON(_ context.Context, topicARN, subject string, body []byte, attrs map[string]string) (string, error) {
	f.calls = append(f.calls, publishCall{topicARN: topicARN, subject: subject, body: body, attrs: attrs})
	return "msg-1", f.err
}

type mailCall struct {
	from, to, subject, body string
}

type fakeMailer struct {
	calls []mailCall
	err   error
}

func (f *fakeMailer) SendText(_ context.Context, from, to, subject, body string) (string, error) {
	f.calls = append(f.calls, mailCall{from: from, to: to, subject: subject, body: body})
	return "mail-1", f.err
}

func createTestTicket() *models.Ticket {
	return &models.Ticket{
		TicketID:  "TKT-ABC123XYZ",
		Type:      models.TicketTypeDeliveryDelay,
		Status:    models.TicketStatusOpen,
		Priority:  models.PriorityHigh,
		CreatedAt: "2026-10-17T09:30:00.000Z",
		CustomerInfo: models.CustomerInfo{
			Name:        "Kim Minji",
			OrderNumber: "ORD-1001",
		},
		Issue: models.Issue{
			Summary:          "Delivery is late",
			Product:          "Air fryer",
			DeliveryStatus:   "in transit",
			CustomerDecision: "considering cancellation",
		},
		Actions: []models.TicketAction{
			{Type: models.ActionOfferCancellation, Description: "Offer cancellation", Priority: models.PriorityHigh},
		},
	}
}

func createTestConfig() Config {
	return Config{
		TopicARN:     "arn:aws:sns:us-east-1:123456789012:support-tickets",
		FromEmail:    "noreply@example.com",
		SupportEmail: "support@example.com",
	}
}

// ==========================
// Tests
// ==========================

func TestNotifier_Handoff(t *testing.T) {
	publisher := &fakePublisher{}
	mailer := &fakeMailer{}
	n := NewNotifier(createTestConfig(), publisher, mailer, logger.NewNoOpLogger())

	ticket := createTestTicket()
	require.NoError(t, n.Handoff(context.Background(), ticket))

	require.Len(t, publisher.calls, 1)
	call := publisher.calls[0]
	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:support-tickets", call.topicARN)
	assert.Equal(t, "[high] delivery_delay ticket TKT-ABC123XYZ", call.subject)
	assert.Equal(t, map[string]string{"priority": "high", "type": "delivery_delay"}, call.attrs)

	var published models.Ticket
	require.NoError(t, json.Unmarshal(call.body, &published))
	assert.Equal(t, *ticket, published)

	require.Len(t, mailer.calls, 1)
	mail := mailer.calls[0]
	assert.Equal(t, "noreply@example.com", mail.from)
	assert.Equal(t, "support@example.com", mail.to)
	assert.Contains(t, mail.body, "Customer: Kim Minji (order ORD-1001)")
	assert.Contains(t, mail.body, "- [high] offer_cancellation: Offer cancellation")
}

func TestNotifier_HandoffFailures(t *testing.T) {
	tests := []struct {
		name           string
		publishErr     error
		mailErr        error
		failedChannels []string
	}{
		{name: "sns fails", publishErr: assert.AnError, failedChannels: []string{ChannelSNS}},
		{name: "ses fails", mailErr: assert.AnError, failedChannels: []string{ChannelSES}},
		{name: "both fail", publishErr: assert.AnError, mailErr: assert.AnError, failedChannels: []string{ChannelSNS, ChannelSES}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := map[string]float64{
				ChannelSNS: testutil.ToFloat64(metrics.TicketHandoffFailures.WithLabelValues(ChannelSNS)),
				ChannelSES: testutil.ToFloat64(metrics.TicketHandoffFailures.WithLabelValues(ChannelSES)),
			}

			publisher := &fakePublisher{err: tt.publishErr}
			mailer := &fakeMailer{err: tt.mailErr}
			n := NewNotifier(createTestConfig(), publisher, mailer, logger.NewNoOpLogger())

			err := n.Handoff(context.Background(), createTestTicket())
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeNotificationSendFailed))

			// both channels are attempted regardless of the first failure
			assert.Len(t, publisher.calls, 1)
			assert.Len(t, mailer.calls, 1)

			for _, channel := range tt.failedChannels {
				after := testutil.ToFloat64(metrics.TicketHandoffFailures.WithLabelValues(channel))
				assert.Equal(t, before[channel]+1, after, channel)
			}
		})
	}
}

func TestNotifier_Disabled(t *testing.T) {
	var n *Notifier
	assert.NoError(t, n.Handoff(context.Background(), createTestTicket()))

	onlyMail := &fakeMailer{}
	n = NewNotifier(createTestConfig(), nil, onlyMail, logger.NewNoOpLogger())
	require.NoError(t, n.Handoff(context.Background(), createTestTicket()))
	assert.Len(t, onlyMail.calls, 1)

	n, err := FromConfig(context.Background(), config.NotificationConfig{}, logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.Nil(t, n)
}
