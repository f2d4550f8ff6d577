package aws

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSNS struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("mail-1")}, nil
}

func TestSNSClient_PublishJSON(t *testing.T) {
	api := &fakeSNS{}
	client := NewSNSClientWithAPI(api)

	id, err := client.PublishJSON(context.Background(), "arn:aws:sns:us-east-1:123:tickets", "Ticket TKT-1",
		[]byte(`{"ticketId":"TKT-1"}`), map[string]string{"priority": "high"})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)

	assert.Equal(t, "arn:aws:sns:us-east-1:123:tickets", aws.ToString(api.input.TopicArn))
	assert.Equal(t, `{"ticketId":"TKT-1"}`, aws.ToString(api.input.Message))
	assert.Equal(t, "Ticket TKT-1", aws.ToString(api.input.Subject))
	require.Contains(t, api.input.MessageAttributes, "priority")
	assert.Equal(t, "String", aws.ToString(api.input.MessageAttributes["priority"].DataType))
	assert.Equal(t, "high", aws.ToString(api.input.MessageAttributes["priority"].StringValue))

	api.err = assert.AnError
	_, err = client.PublishJSON(context.Background(), "arn", "", nil, nil)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, api.input.Subject)
	assert.Nil(t, api.input.MessageAttributes)
}

func TestSESClient_SendText(t *testing.T) {
	api := &fakeSES{}
	client := NewSESClientWithAPI(api)

	id, err := client.SendText(context.Background(), "noreply@example.com", "support@example.com", "subject", "body")
	require.NoError(t, err)
	assert.Equal(t, "mail-1", id)

	assert.Equal(t, []string{"support@example.com"}, api.input.Destination.ToAddresses)
	assert.Equal(t, "noreply@example.com", aws.ToString(api.input.Source))
	assert.Equal(t, "subject", aws.ToString(api.input.Message.Subject.Data))
	assert.Equal(t, "body", aws.ToString(api.input.Message.Body.Text.Data))
	assert.Nil(t, api.input.Message.Body.Html)
}
