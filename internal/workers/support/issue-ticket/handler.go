// internal/workers/support/issue-ticket/handler.go
package issueticket

import (
	"context"
	"encoding/json"

	"entity-mcp/internal/common/errors"
	"entity-mcp/internal/common/logger"
	"entity-mcp/internal/common/metrics"
	"entity-mcp/internal/common/validation"
	"entity-mcp/internal/notify"
	"entity-mcp/internal/support"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "issue-ticket"
)

type Handler struct {
	config       *Config
	tickets      *support.Synthesizer
	notifier     *notify.Notifier
	schema       *validation.Schema
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandler builds the handler. notifier and schema may be nil; opts are
// passed to the ticket synthesizer.
func NewHandler(config *Config, notifier *notify.Notifier, schema *validation.Schema, log logger.Logger, opts ...support.Option) *Handler {
	return &Handler{
		config: config,
		tickets: support.NewSynthesizer(support.Config{
			IDPrefix:             config.IDPrefix,
			CancellationSentinel: config.CancellationSentinel,
		}, opts...),
		notifier:     notifier,
		schema:       schema,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job.Variables)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) parseInput(variables string) (*Input, error) {
	if h.schema != nil {
		result, err := h.schema.ValidateJSON([]byte(variables))
		if err != nil {
			return nil, errors.NewInvalidArgumentsError(err.Error())
		}
		if err := result.Err(); err != nil {
			return nil, err
		}
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInvalidArgumentsError(err.Error())
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	ticket, err := h.tickets.Issue(*input)
	if err != nil {
		return nil, err
	}
	metrics.TicketsIssued.WithLabelValues(ticket.Priority).Inc()

	if err := h.notifier.Handoff(ctx, ticket); err != nil {
		h.logger.Warn("ticket issued without hand-off", map[string]interface{}{
			"ticketId": ticket.TicketID,
			"error":    err,
		})
	}

	h.logger.Info("ticket issued", map[string]interface{}{
		"ticketId": ticket.TicketID,
		"priority": ticket.Priority,
	})

	return &Output{
		TicketID: ticket.TicketID,
		Priority: ticket.Priority,
		Ticket:   ticket,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
