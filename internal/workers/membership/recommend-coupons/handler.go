// internal/workers/membership/recommend-coupons/handler.go
package recommendcoupons

import (
	"context"
	"encoding/json"
	"time"

	"entity-mcp/internal/catalog"
	"entity-mcp/internal/common/errors"
	"entity-mcp/internal/common/logger"
	"entity-mcp/internal/common/metrics"
	"entity-mcp/internal/common/validation"
	"entity-mcp/internal/membership"
	"entity-mcp/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "recommend-coupons"
)

type Handler struct {
	config       *Config
	catalog      *catalog.Catalog
	coupons      *membership.Synthesizer
	schema       *validation.Schema
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandler builds the handler. schema validates job variables and may be nil.
func NewHandler(config *Config, cat *catalog.Catalog, schema *validation.Schema, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		catalog: cat,
		coupons: membership.NewSynthesizer(membership.SynthesizerConfig{
			IncludeCalendarEvent: config.IncludeCalendarEvent,
		}),
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
	if input.Places == nil {
		return nil, errors.NewMissingRequiredFieldError("places")
	}
	return &input, nil
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	start := time.Now()

	rec, err := h.coupons.Recommend(input.Places, h.catalog.Partners())
	if err != nil {
		return nil, err
	}

	coupons := rec.Coupons
	if coupons == nil {
		coupons = []models.Coupon{}
	}
	metrics.CouponsRecommended.Add(float64(len(coupons)))

	h.logger.Info("coupons recommended", map[string]interface{}{
		"places":   len(input.Places),
		"coupons":  len(coupons),
		"duration": time.Since(start).String(),
	})

	return &Output{
		CouponsFound: rec.Found(),
		Coupons:      coupons,
		Message:      rec.Message(),
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
