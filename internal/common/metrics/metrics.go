package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeNoMatch = "no_match"
)

var (
	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_tool_calls_total",
			Help: "Total number of MCP tool calls by outcome",
		},
		[]string{"tool", "outcome"},
	)

	ToolCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mcp_tool_call_duration_seconds",
			Help:    "Duration of MCP tool calls in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"tool"},
	)

	ResourceReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_resource_reads_total",
			Help: "Total number of MCP resource reads by outcome",
		},
		[]string{"uri", "outcome"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	CouponsRecommended = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "membership_coupons_recommended_total",
			Help: "Total number of coupons handed out",
		},
	)

	TicketsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_tickets_issued_total",
			Help: "Total number of support tickets issued by priority",
		},
		[]string{"priority"},
	)

	TicketHandoffFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_ticket_handoff_failures_total",
			Help: "Ticket hand-off failures by channel",
		},
		[]string{"channel"},
	)

	CatalogLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_loads_total",
			Help: "Partner catalog loads by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	CatalogPartners = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_partners",
			Help: "Number of partners in the loaded catalog",
		},
	)
)
