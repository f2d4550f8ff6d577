// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"entity-mcp/internal/catalog"
	"entity-mcp/internal/common/camunda"
	"entity-mcp/internal/common/config"
	"entity-mcp/internal/common/logger"
	"entity-mcp/internal/common/validation"
	"entity-mcp/internal/notify"
	"entity-mcp/pkg/registry"

	rc "entity-mcp/internal/workers/membership/recommend-coupons"
	it "entity-mcp/internal/workers/support/issue-ticket"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	zapLog := logger.New("info", "console", logger.OutputStderr)
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}
	if err := config.ValidateForWorkers(cfg); err != nil {
		zapLog.Fatal("invalid worker config", zap.Error(err))
	}

	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{"service": "worker-manager"})

	log.Info("Starting worker manager...", nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Open(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("catalog load failed", zap.Error(err))
	}

	reg, err := registry.LoadRegistry(cfg.RegistryPath)
	if err != nil {
		zapLog.Fatal("tool registry load failed", zap.Error(err))
	}

	notifier, err := notify.FromConfig(ctx, cfg.Notifications, log)
	if err != nil {
		zapLog.Fatal("notification setup failed", zap.Error(err))
	}

	client, err := camunda.Connect(ctx, camunda.ConfigFrom(cfg.Camunda), log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	log.Info("Zeebe client connected successfully", nil)

	// --- Register workers ---
	var workers []*camunda.Worker

	couponsSchema, err := inputSchema(reg, rc.TaskType)
	if err != nil {
		zapLog.Fatal("recommend-coupons schema", zap.Error(err))
	}
	couponsConfig := rc.LoadConfig()
	couponsConfig.IncludeCalendarEvent = cfg.Coupons.IncludeCalendarEvent
	if wcfg := config.GetWorkerConfig(cfg, rc.TaskType); wcfg.Timeout > 0 {
		couponsConfig.Timeout = config.GetDuration(wcfg.Timeout)
	}
	workers = append(workers, camunda.StartWorker(
		client.Zeebe(), rc.TaskType, config.GetWorkerConfig(cfg, rc.TaskType),
		rc.NewHandler(couponsConfig, cat, couponsSchema, log), log,
	))

	ticketSchema, err := inputSchema(reg, it.TaskType)
	if err != nil {
		zapLog.Fatal("issue-ticket schema", zap.Error(err))
	}
	ticketConfig := it.LoadConfig()
	if cfg.Tickets.IDPrefix != "" {
		ticketConfig.IDPrefix = cfg.Tickets.IDPrefix
	}
	if cfg.Tickets.CancellationSentinel != "" {
		ticketConfig.CancellationSentinel = cfg.Tickets.CancellationSentinel
	}
	if wcfg := config.GetWorkerConfig(cfg, it.TaskType); wcfg.Timeout > 0 {
		ticketConfig.Timeout = config.GetDuration(wcfg.Timeout)
	}
	workers = append(workers, camunda.StartWorker(
		client.Zeebe(), it.TaskType, config.GetWorkerConfig(cfg, it.TaskType),
		it.NewHandler(ticketConfig, notifier, ticketSchema, log), log,
	))

	log.Info("workers registered", map[string]interface{}{"partners": cat.Len()})

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr:              cfg.Metrics.Address,
		Handler:           newMux(client),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Health/Metrics server listening", map[string]interface{}{"address": cfg.Metrics.Address})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Health/Metrics server failed", map[string]interface{}{"error": err})
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("Shutdown signal received, stopping workers...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Error stopping health server", map[string]interface{}{"error": err})
	}
	if err := client.Close(); err != nil {
		log.Error("Error closing Zeebe client", map[string]interface{}{"error": err})
	}

	log.Info("Worker manager stopped", nil)
}

func inputSchema(reg *registry.ToolRegistry, taskType string) (*validation.Schema, error) {
	tool, ok := reg.FindByTaskType(taskType)
	if !ok {
		return nil, fmt.Errorf("no registry entry for task type %s", taskType)
	}
	raw, err := tool.RawInputSchema()
	if err != nil {
		return nil, err
	}
	return validation.CompileJSON(raw)
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

func newMux(zeebe healthChecker) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := zeebe.HealthCheck(ctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "not ready")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
