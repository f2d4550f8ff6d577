// cmd/mcp-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"entity-mcp/internal/catalog"
	"entity-mcp/internal/common/config"
	"entity-mcp/internal/common/logger"
	"entity-mcp/internal/common/observability"
	"entity-mcp/internal/mcpserver"
	"entity-mcp/internal/membership"
	"entity-mcp/internal/notify"
	"entity-mcp/internal/resources"
	"entity-mcp/internal/support"
	"entity-mcp/pkg/registry"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "mcp-server",
		Short:         "Serves recommend_coupons and issue_ticket over MCP stdio",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "config file (default: configs/config.yaml with environment overlay)")

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "mcp-server: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	// stdout carries the protocol
	output := cfg.Logging.Output
	if output == logger.OutputStdout {
		output = logger.OutputStderr
	}
	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{"service": "mcp-server"})

	cat, err := catalog.Open(ctx, cfg, log)
	if err != nil {
		return err
	}

	reg, err := registry.LoadRegistry(cfg.RegistryPath)
	if err != nil {
		return fmt.Errorf("tool registry load failed: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return err
	}

	notifier, err := notify.FromConfig(ctx, cfg.Notifications, log)
	if err != nil {
		return err
	}

	obs, err := newObservability(cfg, log)
	if err != nil {
		return err
	}
	defer obs.Shutdown()

	srv, err := mcpserver.New(mcpserver.Options{
		Catalog: cat,
		Coupons: membership.NewSynthesizer(membership.SynthesizerConfig{
			IncludeCalendarEvent: cfg.Coupons.IncludeCalendarEvent,
		}),
		Tickets: support.NewSynthesizer(support.Config{
			IDPrefix:             cfg.Tickets.IDPrefix,
			CancellationSentinel: cfg.Tickets.CancellationSentinel,
		}),
		Resources:     resources.NewStore(cfg.Resources),
		Registry:      reg,
		Notifier:      notifier,
		Observability: obs,
		Logger:        log,
	})
	if err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Address, log)
	}

	log.Info("MCP server ready", map[string]interface{}{
		"tools":    srv.ToolNames(),
		"partners": cat.Len(),
	})

	return server.ServeStdio(srv.MCPServer())
}

func newObservability(cfg *config.Config, log logger.Logger) (*observability.Observability, error) {
	var tracing *observability.Tracing
	if cfg.Tracing.Enabled {
		t, err := observability.NewJaegerTracing(cfg.App.Name, cfg.Tracing.JaegerEndpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			log.Warn("tracing disabled", map[string]interface{}{"error": err})
		} else {
			tracing = t
		}
	}
	return observability.New(cfg.App.Name, tracing)
}

func serveMetrics(addr string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info("metrics server listening", map[string]interface{}{"address": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("metrics server failed", map[string]interface{}{"error": err})
	}
}
