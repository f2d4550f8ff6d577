package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"entity-mcp/internal/common/errors"
	"entity-mcp/internal/common/metrics"
	"entity-mcp/internal/resources"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
)

// defaultToolTimeout applies when the registry entry carries no timeout.
const defaultToolTimeout = 10 * time.Second

func (s *Server) toolHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, isError := s.Call(ctx, name, request.GetArguments())
		if isError {
			return mcp.NewToolResultError(text), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

// Call runs a tool and renders its result. Every failure, panics included,
// comes back as "Error: <message>" with isError set; nothing escapes to the
// transport.
func (s *Server) Call(ctx context.Context, name string, args map[string]interface{}) (text string, isError bool) {
	invocationID := uuid.NewString()
	log := s.logger.WithFields(map[string]interface{}{
		"invocationId": invocationID,
		"tool":         name,
	})

	start := time.Now()
	ctx, endSpan := s.obs.StartSpan(ctx, "tool."+name, attribute.String("invocationId", invocationID))

	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
			log.Error("Tool panicked", map[string]interface{}{
				"panic": fmt.Sprint(r),
				"stack": string(debug.Stack()),
			})
		}

		outcome := metrics.OutcomeSuccess
		switch {
		case err != nil:
			outcome = metrics.OutcomeError
			text, isError = errorText(err), true
		case text == noCouponsText:
			outcome = metrics.OutcomeNoMatch
		}

		elapsed := time.Since(start)
		endSpan(err)
		s.obs.Record(ctx, name, outcome, elapsed)
		metrics.ToolCallsTotal.WithLabelValues(name, outcome).Inc()
		metrics.ToolCallDuration.WithLabelValues(name).Observe(elapsed.Seconds())

		fields := map[string]interface{}{
			"outcome":  outcome,
			"duration": elapsed.String(),
		}
		if err != nil {
			fields["error"] = err
			log.Warn("Tool call failed", fields)
			return
		}
		log.Info("Tool call completed", fields)
	}()

	t, ok := s.tools[name]
	if !ok {
		err = errors.NewUnknownToolError(name)
		return "", true
	}

	if args == nil {
		args = map[string]interface{}{}
	}

	result, verr := t.schema.Validate(args)
	if verr != nil {
		err = errors.NewInvalidArgumentsError(verr.Error())
		return "", true
	}
	if err = result.Err(); err != nil {
		return "", true
	}

	ctx, cancel := context.WithTimeout(ctx, t.def.TimeoutDuration(defaultToolTimeout))
	defer cancel()

	text, err = t.run(s, ctx, args)
	return text, err != nil
}

func errorText(err error) string {
	return "Error: " + err.Error()
}

func (s *Server) resourceHandler(doc resources.Document) server.ResourceHandlerFunc {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		text, err := s.ReadResource(request.Params.URI)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      doc.URI,
				MIMEType: doc.MIMEType,
				Text:     text,
			},
		}, nil
	}
}

// ReadResource returns the pretty-printed document behind uri.
func (s *Server) ReadResource(uri string) (string, error) {
	if s.resources == nil {
		return "", errors.NewUnknownResourceError(uri)
	}

	text, err := s.resources.Read(uri)
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
		s.logger.Warn("Resource read failed", map[string]interface{}{
			"uri":   uri,
			"error": err,
		})
	}
	metrics.ResourceReadsTotal.WithLabelValues(uri, outcome).Inc()
	return text, err
}

// decodeArgs maps already-validated tool arguments onto dst.
func decodeArgs(args map[string]interface{}, dst interface{}) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return errors.NewInvalidArgumentsError(err.Error())
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.NewInvalidArgumentsError(err.Error())
	}
	return nil
}

// encodeResult renders v as JSON indented by two spaces, leaving non-ASCII
// and HTML characters unescaped.
func encodeResult(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
