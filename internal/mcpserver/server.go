// Package mcpserver exposes the coupon and ticket operations as MCP tools and
// the sample documents as MCP resources.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"entity-mcp/internal/catalog"
	"entity-mcp/internal/common/logger"
	"entity-mcp/internal/common/observability"
	"entity-mcp/internal/common/validation"
	"entity-mcp/internal/membership"
	"entity-mcp/internal/notify"
	"entity-mcp/internal/resources"
	"entity-mcp/internal/support"
	"entity-mcp/pkg/registry"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	ServerName    = "entity-extraction-mcp"
	ServerVersion = "1.0.0"

	ToolRecommendCoupons = "recommend_coupons"
	ToolIssueTicket      = "issue_ticket"
)

const instructions = `Extract places, times and activities from a membership conversation and call recommend_coupons with them. ` +
	`For a delivery complaint call issue_ticket with the order number, customer name and product. ` +
	`Pass the customer decision "considering cancellation" verbatim.`

type Options struct {
	Catalog       *catalog.Catalog
	Coupons       *membership.Synthesizer
	Tickets       *support.Synthesizer
	Resources     *resources.Store
	Registry      *registry.ToolRegistry
	Notifier      *notify.Notifier
	Observability *observability.Observability
	Logger        logger.Logger
}

type Server struct {
	catalog   *catalog.Catalog
	coupons   *membership.Synthesizer
	tickets   *support.Synthesizer
	resources *resources.Store
	notifier  *notify.Notifier
	obs       *observability.Observability
	logger    logger.Logger

	tools map[string]*tool
	order []string
}

type toolFunc func(s *Server, ctx context.Context, args map[string]interface{}) (string, error)

type tool struct {
	def       registry.Tool
	rawSchema json.RawMessage
	schema    *validation.Schema
	run       toolFunc
}

var implementations = map[string]toolFunc{
	ToolRecommendCoupons: (*Server).recommendCoupons,
	ToolIssueTicket:      (*Server).issueTicket,
}

// New binds every implemented tool to its registry entry. Both tools must be
// present in the registry.
func New(opts Options) (*Server, error) {
	if opts.Catalog == nil || opts.Coupons == nil || opts.Tickets == nil || opts.Registry == nil {
		return nil, fmt.Errorf("catalog, coupon synthesizer, ticket synthesizer and registry are required")
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	s := &Server{
		catalog:   opts.Catalog,
		coupons:   opts.Coupons,
		tickets:   opts.Tickets,
		resources: opts.Resources,
		notifier:  opts.Notifier,
		obs:       opts.Observability,
		logger:    log.WithFields(map[string]interface{}{"component": "mcp-server"}),
		tools:     make(map[string]*tool, len(implementations)),
	}

	for _, name := range []string{ToolRecommendCoupons, ToolIssueTicket} {
		def, ok := opts.Registry.Find(name)
		if !ok {
			return nil, fmt.Errorf("tool %s is not in the registry", name)
		}

		raw, err := def.RawInputSchema()
		if err != nil {
			return nil, fmt.Errorf("tool %s: input schema: %w", name, err)
		}
		schema, err := validation.CompileJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("tool %s: compile input schema: %w", name, err)
		}

		s.tools[name] = &tool{def: *def, rawSchema: raw, schema: schema, run: implementations[name]}
		s.order = append(s.order, name)
	}

	return s, nil
}

// MCPServer builds the protocol server with all tools and resources registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	for _, name := range s.order {
		t := s.tools[name]
		srv.AddTool(mcp.NewToolWithRawSchema(name, t.def.Description, t.rawSchema), s.toolHandler(name))
	}

	if s.resources == nil {
		return srv
	}
	for _, doc := range s.resources.List() {
		srv.AddResource(
			mcp.NewResource(doc.URI, doc.Name,
				mcp.WithResourceDescription(doc.Description),
				mcp.WithMIMEType(doc.MIMEType),
			),
			s.resourceHandler(doc),
		)
	}

	return srv
}

// ToolNames lists the registered tools in registration order.
func (s *Server) ToolNames() []string {
	return append([]string(nil), s.order...)
}
