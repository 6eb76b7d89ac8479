// Package mcp exposes transformations as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/decomp"
	"github.com/aretw0/decomp/internal/presentation/tui"
	"github.com/aretw0/decomp/pkg/adapters/yamlgraph"
	"github.com/aretw0/decomp/pkg/diag"
	"github.com/aretw0/decomp/pkg/model"
	"github.com/aretw0/decomp/pkg/ports"
	"github.com/aretw0/decomp/pkg/rules"
	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RulesURI is the resource describing the rule set the server was started with.
const RulesURI = "decomp://rules"

// TransformArgs are the arguments of the transform tool.
type TransformArgs struct {
	Rules    string `json:"rules"`
	Subject  string `json:"subject"`
	Validate bool   `json:"validate,omitempty"`
}

// RulesArgs are the arguments of the tools that only need a rule set.
type RulesArgs struct {
	Rules string `json:"rules"`
}

// TransformResult mirrors the HTTP adapter's responses in a single structure.
type TransformResult struct {
	OK      bool     `json:"ok" jsonschema_description:"Whether the transformation completed"`
	Result  any      `json:"result,omitempty" jsonschema_description:"The value computed by the entry decomposition"`
	Error   string   `json:"error,omitempty" jsonschema_description:"Why the transformation failed"`
	Details []string `json:"details,omitempty" jsonschema_description:"One entry per function that does not match the rules"`
	Trace   []string `json:"trace,omitempty" jsonschema_description:"Evaluation stack at the failure, outermost first"`
}

// ValidateResult lists the functions that do not match a rule set.
type ValidateResult struct {
	OK       bool     `json:"ok" jsonschema_description:"Whether every function matches"`
	Problems []string `json:"problems,omitempty" jsonschema_description:"One entry per mismatch"`
}

// Engine defines the part of decomp.Engine the server needs.
type Engine interface {
	Transform(ctx context.Context, rs *rules.RuleSet, root model.ObjectModel) (any, error)
	Validate(ctx context.Context, rs *rules.RuleSet) error
}

var _ Engine = (*decomp.Engine)(nil)

// Server wraps the engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	rules     *rules.RuleSet
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the server.
type Option func(*Server)

// WithRules publishes rs as the decomp://rules resource.
func WithRules(rs *rules.RuleSet) Option {
	return func(s *Server) {
		s.rules = rs
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer("decomp-mcp", strings.TrimSpace(decomp.Version),
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE, until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	r := chi.NewRouter()
	r.Use(corsMiddleware)
	r.Handle("/sse", sseServer.SSEHandler())
	r.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, shutting down server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: transform
	transformTool := mcp.NewTool("transform",
		mcp.WithDescription("Evaluate a decomposition rule set over a subject graph and return the entry decomposition's value."),
		mcp.WithString("rules", mcp.Required(), mcp.Description("Rule set as YAML or JSON")),
		mcp.WithString("subject", mcp.Required(), mcp.Description("Subject graph as YAML or JSON")),
		mcp.WithBoolean("validate", mcp.Description("Check the leaf functions before evaluating")),
		mcp.WithOutputSchema[TransformResult](),
	)
	s.mcpServer.AddTool(transformTool, mcp.NewStructuredToolHandler(s.handleTransform))

	// TOOL: validate
	validateTool := mcp.NewTool("validate",
		mcp.WithDescription("Check that every function a rule set needs exists with the expected parameters."),
		mcp.WithString("rules", mcp.Required(), mcp.Description("Rule set as YAML or JSON")),
		mcp.WithOutputSchema[ValidateResult](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	// TOOL: explain_rules
	s.mcpServer.AddTool(mcp.NewTool("explain_rules",
		mcp.WithDescription("Describe a rule set as markdown, including a Mermaid dependency diagram."),
		mcp.WithString("rules", mcp.Required(), mcp.Description("Rule set as YAML or JSON")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rs, err := rules.LoadYAML("rules", []byte(request.GetString("rules", "")))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(tui.Explain(rs)), nil
	})
}

func (s *Server) handleTransform(ctx context.Context, _ mcp.CallToolRequest, args TransformArgs) (TransformResult, error) {
	rs, err := rules.LoadYAML("rules", []byte(args.Rules))
	if err != nil {
		return TransformResult{Error: err.Error()}, nil
	}
	root, err := yamlgraph.Load("subject", []byte(args.Subject))
	if err != nil {
		return TransformResult{Error: err.Error()}, nil
	}

	if args.Validate {
		if res := s.validate(ctx, rs); !res.OK {
			return TransformResult{Error: "function validation failed", Details: res.Problems}, nil
		}
	}

	v, err := s.engine.Transform(ctx, rs, root)
	if err != nil {
		s.logger.Warn("MCP transform failed", "err", err)
		res := TransformResult{Error: err.Error()}
		var te *diag.TransformError
		if errors.As(err, &te) {
			res.Error = te.Err.Error()
			for _, f := range te.Frames {
				res.Trace = append(res.Trace, f.String())
			}
		}
		return res, nil
	}
	return TransformResult{OK: true, Result: model.Plain(v)}, nil
}

func (s *Server) handleValidate(ctx context.Context, _ mcp.CallToolRequest, args RulesArgs) (ValidateResult, error) {
	rs, err := rules.LoadYAML("rules", []byte(args.Rules))
	if err != nil {
		return ValidateResult{}, fmt.Errorf("invalid rules: %w", err)
	}
	return s.validate(ctx, rs), nil
}

func (s *Server) validate(ctx context.Context, rs *rules.RuleSet) ValidateResult {
	err := s.engine.Validate(ctx, rs)
	if err == nil {
		return ValidateResult{OK: true}
	}
	var agg *ports.AggregateError
	if errors.As(err, &agg) {
		res := ValidateResult{}
		for _, e := range agg.Errors {
			res.Problems = append(res.Problems, e.Error())
		}
		return res
	}
	return ValidateResult{Problems: []string{err.Error()}}
}

func (s *Server) registerResources() {
	if s.rules == nil {
		return
	}
	s.mcpServer.AddResource(mcp.NewResource(RulesURI, "Loaded rule set",
		mcp.WithResourceDescription("The rule set this server was started with, as markdown"),
		mcp.WithMIMEType("text/markdown"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      RulesURI,
				MIMEType: "text/markdown",
				Text:     tui.Explain(s.rules),
			},
		}, nil
	})
}
