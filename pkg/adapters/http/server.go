// Package http exposes transformations over HTTP.
package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/decomp"
	"github.com/aretw0/decomp/pkg/adapters/yamlgraph"
	"github.com/aretw0/decomp/pkg/diag"
	"github.com/aretw0/decomp/pkg/model"
	"github.com/aretw0/decomp/pkg/ports"
	"github.com/aretw0/decomp/pkg/rules"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodySize bounds a transform request.
const maxBodySize = 8 << 20

//go:embed openapi.yaml
var openapiSpec []byte

// Engine defines the part of decomp.Engine the server needs.
type Engine interface {
	Transform(ctx context.Context, rs *rules.RuleSet, root model.ObjectModel) (any, error)
	Validate(ctx context.Context, rs *rules.RuleSet) error
}

var _ Engine = (*decomp.Engine)(nil)

// TransformRequest carries a rule set and a subject document, both as YAML or JSON text.
type TransformRequest struct {
	Rules    string `json:"rules"`
	Subject  string `json:"subject"`
	Validate bool   `json:"validate,omitempty"`
}

// TransformResponse is returned on success.
type TransformResponse struct {
	RequestID string `json:"request_id"`
	Result    any    `json:"result"`
}

// ErrorResponse is returned on failure. Trace holds the diagnostic stack, outermost first.
type ErrorResponse struct {
	RequestID string   `json:"request_id,omitempty"`
	Error     string   `json:"error"`
	Details   []string `json:"details,omitempty"`
	Trace     []string `json:"trace,omitempty"`
}

// Server serves transformations with one engine.
type Server struct {
	Engine   Engine
	Logger   *slog.Logger
	Gatherer prometheus.Gatherer
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithGatherer exposes g on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = g
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		Engine: engine,
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Get("/healthz", s.Health)
	r.Post("/transform", s.Transform)
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

const swaggerHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Decomp API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": decomp.Version})
}

// Transform handles POST /transform.
func (s *Server) Transform(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", id)
	logger := s.Logger.With("request_id", id)

	var body TransformRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{RequestID: id, Error: "invalid request body: " + err.Error()})
		return
	}

	rs, err := rules.LoadYAML("rules", []byte(body.Rules))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{RequestID: id, Error: err.Error()})
		return
	}
	root, err := yamlgraph.Load("subject", []byte(body.Subject))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{RequestID: id, Error: err.Error()})
		return
	}

	if body.Validate {
		if err := s.Engine.Validate(r.Context(), rs); err != nil {
			resp := ErrorResponse{RequestID: id, Error: "function validation failed"}
			var agg *ports.AggregateError
			if errors.As(err, &agg) {
				for _, e := range agg.Errors {
					resp.Details = append(resp.Details, e.Error())
				}
			} else {
				resp.Details = []string{err.Error()}
			}
			writeJSON(w, http.StatusUnprocessableEntity, resp)
			return
		}
	}

	v, err := s.Engine.Transform(r.Context(), rs, root)
	if err != nil {
		logger.Warn("transform failed", "err", err)
		resp := ErrorResponse{RequestID: id, Error: err.Error()}
		var te *diag.TransformError
		if errors.As(err, &te) {
			resp.Error = te.Err.Error()
			for _, f := range te.Frames {
				resp.Trace = append(resp.Trace, f.String())
			}
		}
		writeJSON(w, statusFor(err), resp)
		return
	}
	writeJSON(w, http.StatusOK, TransformResponse{RequestID: id, Result: model.Plain(v)})
}

func statusFor(err error) int {
	var (
		pe *ports.ProtocolError
		ce *ports.ConfigurationError
	)
	switch {
	case errors.Is(err, ports.ErrEntryNotFound), errors.Is(err, ports.ErrAmbiguousEntry), errors.Is(err, ports.ErrEmptyRuleSet):
		return http.StatusBadRequest
	case errors.As(err, &pe), errors.As(err, &ce), errors.Is(err, ports.ErrRunnerClosed):
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
