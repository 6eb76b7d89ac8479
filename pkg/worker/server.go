// Package worker serves leaf functions to a process runner over the wire protocol.
//
// A worker binary registers its functions on an in-process runner and hands it to
// ServeFDs:
//
//	func main() {
//		leaves := inproc.New().Register("Member_name", nil, memberName)
//		if err := worker.NewServer(leaves).ServeFDs(context.Background()); err != nil {
//			log.Fatal(err)
//		}
//	}
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/decomp/pkg/ports"
	"github.com/aretw0/decomp/pkg/protocol"
)

// Object is how a subject object reaches a worker function: an opaque reference that can
// be returned to the host, which maps it back to the original object.
type Object = protocol.ObjectRef

// Server answers protocol requests using a Runner.
type Server struct {
	runner ports.Runner
	logger *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server's logger. Workers must not write to stdout in a way the
// host relies on, so the default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a server dispatching to runner.
func NewServer(runner ports.Runner, opts ...Option) *Server {
	s := &Server{
		runner: runner,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServeFDs serves on the file descriptors a process runner sets up for its worker.
func (s *Server) ServeFDs(ctx context.Context) error {
	in := os.NewFile(3, "decomp-requests")
	out := os.NewFile(4, "decomp-responses")
	if in == nil || out == nil {
		return errors.New("worker channels are not open; was this process started by a process runner?")
	}
	defer in.Close()
	defer out.Close()
	return s.Serve(ctx, in, out)
}

// Serve answers requests read from r until an exit request or the end of the stream.
// The runner is finalized when Serve returns.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	defer s.runner.Finalize()

	for {
		var req protocol.Request
		if err := protocol.ReadMessage(r, &req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read request: %w", err)
		}
		if req.Op == protocol.OpExit {
			s.logger.Debug("exit requested")
			return nil
		}

		resp, err := s.handle(ctx, req)
		if err != nil {
			return err
		}
		if err := protocol.WriteMessage(w, resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}
}

// handle answers one request. Function failures become exception envelopes;
// anything else ends the session.
func (s *Server) handle(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	switch req.Op {
	case protocol.OpHasFunction:
		found, err := s.runner.HasFunction(ctx, req.Name)
		if err != nil {
			return protocol.Response{}, err
		}
		return protocol.Response{Found: found}, nil

	case protocol.OpCallFunction:
		s.logger.Debug("call", "function", req.Name, "args", len(req.Args))
		args, err := protocol.DecodeValue(req.Args, func(r protocol.ObjectRef) (any, error) { return r, nil })
		if err != nil {
			return protocol.Response{}, err
		}
		list, _ := args.([]any)
		out, err := s.runner.CallFunction(ctx, req.Name, list)
		if err != nil {
			return protocol.Response{Exception: exception(err)}, nil
		}
		return protocol.Response{Result: protocol.EncodeValue(out, objectRef)}, nil

	case protocol.OpValidateFunction:
		errs, err := s.runner.ValidateFunctions(ctx, req.Criteria)
		if err != nil {
			return protocol.Response{Exception: exception(err)}, nil
		}
		resp := protocol.Response{Errors: make([]ports.ValidationError, 0, len(errs))}
		for _, e := range errs {
			var ve *ports.ValidationError
			if errors.As(e, &ve) {
				resp.Errors = append(resp.Errors, *ve)
				continue
			}
			resp.Errors = append(resp.Errors, ports.ValidationError{Reason: e.Error()})
		}
		return resp, nil

	default:
		return protocol.Response{}, fmt.Errorf("unknown op %q", req.Op)
	}
}

func exception(err error) *protocol.Exception {
	var fe *ports.FunctionError
	if errors.As(err, &fe) {
		return &protocol.Exception{Message: fe.Message, Stack: fe.Stack}
	}
	return &protocol.Exception{Message: err.Error()}
}

func objectRef(v any) (protocol.ObjectRef, bool) {
	switch r := v.(type) {
	case protocol.ObjectRef:
		return r, true
	case *protocol.ObjectRef:
		if r != nil {
			return *r, true
		}
	}
	return protocol.ObjectRef{}, false
}
