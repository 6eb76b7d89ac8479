// Package process implements a ports.Runner that delegates leaf functions to a
// long-lived worker process speaking the protocol package's wire format.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/aretw0/decomp/pkg/diag"
	"github.com/aretw0/decomp/pkg/ports"
	"github.com/aretw0/decomp/pkg/protocol"
)

// File descriptors the worker reads requests from and writes responses to.
const (
	RequestFD  = 3
	ResponseFD = 4
)

// Runner owns one worker process for its whole lifetime.
// Calls are serialized: exactly one request is outstanding at a time.
type Runner struct {
	cfg         Config
	logger      *slog.Logger
	stderr      io.Writer
	exitTimeout time.Duration

	mu     sync.Mutex
	cmd    *exec.Cmd
	req    *os.File
	resp   *os.File
	codec  *codec
	closed bool
	broken error

	exited  chan struct{}
	waitErr error
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger used for worker lifecycle events.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithStderr redirects the worker's standard error (default: os.Stderr).
func WithStderr(w io.Writer) RunnerOption {
	return func(r *Runner) {
		r.stderr = w
	}
}

// WithExitTimeout bounds how long Finalize waits for the worker before killing it.
func WithExitTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.exitTimeout = d
		}
	}
}

// NewRunner checks the worker runtime version and starts the worker.
// An unsupported runtime yields *ports.ConfigurationError and no process is started.
func NewRunner(ctx context.Context, cfg Config, opts ...RunnerOption) (*Runner, error) {
	r := &Runner{
		cfg:         cfg,
		logger:      slog.New(slog.DiscardHandler),
		stderr:      os.Stderr,
		exitTimeout: 5 * time.Second,
		codec:       newCodec(),
		exited:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if cfg.Command == "" {
		return nil, &ports.ConfigurationError{Reason: "worker command is required"}
	}
	if err := checkVersion(ctx, cfg); err != nil {
		return nil, err
	}
	if err := r.start(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Runner) start() error {
	reqR, reqW, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("failed to create request pipe: %w", err)
	}
	respR, respW, err := os.Pipe()
	if err != nil {
		reqR.Close()
		reqW.Close()
		return fmt.Errorf("failed to create response pipe: %w", err)
	}

	cmd := exec.Command(r.cfg.Command, r.cfg.Args...)
	cmd.Env = r.cfg.environ()
	cmd.Dir = r.cfg.Dir
	cmd.Stderr = r.stderr
	// ExtraFiles[i] becomes fd 3+i in the child.
	cmd.ExtraFiles = []*os.File{reqR, respW}

	if err := cmd.Start(); err != nil {
		for _, f := range []*os.File{reqR, reqW, respR, respW} {
			f.Close()
		}
		return fmt.Errorf("failed to start worker %q: %w", r.cfg.Command, err)
	}
	// The child holds its own copies; closing ours lets reads see EOF when it exits.
	reqR.Close()
	respW.Close()

	r.cmd, r.req, r.resp = cmd, reqW, respR
	go func() {
		r.waitErr = cmd.Wait()
		close(r.exited)
	}()

	r.logger.Debug("worker started", "name", r.cfg.Name, "pid", cmd.Process.Pid)
	return nil
}

// exchange sends one request and reads its response. The caller holds r.mu.
func (r *Runner) exchange(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	if r.closed {
		return protocol.Response{}, ports.ErrRunnerClosed
	}
	if r.broken != nil {
		return protocol.Response{}, &ports.ProtocolError{Op: string(req.Op), Err: r.broken}
	}
	if err := ctx.Err(); err != nil {
		return protocol.Response{}, err
	}

	stop := context.AfterFunc(ctx, r.kill)
	defer stop()

	var resp protocol.Response
	err := protocol.WriteMessage(r.req, req)
	if err == nil {
		err = protocol.ReadMessage(r.resp, &resp)
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = fmt.Errorf("worker closed the channel: %w", err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (worker killed: %v)", ctxErr, err)
		}
		r.broken = err
		r.kill()
		return protocol.Response{}, &ports.ProtocolError{Op: string(req.Op), Err: err}
	}
	return resp, nil
}

func (r *Runner) kill() {
	if r.cmd != nil && r.cmd.Process != nil {
		_ = r.cmd.Process.Kill()
	}
}

// HasFunction asks the worker whether it implements name.
func (r *Runner) HasFunction(ctx context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	resp, err := r.exchange(ctx, protocol.Request{Op: protocol.OpHasFunction, Name: name})
	if err != nil {
		return false, err
	}
	return resp.Found, nil
}

// CallFunction invokes name in the worker. Subject objects in args travel as references
// and references in the result are mapped back to the same objects.
func (r *Runner) CallFunction(ctx context.Context, name string, args []any) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wire := make([]any, len(args))
	for i, a := range args {
		wire[i] = r.codec.Encode(a)
	}
	resp, err := r.exchange(ctx, protocol.Request{Op: protocol.OpCallFunction, Name: name, Args: wire})
	if err != nil {
		return nil, err
	}
	if resp.Exception != nil {
		return nil, resp.Exception.FunctionError(name, r.cfg.language())
	}

	out, err := r.codec.Decode(resp.Result)
	if err != nil {
		r.broken = err
		return nil, &ports.ProtocolError{Op: string(protocol.OpCallFunction), Err: err}
	}
	return out, nil
}

// ValidateFunctions forwards the criteria to the worker, which compares them with its
// own implementations.
func (r *Runner) ValidateFunctions(ctx context.Context, criteria []ports.FunctionCriteria) ([]error, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	resp, err := r.exchange(ctx, protocol.Request{Op: protocol.OpValidateFunction, Criteria: criteria})
	if err != nil {
		return nil, err
	}
	if resp.Exception != nil {
		return nil, resp.Exception.FunctionError("validateFunction", r.cfg.language())
	}
	var errs []error
	for _, ve := range resp.Errors {
		errs = append(errs, &ports.ValidationError{QualifiedName: ve.QualifiedName, Reason: ve.Reason})
	}
	return errs, nil
}

// ExceptionToStackFrame converts a worker exception into an external frame.
func (r *Runner) ExceptionToStackFrame(err error) diag.StackFrame {
	return ports.FrameFromError(err, "", r.cfg.language())
}

// EndSession forgets every object reference handed to the worker.
func (r *Runner) EndSession() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codec.reset()
}

// Finalize asks the worker to exit, then waits for it, killing it after the exit timeout.
// It is idempotent.
func (r *Runner) Finalize() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.codec.reset()

	if r.broken == nil {
		// best effort: the worker may already be gone
		_ = protocol.WriteMessage(r.req, protocol.Request{Op: protocol.OpExit})
	}
	r.req.Close()

	select {
	case <-r.exited:
	case <-time.After(r.exitTimeout):
		r.logger.Warn("worker did not exit, killing it", "name", r.cfg.Name)
		r.kill()
		<-r.exited
	}
	r.resp.Close()

	r.logger.Debug("worker stopped", "name", r.cfg.Name, "err", r.waitErr)
	return nil
}
