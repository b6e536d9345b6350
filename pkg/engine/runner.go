package engine

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/TechXTT/internals/pkg/logger"
)

var debug = logger.Debug("prisma:engine")

// waitDelay bounds how long Wait blocks on output pipes after the process
// was killed.
const waitDelay = 2 * time.Second

// Request describes one engine invocation.
type Request struct {
	Binary Binary
	Args   []string
	Stdin  []byte
	// Env is appended to the parent environment.
	Env []string
	Dir string
}

// Result is the collected output of a finished invocation.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes engine requests.
type Runner interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

// ExecRunner runs the engines as child processes.
type ExecRunner struct {
	Resolver *Resolver
}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{Resolver: NewResolver()}
}

// Run starts the binary and waits for it. A non-zero exit is returned as
// *Error together with the result.
func (r *ExecRunner) Run(ctx context.Context, req Request) (*Result, error) {
	resolver := r.Resolver
	if resolver == nil {
		resolver = NewResolver()
	}
	path, err := resolver.Resolve(ctx, req.Binary)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, path, req.Args...) // #nosec
	cmd.Env = append(os.Environ(), req.Env...)
	cmd.Dir = req.Dir
	if req.Stdin != nil {
		cmd.Stdin = bytes.NewReader(req.Stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	debug.Printf("%s %s", path, strings.Join(req.Args, " "))
	err = cmd.Run()
	res := &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, errors.Wrapf(ctxErr, "%s interrupted", req.Binary)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, newError(req, res)
	}
	return res, errors.Wrapf(err, "failed to run %s", path)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, req Request) (*Result, error)

func (f RunnerFunc) Run(ctx context.Context, req Request) (*Result, error) {
	return f(ctx, req)
}
