package generator

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/TechXTT/internals/pkg/config"
	"github.com/TechXTT/internals/pkg/logger"
)

var debug = logger.Debug("prisma:GeneratorProcess")

// ErrProcessExited is returned for calls made after the generator exited.
var ErrProcessExited = errors.New("generator process exited")

const (
	jsonRPCVersion = "2.0"
	maxLogLines    = 50
	maxLineSize    = 64 * 1024 * 1024
)

// DefaultStopTimeout is how long Stop waits for a generator to exit on its
// own once stdin is closed.
const DefaultStopTimeout = 500 * time.Millisecond

var exited = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      int         `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int            `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// RPCError is an error response sent by the generator.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    *struct {
		Stack string `json:"stack"`
	} `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if e.Data != nil && e.Data.Stack != "" {
		return fmt.Sprintf("%s\n%s", e.Message, e.Data.Stack)
	}
	return e.Message
}

// Process is a generator running as a child process. Requests are written to
// its stdin as JSON lines, responses are read from its stderr. Other stderr
// lines are the generator's log output.
type Process struct {
	Path string
	Args []string
	Dir  string
	Env  []string
	// StopTimeout overrides DefaultStopTimeout.
	StopTimeout time.Duration

	cmd   *exec.Cmd
	stdin io.WriteCloser

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  int
	pending map[int]chan rpcResponse
	logs    []string
	exitErr error

	done     chan struct{}
	stopOnce sync.Once
}

func NewProcess(path string, args ...string) *Process {
	return &Process{Path: path, Args: args}
}

// Init starts the child process.
func (p *Process) Init(ctx context.Context) error {
	if p.cmd != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd := exec.Command(p.Path, p.Args...) // #nosec
	cmd.Dir = p.Dir
	cmd.Env = append(append(os.Environ(), "PRISMA_GENERATOR_INVOCATION=true"), p.Env...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "failed to start generator %s", p.Path)
	}
	debug.Printf("started %s %s (pid %d)", p.Path, strings.Join(p.Args, " "), cmd.Process.Pid)

	p.cmd = cmd
	p.stdin = stdin
	p.pending = map[int]chan rpcResponse{}
	p.done = make(chan struct{})

	var readers sync.WaitGroup
	readers.Add(2)
	go func() {
		defer readers.Done()
		p.readResponses(stderr)
	}()
	go func() {
		defer readers.Done()
		p.readLogs(stdout)
	}()
	go func() {
		readers.Wait()
		p.finish(cmd.Wait())
	}()
	return nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return s
}

func (p *Process) readResponses(r io.Reader) {
	s := newScanner(r)
	for s.Scan() {
		line := bytes.TrimSpace(s.Bytes())
		if len(line) > 0 && line[0] == '{' {
			var resp rpcResponse
			if err := json.Unmarshal(line, &resp); err == nil && resp.ID != nil && resp.JSONRPC == jsonRPCVersion {
				p.dispatch(resp)
				continue
			}
		}
		p.appendLog(string(line))
	}
	if err := s.Err(); err != nil {
		debug.Printf("reading %s stderr: %v", p.Path, err)
	}
}

func (p *Process) readLogs(r io.Reader) {
	s := newScanner(r)
	for s.Scan() {
		p.appendLog(s.Text())
	}
}

func (p *Process) appendLog(line string) {
	if line == "" {
		return
	}
	debug.Printf("%s: %s", p.Path, line)
	p.mu.Lock()
	p.logs = append(p.logs, line)
	if len(p.logs) > maxLogLines {
		p.logs = p.logs[len(p.logs)-maxLogLines:]
	}
	p.mu.Unlock()
}

func (p *Process) dispatch(resp rpcResponse) {
	p.mu.Lock()
	ch, ok := p.pending[*resp.ID]
	delete(p.pending, *resp.ID)
	p.mu.Unlock()
	if !ok {
		debug.Printf("dropping response for unknown request %d", *resp.ID)
		return
	}
	ch <- resp
}

func (p *Process) finish(waitErr error) {
	p.mu.Lock()
	p.exitErr = p.exitError(waitErr)
	p.mu.Unlock()
	close(p.done)
}

// exitError must be called with p.mu held.
func (p *Process) exitError(waitErr error) error {
	msg := p.Path
	if waitErr != nil {
		msg = fmt.Sprintf("%s: %v", p.Path, waitErr)
	}
	if len(p.logs) > 0 {
		msg += "\n" + strings.Join(p.logs, "\n")
	}
	return errors.Wrap(ErrProcessExited, msg)
}

// Logs returns the most recent log lines of the generator.
func (p *Process) Logs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.logs...)
}

func (p *Process) call(ctx context.Context, method string, params interface{}, result interface{}) error {
	if p.cmd == nil {
		return errors.Errorf("generator %s is not initialized", p.Path)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	select {
	case <-p.done:
		err := p.exitErr
		p.mu.Unlock()
		return err
	default:
	}
	id := p.nextID
	p.nextID++
	ch := make(chan rpcResponse, 1)
	p.pending[id] = ch
	p.mu.Unlock()

	forget := func() {
		p.mu.Lock()
		delete(p.pending, id)
		p.mu.Unlock()
	}

	line, err := json.Marshal(rpcRequest{JSONRPC: jsonRPCVersion, Method: method, Params: params, ID: id})
	if err != nil {
		forget()
		return errors.Wrapf(err, "failed to encode %s request", method)
	}
	p.writeMu.Lock()
	_, err = p.stdin.Write(append(line, '\n'))
	p.writeMu.Unlock()
	if err != nil {
		forget()
		return errors.Wrapf(err, "failed to send %s to generator %s", method, p.Path)
	}

	select {
	case resp := <-ch:
		return decodeResult(method, resp, result)
	case <-ctx.Done():
		forget()
		return ctx.Err()
	case <-p.done:
		// the response may have landed right before exit
		select {
		case resp := <-ch:
			return decodeResult(method, resp, result)
		default:
		}
		forget()
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.exitErr
	}
}

func decodeResult(method string, resp rpcResponse, result interface{}) error {
	if resp.Error != nil {
		return resp.Error
	}
	if result == nil || len(resp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return errors.Wrapf(err, "failed to decode %s result", method)
	}
	return nil
}

// GetManifest asks the generator for its manifest. A generator without a
// manifest returns nil.
func (p *Process) GetManifest(ctx context.Context, cfg config.GeneratorConfig) (*Manifest, error) {
	var res struct {
		Manifest *Manifest `json:"manifest"`
	}
	if err := p.call(ctx, "getManifest", cfg, &res); err != nil {
		return nil, errors.Wrapf(err, "generator %s getManifest", p.Path)
	}
	return res.Manifest, nil
}

// Generate runs the generator with opts.
func (p *Process) Generate(ctx context.Context, opts Options) error {
	if err := p.call(ctx, "generate", opts, nil); err != nil {
		return errors.Wrapf(err, "generator %s generate", p.Path)
	}
	return nil
}

// Stop closes stdin, gives the child StopTimeout to exit and kills it after
// that. It is safe to call more than once.
func (p *Process) Stop() error {
	if p.cmd == nil {
		return nil
	}
	var err error
	p.stopOnce.Do(func() {
		_ = p.stdin.Close()
		timeout := p.StopTimeout
		if timeout <= 0 {
			timeout = DefaultStopTimeout
		}
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-p.done:
			return
		case <-timer.C:
		}
		debug.Printf("%s did not exit within %s, killing it", p.Path, timeout)
		if killErr := p.cmd.Process.Kill(); killErr != nil && !errors.Is(killErr, os.ErrProcessDone) {
			err = errors.Wrapf(killErr, "failed to stop generator %s", p.Path)
		}
		<-p.done
	})
	return err
}

// Done is closed once the child has exited. Before Init it is already closed.
func (p *Process) Done() <-chan struct{} {
	if p.done == nil {
		return exited
	}
	return p.done
}
