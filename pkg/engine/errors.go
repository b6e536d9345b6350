package engine

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Error is a failed engine invocation.
type Error struct {
	Binary    Binary
	Args      []string
	ExitCode  int
	Code      string
	Message   string
	IsPanic   bool
	Backtrace string
	Stderr    string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = strings.TrimSpace(e.Stderr)
	}
	if msg == "" {
		msg = fmt.Sprintf("exited with code %d", e.ExitCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: [%s] %s", e.Binary, e.Code, msg)
	}
	if e.IsPanic {
		return fmt.Sprintf("%s panicked: %s", e.Binary, msg)
	}
	return fmt.Sprintf("%s: %s", e.Binary, msg)
}

// IsUserError reports whether the engine rejected its input, as opposed to
// crashing or failing to run.
func (e *Error) IsUserError() bool {
	return e.Code != "" && !e.IsPanic
}

// Payload is the JSON error object the engines print.
type Payload struct {
	IsPanic   bool    `json:"is_panic"`
	Message   string  `json:"message"`
	ErrorCode string  `json:"error_code"`
	Backtrace *string `json:"backtrace"`
}

// ParseError finds the engine error object in output. The whole output is
// tried first, then every line; the last object with a message wins.
func ParseError(output []byte) (*Payload, bool) {
	trimmed := bytes.TrimSpace(output)
	if len(trimmed) == 0 {
		return nil, false
	}
	if p, ok := decodePayload(trimmed); ok {
		return p, true
	}

	var found *Payload
	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		if p, ok := decodePayload(line); ok {
			found = p
		}
	}
	return found, found != nil
}

func decodePayload(data []byte) (*Payload, bool) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil || p.Message == "" {
		return nil, false
	}
	return &p, true
}

func newError(req Request, res *Result) *Error {
	e := &Error{
		Binary:   req.Binary,
		Args:     req.Args,
		ExitCode: res.ExitCode,
		Stderr:   string(res.Stderr),
	}
	p, ok := ParseError(res.Stderr)
	if !ok {
		p, ok = ParseError(res.Stdout)
	}
	if ok {
		e.Message = p.Message
		e.Code = p.ErrorCode
		e.IsPanic = p.IsPanic
		if p.Backtrace != nil {
			e.Backtrace = *p.Backtrace
		}
	}
	return e
}
