package env

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ErrEnvNotFound is returned when an env("...") reference points at an
// unset variable.
var ErrEnvNotFound = errors.New("environment variable not found")

// Value is a schema value that is either a literal or an env("NAME") reference.
type Value struct {
	FromEnvVar *string `json:"fromEnvVar"`
	Value      *string `json:"value"`
}

// BinaryTargetsValue is one entry of a generator's binaryTargets list.
type BinaryTargetsValue struct {
	FromEnvVar *string `json:"fromEnvVar"`
	Value      string  `json:"value"`
	Native     bool    `json:"native,omitempty"`
}

func Literal(v string) Value {
	return Value{Value: &v}
}

func FromEnv(name string) Value {
	return Value{FromEnvVar: &name}
}

// ParseValue resolves v: the referenced environment variable when FromEnvVar
// is set, otherwise the literal value.
func ParseValue(v Value) (string, error) {
	if v.FromEnvVar != nil && *v.FromEnvVar != "" {
		name := *v.FromEnvVar
		val, ok := os.LookupEnv(name)
		if !ok || val == "" {
			return "", errors.Wrapf(ErrEnvNotFound, "env(%q) is not set", name)
		}
		return val, nil
	}
	if v.Value != nil {
		return *v.Value, nil
	}
	return "", errors.New("value has neither an env var reference nor a literal")
}

// NativeFunc returns the binary target of the running machine.
type NativeFunc func(ctx context.Context) (string, error)

// ParseBinaryTargets resolves the binaryTargets list of a generator. An env
// reference may hold a JSON array or a comma separated list. "native" is
// replaced with the result of native.
func ParseBinaryTargets(ctx context.Context, values []BinaryTargetsValue, native NativeFunc) ([]string, error) {
	var raw []string
	for _, v := range values {
		if v.FromEnvVar != nil && *v.FromEnvVar != "" {
			name := *v.FromEnvVar
			val, ok := os.LookupEnv(name)
			if !ok || val == "" {
				return nil, errors.Wrapf(ErrEnvNotFound, "env(%q) is not set", name)
			}
			raw = append(raw, splitTargets(val)...)
			continue
		}
		if v.Native {
			raw = append(raw, "native")
			continue
		}
		raw = append(raw, v.Value)
	}

	seen := map[string]bool{}
	var targets []string
	for _, t := range raw {
		if t == "native" {
			if native == nil {
				return nil, errors.New("binary target native requested but no platform resolver given")
			}
			p, err := native(ctx)
			if err != nil {
				return nil, errors.Wrap(err, "failed to resolve native binary target")
			}
			t = p
		}
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		targets = append(targets, t)
	}
	return targets, nil
}

func splitTargets(val string) []string {
	val = strings.TrimSpace(val)
	if strings.HasPrefix(val, "[") {
		var list []string
		if err := json.Unmarshal([]byte(val), &list); err == nil {
			return list
		}
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"`)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
