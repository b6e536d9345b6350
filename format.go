package internals

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/TechXTT/internals/pkg/engine"
	"github.com/TechXTT/internals/pkg/logger"
)

var formatDebug = logger.Debug("prisma:format")

type FormatSchemaOptions struct {
	Schema     string
	SchemaPath string
	Runner     engine.Runner
}

// Span is a byte range in the schema.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// LintDiagnostic is one entry of the formatter's lint output.
type LintDiagnostic struct {
	Span
	Text      string `json:"text"`
	IsWarning bool   `json:"is_warning"`
}

// FormatSchema returns the canonically formatted schema. Lint warnings found
// afterwards are logged and never fail the call.
func FormatSchema(ctx context.Context, opts FormatSchemaOptions) (string, error) {
	schema, err := schemaBytes(opts.Schema, opts.SchemaPath)
	if err != nil {
		return "", err
	}
	res, err := run(ctx, opts.Runner, engine.Request{
		Binary: engine.Formatter,
		Args:   []string{"format"},
		Stdin:  schema,
	})
	if err != nil {
		return "", errors.Wrap(err, "format schema")
	}
	formatted := string(res.Stdout)

	diags, err := LintSchema(ctx, LintSchemaOptions{Schema: formatted, Runner: opts.Runner})
	if err != nil {
		formatDebug.Printf("lint failed: %v", err)
		return formatted, nil
	}
	for _, d := range diags {
		if d.IsWarning {
			logger.Warn("Prisma schema warning:\n- " + d.Text)
		}
	}
	return formatted, nil
}

type LintSchemaOptions struct {
	Schema     string
	SchemaPath string
	Runner     engine.Runner
}

// LintSchema returns the formatter's diagnostics for a schema.
func LintSchema(ctx context.Context, opts LintSchemaOptions) ([]LintDiagnostic, error) {
	schema, err := schemaBytes(opts.Schema, opts.SchemaPath)
	if err != nil {
		return nil, err
	}
	res, err := run(ctx, opts.Runner, engine.Request{
		Binary: engine.Formatter,
		Args:   []string{"lint"},
		Stdin:  schema,
	})
	if err != nil {
		return nil, err
	}
	out := bytes.TrimSpace(res.Stdout)
	if len(out) == 0 {
		return nil, nil
	}
	var diags []LintDiagnostic
	if err := json.Unmarshal(out, &diags); err != nil {
		return nil, errors.Wrapf(err, "unable to parse lint output %q", truncate(out))
	}
	return diags, nil
}
