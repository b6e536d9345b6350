package internals

import (
	"context"

	"github.com/TechXTT/internals/pkg/engine"
)

type ValidateOptions struct {
	Datamodel     string
	DatamodelPath string
	Runner        engine.Runner
}

// Validate checks a schema with the formatter engine. A rejected schema is
// reported as the *engine.Error the engine produced.
func Validate(ctx context.Context, opts ValidateOptions) error {
	schema, err := schemaBytes(opts.Datamodel, opts.DatamodelPath)
	if err != nil {
		return err
	}
	_, err = run(ctx, opts.Runner, engine.Request{
		Binary: engine.Formatter,
		Args:   []string{"validate"},
		Stdin:  schema,
	})
	return err
}
