package internals

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/TechXTT/internals/pkg/config"
	"github.com/TechXTT/internals/pkg/engine"
	"github.com/TechXTT/internals/pkg/logger"
)

type GetConfigOptions struct {
	Datamodel     string
	DatamodelPath string
	// IgnoreEnvVarErrors lets the engine skip unresolvable env("...") values.
	IgnoreEnvVarErrors bool
	Runner             engine.Runner
}

// GetConfig returns the datasources and generators declared in a schema.
func GetConfig(ctx context.Context, opts GetConfigOptions) (*config.MetaFormat, error) {
	envs, cleanup, err := schemaEnv(opts.Datamodel, opts.DatamodelPath)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	args := []string{"cli", "get-config"}
	if opts.IgnoreEnvVarErrors {
		args = append(args, "--ignoreEnvVarErrors")
	}

	res, err := run(ctx, opts.Runner, engine.Request{Binary: engine.QueryEngine, Args: args, Env: envs})
	if err != nil {
		return nil, errors.Wrap(err, "get config")
	}

	out := bytes.TrimSpace(res.Stdout)
	if len(out) == 0 {
		return nil, errors.New("get config: query engine returned no output")
	}
	var meta config.MetaFormat
	if err := json.Unmarshal(out, &meta); err != nil {
		return nil, errors.Wrapf(err, "get config: unable to parse engine output %q", truncate(out))
	}
	for _, w := range meta.Warnings {
		logger.WarnOnce("get-config:"+w, w)
	}
	return &meta, nil
}

func truncate(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
