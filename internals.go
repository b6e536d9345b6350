// Package internals talks to the native Prisma engines: it turns schemas into
// DMMF documents and engine config, validates and formats them.
package internals

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/TechXTT/internals/pkg/engine"
)

// ErrNoSchema is returned when neither schema text nor a schema path is given.
var ErrNoSchema = errors.New("either a datamodel or a datamodel path must be provided")

func runnerOr(r engine.Runner) engine.Runner {
	if r != nil {
		return r
	}
	return engine.NewExecRunner()
}

// schemaEnv hands the schema to the query engine. Inline text wins over a path
// and is written to a temporary file, since a single environment string is
// capped by the kernel. The returned cleanup removes that file.
func schemaEnv(datamodel, path string) ([]string, func(), error) {
	switch {
	case datamodel != "":
		f, err := os.CreateTemp("", "prisma-*.prisma")
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to write temporary schema")
		}
		cleanup := func() { os.Remove(f.Name()) }
		_, err = f.WriteString(datamodel)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			cleanup()
			return nil, nil, errors.Wrapf(err, "failed to write temporary schema %s", f.Name())
		}
		return []string{"PRISMA_DML_PATH=" + f.Name()}, cleanup, nil
	case path != "":
		return []string{"PRISMA_DML_PATH=" + path}, func() {}, nil
	}
	return nil, nil, ErrNoSchema
}

// schemaBytes returns the schema text for engines that read stdin.
func schemaBytes(datamodel, path string) ([]byte, error) {
	switch {
	case datamodel != "":
		return []byte(datamodel), nil
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read schema %s", path)
		}
		return data, nil
	}
	return nil, ErrNoSchema
}

func run(ctx context.Context, r engine.Runner, req engine.Request) (*engine.Result, error) {
	return runnerOr(r).Run(ctx, req)
}
