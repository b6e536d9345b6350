package internals

import (
	"context"
	"strings"
	"syscall"

	"github.com/pkg/errors"

	"github.com/TechXTT/internals/pkg/dmmf"
	"github.com/TechXTT/internals/pkg/engine"
	"github.com/TechXTT/internals/pkg/logger"
)

// DefaultDMMFRetry is the retry count used when GetDMMFOptions.Retry is zero.
const DefaultDMMFRetry = 4

var dmmfDebug = logger.Debug("prisma:getDMMF")

type GetDMMFOptions struct {
	Datamodel       string
	DatamodelPath   string
	PreviewFeatures []string
	// Retry is how often a failed invocation is repeated. Zero means
	// DefaultDMMFRetry, a negative value disables retries.
	Retry  int
	Runner engine.Runner
}

// GetDMMF asks the query engine for the DMMF of a schema. Schema errors are
// returned at once; crashes and unreadable output are retried.
func GetDMMF(ctx context.Context, opts GetDMMFOptions) (*dmmf.Document, error) {
	envs, cleanup, err := schemaEnv(opts.Datamodel, opts.DatamodelPath)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	args := []string{"--enable-raw-queries"}
	if len(opts.PreviewFeatures) > 0 {
		args = append(args, "--enable-experimental="+strings.Join(opts.PreviewFeatures, ","))
	}
	args = append(args, "cli", "dmmf")
	req := engine.Request{Binary: engine.QueryEngine, Args: args, Env: envs}

	retries := opts.Retry
	if retries == 0 {
		retries = DefaultDMMFRetry
	}
	for attempt := 0; ; attempt++ {
		doc, err := getDMMFOnce(ctx, opts.Runner, req)
		if err == nil {
			return doc, nil
		}
		if attempt >= retries || !retryable(ctx, err) {
			return nil, errors.Wrap(err, "get DMMF")
		}
		dmmfDebug.Printf("attempt %d failed, retrying: %v", attempt+1, err)
	}
}

func getDMMFOnce(ctx context.Context, r engine.Runner, req engine.Request) (*dmmf.Document, error) {
	res, err := run(ctx, r, req)
	if err != nil {
		return nil, err
	}
	return dmmf.Decode(res.Stdout)
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, engine.ErrBinaryNotFound) || errors.Is(err, ErrNoSchema) {
		return false
	}
	// The arguments or environment are too large, a retry fails the same way.
	if errors.Is(err, syscall.E2BIG) {
		return false
	}
	var engineErr *engine.Error
	if errors.As(err, &engineErr) && engineErr.IsUserError() {
		return false
	}
	return true
}
