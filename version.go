package internals

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/TechXTT/internals/pkg/engine"
)

// GetEngineVersion returns the commit hash an engine binary was built from.
func GetEngineVersion(ctx context.Context, binary engine.Binary, r engine.Runner) (string, error) {
	res, err := run(ctx, r, engine.Request{Binary: binary, Args: []string{"--version"}})
	if err != nil {
		return "", errors.Wrapf(err, "get %s version", binary)
	}
	fields := strings.Fields(string(res.Stdout))
	if len(fields) == 0 {
		return "", errors.Errorf("%s --version printed nothing", binary)
	}
	return fields[len(fields)-1], nil
}
