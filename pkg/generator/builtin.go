package generator

import (
	"context"

	"github.com/pkg/errors"

	"github.com/TechXTT/internals/pkg/codegen"
	"github.com/TechXTT/internals/pkg/config"
)

// GoModelsProvider is the provider name of the in-process Go model generator.
const GoModelsProvider = "prisma-go-models"

// goModels serves GoModelsProvider without spawning a process. The generator
// block may set `package = "..."` to override the package name.
type goModels struct{}

func (goModels) GetManifest(_ context.Context, _ config.GeneratorConfig) (*Manifest, error) {
	return &Manifest{
		PrettyName:    "Go models",
		DefaultOutput: "./models",
	}, nil
}

func (goModels) Generate(ctx context.Context, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if opts.DMMF == nil {
		return errors.New("prisma-go-models: no DMMF to render")
	}
	if opts.Generator.Output == nil || opts.Generator.Output.Value == nil {
		return errors.New("prisma-go-models: output is not resolved")
	}
	gen := codegen.NewGenerator()
	gen.Package = opts.Generator.Config["package"]
	return gen.Generate(opts.DMMF, *opts.Generator.Output.Value)
}

func (goModels) Stop() error { return nil }

// DefaultAliases returns the providers served without a lookup on $PATH.
func DefaultAliases() map[string]ProviderAlias {
	return map[string]ProviderAlias{
		GoModelsProvider: {Handler: func() Handler { return goModels{} }},
	}
}
