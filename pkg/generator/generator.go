// Package generator runs the generator blocks of a schema.
package generator

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/TechXTT/internals"
	"github.com/TechXTT/internals/pkg/config"
	"github.com/TechXTT/internals/pkg/engine"
	"github.com/TechXTT/internals/pkg/env"
	"github.com/TechXTT/internals/pkg/platform"
)

// ErrNoGenerators is returned when the schema declares no generator block.
var ErrNoGenerators = errors.New("there is no generator defined in the schema")

// ProviderAlias replaces a provider name with a command or an in-process handler.
type ProviderAlias struct {
	GeneratorPath string
	Args          []string
	// Handler, when set, serves the provider in-process.
	Handler func() Handler
	// OutputPath is used when neither the schema nor the manifest names an output.
	OutputPath string
}

type GetGeneratorsOptions struct {
	SchemaPath string
	// ProviderAliases extend and override DefaultAliases.
	ProviderAliases map[string]ProviderAlias
	// Version is the engine version passed on to generators.
	Version string
	// OverrideGenerators replaces the generator blocks found in the schema.
	OverrideGenerators []config.GeneratorConfig
	// Cwd is where the root .env file is looked up. Defaults to the working dir.
	Cwd    string
	Runner engine.Runner
	// Platform returns the native binary target. Defaults to platform.GetPlatform.
	Platform env.NativeFunc
}

// Generator is a started generator ready to run.
type Generator struct {
	Name     string
	Provider string
	Manifest *Manifest
	Options  *Options

	handler Handler
}

// Generate runs the generator once.
func (g *Generator) Generate(ctx context.Context) error {
	if g.Options == nil {
		return errors.Errorf("generator %s has no options", g.Name)
	}
	return g.handler.Generate(ctx, *g.Options)
}

func (g *Generator) Stop() error {
	return g.handler.Stop()
}

// StopAll stops every generator and returns all stop errors.
func StopAll(gens []*Generator) error {
	var result *multierror.Error
	for _, g := range gens {
		if g == nil {
			continue
		}
		if err := g.Stop(); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "stop %s", g.Name))
		}
	}
	return result.ErrorOrNil()
}

// GetGenerators starts the generators of the schema at opts.SchemaPath and
// prepares their options. Callers must StopAll the result.
func GetGenerators(ctx context.Context, opts GetGeneratorsOptions) ([]*Generator, error) {
	if opts.SchemaPath == "" {
		return nil, internals.ErrNoSchema
	}
	schemaPath, err := filepath.Abs(opts.SchemaPath)
	if err != nil {
		return nil, err
	}
	schemaDir := filepath.Dir(schemaPath)

	cwd := opts.Cwd
	if cwd == "" {
		if cwd, err = os.Getwd(); err != nil {
			return nil, err
		}
	}
	if _, err := env.TryLoadEnvs(env.GetEnvPaths(schemaPath, cwd), env.LoadOptions{Conflict: env.ConflictWarn}); err != nil {
		return nil, err
	}

	datamodel, err := config.ReadSchema(schemaPath)
	if err != nil {
		return nil, err
	}
	cfg, err := internals.GetConfig(ctx, internals.GetConfigOptions{
		Datamodel:          datamodel,
		IgnoreEnvVarErrors: true,
		Runner:             opts.Runner,
	})
	if err != nil {
		return nil, err
	}

	configs := cfg.Generators
	if len(opts.OverrideGenerators) > 0 {
		configs = opts.OverrideGenerators
	}
	if len(configs) == 0 {
		return nil, ErrNoGenerators
	}

	doc, err := internals.GetDMMF(ctx, internals.GetDMMFOptions{
		Datamodel:       datamodel,
		PreviewFeatures: previewFeatures(configs),
		Runner:          opts.Runner,
	})
	if err != nil {
		return nil, err
	}

	providers := make([]string, len(configs))
	for i, gc := range configs {
		p, err := env.ParseValue(gc.Provider)
		if err != nil {
			return nil, errors.Wrapf(err, "generator %s provider", gc.Name)
		}
		providers[i] = p
	}

	aliases := DefaultAliases()
	for name, alias := range opts.ProviderAliases {
		aliases[name] = alias
	}
	gens, err := startGenerators(ctx, configs, providers, schemaDir, aliases)
	if err != nil {
		return nil, err
	}
	fail := func(err error) ([]*Generator, error) {
		if stopErr := StopAll(gens); stopErr != nil {
			debug.Printf("stopping generators after failure: %v", stopErr)
		}
		return nil, err
	}

	if err := checkRequiredGenerators(gens); err != nil {
		return fail(err)
	}

	native := opts.Platform
	if native == nil {
		native = platform.GetPlatform
	}
	resolved := make([]config.GeneratorConfig, len(gens))
	for i, g := range gens {
		gc := configs[i]
		var aliasOutput string
		if alias, ok := aliases[g.Provider]; ok {
			aliasOutput = alias.OutputPath
		}
		if err := resolveOutput(&gc, g.Manifest, aliasOutput, schemaDir); err != nil {
			return fail(err)
		}
		if err := resolveBinaryTargets(ctx, &gc, native); err != nil {
			return fail(err)
		}
		resolved[i] = gc
	}

	for i, g := range gens {
		others := make([]config.GeneratorConfig, 0, len(resolved)-1)
		for j := range resolved {
			if j != i {
				others = append(others, resolved[j])
			}
		}
		g.Options = &Options{
			Generator:       resolved[i],
			OtherGenerators: others,
			SchemaPath:      schemaPath,
			DMMF:            doc,
			Datasources:     cfg.Datasources,
			Datamodel:       datamodel,
			Version:         opts.Version,
		}
	}
	return gens, nil
}

func previewFeatures(configs []config.GeneratorConfig) []string {
	seen := map[string]bool{}
	var out []string
	for _, gc := range configs {
		for _, f := range gc.PreviewFeatures {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

// startGenerators starts every handler and fetches its manifest concurrently.
// On failure the handlers already started are stopped.
func startGenerators(ctx context.Context, configs []config.GeneratorConfig, providers []string, schemaDir string, aliases map[string]ProviderAlias) ([]*Generator, error) {
	gens := make([]*Generator, len(configs))
	eg, egCtx := errgroup.WithContext(ctx)
	for i := range configs {
		i := i
		eg.Go(func() error {
			h, err := newHandler(egCtx, providers[i], schemaDir, aliases)
			if err != nil {
				return errors.Wrapf(err, "generator %s", configs[i].Name)
			}
			g := &Generator{Name: configs[i].Name, Provider: providers[i], handler: h}
			gens[i] = g
			m, err := h.GetManifest(egCtx, configs[i])
			if err != nil {
				return errors.Wrapf(err, "generator %s", configs[i].Name)
			}
			g.Manifest = m
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		if stopErr := StopAll(gens); stopErr != nil {
			debug.Printf("stopping generators after failure: %v", stopErr)
		}
		return nil, err
	}
	return gens, nil
}

func newHandler(ctx context.Context, provider, schemaDir string, aliases map[string]ProviderAlias) (Handler, error) {
	var p *Process
	if alias, ok := aliases[provider]; ok {
		if alias.Handler != nil {
			return alias.Handler(), nil
		}
		p = NewProcess(alias.GeneratorPath, alias.Args...)
	} else {
		parts := strings.Fields(provider)
		if len(parts) == 0 {
			return nil, errors.New("empty provider")
		}
		p = NewProcess(parts[0], parts[1:]...)
	}
	p.Dir = schemaDir
	if err := p.Init(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func checkRequiredGenerators(gens []*Generator) error {
	present := map[string]bool{}
	for _, g := range gens {
		present[g.Provider] = true
	}
	for _, g := range gens {
		if g.Manifest == nil {
			continue
		}
		for _, req := range g.Manifest.RequiresGenerators {
			if !present[req] {
				return errors.Errorf("generator %q requires generator %q, add it to the schema", g.Name, req)
			}
		}
	}
	return nil
}

func resolveOutput(gc *config.GeneratorConfig, m *Manifest, aliasOutput, schemaDir string) error {
	var out string
	switch {
	case gc.Output != nil:
		v, err := env.ParseValue(*gc.Output)
		if err != nil {
			return errors.Wrapf(err, "generator %s output", gc.Name)
		}
		out = v
		gc.IsCustomOutput = true
	case m != nil && m.DefaultOutput != "":
		out = m.DefaultOutput
	case aliasOutput != "":
		out = aliasOutput
	default:
		return errors.Errorf("generator %s has no output and its manifest names no default", gc.Name)
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(schemaDir, out)
	}
	lit := env.Literal(out)
	if gc.Output != nil {
		lit.FromEnvVar = gc.Output.FromEnvVar
	}
	gc.Output = &lit
	return nil
}

func resolveBinaryTargets(ctx context.Context, gc *config.GeneratorConfig, native env.NativeFunc) error {
	targets, err := env.ParseBinaryTargets(ctx, gc.BinaryTargets, native)
	if err != nil {
		return errors.Wrapf(err, "generator %s binaryTargets", gc.Name)
	}
	current, err := native(ctx)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		targets = []string{current}
	}
	for _, t := range targets {
		if t != current && !platform.IsKnown(t) {
			return errors.Errorf("generator %s: unknown binary target %q, possible values: %s",
				gc.Name, t, strings.Join(platform.KnownBinaryTargets, ", "))
		}
	}
	values := make([]env.BinaryTargetsValue, len(targets))
	for i, t := range targets {
		values[i] = env.BinaryTargetsValue{Value: t, Native: t == current}
	}
	gc.BinaryTargets = values
	return nil
}
