package cli

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/TechXTT/internals"
	"github.com/TechXTT/internals/pkg/engine"
	"github.com/TechXTT/internals/pkg/generator"
	"github.com/TechXTT/internals/pkg/logger"
)

var cliDebug = logger.Debug("prisma:cli")

func newGenerateCmd(o *rootOptions) *cobra.Command {
	var only []string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the generators of the Prisma schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path, err := o.loadSchema()
			if err != nil {
				return err
			}
			version, err := internals.GetEngineVersion(ctx, engine.QueryEngine, o.runner)
			if err != nil {
				cliDebug.Printf("no engine version for generators: %v", err)
			}

			gens, err := generator.GetGenerators(ctx, generator.GetGeneratorsOptions{
				SchemaPath: path,
				Version:    version,
				Cwd:        o.cwd,
				Runner:     o.runner,
			})
			if err != nil {
				return err
			}
			defer func() {
				if err := generator.StopAll(gens); err != nil {
					logger.Warn(err)
				}
			}()

			selected := map[string]bool{}
			for _, name := range only {
				selected[name] = true
			}
			for _, g := range gens {
				if len(selected) > 0 && !selected[g.Name] {
					continue
				}
				start := time.Now()
				if err := g.Generate(ctx); err != nil {
					return errors.Wrapf(err, "generator %s failed", g.Name)
				}
				name := g.Provider
				if g.Manifest != nil && g.Manifest.PrettyName != "" {
					name = g.Manifest.PrettyName
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Generated %s to %s in %dms\n",
					name, o.relative(*g.Options.Generator.Output.Value), time.Since(start).Milliseconds())
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&only, "generator", nil, "only run the named generators")
	return cmd
}
