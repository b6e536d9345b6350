// Package cli exposes the engine operations as a cobra command tree.
package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TechXTT/internals/pkg/config"
	"github.com/TechXTT/internals/pkg/engine"
	"github.com/TechXTT/internals/pkg/env"
	"github.com/TechXTT/internals/pkg/fsutil"
	"github.com/TechXTT/internals/pkg/logger"
	"github.com/TechXTT/internals/pkg/pkgmanager"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "v0.1.0"

type rootOptions struct {
	v        *viper.Viper
	runner   engine.Runner
	resolver *engine.Resolver
	cwd      string
}

// NewRootCmd builds the top-level `prisma-internals` command.
func NewRootCmd() *cobra.Command {
	resolver := engine.NewResolver()
	return newRootCmd(&rootOptions{
		runner:   &engine.ExecRunner{Resolver: resolver},
		resolver: resolver,
	})
}

func newRootCmd(o *rootOptions) *cobra.Command {
	o.v = viper.New()
	o.v.SetEnvPrefix("PRISMA")
	o.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	o.v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "prisma-internals",
		Short:         "Drive the Prisma engines: format, validate, DMMF and generators",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.Init(logger.LogOptions{
				Output:       cmd.ErrOrStderr(),
				Verbose:      o.v.GetBool("debug"),
				DisableColor: o.v.GetBool("no-color") || fsutil.IsCI(),
			})
			if o.cwd == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return err
				}
				o.cwd = cwd
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.String("schema", "", "Custom path to your Prisma schema (env PRISMA_SCHEMA)")
	pf.BoolP("debug", "d", false, "turn on debug logging")
	pf.Bool("no-color", false, "disable colored output")
	_ = o.v.BindPFlags(pf)

	root.AddCommand(
		newFormatCmd(o),
		newValidateCmd(o),
		newDMMFCmd(o),
		newConfigCmd(o),
		newGenerateCmd(o),
		newPlatformCmd(o),
		newVersionCmd(o),
		newDBCmd(o),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		logger.Error(err)
		if errors.Is(err, engine.ErrBinaryNotFound) {
			cwd, _ := os.Getwd()
			cmd := pkgmanager.InstallCommand(pkgmanager.Get(cwd), "prisma", true)
			logger.Warnf("install the engines with `%s` or point %s at a directory holding them", cmd, engine.EnginesDirEnv)
		}
		os.Exit(1)
	}
}

func (o *rootOptions) schemaPath() (string, error) {
	return config.GetSchemaPath(config.SchemaPathOptions{
		SchemaPathFromArgs: o.v.GetString("schema"),
		Cwd:                o.cwd,
	})
}

// loadSchema resolves the schema and loads the .env files around it.
func (o *rootOptions) loadSchema() (string, error) {
	path, err := o.schemaPath()
	if err != nil {
		return "", err
	}
	cliDebug.Printf("using schema %s", path)
	loaded, err := env.TryLoadEnvs(env.GetEnvPaths(path, o.cwd), env.LoadOptions{Conflict: env.ConflictError})
	if err != nil {
		return "", err
	}
	for _, msg := range loaded.Messages {
		logger.Log(msg)
	}
	return path, nil
}

func (o *rootOptions) relative(path string) string {
	if rel, err := filepath.Rel(o.cwd, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
