package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/TechXTT/internals"
	"github.com/TechXTT/internals/pkg/config"
	"github.com/TechXTT/internals/pkg/datasource"
	"github.com/TechXTT/internals/pkg/env"
	"github.com/TechXTT/internals/pkg/fsutil"
)

// ErrNotFormatted is returned by `format --check` for an unformatted schema.
var ErrNotFormatted = errors.New("schema is not formatted")

func newFormatCmd(o *rootOptions) *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "format",
		Short: "Format the Prisma schema in place",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			path, err := o.schemaPath()
			if err != nil {
				return err
			}
			original, err := config.ReadSchema(path)
			if err != nil {
				return err
			}
			formatted, err := internals.FormatSchema(cmd.Context(), internals.FormatSchemaOptions{
				Schema: original,
				Runner: o.runner,
			})
			if err != nil {
				return err
			}
			if check {
				if formatted != original {
					return errors.Wrapf(ErrNotFormatted, "run `prisma-internals format` to format %s", o.relative(path))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "The schema at %s is formatted correctly\n", o.relative(path))
				return nil
			}
			if formatted != original {
				if err := fsutil.WriteFileAtomic(path, []byte(formatted), fsutil.FileMode0644); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Formatted %s in %dms\n", o.relative(path), time.Since(start).Milliseconds())
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "fail if the schema is not formatted instead of rewriting it")
	return cmd
}

func newValidateCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the Prisma schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := o.loadSchema()
			if err != nil {
				return err
			}
			if err := internals.Validate(cmd.Context(), internals.ValidateOptions{
				DatamodelPath: path,
				Runner:        o.runner,
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "The schema at %s is valid\n", o.relative(path))
			return nil
		},
	}
}

func newDMMFCmd(o *rootOptions) *cobra.Command {
	var (
		out     string
		preview []string
	)
	cmd := &cobra.Command{
		Use:   "dmmf",
		Short: "Print the DMMF of the Prisma schema as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := o.loadSchema()
			if err != nil {
				return err
			}
			doc, err := internals.GetDMMF(cmd.Context(), internals.GetDMMFOptions{
				DatamodelPath:   path,
				PreviewFeatures: preview,
				Runner:          o.runner,
			})
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			return writeFileOrStdout(cmd, out, append(data, '\n'))
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the DMMF to a file instead of stdout")
	cmd.Flags().StringSliceVar(&preview, "preview-feature", nil, "enable a preview feature")
	return cmd
}

func newConfigCmd(o *rootOptions) *cobra.Command {
	var (
		asJSON    bool
		ignoreEnv bool
	)
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the datasources and generators of the Prisma schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := o.loadSchema()
			if err != nil {
				return err
			}
			cfg, err := internals.GetConfig(cmd.Context(), internals.GetConfigOptions{
				DatamodelPath:      path,
				IgnoreEnvVarErrors: ignoreEnv,
				Runner:             o.runner,
			})
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Block", "Name", "Provider", "Target"})
			table.SetAutoWrapText(false)
			for _, ds := range cfg.Datasources {
				table.Append([]string{"datasource", ds.Name, ds.EffectiveProvider(), describeURL(ds.URL)})
			}
			for _, g := range cfg.Generators {
				output := "(default)"
				if g.Output != nil {
					output = describeValue(*g.Output)
				}
				table.Append([]string{"generator", g.Name, describeValue(g.Provider), output})
			}
			table.Render()
			for _, w := range cfg.Warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", w)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the engine config as JSON")
	cmd.Flags().BoolVar(&ignoreEnv, "ignore-env-errors", false, "do not fail on unset env(\"...\") values")
	return cmd
}

func describeValue(v env.Value) string {
	if v.FromEnvVar != nil && *v.FromEnvVar != "" {
		return fmt.Sprintf("env(%q)", *v.FromEnvVar)
	}
	if v.Value != nil {
		return *v.Value
	}
	return ""
}

// describeURL prints a datasource URL without its password.
func describeURL(v env.Value) string {
	if v.FromEnvVar != nil && *v.FromEnvVar != "" {
		if resolved, err := env.ParseValue(v); err == nil {
			return fmt.Sprintf("env(%q) = %s", *v.FromEnvVar, datasource.Redact(resolved))
		}
		return describeValue(v)
	}
	return datasource.Redact(describeValue(v))
}

func writeFileOrStdout(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return fsutil.WriteFileAtomic(path, data, fsutil.FileMode0644)
}
