package cli

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/TechXTT/internals"
	"github.com/TechXTT/internals/pkg/datasource"
)

func newDBCmd(o *rootOptions) *cobra.Command {
	db := &cobra.Command{
		Use:   "db",
		Short: "Work with the datasource of the Prisma schema",
	}
	db.AddCommand(&cobra.Command{
		Use:   "can-connect",
		Short: "Check that the datasource database is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path, err := o.loadSchema()
			if err != nil {
				return err
			}
			cfg, err := internals.GetConfig(ctx, internals.GetConfigOptions{
				DatamodelPath: path,
				Runner:        o.runner,
			})
			if err != nil {
				return err
			}
			ds, err := cfg.Datasource()
			if err != nil {
				return err
			}
			url, err := ds.DSN()
			if err != nil {
				return err
			}
			client, err := datasource.Open(ctx, ds.EffectiveProvider(), url, filepath.Dir(path))
			if err != nil {
				return err
			}
			defer client.Close()
			if err := client.Connect(ctx); err != nil {
				return errors.Wrapf(err, "can't reach database server at %s", datasource.Redact(url))
			}

			msg := fmt.Sprintf("The database %s is reachable", datasource.DBName(url))
			if v, err := client.Version(ctx); err == nil {
				msg += fmt.Sprintf(" (%s %s)", ds.EffectiveProvider(), v)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	})
	return db
}
