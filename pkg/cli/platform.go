package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/TechXTT/internals"
	"github.com/TechXTT/internals/pkg/engine"
	"github.com/TechXTT/internals/pkg/platform"
)

var engineBinaries = []engine.Binary{engine.QueryEngine, engine.Formatter}

func newPlatformCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "platform",
		Short: "Show the detected binary target and engine locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			info, err := platform.GetOSInfo(ctx)
			if err != nil {
				return err
			}
			target, err := platform.GetPlatform(ctx)
			if err != nil {
				return err
			}
			rows := [][]string{
				{"Binary target", target},
				{"Platform", info.Platform},
				{"Arch", info.Arch},
				{"Distro", string(info.Distro)},
				{"OpenSSL", info.LibSSLVersion},
			}
			for _, b := range engineBinaries {
				path, err := o.resolver.Resolve(ctx, b)
				if err != nil {
					path = "not found"
				}
				rows = append(rows, []string{string(b), path})
			}
			renderKeyValues(cmd.OutOrStdout(), rows)
			return nil
		},
	}
}

// newVersionCmd builds the `version` command.
func newVersionCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of this tool and of the engines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rows := [][]string{{"prisma-internals", Version}}
			for _, b := range engineBinaries {
				v, err := internals.GetEngineVersion(ctx, b, o.runner)
				if err != nil {
					cliDebug.Printf("%s version: %v", b, err)
					v = "unavailable"
				}
				rows = append(rows, []string{string(b), v})
			}
			target, err := platform.GetPlatform(ctx)
			if err != nil {
				target = "unknown"
			}
			rows = append(rows,
				[]string{"Binary target", target},
				[]string{"Operating system", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)},
				[]string{"Go", runtime.Version()},
			)
			renderKeyValues(cmd.OutOrStdout(), rows)
			return nil
		},
	}
}

func renderKeyValues(w io.Writer, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetBorder(false)
	table.SetColumnSeparator("")
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}
