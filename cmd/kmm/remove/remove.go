package remove

import (
	"context"
	"io"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/meza/koikatsu-mod-manager/internal/cli"
	"github.com/meza/koikatsu-mod-manager/internal/i18n"
	"github.com/meza/koikatsu-mod-manager/internal/logger"
	"github.com/meza/koikatsu-mod-manager/internal/perf"
	"github.com/meza/koikatsu-mod-manager/internal/telemetry"
	"github.com/meza/koikatsu-mod-manager/internal/trash"
)

type removeOptions struct {
	cli.GlobalOptions
	Paths []string
}

type removeDeps struct {
	logger    *logger.Logger
	trasher   trash.Trasher
	out       io.Writer
	telemetry func(telemetry.CommandTelemetry)
}

type removeDocument struct {
	Removed []string `json:"removed"`
}

func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <paths...>",
		Short: i18n.T("cmd.remove.short"),
		Long:  i18n.T("cmd.remove.long"),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, span := perf.StartSpan(cmd.Context(), "app.command.remove")
			started := time.Now()

			global, err := cli.ReadGlobalOptions(cmd)
			if err != nil {
				return cli.Finish(span, err)
			}

			deps := removeDeps{
				logger:    global.Logger(cmd),
				trasher:   trash.Default(afero.NewOsFs()),
				out:       cmd.OutOrStdout(),
				telemetry: telemetry.RecordCommand,
			}

			removed, err := runRemove(ctx, removeOptions{GlobalOptions: global, Paths: args}, deps)

			payload := telemetry.CommandTelemetry{
				Command:  "remove",
				Success:  err == nil,
				Error:    err,
				Duration: time.Since(started),
				Arguments: map[string]interface{}{
					"paths": len(args),
					"json":  global.JSON,
				},
				Extra: map[string]interface{}{
					"numberOfMods": len(removed),
				},
			}
			if err != nil {
				payload.ExitCode = 1
			}
			deps.telemetry(payload)

			return cli.Finish(span, err)
		},
	}

	return cmd
}

// runRemove trashes paths in order and stops at the first failure; the
// returned slice lists what was trashed before it.
func runRemove(ctx context.Context, opts removeOptions, deps removeDeps) ([]string, error) {
	removed := make([]string, 0, len(opts.Paths))
	observed := trash.Observe(deps.trasher, func(path string) {
		removed = append(removed, path)
		deps.logger.Log(i18n.T("cmd.remove.removed", i18n.Tvars{
			Data: &i18n.TData{"path": path},
		}), false)
	})

	err := trash.Delete(ctx, observed, opts.Paths)
	if !opts.JSON {
		return removed, err
	}

	// the document lists what reached the trash even when a later path failed
	if printErr := cli.PrintJSON(deps.out, removeDocument{Removed: removed}); err == nil {
		err = printErr
	}
	return removed, err
}
