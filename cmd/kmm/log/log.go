package log

import (
	"context"
	"io"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/meza/koikatsu-mod-manager/internal/cli"
	"github.com/meza/koikatsu-mod-manager/internal/gamelog"
	"github.com/meza/koikatsu-mod-manager/internal/i18n"
	"github.com/meza/koikatsu-mod-manager/internal/logger"
	"github.com/meza/koikatsu-mod-manager/internal/perf"
	"github.com/meza/koikatsu-mod-manager/internal/telemetry"
)

type logOptions struct {
	cli.GlobalOptions
	PathOnly bool
}

type logDeps struct {
	fs        afero.Fs
	logger    *logger.Logger
	out       io.Writer
	telemetry func(telemetry.CommandTelemetry)
}

type logDocument struct {
	Path    string `json:"path"`
	Content string `json:"content,omitempty"`
}

func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: i18n.T("cmd.log.short"),
		Long:  i18n.T("cmd.log.long"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, span := perf.StartSpan(cmd.Context(), "app.command.log")
			started := time.Now()

			global, err := cli.ReadGlobalOptions(cmd)
			if err != nil {
				return cli.Finish(span, err)
			}
			pathOnly, err := cmd.Flags().GetBool("path")
			if err != nil {
				return cli.Finish(span, err)
			}

			deps := logDeps{
				fs:        afero.NewOsFs(),
				logger:    global.Logger(cmd),
				out:       cmd.OutOrStdout(),
				telemetry: telemetry.RecordCommand,
			}

			err = runLog(ctx, logOptions{GlobalOptions: global, PathOnly: pathOnly}, deps)

			payload := telemetry.CommandTelemetry{
				Command:  "log",
				Success:  err == nil,
				Error:    err,
				Duration: time.Since(started),
				Arguments: map[string]interface{}{
					"pathOnly": pathOnly,
					"json":     global.JSON,
				},
			}
			if err != nil {
				payload.ExitCode = 1
			}
			deps.telemetry(payload)

			return cli.Finish(span, err)
		},
	}

	cmd.Flags().Bool("path", false, i18n.T("cmd.log.flag.path"))

	return cmd
}

func runLog(ctx context.Context, opts logOptions, deps logDeps) error {
	gamePath, err := opts.ResolveGamePath(ctx, deps.fs, deps.logger)
	if err != nil {
		return err
	}

	path, err := gamelog.Locate(deps.fs, gamePath)
	if err != nil {
		return err
	}
	deps.logger.Debugf("found log at %s", path)

	if opts.PathOnly {
		if opts.JSON {
			return cli.PrintJSON(deps.out, logDocument{Path: path})
		}
		deps.logger.Log(path, true)
		return nil
	}

	content, err := gamelog.ReadFile(ctx, deps.fs, path)
	if err != nil {
		return err
	}

	if opts.JSON {
		return cli.PrintJSON(deps.out, logDocument{Path: path, Content: content})
	}
	_, err = io.WriteString(deps.out, content)
	return err
}
