package init

import (
	"context"
	"io"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/meza/koikatsu-mod-manager/internal/cli"
	"github.com/meza/koikatsu-mod-manager/internal/config"
	"github.com/meza/koikatsu-mod-manager/internal/gamelog"
	"github.com/meza/koikatsu-mod-manager/internal/i18n"
	"github.com/meza/koikatsu-mod-manager/internal/logger"
	"github.com/meza/koikatsu-mod-manager/internal/models"
	"github.com/meza/koikatsu-mod-manager/internal/perf"
	"github.com/meza/koikatsu-mod-manager/internal/telemetry"
	"github.com/meza/koikatsu-mod-manager/internal/tui"
)

type initOptions struct {
	cli.GlobalOptions
	GamePathArg string
}

type initDeps struct {
	fs        afero.Fs
	logger    *logger.Logger
	out       io.Writer
	telemetry func(telemetry.CommandTelemetry)
}

func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <game-path>",
		Short: i18n.T("cmd.init.short"),
		Long:  i18n.T("cmd.init.long"),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, span := perf.StartSpan(cmd.Context(), "app.command.init")
			started := time.Now()

			global, err := cli.ReadGlobalOptions(cmd)
			if err != nil {
				return cli.Finish(span, err)
			}

			deps := initDeps{
				fs:        afero.NewOsFs(),
				logger:    global.Logger(cmd),
				out:       cmd.OutOrStdout(),
				telemetry: telemetry.RecordCommand,
			}

			_, err = runInit(ctx, initOptions{GlobalOptions: global, GamePathArg: args[0]}, deps)

			payload := telemetry.CommandTelemetry{
				Command:  "init",
				Success:  err == nil,
				Error:    err,
				Duration: time.Since(started),
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

func runInit(ctx context.Context, opts initOptions, deps initDeps) (models.Settings, error) {
	meta := opts.Metadata()
	settings, err := config.InitSettings(ctx, deps.fs, meta, opts.GamePathArg)
	if err != nil {
		return models.Settings{}, err
	}

	if opts.JSON {
		return settings, cli.PrintJSON(deps.out, settings)
	}

	deps.logger.Log(tui.SuccessIcon(false)+" "+i18n.T("cmd.init.created", i18n.Tvars{
		Data: &i18n.TData{"config": meta.ConfigPath, "gamePath": settings.GamePath},
	}), false)

	if _, err := gamelog.Locate(deps.fs, settings.GamePath); err != nil {
		deps.logger.Log(tui.WarningIcon(false)+" "+i18n.T("cmd.init.no_log"), false)
	}
	modsDir := config.ModsFolderPath(settings.GamePath, settings)
	if isDir, _ := afero.IsDir(deps.fs, modsDir); !isDir {
		deps.logger.Log(tui.WarningIcon(false)+" "+i18n.T("cmd.init.no_mods", i18n.Tvars{
			Data: &i18n.TData{"path": modsDir},
		}), false)
	}

	return settings, nil
}
