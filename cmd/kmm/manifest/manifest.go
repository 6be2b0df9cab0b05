package manifest

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/meza/koikatsu-mod-manager/internal/cli"
	"github.com/meza/koikatsu-mod-manager/internal/i18n"
	"github.com/meza/koikatsu-mod-manager/internal/logger"
	"github.com/meza/koikatsu-mod-manager/internal/manifest"
	"github.com/meza/koikatsu-mod-manager/internal/models"
	"github.com/meza/koikatsu-mod-manager/internal/perf"
	"github.com/meza/koikatsu-mod-manager/internal/telemetry"
)

type manifestOptions struct {
	cli.GlobalOptions
	ArchivePath string
}

type manifestDeps struct {
	fs        afero.Fs
	logger    *logger.Logger
	out       io.Writer
	telemetry func(telemetry.CommandTelemetry)
}

func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest <archive>",
		Short: i18n.T("cmd.manifest.short"),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, span := perf.StartSpan(cmd.Context(), "app.command.manifest")
			started := time.Now()

			global, err := cli.ReadGlobalOptions(cmd)
			if err != nil {
				return cli.Finish(span, err)
			}

			deps := manifestDeps{
				fs:        afero.NewOsFs(),
				logger:    global.Logger(cmd),
				out:       cmd.OutOrStdout(),
				telemetry: telemetry.RecordCommand,
			}

			_, err = runManifest(ctx, manifestOptions{GlobalOptions: global, ArchivePath: args[0]}, deps)

			payload := telemetry.CommandTelemetry{
				Command:  "manifest",
				Success:  err == nil,
				Error:    err,
				Duration: time.Since(started),
				Arguments: map[string]interface{}{
					"json": global.JSON,
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

func runManifest(ctx context.Context, opts manifestOptions, deps manifestDeps) (models.Manifest, error) {
	parsed, err := manifest.Read(ctx, deps.fs, opts.ArchivePath)
	if err != nil {
		return models.Manifest{}, err
	}

	if opts.JSON {
		return parsed, cli.PrintJSON(deps.out, parsed)
	}

	deps.logger.Log(formatManifest(parsed), false)
	return parsed, nil
}

func formatManifest(m models.Manifest) string {
	rows := []struct {
		key   string
		value string
	}{
		{"cmd.manifest.field.guid", m.GUID},
		{"cmd.manifest.field.name", m.Name},
		{"cmd.manifest.field.version", m.Version},
		{"cmd.manifest.field.author", m.Author},
		{"cmd.manifest.field.website", m.Website},
		{"cmd.manifest.field.games", strings.Join(m.Games, ", ")},
		{"cmd.manifest.field.description", m.Description},
	}

	var sb strings.Builder
	for _, row := range rows {
		if row.value == "" {
			continue
		}
		fmt.Fprintf(&sb, "%s: %s\n", i18n.T(row.key), row.value)
	}
	return strings.TrimRight(sb.String(), "\n")
}
