package list

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/meza/koikatsu-mod-manager/internal/cli"
	"github.com/meza/koikatsu-mod-manager/internal/config"
	"github.com/meza/koikatsu-mod-manager/internal/i18n"
	"github.com/meza/koikatsu-mod-manager/internal/ignore"
	"github.com/meza/koikatsu-mod-manager/internal/logger"
	"github.com/meza/koikatsu-mod-manager/internal/modlist"
	"github.com/meza/koikatsu-mod-manager/internal/perf"
	"github.com/meza/koikatsu-mod-manager/internal/telemetry"
	"github.com/meza/koikatsu-mod-manager/internal/tui"
)

type listOptions struct {
	cli.GlobalOptions
	DuplicatesOnly bool
	Concurrency    int
}

type listDeps struct {
	fs        afero.Fs
	logger    *logger.Logger
	out       io.Writer
	telemetry func(telemetry.CommandTelemetry)
}

func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: i18n.T("cmd.list.short"),
		Long:  i18n.T("cmd.list.long"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, span := perf.StartSpan(cmd.Context(), "app.command.list")
			started := time.Now()

			global, err := cli.ReadGlobalOptions(cmd)
			if err != nil {
				return cli.Finish(span, err)
			}
			duplicatesOnly, err := cmd.Flags().GetBool("duplicates")
			if err != nil {
				return cli.Finish(span, err)
			}
			concurrency, err := cmd.Flags().GetInt("concurrency")
			if err != nil {
				return cli.Finish(span, err)
			}

			deps := listDeps{
				fs:        afero.NewOsFs(),
				logger:    global.Logger(cmd),
				out:       cmd.OutOrStdout(),
				telemetry: telemetry.RecordCommand,
			}

			result, err := runList(ctx, listOptions{
				GlobalOptions:  global,
				DuplicatesOnly: duplicatesOnly,
				Concurrency:    concurrency,
			}, deps)

			payload := telemetry.CommandTelemetry{
				Command:  "list",
				Success:  err == nil,
				Error:    err,
				Duration: time.Since(started),
				Arguments: map[string]interface{}{
					"duplicates": duplicatesOnly,
					"json":       global.JSON,
				},
				Extra: map[string]interface{}{
					"archives":   len(result.Entries),
					"duplicates": len(result.Duplicates),
					"failed":     result.Failed(),
				},
			}
			if err != nil {
				payload.ExitCode = 1
			}
			deps.telemetry(payload)

			return cli.Finish(span, err)
		},
	}

	cmd.Flags().Bool("duplicates", false, i18n.T("cmd.list.flag.duplicates"))
	cmd.Flags().Int("concurrency", 0, i18n.T("cmd.list.flag.concurrency"))

	return cmd
}

func runList(ctx context.Context, opts listOptions, deps listDeps) (modlist.Result, error) {
	gamePath, err := opts.ResolveGamePath(ctx, deps.fs, deps.logger)
	if err != nil {
		return modlist.Result{}, err
	}

	matcher, err := ignore.Load(deps.fs, gamePath)
	if err != nil {
		return modlist.Result{}, err
	}
	deps.logger.DebugFields("ignore patterns", map[string]interface{}{
		"patterns": strings.Join(matcher.Patterns(), ", "),
	})

	modsDir := config.ResolveModsFolder(ctx, deps.fs, opts.Metadata(), gamePath)
	result, err := modlist.Scan(ctx, deps.fs, modlist.Options{
		ModsDir:     modsDir,
		Ignore:      matcher,
		Concurrency: opts.Concurrency,
	})
	if err != nil {
		return modlist.Result{}, err
	}

	if opts.JSON {
		if opts.DuplicatesOnly {
			return result, cli.PrintJSON(deps.out, result.Duplicates)
		}
		return result, cli.PrintJSON(deps.out, result)
	}

	deps.logger.Log(renderReport(result, opts.DuplicatesOnly), false)
	return result, nil
}

// renderReport is the plain text form of a scan: one line per archive and a
// summary, then the duplicate GUIDs with their paths.
func renderReport(result modlist.Result, duplicatesOnly bool) string {
	lines := make([]string, 0, len(result.Entries)+len(result.Duplicates)+2)
	if !duplicatesOnly {
		lines = append(lines, entryLines(result)...)
	}
	lines = append(lines, duplicateLines(result)...)
	return strings.Join(lines, "\n")
}

func entryLines(result modlist.Result) []string {
	lines := make([]string, 0, len(result.Entries)+1)
	for _, entry := range result.Entries {
		if entry.Manifest == nil {
			lines = append(lines, fmt.Sprintf("%s %s: %s", tui.ErrorIcon(false), entry.Path, entry.Error))
			continue
		}
		lines = append(lines, i18n.T("cmd.list.entry", i18n.Tvars{
			Data: &i18n.TData{
				"name":    entry.Manifest.DisplayName(),
				"version": entry.Manifest.Version,
				"guid":    entry.Manifest.GUID,
				"path":    entry.Path,
			},
		}))
	}
	return append(lines, i18n.T("cmd.list.summary", i18n.Tvars{
		Count: len(result.Entries),
		Data:  &i18n.TData{"count": len(result.Entries), "failed": result.Failed()},
	}))
}

func duplicateLines(result modlist.Result) []string {
	if len(result.Duplicates) == 0 {
		return []string{i18n.T("cmd.list.no_duplicates")}
	}

	lines := make([]string, 0)
	for _, duplicate := range result.Duplicates {
		lines = append(lines, fmt.Sprintf("%s %s", tui.WarningIcon(false), i18n.T("cmd.list.duplicate", i18n.Tvars{
			Data: &i18n.TData{"guid": duplicate.GUID},
		})))
		for _, path := range duplicate.Paths {
			lines = append(lines, "    "+path)
		}
	}
	return lines
}
