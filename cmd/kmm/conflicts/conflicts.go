package conflicts

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/meza/koikatsu-mod-manager/internal/cli"
	"github.com/meza/koikatsu-mod-manager/internal/conflicts"
	"github.com/meza/koikatsu-mod-manager/internal/gamelog"
	"github.com/meza/koikatsu-mod-manager/internal/i18n"
	"github.com/meza/koikatsu-mod-manager/internal/logger"
	"github.com/meza/koikatsu-mod-manager/internal/models"
	"github.com/meza/koikatsu-mod-manager/internal/perf"
	"github.com/meza/koikatsu-mod-manager/internal/telemetry"
	"github.com/meza/koikatsu-mod-manager/internal/trash"
	"github.com/meza/koikatsu-mod-manager/internal/tui"
)

type conflictsOptions struct {
	cli.GlobalOptions
	LogFile       string
	RemoveSkipped bool
	Yes           bool
}

type conflictsDeps struct {
	fs        afero.Fs
	logger    *logger.Logger
	trasher   trash.Trasher
	in        io.Reader
	out       io.Writer
	telemetry func(telemetry.CommandTelemetry)
	runPager  func(model tea.Model, in io.Reader, out io.Writer) error
}

type conflictsResult struct {
	conflicts []models.ModConflict
	removed   int
}

func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: i18n.T("cmd.conflicts.short"),
		Long:  i18n.T("cmd.conflicts.long"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, span := perf.StartSpan(cmd.Context(), "app.command.conflicts")
			started := time.Now()

			global, err := cli.ReadGlobalOptions(cmd)
			if err != nil {
				return cli.Finish(span, err)
			}
			logFile, err := cmd.Flags().GetString("log-file")
			if err != nil {
				return cli.Finish(span, err)
			}
			removeSkipped, err := cmd.Flags().GetBool("remove-skipped")
			if err != nil {
				return cli.Finish(span, err)
			}
			yes, err := cmd.Flags().GetBool("yes")
			if err != nil {
				return cli.Finish(span, err)
			}

			fs := afero.NewOsFs()
			deps := conflictsDeps{
				fs:        fs,
				logger:    global.Logger(cmd),
				trasher:   trash.Default(fs),
				in:        cmd.InOrStdin(),
				out:       cmd.OutOrStdout(),
				telemetry: telemetry.RecordCommand,
				runPager:  runPager,
			}

			result, err := runConflicts(ctx, conflictsOptions{
				GlobalOptions: global,
				LogFile:       logFile,
				RemoveSkipped: removeSkipped,
				Yes:           yes,
			}, deps)

			payload := telemetry.CommandTelemetry{
				Command:  "conflicts",
				Success:  err == nil,
				Error:    err,
				Duration: time.Since(started),
				Arguments: map[string]interface{}{
					"logFile":       logFile != "",
					"removeSkipped": removeSkipped,
					"json":          global.JSON,
				},
				Extra: map[string]interface{}{
					"conflicts": len(result.conflicts),
					"skipped":   conflicts.CountSkipped(result.conflicts),
					"removed":   result.removed,
				},
			}
			if err != nil {
				payload.ExitCode = 1
			}
			deps.telemetry(payload)

			return cli.Finish(span, err)
		},
	}

	cmd.Flags().StringP("log-file", "l", "", i18n.T("cmd.conflicts.flag.log_file"))
	cmd.Flags().Bool("remove-skipped", false, i18n.T("cmd.conflicts.flag.remove_skipped"))
	cmd.Flags().BoolP("yes", "y", false, i18n.T("cmd.conflicts.flag.yes"))

	return cmd
}

func runConflicts(ctx context.Context, opts conflictsOptions, deps conflictsDeps) (conflictsResult, error) {
	gamePath, err := opts.ResolveGamePath(ctx, deps.fs, deps.logger)
	if err != nil {
		return conflictsResult{}, err
	}

	logText, err := readLog(ctx, opts, deps, gamePath)
	if err != nil {
		return conflictsResult{}, err
	}

	found := conflicts.Parse(ctx, deps.fs, logText, gamePath)
	result := conflictsResult{conflicts: found}
	deps.logger.DebugFields("parsed log", map[string]interface{}{
		"conflicts": len(found),
		"skipped":   conflicts.CountSkipped(found),
	})

	if opts.JSON {
		if err := cli.PrintJSON(deps.out, found); err != nil {
			return result, err
		}
	} else if err := showReport(found, opts, deps); err != nil {
		return result, err
	}

	if !opts.RemoveSkipped {
		return result, nil
	}

	removed, err := removeSkipped(ctx, found, opts, deps)
	result.removed = removed
	return result, err
}

func readLog(ctx context.Context, opts conflictsOptions, deps conflictsDeps, gamePath string) (string, error) {
	if opts.LogFile == "" {
		return gamelog.Read(ctx, deps.fs, gamePath)
	}

	deps.logger.Debugf("reading log override %s", opts.LogFile)
	return gamelog.ReadFile(ctx, deps.fs, opts.LogFile)
}

func showReport(found []models.ModConflict, opts conflictsOptions, deps conflictsDeps) error {
	if len(found) == 0 {
		deps.logger.Log(i18n.T("cmd.conflicts.none"), false)
		return nil
	}

	useTUI := tui.ShouldUseTUI(opts.Quiet, deps.in, deps.out) && !opts.RemoveSkipped
	report := formatReport(found, useTUI)
	if !useTUI {
		deps.logger.Log(report, false)
		return nil
	}

	title := i18n.T("cmd.conflicts.title", i18n.Tvars{
		Count: len(found),
		Data:  &i18n.TData{"count": len(found)},
	})
	return deps.runPager(tui.NewPager(title, report), deps.in, deps.out)
}

func formatReport(found []models.ModConflict, colorize bool) string {
	var sb strings.Builder
	for i, conflict := range found {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s %s\n", tui.SuccessIcon(colorize), i18n.T("cmd.conflicts.loaded", i18n.Tvars{
			Data: &i18n.TData{"name": conflict.Loaded.Name, "details": describe(conflict.Loaded)},
		}))
		for _, skipped := range conflict.Skipped {
			fmt.Fprintf(&sb, "  %s %s\n", tui.WarningIcon(colorize), i18n.T("cmd.conflicts.skipped", i18n.Tvars{
				Data: &i18n.TData{"name": skipped.Name, "details": describe(skipped)},
			}))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func describe(entry models.ModEntry) string {
	parts := []string{humanize.IBytes(entry.Size)}
	if entry.Created != nil {
		parts = append(parts, time.Unix(int64(*entry.Created), 0).Format("2006-01-02 15:04"))
	}
	return strings.Join(parts, ", ")
}

func removeSkipped(ctx context.Context, found []models.ModConflict, opts conflictsOptions, deps conflictsDeps) (int, error) {
	paths := make([]string, 0)
	for _, conflict := range found {
		paths = append(paths, conflict.SkippedPaths()...)
	}
	if len(paths) == 0 {
		deps.logger.Log(i18n.T("cmd.conflicts.nothing_to_remove"), false)
		return 0, nil
	}

	if !opts.Yes {
		confirmed, err := confirm(deps, i18n.T("cmd.conflicts.confirm", i18n.Tvars{
			Count: len(paths),
			Data:  &i18n.TData{"count": len(paths)},
		}))
		if err != nil {
			return 0, err
		}
		if !confirmed {
			deps.logger.Log(i18n.T("cmd.conflicts.aborted"), true)
			return 0, nil
		}
	}

	removed := 0
	reporter := trash.Observe(deps.trasher, func(path string) {
		removed++
		deps.logger.Log(i18n.T("cmd.remove.removed", i18n.Tvars{Data: &i18n.TData{"path": path}}), false)
	})
	err := trash.Delete(ctx, reporter, paths)
	return removed, err
}

// confirm asks on stderr so a --json document on stdout stays intact.
func confirm(deps conflictsDeps, question string) (bool, error) {
	deps.logger.Errorf("%s [y/N] ", question)
	answer, err := bufio.NewReader(deps.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

func runPager(model tea.Model, in io.Reader, out io.Writer) error {
	options := append(tui.ProgramOptions(in, out), tea.WithAltScreen())
	_, err := tea.NewProgram(model, options...).Run()
	return err
}
