package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/koikatsu-mod-manager/cmd/kmm"
	"github.com/meza/koikatsu-mod-manager/internal/cli"
	"github.com/meza/koikatsu-mod-manager/internal/constants"
	"github.com/meza/koikatsu-mod-manager/internal/lifecycle"
	"github.com/meza/koikatsu-mod-manager/internal/perf"
	"github.com/meza/koikatsu-mod-manager/internal/telemetry"
)

const (
	perfLifecycleStartup  = "app.lifecycle.startup"
	perfLifecycleExecute  = "app.lifecycle.execute"
	perfLifecycleShutdown = "app.lifecycle.shutdown"

	shutdownTimeout = 3 * time.Second
)

type shutdownTrigger string

const (
	shutdownTriggerExit   shutdownTrigger = "exit"
	shutdownTriggerSignal shutdownTrigger = "signal"
)

type runDeps struct {
	execute           func(context.Context) error
	telemetryInit     func()
	telemetryShutdown func(context.Context)
	register          func(lifecycle.Handler) lifecycle.HandlerID
	unregister        func(lifecycle.HandlerID)
	fs                afero.Fs
	stderr            io.Writer
	args              []string
	cwd               string
}

type perfExportConfig struct {
	enabled bool
	debug   bool
	baseDir string
	outDir  string
}

func main() {
	os.Exit(runWithDeps(defaultRunDeps()))
}

func defaultRunDeps() runDeps {
	args := os.Args[1:]
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	return runDeps{
		execute: func(ctx context.Context) error {
			cmd := kmm.Command()
			cmd.SetArgs(args)
			return cmd.ExecuteContext(ctx)
		},
		telemetryInit:     telemetry.Init,
		telemetryShutdown: telemetry.Shutdown,
		register:          lifecycle.Register,
		unregister:        lifecycle.Unregister,
		fs:                afero.NewOsFs(),
		stderr:            os.Stderr,
		args:              args,
		cwd:               cwd,
	}
}

func runWithDeps(deps runDeps) int {
	if deps.stderr == nil {
		deps.stderr = io.Discard
	}

	perfCfg := perfExportConfigFromArgs(deps.args, deps.cwd)
	if err := perf.Init(perf.Config{Enabled: perfCfg.enabled}); err != nil {
		fmt.Fprintf(deps.stderr, "perf: %v\n", err)
	}

	ctx := context.Background()
	_, startup := perf.StartSpan(ctx, perfLifecycleStartup)
	deps.telemetryInit()

	var shutdownOnce sync.Once
	shutdown := func(trigger shutdownTrigger, sig os.Signal) {
		shutdownOnce.Do(func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			_, span := perf.StartSpan(shutdownCtx, perfLifecycleShutdown)
			span.SetAttributes(attribute.String("trigger", string(trigger)))
			if sig != nil {
				span.SetAttributes(attribute.String("signal", sig.String()))
			}
			deps.telemetryShutdown(shutdownCtx)
			span.End()

			exportPerf(shutdownCtx, perfCfg, deps)
		})
	}

	handlerID := deps.register(func(sig os.Signal) {
		shutdown(shutdownTriggerSignal, sig)
	})
	defer deps.unregister(handlerID)
	startup.End()

	execCtx, execSpan := perf.StartSpan(ctx, perfLifecycleExecute)
	err := deps.execute(execCtx)
	execSpan.SetAttributes(attribute.Bool("success", err == nil))
	execSpan.End()

	exitCode := 0
	if err != nil {
		exitCode = 1
		fmt.Fprintln(deps.stderr, err.Error())
		if perfCfg.debug {
			fmt.Fprintln(deps.stderr, cli.StackTrace(err))
		}
	}

	shutdown(shutdownTriggerExit, nil)
	return exitCode
}

func exportPerf(ctx context.Context, cfg perfExportConfig, deps runDeps) {
	if !cfg.enabled || deps.fs == nil {
		return
	}
	if err := perf.Shutdown(ctx); err != nil {
		fmt.Fprintf(deps.stderr, "perf: %v\n", err)
		return
	}

	spans, err := perf.GetSpans()
	if err != nil {
		fmt.Fprintf(deps.stderr, "perf: %v\n", err)
		return
	}

	path, err := perf.ExportToFile(deps.fs, cfg.outDir, cfg.baseDir, spans)
	if err != nil {
		fmt.Fprintf(deps.stderr, "perf: %v\n", err)
		return
	}
	if cfg.debug {
		fmt.Fprintf(deps.stderr, "perf: wrote %s\n", path)
	}
}

// perfExportConfigFromArgs reads the perf flags before cobra runs so spans
// cover flag parsing too. The report lands next to the settings file unless
// --perf-out-dir says otherwise.
func perfExportConfigFromArgs(args []string, cwd string) perfExportConfig {
	flags := pflag.NewFlagSet("perf", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.SetOutput(io.Discard)
	flags.Usage = func() {}

	enabled := flags.Bool("perf", false, "")
	outDir := flags.String("perf-out-dir", "", "")
	configPath := flags.StringP(cli.FlagConfig, "c", constants.DefaultConfigFile, "")
	debug := flags.BoolP(cli.FlagDebug, "d", false, "")
	flags.StringP(cli.FlagGamePath, "g", "", "")
	flags.BoolP(cli.FlagQuiet, "q", false, "")
	flags.Bool(cli.FlagJSON, false, "")
	flags.BoolP("help", "h", false, "")
	_ = flags.Parse(args)

	configFile := *configPath
	if !filepath.IsAbs(configFile) {
		configFile = filepath.Join(cwd, filepath.FromSlash(configFile))
	}
	if abs, err := filepath.Abs(configFile); err == nil {
		configFile = abs
	}
	baseDir := filepath.Dir(configFile)

	out := baseDir
	if *outDir != "" {
		out = filepath.FromSlash(*outDir)
		if !filepath.IsAbs(out) {
			out = filepath.Join(baseDir, out)
		}
	}

	return perfExportConfig{
		enabled: *enabled,
		debug:   *debug,
		baseDir: baseDir,
		outDir:  out,
	}
}
