package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meza/koikatsu-mod-manager/internal/lifecycle"
	"github.com/meza/koikatsu-mod-manager/internal/perf"
)

func TestRunWithDeps_RecordsLifecycleSpans(t *testing.T) {
	perf.Reset()
	t.Cleanup(perf.Reset)

	fs := afero.NewMemMapFs()
	var calls []string
	deps := runDeps{
		execute: func(context.Context) error {
			calls = append(calls, "execute")
			return nil
		},
		telemetryInit: func() {
			calls = append(calls, "telemetryInit")
		},
		telemetryShutdown: func(context.Context) {
			calls = append(calls, "telemetryShutdown")
		},
		register: func(handler lifecycle.Handler) lifecycle.HandlerID {
			assert.NotNil(t, handler)
			calls = append(calls, "register")
			return 42
		},
		unregister: func(id lifecycle.HandlerID) {
			calls = append(calls, "unregister")
			assert.Equal(t, lifecycle.HandlerID(42), id)
		},
		fs:   fs,
		args: []string{"--perf", "conflicts"},
		cwd:  filepath.FromSlash("/work"),
	}

	exitCode := runWithDeps(deps)
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, []string{"telemetryInit", "register", "execute", "telemetryShutdown", "unregister"}, calls)

	spans, err := perf.GetSpans()
	require.NoError(t, err)
	assertSpanExists(t, spans, perfLifecycleStartup)
	assertSpanExists(t, spans, perfLifecycleExecute)
	assertSpanExists(t, spans, perfLifecycleShutdown)

	expectedDir, err := filepath.Abs(filepath.FromSlash("/work"))
	require.NoError(t, err)
	exists, err := afero.Exists(fs, filepath.Join(expectedDir, "kmm-perf.json"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRunWithDeps_SignalShutdownIsRecordedOnce(t *testing.T) {
	perf.Reset()
	t.Cleanup(perf.Reset)

	var calls []string
	var registeredHandler lifecycle.Handler

	deps := runDeps{
		execute: func(context.Context) error {
			calls = append(calls, "execute-start")
			require.NotNil(t, registeredHandler)
			registeredHandler(os.Interrupt)
			calls = append(calls, "execute-end")
			return nil
		},
		telemetryInit: func() {
			calls = append(calls, "telemetryInit")
		},
		telemetryShutdown: func(context.Context) {
			calls = append(calls, "telemetryShutdown")
		},
		register: func(handler lifecycle.Handler) lifecycle.HandlerID {
			calls = append(calls, "register")
			registeredHandler = handler
			return 7
		},
		unregister: func(id lifecycle.HandlerID) {
			calls = append(calls, "unregister")
			assert.Equal(t, lifecycle.HandlerID(7), id)
		},
		fs:   afero.NewMemMapFs(),
		args: []string{"--perf"},
		cwd:  filepath.FromSlash("/work"),
	}

	exitCode := runWithDeps(deps)
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, []string{"telemetryInit", "register", "execute-start", "telemetryShutdown", "execute-end", "unregister"}, calls)

	spans, err := perf.GetSpans()
	require.NoError(t, err)
	shutdownSpan, ok := perf.FindSpanByName(spans, perfLifecycleShutdown)
	require.True(t, ok)
	assert.Equal(t, string(shutdownTriggerSignal), shutdownSpan.Attributes["trigger"])
	assert.Equal(t, os.Interrupt.String(), shutdownSpan.Attributes["signal"])
}

func TestRunWithDeps_ReportsErrors(t *testing.T) {
	perf.Reset()
	t.Cleanup(perf.Reset)

	stderr := &bytes.Buffer{}
	deps := runDeps{
		execute: func(context.Context) error {
			return errors.New("No known log file found in the specified game path.")
		},
		telemetryInit:     func() {},
		telemetryShutdown: func(context.Context) {},
		register:          func(lifecycle.Handler) lifecycle.HandlerID { return 1 },
		unregister:        func(lifecycle.HandlerID) {},
		stderr:            stderr,
		cwd:               filepath.FromSlash("/work"),
	}

	assert.Equal(t, 1, runWithDeps(deps))
	assert.Equal(t, "No known log file found in the specified game path.\n", stderr.String())
}

func TestPerfExportConfigFromArgs_DefaultsToConfigDir(t *testing.T) {
	cwd := filepath.FromSlash("/workdir")
	cfg := perfExportConfigFromArgs([]string{"--perf", "--config", "configs/kmm.json", "list"}, cwd)
	assert.True(t, cfg.enabled)

	expectedConfig, err := filepath.Abs(filepath.Join(cwd, filepath.FromSlash("configs/kmm.json")))
	require.NoError(t, err)
	expectedDir := filepath.Dir(expectedConfig)
	assert.Equal(t, expectedDir, cfg.baseDir)
	assert.Equal(t, expectedDir, cfg.outDir)
}

func TestPerfExportConfigFromArgs_PerfOutDirRelativeToConfigDir(t *testing.T) {
	cwd := filepath.FromSlash("/workdir")
	cfg := perfExportConfigFromArgs([]string{"conflicts", "--log-file", "x.log", "--perf", "-c=cfg/kmm.json", "--perf-out-dir", "perf"}, cwd)

	expectedConfig, err := filepath.Abs(filepath.Join(cwd, filepath.FromSlash("cfg/kmm.json")))
	require.NoError(t, err)
	expectedDir := filepath.Dir(expectedConfig)
	assert.True(t, cfg.enabled)
	assert.Equal(t, expectedDir, cfg.baseDir)
	assert.Equal(t, filepath.Join(expectedDir, "perf"), cfg.outDir)
}

func TestPerfExportConfigFromArgs_CapturesDebugFlag(t *testing.T) {
	cfg := perfExportConfigFromArgs([]string{"--perf", "-d"}, filepath.FromSlash("/workdir"))
	assert.True(t, cfg.debug)

	cfg = perfExportConfigFromArgs([]string{"log"}, filepath.FromSlash("/workdir"))
	assert.False(t, cfg.enabled)
	assert.False(t, cfg.debug)
}

func assertSpanExists(t *testing.T, spans []perf.SpanSnapshot, name string) {
	t.Helper()
	_, ok := perf.FindSpanByName(spans, name)
	assert.True(t, ok, "expected span %q to exist", name)
}
