package main

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	commands []*exec.Cmd
	err      error
}

func (runner *recordingRunner) Run(command *exec.Cmd) error {
	runner.commands = append(runner.commands, command)
	return runner.err
}

type discardLogger struct{}

func (discardLogger) Printf(string, ...any) {}

func newTestTool(t *testing.T, env []string, fileValues map[string]string, runner *recordingRunner) *buildTool {
	t.Helper()
	return &buildTool{
		repoRoot:      t.TempDir(),
		baseEnv:       env,
		goBinary:      "go",
		commandRunner: runner,
		envFileReader: func(string) (map[string]string, error) { return fileValues, nil },
		logger:        discardLogger{},
	}
}

func envValue(command *exec.Cmd, name string) string {
	for _, entry := range command.Env {
		if value, ok := strings.CutPrefix(entry, name+"="); ok {
			return value
		}
	}
	return ""
}

func TestRunBuildsEveryTargetWithToken(t *testing.T) {
	runner := &recordingRunner{}
	tool := newTestTool(t, []string{"POSTHOG_API_KEY=ph_token", "PATH=/bin"}, nil, runner)

	require.NoError(t, tool.run())
	require.Len(t, runner.commands, len(buildTargets))

	first := runner.commands[0]
	assert.Equal(t, "windows", envValue(first, "GOOS"))
	assert.Equal(t, "0", envValue(first, "CGO_ENABLED"))
	assert.Equal(t, filepath.Join(tool.repoRoot, "build", "windows", "amd64", "kmm.exe"), first.Args[len(first.Args)-2])
	assert.Contains(t, strings.Join(first.Args, " "), posthogLdflag+"=ph_token")

	last := runner.commands[len(runner.commands)-1]
	assert.Equal(t, filepath.Join(tool.repoRoot, "build", "darwin", "arm64", "kmm"), last.Args[len(last.Args)-2])
}

func TestRunFallsBackToEnvFile(t *testing.T) {
	runner := &recordingRunner{}
	tool := newTestTool(t, nil, map[string]string{"POSTHOG_API_KEY": "from_file"}, runner)

	require.NoError(t, tool.run())
	assert.Equal(t, "from_file", envValue(runner.commands[0], "POSTHOG_API_KEY"))
}

func TestRunPrefersEnvironmentOverEnvFile(t *testing.T) {
	runner := &recordingRunner{}
	tool := newTestTool(t, []string{"POSTHOG_API_KEY=from_env"}, map[string]string{"POSTHOG_API_KEY": "from_file"}, runner)

	require.NoError(t, tool.run())
	assert.Equal(t, "from_env", envValue(runner.commands[0], "POSTHOG_API_KEY"))
}

func TestRunFailsWithoutToken(t *testing.T) {
	runner := &recordingRunner{}
	tool := newTestTool(t, []string{"POSTHOG_API_KEY="}, nil, runner)

	err := tool.run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing build token POSTHOG_API_KEY")
	assert.Empty(t, runner.commands)
}

func TestRunStopsAtFirstFailedTarget(t *testing.T) {
	runner := &recordingRunner{err: errors.New("exit status 2")}
	tool := newTestTool(t, []string{"POSTHOG_API_KEY=x"}, nil, runner)

	err := tool.run()
	require.Error(t, err)
	assert.Equal(t, "build windows/amd64: exit status 2", err.Error())
	assert.Len(t, runner.commands, 1)
}

func TestReadEnvFileMissingIsEmpty(t *testing.T) {
	values, err := readEnvFile(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestFindRepoRootWalksUp(t *testing.T) {
	workingDirectory, err := os.Getwd()
	require.NoError(t, err)
	root, err := findRepoRoot(workingDirectory)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "go.mod"))
}

func TestEnvMapToSliceIsSorted(t *testing.T) {
	assert.Equal(t, []string{"A=1", "B=2=3"}, envMapToSlice(envSliceToMap([]string{"B=2=3", "A=1", "broken"})))
}
