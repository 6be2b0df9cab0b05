package trash

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	program string
	args    []string
	env     []string
	output  []byte
	err     error
}

func (f *fakeRunner) run(_ context.Context, program string, args []string, env []string) ([]byte, error) {
	f.program = program
	f.args = args
	f.env = env
	return f.output, f.err
}

func TestFinderTrasherPassesPathThroughEnvironment(t *testing.T) {
	fs := afero.NewMemMapFs()
	path, err := filepath.Abs(filepath.Join("game", "mods", `quote".zipmod`))
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, path, []byte("zip"), 0o644))
	runner := &fakeRunner{}

	require.NoError(t, newFinderTrasher(fs, runner.run).Trash(context.Background(), path))

	assert.Equal(t, "osascript", runner.program)
	assert.Equal(t, []string{pathEnvVar + "=" + path}, runner.env)
	assert.NotContains(t, runner.args[1], path)
	assert.Contains(t, runner.args[1], `system attribute "KMM_TRASH_PATH"`)
}

func TestRecycleBinTrasherUsesPowerShell(t *testing.T) {
	fs := afero.NewMemMapFs()
	path, err := filepath.Abs("mod.zipmod")
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, path, []byte("zip"), 0o644))
	runner := &fakeRunner{}

	require.NoError(t, newRecycleBinTrasher(fs, runner.run).Trash(context.Background(), path))

	assert.Equal(t, "powershell.exe", runner.program)
	assert.Contains(t, runner.args, "-NoProfile")
	assert.Contains(t, runner.args[len(runner.args)-1], "SendToRecycleBin")
	assert.Contains(t, runner.args[len(runner.args)-1], "$env:KMM_TRASH_PATH")
}

func TestCommandTrasherIncludesHelperOutputInError(t *testing.T) {
	fs := afero.NewMemMapFs()
	path, err := filepath.Abs("mod.zipmod")
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, path, []byte("zip"), 0o644))
	cause := errors.New("exit status 1")
	runner := &fakeRunner{output: []byte("  Finder got an error\n"), err: cause}

	err = newFinderTrasher(fs, runner.run).Trash(context.Background(), path)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "Finder got an error: exit status 1", err.Error())
}

func TestCommandTrasherRejectsMissingPath(t *testing.T) {
	runner := &fakeRunner{}

	err := newFinderTrasher(afero.NewMemMapFs(), runner.run).Trash(context.Background(), "missing.zipmod")

	require.Error(t, err)
	assert.Empty(t, runner.program)
}
