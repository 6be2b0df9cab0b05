package remove

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meza/koikatsu-mod-manager/internal/cli"
	"github.com/meza/koikatsu-mod-manager/internal/logger"
	"github.com/meza/koikatsu-mod-manager/internal/telemetry"
	"github.com/meza/koikatsu-mod-manager/internal/trash"
)

type fakeTrasher struct {
	trashed []string
	failOn  string
}

func (f *fakeTrasher) Trash(_ context.Context, path string) error {
	if path == f.failOn {
		return errors.New("No such file or directory")
	}
	f.trashed = append(f.trashed, path)
	return nil
}

func newDeps(t *testing.T, trasher trash.Trasher, quiet bool) (removeDeps, *bytes.Buffer) {
	t.Helper()
	t.Setenv("KMM_TEST", "true")
	out := &bytes.Buffer{}
	return removeDeps{
		logger:    logger.New(out, &bytes.Buffer{}, quiet, false),
		trasher:   trasher,
		out:       out,
		telemetry: func(telemetry.CommandTelemetry) {},
	}, out
}

func TestRunRemoveTrashesEveryPath(t *testing.T) {
	trasher := &fakeTrasher{}
	deps, out := newDeps(t, trasher, false)

	removed, err := runRemove(context.Background(), removeOptions{Paths: []string{"/game/mods/a.zipmod", "/game/mods/b.zipmod"}}, deps)

	require.NoError(t, err)
	assert.Equal(t, []string{"/game/mods/a.zipmod", "/game/mods/b.zipmod"}, removed)
	assert.Equal(t, removed, trasher.trashed)
	assert.Equal(t,
		"cmd.remove.removed, Arg 1: {Count: 0, Data: &map[path:/game/mods/a.zipmod]}\n"+
			"cmd.remove.removed, Arg 1: {Count: 0, Data: &map[path:/game/mods/b.zipmod]}\n",
		out.String())
}

func TestRunRemoveStopsAtFirstFailure(t *testing.T) {
	trasher := &fakeTrasher{failOn: "/game/mods/b.zipmod"}
	deps, _ := newDeps(t, trasher, false)

	removed, err := runRemove(context.Background(), removeOptions{Paths: []string{"/game/mods/a.zipmod", "/game/mods/b.zipmod", "/game/mods/c.zipmod"}}, deps)

	require.Error(t, err)
	assert.Equal(t, "Failed to delete /game/mods/b.zipmod: No such file or directory", err.Error())
	assert.Equal(t, []string{"/game/mods/a.zipmod"}, removed)
	assert.Equal(t, []string{"/game/mods/a.zipmod"}, trasher.trashed)
}

func TestRunRemoveQuietSuppressesOutput(t *testing.T) {
	deps, out := newDeps(t, &fakeTrasher{}, true)

	_, err := runRemove(context.Background(), removeOptions{Paths: []string{"/game/mods/a.zipmod"}}, deps)

	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestRunRemoveJSON(t *testing.T) {
	deps, out := newDeps(t, &fakeTrasher{}, true)

	_, err := runRemove(context.Background(), removeOptions{
		GlobalOptions: cli.GlobalOptions{JSON: true},
		Paths:         []string{"/game/mods/a.zipmod"},
	}, deps)

	require.NoError(t, err)
	assert.JSONEq(t, `{"removed":["/game/mods/a.zipmod"]}`, out.String())
}

func TestRunRemoveJSONListsTrashedPathsOnFailure(t *testing.T) {
	deps, out := newDeps(t, &fakeTrasher{failOn: "/game/mods/b.zipmod"}, true)

	removed, err := runRemove(context.Background(), removeOptions{
		GlobalOptions: cli.GlobalOptions{JSON: true},
		Paths:         []string{"/game/mods/a.zipmod", "/game/mods/b.zipmod", "/game/mods/c.zipmod"},
	}, deps)

	var deleteErr *trash.DeleteError
	require.ErrorAs(t, err, &deleteErr)
	assert.Equal(t, "/game/mods/b.zipmod", deleteErr.Path)
	assert.Equal(t, []string{"/game/mods/a.zipmod"}, removed)
	assert.JSONEq(t, `{"removed":["/game/mods/a.zipmod"]}`, out.String())
}

func TestRunRemoveJSONWithNothingTrashed(t *testing.T) {
	deps, out := newDeps(t, &fakeTrasher{failOn: "/game/mods/a.zipmod"}, true)

	_, err := runRemove(context.Background(), removeOptions{
		GlobalOptions: cli.GlobalOptions{JSON: true},
		Paths:         []string{"/game/mods/a.zipmod"},
	}, deps)

	require.Error(t, err)
	assert.JSONEq(t, `{"removed":[]}`, out.String())
}

func TestCommandRequiresPaths(t *testing.T) {
	t.Setenv("KMM_TEST", "true")
	cmd := Command()

	assert.Error(t, cmd.Args(cmd, nil))
	assert.NoError(t, cmd.Args(cmd, []string{"a.zipmod"}))
}

func TestCommandMissingGlobalFlagsErrors(t *testing.T) {
	t.Setenv("KMM_TEST", "true")
	runE := Command().RunE
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	assert.Error(t, runE(cmd, []string{"a.zipmod"}))
}
