package trash

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTrasher struct {
	trashed []string
	failOn  string
}

func (r *recordingTrasher) Trash(_ context.Context, path string) error {
	if path == r.failOn {
		return errors.New("permission denied")
	}
	r.trashed = append(r.trashed, path)
	return nil
}

func TestDeleteTrashesInOrder(t *testing.T) {
	trasher := &recordingTrasher{}

	err := Delete(context.Background(), trasher, []string{"a", "b", "c"})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, trasher.trashed)
}

func TestDeleteStopsAtFirstFailure(t *testing.T) {
	trasher := &recordingTrasher{failOn: "b"}

	err := Delete(context.Background(), trasher, []string{"a", "b", "c"})

	var deleteErr *DeleteError
	require.ErrorAs(t, err, &deleteErr)
	assert.Equal(t, "b", deleteErr.Path)
	assert.Equal(t, "Failed to delete b: permission denied", err.Error())
	assert.Equal(t, []string{"a"}, trasher.trashed)
}

func TestDeleteWithNoPaths(t *testing.T) {
	assert.NoError(t, Delete(context.Background(), &recordingTrasher{}, nil))
}

func TestDeleteHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	trasher := &recordingTrasher{}

	err := Delete(ctx, trasher, []string{"a"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, trasher.trashed)
}

func TestObserveReportsOnlyTrashedPaths(t *testing.T) {
	var seen []string
	trasher := Observe(&recordingTrasher{failOn: "b"}, func(path string) {
		seen = append(seen, path)
	})

	err := Delete(context.Background(), trasher, []string{"a", "b", "c"})

	require.Error(t, err)
	assert.Equal(t, []string{"a"}, seen)
}
