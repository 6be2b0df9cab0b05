package perf

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportToFile_WritesJSONAndNormalizesPaths(t *testing.T) {
	fs := afero.NewMemMapFs()
	baseDir := filepath.FromSlash("/games/Koikatsu")
	outDir := filepath.FromSlash("/tmp/perf")

	spans := []SpanSnapshot{
		{
			Name:      "io.manifest.read",
			StartTime: time.Unix(1, 0),
			EndTime:   time.Unix(2, 0),
			Attributes: map[string]interface{}{
				"path":        filepath.Join(baseDir, "mods", "a.zipmod"),
				"config_path": filepath.FromSlash("/elsewhere/kmm.json"),
				"count":       int64(3),
			},
		},
	}

	written, err := ExportToFile(fs, outDir, baseDir, spans)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, defaultExportFilename), written)

	raw, err := afero.ReadFile(fs, written)
	require.NoError(t, err)

	var decoded []SpanSnapshot
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)

	assert.Equal(t, "mods/a.zipmod", decoded[0].Attributes["path"])
	assert.Equal(t, "/elsewhere/kmm.json", decoded[0].Attributes["config_path"])
	assert.Equal(t, float64(3), decoded[0].Attributes["count"])
}

func TestExportToFile_DefaultsOutDir(t *testing.T) {
	fs := afero.NewMemMapFs()

	written, err := ExportToFile(fs, "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, defaultExportFilename, written)
}

func TestLooksLikePathKey(t *testing.T) {
	assert.True(t, looksLikePathKey("path"))
	assert.True(t, looksLikePathKey("archive_path"))
	assert.True(t, looksLikePathKey("game.path"))
	assert.False(t, looksLikePathKey("pathological"))
}
