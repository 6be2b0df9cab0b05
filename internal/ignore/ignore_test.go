package ignore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPatternsWithoutFileIsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	rootDir := filepath.FromSlash("/game")
	require.NoError(t, fs.MkdirAll(rootDir, 0755))

	patterns, err := ListPatterns(fs, rootDir)
	require.NoError(t, err)
	assert.Empty(t, patterns)
}

func TestListPatternsSkipsBlankLinesAndComments(t *testing.T) {
	fs := afero.NewMemMapFs()
	rootDir := filepath.FromSlash("/game")
	content := "\n# old packs\n mods/Sideloader Modpack/** \n\nmods/*.zip\n"
	require.NoError(t, afero.WriteFile(fs, filepath.Join(rootDir, FileName), []byte(content), 0644))

	patterns, err := ListPatterns(fs, rootDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"mods/Sideloader Modpack/**", "mods/*.zip"}, patterns)
}

func TestListPatternsReturnsErrorWhenStatFails(t *testing.T) {
	fs := statErrorFs{Fs: afero.NewMemMapFs(), err: errors.New("stat failed")}

	_, err := ListPatterns(fs, filepath.FromSlash("/game"))
	assert.Error(t, err)
}

func TestMatcher(t *testing.T) {
	root := filepath.FromSlash("/game")
	matcher := New(root, []string{"**/*.bak", "mods/MyMods/*.zipmod", "mods/**/test?.zip"})

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "double star prefix", path: "/game/mods/deep/a.zipmod.bak", want: true},
		{name: "star matches any name in segment", path: "/game/mods/MyMods/old.zipmod", want: true},
		{name: "single segment star", path: "/game/mods/MyMods/a.zipmod", want: true},
		{name: "star does not cross segments", path: "/game/mods/MyMods/sub/a.zipmod", want: false},
		{name: "double star and question mark", path: "/game/mods/x/y/test1.zip", want: true},
		{name: "unmatched", path: "/game/mods/other.zipmod", want: false},
		{name: "outside root", path: "/elsewhere/mods/MyMods/a.zipmod", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matcher.Match(filepath.FromSlash(tt.path)))
		})
	}
}

func TestLoadBuildsMatcherFromFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	rootDir := filepath.FromSlash("/game")
	require.NoError(t, afero.WriteFile(fs, filepath.Join(rootDir, FileName), []byte("mods/skip.zipmod\n"), 0644))

	matcher, err := Load(fs, rootDir)
	require.NoError(t, err)

	assert.True(t, matcher.Match(filepath.Join(rootDir, "mods", "skip.zipmod")))
	assert.False(t, matcher.Match(filepath.Join(rootDir, "mods", "keep.zipmod")))
	assert.Equal(t, []string{"mods/skip.zipmod"}, matcher.Patterns())
}

type statErrorFs struct {
	afero.Fs
	err error
}

func (s statErrorFs) Stat(string) (os.FileInfo, error) {
	return nil, s.err
}
