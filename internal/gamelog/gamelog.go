// Package gamelog finds and reads the log file the game writes on every start.
package gamelog

import (
	"context"
	"path/filepath"
	"unicode/utf8"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/koikatsu-mod-manager/internal/perf"
)

// Candidates lists the known log locations under gamePath in lookup order:
// the Unity player log in the root, the Unity player log in the data folder,
// and the BepInEx console log.
func Candidates(gamePath string) []string {
	return []string{
		filepath.Join(gamePath, "output_log.txt"),
		filepath.Join(gamePath, "Koikatsu_Data", "output_log.txt"),
		filepath.Join(gamePath, "BepInEx", "LogOutput.log"),
	}
}

// Locate returns the first candidate that exists.
func Locate(fs afero.Fs, gamePath string) (string, error) {
	candidates := Candidates(gamePath)
	for _, candidate := range candidates {
		if exists, _ := afero.Exists(fs, candidate); exists {
			return candidate, nil
		}
	}
	return "", &NotFoundError{GamePath: gamePath, Candidates: candidates}
}

// Read returns the whole content of the first existing log. A read failure on
// that file is final; later candidates are not consulted.
func Read(ctx context.Context, fs afero.Fs, gamePath string) (string, error) {
	path, err := Locate(fs, gamePath)
	if err != nil {
		return "", err
	}
	return ReadFile(ctx, fs, path)
}

// ReadFile reads the log at path. The content must be valid UTF-8.
func ReadFile(ctx context.Context, fs afero.Fs, path string) (string, error) {
	_, span := perf.StartSpan(ctx, "io.log.read")
	defer span.End()
	span.SetAttributes(attribute.String("path", path))

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", &ReadError{Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return "", &ReadError{Path: path, Err: ErrInvalidUTF8}
	}

	span.SetAttributes(attribute.Int("bytes", len(data)))
	return string(data), nil
}
