// Package config reads and writes the kmm.json settings file and resolves the
// game directory every command works against.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/koikatsu-mod-manager/internal/constants"
	"github.com/meza/koikatsu-mod-manager/internal/environment"
	"github.com/meza/koikatsu-mod-manager/internal/models"
	"github.com/meza/koikatsu-mod-manager/internal/perf"
)

// GamePathSource names where a resolved game path came from.
type GamePathSource string

const (
	SourceFlag     GamePathSource = "flag"
	SourceEnv      GamePathSource = "env"
	SourceSettings GamePathSource = "settings"
)

func ReadSettings(ctx context.Context, fs afero.Fs, meta Metadata) (models.Settings, error) {
	_, span := perf.StartSpan(ctx, "io.config.read")
	defer span.End()
	span.SetAttributes(attribute.String("config_path", meta.ConfigPath))

	exists, err := afero.Exists(fs, meta.ConfigPath)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to check configuration file: %w", err)
	}
	if !exists {
		return models.Settings{}, &FileNotFoundError{Path: meta.ConfigPath}
	}

	data, err := afero.ReadFile(fs, meta.ConfigPath)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to read configuration file: %w", err)
	}

	var settings models.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return models.Settings{}, &FileInvalidError{Path: meta.ConfigPath, Err: err}
	}
	if strings.TrimSpace(settings.ModsFolder) == "" {
		settings.ModsFolder = constants.ModsFolder
	}

	return settings, nil
}

func WriteSettings(ctx context.Context, fs afero.Fs, meta Metadata, settings models.Settings) error {
	_, span := perf.StartSpan(ctx, "io.config.write")
	defer span.End()
	span.SetAttributes(attribute.String("config_path", meta.ConfigPath))

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := fs.MkdirAll(meta.Dir(), 0o755); err != nil {
		return err
	}
	return writeFileAtomic(fs, meta.ConfigPath, data, defaultFileMode)
}

// InitSettings validates gamePath and stores it in a fresh settings file,
// replacing any previous one.
func InitSettings(ctx context.Context, fs afero.Fs, meta Metadata, gamePath string) (models.Settings, error) {
	ctx, span := perf.StartSpan(ctx, "io.config.init")
	defer span.End()

	absolute, err := filepath.Abs(gamePath)
	if err != nil {
		return models.Settings{}, err
	}

	isDir, err := afero.IsDir(fs, absolute)
	if err != nil || !isDir {
		return models.Settings{}, &GamePathInvalidError{Path: absolute}
	}

	settings := models.Settings{
		GamePath:   absolute,
		ModsFolder: constants.ModsFolder,
	}
	if err := WriteSettings(ctx, fs, meta, settings); err != nil {
		return models.Settings{}, err
	}
	return settings, nil
}

// ResolveGamePath picks the game directory from the flag value, then the
// KMM_GAME_PATH environment variable, then the settings file.
func ResolveGamePath(ctx context.Context, fs afero.Fs, meta Metadata, flagValue string) (string, GamePathSource, error) {
	if value := strings.TrimSpace(flagValue); value != "" {
		return value, SourceFlag, nil
	}
	if value, ok := environment.GamePath(); ok {
		return value, SourceEnv, nil
	}

	settings, err := ReadSettings(ctx, fs, meta)
	if err != nil {
		var notFound *FileNotFoundError
		if errors.As(err, &notFound) {
			return "", "", &GamePathNotSetError{ConfigPath: meta.ConfigPath}
		}
		return "", "", err
	}
	if strings.TrimSpace(settings.GamePath) == "" {
		return "", "", &GamePathNotSetError{ConfigPath: meta.ConfigPath}
	}

	return settings.GamePath, SourceSettings, nil
}

// ResolveModsFolder returns the mods folder for gamePath, honouring a custom
// modsFolder from the settings file when one exists.
func ResolveModsFolder(ctx context.Context, fs afero.Fs, meta Metadata, gamePath string) string {
	settings, err := ReadSettings(ctx, fs, meta)
	if err != nil {
		settings = models.Settings{ModsFolder: constants.ModsFolder}
	}
	return ModsFolderPath(gamePath, settings)
}
