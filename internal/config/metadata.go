package config

import (
	"path/filepath"
	"strings"

	"github.com/meza/koikatsu-mod-manager/internal/constants"
	"github.com/meza/koikatsu-mod-manager/internal/models"
)

type Metadata struct {
	ConfigPath string
}

func NewMetadata(configPath string) Metadata {
	if strings.TrimSpace(configPath) == "" {
		configPath = constants.DefaultConfigFile
	}
	return Metadata{ConfigPath: configPath}
}

func (m Metadata) Dir() string {
	return filepath.Dir(filepath.FromSlash(m.ConfigPath))
}

// ModsFolderPath resolves the settings' mods folder against the game path.
// An absolute mods folder is used as-is.
func ModsFolderPath(gamePath string, settings models.Settings) string {
	folder := strings.TrimSpace(settings.ModsFolder)
	if folder == "" {
		folder = constants.ModsFolder
	}
	if isAbsoluteOrRootedPath(folder) {
		return filepath.FromSlash(folder)
	}
	return filepath.Join(gamePath, filepath.FromSlash(folder))
}

func isAbsoluteOrRootedPath(path string) bool {
	if filepath.IsAbs(path) {
		return true
	}
	return strings.HasPrefix(path, "/") || strings.HasPrefix(path, "\\")
}
