// Package conflicts finds duplicate mod versions reported in the game log.
//
// Sideloader writes one line per GUID it saw more than once:
//
//	only "[Author] Mod v2.zipmod" will be loaded. Skipped versions: "[Author] Mod v1.zipmod", "old/Mod.zipmod"
//
// Paths in those lines are relative to the game's mods folder.
package conflicts

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/koikatsu-mod-manager/internal/constants"
	"github.com/meza/koikatsu-mod-manager/internal/fileutils"
	"github.com/meza/koikatsu-mod-manager/internal/models"
	"github.com/meza/koikatsu-mod-manager/internal/perf"
)

var conflictPattern = regexp.MustCompile(`only\s+"([^"]+)"\s+will be loaded\. Skipped versions:\s+((?:"[^"]+",\s*)*"[^"]+")`)

const skippedSeparator = ", "

// Parse extracts every conflict block from log, in the order they appear.
// Entries resolve against <gamePath>/mods; missing files are reported with
// zero size and no creation time rather than failing the parse.
func Parse(ctx context.Context, fs afero.Fs, log string, gamePath string) []models.ModConflict {
	_, span := perf.StartSpan(ctx, "parse.conflicts")
	defer span.End()

	modsPath := joinLogPath(gamePath, constants.ModsFolder)
	matches := conflictPattern.FindAllStringSubmatch(log, -1)

	results := make([]models.ModConflict, 0, len(matches))
	for _, match := range matches {
		loaded := buildModEntry(fs, modsPath, match[1])

		rawSkipped := strings.Split(match[2], skippedSeparator)
		skipped := make([]models.ModEntry, 0, len(rawSkipped))
		for _, raw := range rawSkipped {
			skipped = append(skipped, buildModEntry(fs, modsPath, strings.Trim(raw, `"`)))
		}

		results = append(results, models.ModConflict{Loaded: loaded, Skipped: skipped})
	}

	span.SetAttributes(attribute.Int("conflicts", len(results)))
	return results
}

func buildModEntry(fs afero.Fs, modsPath string, relPath string) models.ModEntry {
	fullPath := joinLogPath(modsPath, relPath)
	meta := fileutils.Stat(fs, fullPath)

	return models.ModEntry{
		Name:    entryName(relPath),
		Path:    fullPath,
		Size:    meta.Size,
		Created: meta.Created,
	}
}

// joinLogPath appends relPath to base without cleaning it, so the reported
// path keeps "." and ".." segments exactly as the log wrote them. An absolute
// relPath replaces base; on Windows a rooted one keeps only the volume.
func joinLogPath(base string, relPath string) string {
	if filepath.IsAbs(relPath) {
		return relPath
	}
	if relPath != "" && os.IsPathSeparator(relPath[0]) {
		return filepath.VolumeName(base) + relPath
	}
	if base == "" {
		return relPath
	}
	if os.IsPathSeparator(base[len(base)-1]) {
		return base + relPath
	}
	return base + string(filepath.Separator) + relPath
}

// entryName is the last path element of relPath as written in the log.
// Both separators count since the log is produced on Windows.
func entryName(relPath string) string {
	trimmed := strings.TrimRight(relPath, `/\`)
	if idx := strings.LastIndexAny(trimmed, `/\`); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	if trimmed == "" || trimmed == "." || trimmed == ".." {
		return relPath
	}
	return trimmed
}

// CountSkipped totals the skipped entries across all conflicts.
func CountSkipped(conflicts []models.ModConflict) int {
	total := 0
	for _, conflict := range conflicts {
		total += len(conflict.Skipped)
	}
	return total
}
