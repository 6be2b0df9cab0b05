// Package modlist scans the mods folder, reads every archive's manifest and
// reports GUIDs that are installed more than once.
package modlist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/meza/koikatsu-mod-manager/internal/ignore"
	"github.com/meza/koikatsu-mod-manager/internal/manifest"
	"github.com/meza/koikatsu-mod-manager/internal/models"
	"github.com/meza/koikatsu-mod-manager/internal/perf"
)

var archiveExtensions = map[string]bool{
	".zipmod": true,
	".zip":    true,
}

type Entry struct {
	Path     string           `json:"path"`
	Manifest *models.Manifest `json:"manifest,omitempty"`
	Error    string           `json:"error,omitempty"`
}

type Duplicate struct {
	GUID  string   `json:"guid"`
	Paths []string `json:"paths"`
}

type Result struct {
	Entries    []Entry     `json:"entries"`
	Duplicates []Duplicate `json:"duplicates"`
}

type Options struct {
	ModsDir string
	Ignore  *ignore.Matcher
	// Concurrency caps parallel manifest reads. Zero means GOMAXPROCS.
	Concurrency int
}

type ModsFolderNotFoundError struct {
	Path string
}

func (e *ModsFolderNotFoundError) Error() string {
	return fmt.Sprintf("Mods folder not found: %s", e.Path)
}

// Scan lists archives under opts.ModsDir in lexical order. Unreadable
// manifests are recorded on their entry and do not fail the scan.
func Scan(ctx context.Context, fs afero.Fs, opts Options) (Result, error) {
	ctx, span := perf.StartSpan(ctx, "io.modlist.scan")
	defer span.End()

	paths, err := archivePaths(fs, opts.ModsDir, opts.Ignore)
	if err != nil {
		return Result{}, err
	}
	span.SetAttributes(attribute.Int("archives", len(paths)))

	entries := make([]Entry, len(paths))
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(limit)
	for i, path := range paths {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			entries[i] = readEntry(groupCtx, fs, path)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Result{}, err
	}

	duplicates := FindDuplicates(entries)
	span.SetAttributes(attribute.Int("duplicates", len(duplicates)))

	return Result{Entries: entries, Duplicates: duplicates}, nil
}

func readEntry(ctx context.Context, fs afero.Fs, path string) Entry {
	parsed, err := manifest.Read(ctx, fs, path)
	if err != nil {
		return Entry{Path: path, Error: err.Error()}
	}
	return Entry{Path: path, Manifest: &parsed}
}

func archivePaths(fs afero.Fs, modsDir string, matcher *ignore.Matcher) ([]string, error) {
	isDir, err := afero.IsDir(fs, modsDir)
	if err != nil || !isDir {
		return nil, &ModsFolderNotFoundError{Path: modsDir}
	}

	paths := make([]string, 0)
	walkErr := afero.Walk(fs, modsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		ignored := matcher != nil && path != modsDir && matcher.Match(path)
		if info.IsDir() {
			if ignored {
				return filepath.SkipDir
			}
			return nil
		}
		if ignored || !archiveExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return paths, nil
}

// FindDuplicates groups entries by manifest GUID and keeps GUIDs shipped by
// two or more archives, sorted by GUID.
func FindDuplicates(entries []Entry) []Duplicate {
	byGUID := make(map[string][]string)
	for _, entry := range entries {
		if entry.Manifest == nil {
			continue
		}
		byGUID[entry.Manifest.GUID] = append(byGUID[entry.Manifest.GUID], entry.Path)
	}

	duplicates := make([]Duplicate, 0)
	for guid, paths := range byGUID {
		if len(paths) < 2 {
			continue
		}
		duplicates = append(duplicates, Duplicate{GUID: guid, Paths: paths})
	}
	sort.Slice(duplicates, func(i, j int) bool {
		return duplicates[i].GUID < duplicates[j].GUID
	})

	return duplicates
}

// Failed counts entries whose manifest could not be read.
func (r Result) Failed() int {
	count := 0
	for _, entry := range r.Entries {
		if entry.Error != "" {
			count++
		}
	}
	return count
}
