// Package models holds the data shapes shared between commands and the JSON output.
package models

// ModEntry describes one mod file referenced by the game log.
type ModEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size uint64 `json:"size"`
	// Created is the file's birth time in seconds since the Unix epoch, nil when unknown.
	Created *uint64 `json:"created"`
}

// ModConflict pairs the version the loader picked with the versions it skipped.
type ModConflict struct {
	Loaded  ModEntry   `json:"loaded"`
	Skipped []ModEntry `json:"skipped"`
}

// SkippedPaths returns the absolute paths of every skipped version.
func (c ModConflict) SkippedPaths() []string {
	paths := make([]string, 0, len(c.Skipped))
	for _, entry := range c.Skipped {
		paths = append(paths, entry.Path)
	}
	return paths
}
