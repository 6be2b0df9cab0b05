// Package fileutils wraps filesystem lookups shared by the commands.
package fileutils

import (
	"time"

	"github.com/spf13/afero"
)

// Metadata is the subset of file information the conflict report needs.
type Metadata struct {
	Size    uint64
	Created *uint64
}

// Stat returns the size and creation time of path. A file that cannot be
// stat-ed yields the zero Metadata; that is not an error for callers.
func Stat(fs afero.Fs, path string) Metadata {
	info, err := fs.Stat(path)
	if err != nil {
		return Metadata{}
	}

	meta := Metadata{}
	if size := info.Size(); size > 0 {
		meta.Size = uint64(size)
	}

	_, onDisk := fs.(*afero.OsFs)
	if created, ok := birthTime(info, path, onDisk); ok {
		meta.Created = unixSeconds(created)
	}
	return meta
}

func unixSeconds(t time.Time) *uint64 {
	if t.Before(time.Unix(0, 0)) {
		return nil
	}
	seconds := uint64(t.Unix())
	return &seconds
}
