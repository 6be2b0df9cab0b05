package fileutils

import (
	"os"
	"syscall"
	"time"
)

func birthTime(info os.FileInfo, _ string, _ bool) (time.Time, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok || stat == nil {
		return time.Time{}, false
	}
	return time.Unix(stat.Birthtimespec.Unix()), true
}
