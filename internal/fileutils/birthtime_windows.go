package fileutils

import (
	"os"
	"syscall"
	"time"
)

func birthTime(info os.FileInfo, _ string, _ bool) (time.Time, bool) {
	data, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok || data == nil {
		return time.Time{}, false
	}
	return time.Unix(0, data.CreationTime.Nanoseconds()), true
}
