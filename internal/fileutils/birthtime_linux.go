package fileutils

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// birthTime asks the kernel through statx; older kernels and some
// filesystems do not report STATX_BTIME.
func birthTime(_ os.FileInfo, path string, onDisk bool) (time.Time, bool) {
	if !onDisk {
		return time.Time{}, false
	}

	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, unix.AT_STATX_SYNC_AS_STAT, unix.STATX_BTIME, &stx); err != nil {
		return time.Time{}, false
	}
	if stx.Mask&unix.STATX_BTIME == 0 {
		return time.Time{}, false
	}
	return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), true
}
