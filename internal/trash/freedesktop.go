package trash

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
)

const (
	trashInfoExt     = ".trashinfo"
	trashInfoTime    = "2006-01-02T15:04:05"
	maxNameAttempts  = 1000
	trashDirFileMode = 0o700
)

// HomeTrash implements the freedesktop.org trash specification for the
// user's home trash ($XDG_DATA_HOME/Trash).
type HomeTrash struct {
	fs  afero.Fs
	dir string
	now func() time.Time
}

func NewHomeTrash(fs afero.Fs, dir string) *HomeTrash {
	return &HomeTrash{fs: fs, dir: dir, now: time.Now}
}

// DefaultHomeTrashDir resolves $XDG_DATA_HOME/Trash.
func DefaultHomeTrashDir() string {
	return filepath.Join(xdg.DataHome, "Trash")
}

func (t *HomeTrash) FilesDir() string {
	return filepath.Join(t.dir, "files")
}

func (t *HomeTrash) InfoDir() string {
	return filepath.Join(t.dir, "info")
}

func (t *HomeTrash) Trash(ctx context.Context, path string) error {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := t.fs.Stat(absolute); err != nil {
		return err
	}

	for _, dir := range []string{t.FilesDir(), t.InfoDir()} {
		if err := t.fs.MkdirAll(dir, trashDirFileMode); err != nil {
			return err
		}
	}

	name, infoPath, err := t.reserve(absolute)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		_ = t.fs.Remove(infoPath)
		return err
	}

	if err := t.move(absolute, filepath.Join(t.FilesDir(), name)); err != nil {
		_ = t.fs.Remove(infoPath)
		return err
	}
	return nil
}

// reserve claims a unique name by creating its .trashinfo with O_EXCL, which
// is the locking mechanism the freedesktop.org trash format prescribes.
func (t *HomeTrash) reserve(absolute string) (string, string, error) {
	base := filepath.Base(absolute)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		name := base
		if attempt > 1 {
			name = fmt.Sprintf("%s.%d%s", stem, attempt, ext)
		}

		infoPath := filepath.Join(t.InfoDir(), name+trashInfoExt)
		file, err := t.fs.OpenFile(infoPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", "", err
		}

		if exists, _ := afero.Exists(t.fs, filepath.Join(t.FilesDir(), name)); exists {
			_ = file.Close()
			_ = t.fs.Remove(infoPath)
			continue
		}

		_, writeErr := io.WriteString(file, t.info(absolute))
		closeErr := file.Close()
		if err := errors.Join(writeErr, closeErr); err != nil {
			_ = t.fs.Remove(infoPath)
			return "", "", err
		}
		return name, infoPath, nil
	}

	return "", "", fmt.Errorf("cannot allocate a trash name for %s", base)
}

func (t *HomeTrash) info(absolute string) string {
	escaped := (&url.URL{Path: filepath.ToSlash(absolute)}).EscapedPath()
	return fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n", escaped, t.now().Format(trashInfoTime))
}

func (t *HomeTrash) move(src string, dst string) error {
	err := t.fs.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}

	if err := copyTree(t.fs, src, dst); err != nil {
		_ = t.fs.RemoveAll(dst)
		return err
	}
	return t.fs.RemoveAll(src)
}

func copyTree(fs afero.Fs, src string, dst string) error {
	return afero.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return fs.MkdirAll(target, info.Mode().Perm())
		}
		return copyFile(fs, path, target, info.Mode().Perm())
	})
}

func copyFile(fs afero.Fs, src string, dst string, mode os.FileMode) error {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
