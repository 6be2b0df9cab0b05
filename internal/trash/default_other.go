//go:build !darwin && !windows

package trash

import "github.com/spf13/afero"

func Default(fs afero.Fs) Trasher {
	return NewHomeTrash(fs, DefaultHomeTrashDir())
}
