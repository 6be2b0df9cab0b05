package trash

import "github.com/spf13/afero"

func Default(fs afero.Fs) Trasher {
	return NewRecycleBinTrasher(fs)
}
