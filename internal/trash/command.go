package trash

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const pathEnvVar = "KMM_TRASH_PATH"

type runner func(ctx context.Context, program string, args []string, env []string) ([]byte, error)

func execRunner(ctx context.Context, program string, args []string, env []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Env = append(os.Environ(), env...)
	return cmd.CombinedOutput()
}

// commandTrasher delegates to a platform helper. The path travels through the
// environment so it never has to be quoted into a script.
type commandTrasher struct {
	fs      afero.Fs
	program string
	args    []string
	run     runner
}

func (t *commandTrasher) Trash(ctx context.Context, path string) error {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := t.fs.Stat(absolute); err != nil {
		return err
	}

	output, err := t.run(ctx, t.program, t.args, []string{pathEnvVar + "=" + absolute})
	if err != nil {
		if message := strings.TrimSpace(string(output)); message != "" {
			return fmt.Errorf("%s: %w", message, err)
		}
		return err
	}
	return nil
}

// NewFinderTrasher asks Finder to trash the item, which keeps "Put Back" working.
func NewFinderTrasher(fs afero.Fs) Trasher {
	return newFinderTrasher(fs, execRunner)
}

func newFinderTrasher(fs afero.Fs, run runner) *commandTrasher {
	return &commandTrasher{
		fs:      fs,
		program: "osascript",
		args: []string{
			"-e", fmt.Sprintf(`tell application "Finder" to delete (POSIX file (system attribute "%s"))`, pathEnvVar),
		},
		run: run,
	}
}

// NewRecycleBinTrasher sends the item to the Windows Recycle Bin.
func NewRecycleBinTrasher(fs afero.Fs) Trasher {
	return newRecycleBinTrasher(fs, execRunner)
}

func newRecycleBinTrasher(fs afero.Fs, run runner) *commandTrasher {
	script := strings.Join([]string{
		"$ErrorActionPreference = 'Stop'",
		"Add-Type -AssemblyName Microsoft.VisualBasic",
		"$target = $env:" + pathEnvVar,
		"if (Test-Path -LiteralPath $target -PathType Container) {",
		"  [Microsoft.VisualBasic.FileIO.FileSystem]::DeleteDirectory($target, 'OnlyErrorDialogs', 'SendToRecycleBin')",
		"} else {",
		"  [Microsoft.VisualBasic.FileIO.FileSystem]::DeleteFile($target, 'OnlyErrorDialogs', 'SendToRecycleBin')",
		"}",
	}, "; ")

	return &commandTrasher{
		fs:      fs,
		program: "powershell.exe",
		args:    []string{"-NoProfile", "-NonInteractive", "-Command", script},
		run:     run,
	}
}
