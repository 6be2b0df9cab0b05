package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

const defaultFileMode os.FileMode = 0o644

// writeFileAtomic writes data next to targetPath and renames it into place.
// When the target already exists and cannot be overwritten by rename, it is
// moved to a backup first and restored if the swap fails.
func writeFileAtomic(fs afero.Fs, targetPath string, data []byte, mode os.FileMode) error {
	tempPath, err := nextSiblingPath(fs, targetPath, ".tmp")
	if err != nil {
		return err
	}

	if err := afero.WriteFile(fs, tempPath, data, mode); err != nil {
		return cleanupTempOnError(fs, tempPath, err)
	}

	exists, err := afero.Exists(fs, targetPath)
	if err != nil {
		return cleanupTempOnError(fs, tempPath, err)
	}
	if !exists {
		if err := fs.Rename(tempPath, targetPath); err != nil {
			return cleanupTempOnError(fs, tempPath, err)
		}
		return nil
	}

	if err := fs.Rename(tempPath, targetPath); err == nil {
		return nil
	}

	backupPath, err := nextSiblingPath(fs, targetPath, ".bak")
	if err != nil {
		return cleanupTempOnError(fs, tempPath, err)
	}
	return swapWithBackup(fs, tempPath, targetPath, backupPath)
}

func nextSiblingPath(fs afero.Fs, targetPath string, suffix string) (string, error) {
	base := targetPath + ".kmm" + suffix

	candidate := base
	for i := 1; i <= 100; i++ {
		exists, err := afero.Exists(fs, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s.%d", base, i)
	}

	return "", errors.New("cannot allocate sibling path")
}

func swapWithBackup(fs afero.Fs, tempPath string, targetPath string, backupPath string) error {
	if err := fs.Rename(targetPath, backupPath); err != nil {
		return cleanupTempOnError(fs, tempPath, err)
	}

	if err := fs.Rename(tempPath, targetPath); err != nil {
		err = cleanupTempOnError(fs, tempPath, err)
		if rollbackErr := fs.Rename(backupPath, targetPath); rollbackErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to restore backup %s: %w", backupPath, rollbackErr))
		}
		return err
	}

	if err := removePathIfExists(fs, backupPath); err != nil {
		return fmt.Errorf("failed to remove backup file %s: %w", backupPath, err)
	}
	return nil
}

func removePathIfExists(fs afero.Fs, path string) error {
	err := fs.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func cleanupTempOnError(fs afero.Fs, tempPath string, originalErr error) error {
	if cleanupErr := removePathIfExists(fs, tempPath); cleanupErr != nil {
		return errors.Join(originalErr, fmt.Errorf("failed to remove temp file %s: %w", tempPath, cleanupErr))
	}
	return originalErr
}
