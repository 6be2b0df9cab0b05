package config

import "fmt"

type FileInvalidError struct {
	Path string
	Err  error
}

func (e *FileInvalidError) Error() string {
	return fmt.Sprintf("Configuration file %s is invalid: %s", e.Path, e.Err)
}

func (e *FileInvalidError) Unwrap() error {
	return e.Err
}

type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("Configuration file not found: %s", e.Path)
}

// GamePathNotSetError is returned when neither a flag, the environment nor a
// settings file names the game directory.
type GamePathNotSetError struct {
	ConfigPath string
}

func (e *GamePathNotSetError) Error() string {
	return fmt.Sprintf("Game path is not set: pass --game-path, set KMM_GAME_PATH or run init (looked in %s)", e.ConfigPath)
}

type GamePathInvalidError struct {
	Path string
}

func (e *GamePathInvalidError) Error() string {
	return fmt.Sprintf("Game path is not a directory: %s", e.Path)
}
