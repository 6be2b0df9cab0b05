package gamelog

import (
	"errors"
	"fmt"
)

// ErrInvalidUTF8 is the cause of a ReadError for logs that are not UTF-8 text.
var ErrInvalidUTF8 = errors.New("stream did not contain valid UTF-8")

type NotFoundError struct {
	GamePath   string
	Candidates []string
}

func (e *NotFoundError) Error() string {
	return "No known log file found in the specified game path."
}

type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("Failed to read log file: %s", e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
