package tui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

type fileDescriptor interface {
	Fd() uintptr
}

var isTerminalFunc = term.IsTerminal

// SetIsTerminalFuncForTesting overrides terminal detection and returns a restore function.
func SetIsTerminalFuncForTesting(fn func(int) bool) func() {
	previous := isTerminalFunc
	isTerminalFunc = fn
	return func() {
		isTerminalFunc = previous
	}
}

// ShouldUseTUI decides if the interactive pager should be launched.
func ShouldUseTUI(quiet bool, in io.Reader, out io.Writer) bool {
	if quiet {
		return false
	}
	return IsTerminalReader(in) && IsTerminalWriter(out)
}

func IsTerminalReader(reader io.Reader) bool {
	return isTerminal(reader)
}

func IsTerminalWriter(writer io.Writer) bool {
	return isTerminal(writer)
}

func isTerminal(stream interface{}) bool {
	fd, ok := stream.(fileDescriptor)
	if !ok {
		return false
	}
	return isTerminalFunc(int(fd.Fd()))
}

// ProgramOptions builds Bubble Tea options for the given streams, dropping the
// renderer when either side is not a terminal.
func ProgramOptions(in io.Reader, out io.Writer) []tea.ProgramOption {
	options := []tea.ProgramOption{
		tea.WithInput(in),
		tea.WithOutput(out),
	}

	if !IsTerminalReader(in) || !IsTerminalWriter(out) {
		options = append(options, tea.WithoutRenderer())
	}

	return options
}
