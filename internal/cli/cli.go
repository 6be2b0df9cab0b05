// Package cli holds the flag plumbing every kmm command shares.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/meza/koikatsu-mod-manager/internal/config"
	"github.com/meza/koikatsu-mod-manager/internal/logger"
)

const (
	FlagConfig   = "config"
	FlagGamePath = "game-path"
	FlagQuiet    = "quiet"
	FlagDebug    = "debug"
	FlagJSON     = "json"
)

// GlobalOptions mirrors the persistent flags registered on the root command.
type GlobalOptions struct {
	ConfigPath string
	GamePath   string
	Quiet      bool
	Debug      bool
	JSON       bool
}

func ReadGlobalOptions(cmd *cobra.Command) (GlobalOptions, error) {
	var opts GlobalOptions
	var err error

	if opts.ConfigPath, err = cmd.Flags().GetString(FlagConfig); err != nil {
		return GlobalOptions{}, err
	}
	if opts.GamePath, err = cmd.Flags().GetString(FlagGamePath); err != nil {
		return GlobalOptions{}, err
	}
	if opts.Quiet, err = cmd.Flags().GetBool(FlagQuiet); err != nil {
		return GlobalOptions{}, err
	}
	if opts.Debug, err = cmd.Flags().GetBool(FlagDebug); err != nil {
		return GlobalOptions{}, err
	}
	if opts.JSON, err = cmd.Flags().GetBool(FlagJSON); err != nil {
		return GlobalOptions{}, err
	}

	return opts, nil
}

// Logger builds the command logger. In JSON mode the human report is
// silenced and, when --debug forces it through, sent to stderr so stdout
// carries nothing but the document.
func (o GlobalOptions) Logger(cmd *cobra.Command) *logger.Logger {
	out := cmd.OutOrStdout()
	if o.JSON {
		out = cmd.ErrOrStderr()
	}
	return logger.New(out, cmd.ErrOrStderr(), o.Quiet || o.JSON, o.Debug)
}

func (o GlobalOptions) Metadata() config.Metadata {
	return config.NewMetadata(o.ConfigPath)
}

// ResolveGamePath applies the flag > environment > settings precedence.
func (o GlobalOptions) ResolveGamePath(ctx context.Context, fs afero.Fs, log *logger.Logger) (string, error) {
	gamePath, source, err := config.ResolveGamePath(ctx, fs, o.Metadata(), o.GamePath)
	if err != nil {
		return "", err
	}
	log.DebugFields("resolved game path", map[string]interface{}{
		"path":   gamePath,
		"source": string(source),
	})
	return gamePath, nil
}

func PrintJSON(out io.Writer, value interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(value)
}

// Finish records the outcome on the command span and attaches a stack trace
// to the error for --debug output.
func Finish(span oteltrace.Span, err error) error {
	span.SetAttributes(attribute.Bool("success", err == nil))
	span.End()
	if err == nil {
		return nil
	}
	return errors.WithStack(err)
}

// StackTrace renders err with the stack captured by Finish, when there is one.
func StackTrace(err error) string {
	return fmt.Sprintf("%+v", err)
}
