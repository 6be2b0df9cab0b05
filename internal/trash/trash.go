// Package trash moves mod files to the desktop trash instead of unlinking them,
// so a wrong pick can be restored from the file manager.
package trash

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/koikatsu-mod-manager/internal/perf"
)

// Trasher moves a single path to the trash.
type Trasher interface {
	Trash(ctx context.Context, path string) error
}

type DeleteError struct {
	Path string
	Err  error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("Failed to delete %s: %s", e.Path, e.Err)
}

func (e *DeleteError) Unwrap() error {
	return e.Err
}

// Delete trashes paths in order and stops at the first failure. Paths handled
// before the failure stay in the trash.
func Delete(ctx context.Context, trasher Trasher, paths []string) error {
	ctx, span := perf.StartSpan(ctx, "io.trash.delete")
	defer span.End()
	span.SetAttributes(attribute.Int("paths", len(paths)))

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := trasher.Trash(ctx, path); err != nil {
			span.SetAttributes(attribute.Int("trashed", i))
			return &DeleteError{Path: path, Err: err}
		}
	}

	span.SetAttributes(attribute.Int("trashed", len(paths)))
	return nil
}

type observed struct {
	Trasher
	onTrashed func(path string)
}

// Observe wraps trasher so onTrashed runs after every path that made it to
// the trash.
func Observe(trasher Trasher, onTrashed func(path string)) Trasher {
	return observed{Trasher: trasher, onTrashed: onTrashed}
}

func (o observed) Trash(ctx context.Context, path string) error {
	if err := o.Trasher.Trash(ctx, path); err != nil {
		return err
	}
	o.onTrashed(path)
	return nil
}
