package monitoring

import (
	"context"
	"errors"

	"github.com/GriffinCanCode/finder/internal/volume"
	"github.com/GriffinCanCode/finder/internal/volume/entry"
)

// Instrumented wraps a volume and records an outcome for every call.
type Instrumented struct {
	volume.Volume
	metrics *Metrics
}

// Instrument wraps v. A nil metrics returns v unchanged.
func Instrument(v volume.Volume, metrics *Metrics) volume.Volume {
	if metrics == nil {
		return v
	}
	return &Instrumented{Volume: v, metrics: metrics}
}

// Unwrap returns the wrapped volume.
func (i *Instrumented) Unwrap() volume.Volume { return i.Volume }

func (i *Instrumented) timer(op string) *Timer {
	return NewTimer(i.metrics, i.Volume.ID(), op)
}

// Result classifies a volume error into a metric label.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, volume.ErrNotFound):
		return "not_found"
	case errors.Is(err, volume.ErrAlreadyExists):
		return "exists"
	case errors.Is(err, volume.ErrParentInvalid):
		return "parent_invalid"
	case errors.Is(err, volume.ErrInvalidName):
		return "invalid_name"
	case errors.Is(err, volume.ErrLocked):
		return "locked"
	case errors.Is(err, volume.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, volume.ErrIO):
		return "io"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

func boolResult(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

func (i *Instrumented) Root() (entry.Directory, error) {
	t := i.timer("root")
	d, err := i.Volume.Root()
	t.Stop(Result(err))
	return d, err
}

func (i *Instrumented) Directory(token string) (entry.Directory, error) {
	t := i.timer("directory")
	d, err := i.Volume.Directory(token)
	t.Stop(Result(err))
	return d, err
}

func (i *Instrumented) File(token string) (entry.File, error) {
	t := i.timer("file")
	f, err := i.Volume.File(token)
	t.Stop(Result(err))
	return f, err
}

func (i *Instrumented) Files(dirToken string) []entry.File {
	t := i.timer("files")
	files := i.Volume.Files(dirToken)
	t.Stop("ok")
	return files
}

func (i *Instrumented) Subdirectories(dirToken string, opts volume.TreeOptions) []entry.Directory {
	t := i.timer("subdirectories")
	dirs := i.Volume.Subdirectories(dirToken, opts)
	t.Stop("ok")
	return dirs
}

func (i *Instrumented) CreateDirectory(parentToken, name string) (entry.Directory, error) {
	t := i.timer("create_directory")
	d, err := i.Volume.CreateDirectory(parentToken, name)
	t.Stop(Result(err))
	return d, err
}

func (i *Instrumented) CreateFile(parentToken, name string) (entry.File, error) {
	t := i.timer("create_file")
	f, err := i.Volume.CreateFile(parentToken, name)
	t.Stop(Result(err))
	return f, err
}

func (i *Instrumented) RenameFile(token, newName string) (entry.File, error) {
	t := i.timer("rename_file")
	f, err := i.Volume.RenameFile(token, newName)
	t.Stop(Result(err))
	return f, err
}

func (i *Instrumented) RenameDirectory(token, newName string) (entry.Directory, error) {
	t := i.timer("rename_directory")
	d, err := i.Volume.RenameDirectory(token, newName)
	t.Stop(Result(err))
	return d, err
}

func (i *Instrumented) DeleteFile(token string) bool {
	t := i.timer("delete_file")
	ok := i.Volume.DeleteFile(token)
	t.Stop(boolResult(ok))
	return ok
}

func (i *Instrumented) DeleteDirectory(token string) bool {
	t := i.timer("delete_directory")
	ok := i.Volume.DeleteDirectory(token)
	t.Stop(boolResult(ok))
	return ok
}

func (i *Instrumented) Ingest(dirToken string, uploads []volume.Upload) []entry.File {
	t := i.timer("ingest")
	saved := i.Volume.Ingest(dirToken, uploads)
	t.Stop("ok")
	i.metrics.RecordIngest(i.Volume.ID(), len(saved), len(uploads)-len(saved))
	return saved
}

func (i *Instrumented) Search(ctx context.Context, dirToken, query string) ([]entry.Directory, []entry.File, error) {
	t := i.timer("search")
	dirs, files, err := i.Volume.Search(ctx, dirToken, query)
	t.Stop(Result(err))
	return dirs, files, err
}
