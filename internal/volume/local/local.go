// Package local implements volume.Volume over a jailed directory of the host
// filesystem.
//
// Every operation resolves its token through a sandbox.Resolver and then checks
// the entry with Lstat before touching it. Symlinks, devices, sockets and pipes
// are never reported, nor are dot-prefixed names or names matched by a hidden
// glob. Existence pre-checks before create and rename are not atomic with the
// syscall that follows; concurrent writers to the same path race at the OS level.
package local

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/finder/internal/infrastructure/logging"
	"github.com/GriffinCanCode/finder/internal/volume"
	"github.com/GriffinCanCode/finder/internal/volume/codec"
	"github.com/GriffinCanCode/finder/internal/volume/entry"
	"github.com/GriffinCanCode/finder/internal/volume/sandbox"
)

const (
	DefaultID           = "l1_"
	DefaultMaxTreeDepth = 2
	DefaultSearchLimit  = 500
)

// Options configures a local volume.
type Options struct {
	ID        string
	Root      string
	RootLabel string

	// MaxTreeDepth bounds Subdirectories when the caller gives no depth.
	// Nil means DefaultMaxTreeDepth; a zero bound lists nothing.
	MaxTreeDepth *int
	// UploadMaxSize is the per-file ingest ceiling in bytes; 0 disables it.
	UploadMaxSize int64
	// HiddenGlobs are doublestar patterns. A pattern without "/" is matched
	// against each path component, otherwise against the relative path.
	HiddenGlobs []string
	SearchLimit int
	// SniffContent detects the MIME type from file content when the extension
	// gives nothing better than application/octet-stream.
	SniffContent bool

	DirMode  fs.FileMode
	FileMode fs.FileMode
}

func (o Options) withDefaults() Options {
	if o.ID == "" {
		o.ID = DefaultID
	}
	if o.MaxTreeDepth == nil {
		d := DefaultMaxTreeDepth
		o.MaxTreeDepth = &d
	}
	if o.SearchLimit <= 0 {
		o.SearchLimit = DefaultSearchLimit
	}
	if o.DirMode == 0 {
		o.DirMode = 0o755
	}
	if o.FileMode == 0 {
		o.FileMode = 0o644
	}
	return o
}

// Volume is a local filesystem volume.
type Volume struct {
	opts     Options
	resolver *sandbox.Resolver
	factory  entry.Factory
	foldCase bool
	log      *logging.Logger
}

var _ volume.Volume = (*Volume)(nil)

// New opens a volume over opts.Root. It refuses a root that is missing, not a
// directory, hidden or unreadable; the error wraps volume.ErrUnavailable.
func New(opts Options, log *logging.Logger) (*Volume, error) {
	opts = opts.withDefaults()
	if log == nil {
		log = logging.NewNop()
	}
	if *opts.MaxTreeDepth < 0 {
		return nil, fmt.Errorf("max tree depth must not be negative, got %d", *opts.MaxTreeDepth)
	}
	if opts.UploadMaxSize < 0 {
		return nil, fmt.Errorf("upload max size must not be negative, got %d", opts.UploadMaxSize)
	}
	for _, g := range opts.HiddenGlobs {
		if !doublestar.ValidatePattern(g) {
			return nil, fmt.Errorf("invalid hidden glob %q", g)
		}
	}

	root, err := canonicalRoot(opts.Root)
	if err != nil {
		return nil, err
	}

	resolver, err := sandbox.New(opts.ID, root, codec.Base64{}, platformFoldCase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", volume.ErrUnavailable, err)
	}

	label := opts.RootLabel
	if label == "" {
		label = filepath.Base(root)
	}

	v := &Volume{
		opts:     opts,
		resolver: resolver,
		factory: entry.Factory{
			VolumeID:  opts.ID,
			RootPath:  resolver.Root(),
			RootLabel: label,
			FoldCase:  platformFoldCase,
		},
		foldCase: platformFoldCase,
		log:      log.ForVolume(opts.ID),
	}

	if err := v.checkRoot(); err != nil {
		return nil, err
	}

	v.log.Info("volume opened",
		zap.String("root", resolver.Root()),
		zap.String("label", label),
		zap.Int("max_tree_depth", *opts.MaxTreeDepth),
		zap.Int64("upload_max_size", opts.UploadMaxSize))

	return v, nil
}

// canonicalRoot makes root absolute and resolves symlinks so later
// containment checks compare real paths.
func canonicalRoot(root string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("%w: root directory is required", volume.ErrUnavailable)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", volume.ErrUnavailable, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", volume.ErrUnavailable, err)
	}
	return resolved, nil
}

// checkRoot verifies the root can serve requests.
func (v *Volume) checkRoot() error {
	root := v.resolver.Root()
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %v", volume.ErrUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: root %s is not a directory", volume.ErrUnavailable, root)
	}
	if isDotName(info.Name()) || platformHidden(info) {
		return fmt.Errorf("%w: root %s is hidden", volume.ErrUnavailable, root)
	}

	f, err := os.Open(root)
	if err != nil {
		return fmt.Errorf("%w: %v", volume.ErrUnavailable, err)
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", volume.ErrUnavailable, err)
	}
	return nil
}

// ID returns the token prefix.
func (v *Volume) ID() string { return v.opts.ID }

// Kind returns volume.KindLocal.
func (v *Volume) Kind() volume.Kind { return volume.KindLocal }

// MaxUploadSize returns the ingest ceiling in bytes.
func (v *Volume) MaxUploadSize() int64 { return v.opts.UploadMaxSize }

// RootToken returns the token of the root directory.
func (v *Volume) RootToken() string { return v.resolver.RootToken() }

// Root describes the root directory. It reports volume.ErrUnavailable if the
// root has vanished or become hidden or unreadable since New.
func (v *Volume) Root() (entry.Directory, error) {
	if err := v.checkRoot(); err != nil {
		v.log.Warn("root unavailable", zap.Error(err))
		return entry.Directory{}, volume.ErrUnavailable
	}
	d, ok := v.directoryAt(v.resolver.Root())
	if !ok {
		return entry.Directory{}, volume.ErrUnavailable
	}
	return d, nil
}
