// Package volume defines the token-addressed storage capability consumed by the
// connector, the typed failures it reports and the prefix dispatch table that
// routes tokens to backends.
package volume

import (
	"context"
	"io"

	"github.com/GriffinCanCode/finder/internal/volume/entry"
)

// Kind tags a backend variant.
type Kind string

const (
	// KindLocal is a jailed subtree of the host filesystem.
	KindLocal Kind = "local"
)

// Upload is one incoming (name, stream) pair handed to Ingest.
type Upload struct {
	Name string
	Body io.Reader
}

// TreeOptions bounds Subdirectories. A nil MaxDepth uses the volume default.
type TreeOptions struct {
	MaxDepth *int
}

// Depth returns TreeOptions with an explicit maximum depth.
func Depth(n int) TreeOptions {
	return TreeOptions{MaxDepth: &n}
}

// Volume is a sandboxed backend. Every method takes and returns tokens, never
// host paths. Lookups report ErrNotFound for any token that is foreign, forged,
// escapes the root, names a missing entry or names a hidden one.
type Volume interface {
	ID() string
	Kind() Kind

	Root() (entry.Directory, error)
	Directory(token string) (entry.Directory, error)
	File(token string) (entry.File, error)

	// Files lists direct child files. An invalid directory yields nil.
	Files(dirToken string) []entry.File
	// Subdirectories lists the subtree in pre-order, bounded by opts.
	Subdirectories(dirToken string, opts TreeOptions) []entry.Directory
	// PathToRoot joins ancestor names below the root with "/".
	PathToRoot(token string) string

	CreateDirectory(parentToken, name string) (entry.Directory, error)
	CreateFile(parentToken, name string) (entry.File, error)
	RenameFile(token, newName string) (entry.File, error)
	RenameDirectory(token, newName string) (entry.Directory, error)
	DeleteFile(token string) bool
	DeleteDirectory(token string) bool

	// Ingest saves each upload independently and returns the ones that landed.
	Ingest(dirToken string, uploads []Upload) []entry.File
	// Search finds files and directories below dirToken whose names match query.
	Search(ctx context.Context, dirToken, query string) ([]entry.Directory, []entry.File, error)
}
