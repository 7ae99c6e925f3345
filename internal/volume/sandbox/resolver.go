// Package sandbox maps address tokens to absolute paths under a jailed root and back.
//
// A token is the volume ID followed by a codec fragment. ToAbsolute refuses any
// token whose decoded path normalises outside the root; ToToken refuses any path
// that is not inside it. Callers are expected to fold every error from this package
// into a plain "not found" so untrusted input learns nothing about the boundary.
package sandbox

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/GriffinCanCode/finder/internal/volume/codec"
)

var (
	// ErrNotOwned means the token does not carry this volume's ID prefix.
	ErrNotOwned = errors.New("token not owned by volume")
	// ErrMalformed means the fragment after the prefix does not decode.
	ErrMalformed = errors.New("malformed token")
	// ErrOutsideRoot means the path escapes the configured root.
	ErrOutsideRoot = errors.New("path outside volume root")
)

const sep = string(filepath.Separator)

// Resolver converts between tokens and absolute paths for one volume.
type Resolver struct {
	volumeID string
	root     string
	codec    codec.Codec
	foldCase bool
}

// New creates a resolver. root must be absolute; it is cleaned once here and every
// containment check compares against the cleaned form.
func New(volumeID, root string, c codec.Codec, foldCase bool) (*Resolver, error) {
	if volumeID == "" {
		return nil, fmt.Errorf("volume id cannot be empty")
	}
	if c == nil {
		return nil, fmt.Errorf("codec is required")
	}
	if !filepath.IsAbs(root) {
		return nil, fmt.Errorf("root %q is not absolute", root)
	}
	return &Resolver{
		volumeID: volumeID,
		root:     filepath.Clean(root),
		codec:    c,
		foldCase: foldCase,
	}, nil
}

// VolumeID returns the token prefix.
func (r *Resolver) VolumeID() string { return r.volumeID }

// Root returns the cleaned absolute root.
func (r *Resolver) Root() string { return r.root }

// Owns reports whether token carries this volume's prefix. The comparison ignores
// case to match the tokens older clients echo back.
func (r *Resolver) Owns(token string) bool {
	if len(token) < len(r.volumeID) {
		return false
	}
	return strings.EqualFold(token[:len(r.volumeID)], r.volumeID)
}

// ToAbsolute decodes token into an absolute path inside the root.
func (r *Resolver) ToAbsolute(token string) (string, error) {
	if !r.Owns(token) {
		return "", ErrNotOwned
	}
	rel, err := r.codec.Decode(token[len(r.volumeID):])
	if err != nil {
		return "", ErrMalformed
	}
	abs := r.join(rel)
	if !r.Contains(abs) {
		return "", ErrOutsideRoot
	}
	return abs, nil
}

// ToToken encodes an absolute path inside the root as a token.
func (r *Resolver) ToToken(abs string) (string, error) {
	rel, err := r.Rel(abs)
	if err != nil {
		return "", err
	}
	return r.volumeID + r.codec.Encode(rel), nil
}

// Rel returns the slash-separated path of abs relative to the root, "" for the
// root itself.
func (r *Resolver) Rel(abs string) (string, error) {
	abs = filepath.Clean(abs)
	if !r.Contains(abs) {
		return "", ErrOutsideRoot
	}
	return strings.Trim(filepath.ToSlash(abs[len(r.root):]), "/"), nil
}

// RootToken is the token of the root directory.
func (r *Resolver) RootToken() string {
	return r.volumeID + r.codec.Encode("")
}

// Contains reports whether abs, once cleaned, is the root or lies beneath it.
// The byte after the root prefix must be a separator so that /data/root2 is not
// taken to be inside /data/root.
func (r *Resolver) Contains(abs string) bool {
	abs = filepath.Clean(abs)
	if len(abs) < len(r.root) {
		return false
	}
	prefix := abs[:len(r.root)]
	if r.foldCase {
		if !strings.EqualFold(prefix, r.root) {
			return false
		}
	} else if prefix != r.root {
		return false
	}
	if len(abs) == len(r.root) || strings.HasSuffix(r.root, sep) {
		return true
	}
	return abs[len(r.root)] == filepath.Separator
}

// join places exactly one separator between root and rel before cleaning.
func (r *Resolver) join(rel string) string {
	rel = strings.TrimLeft(filepath.FromSlash(rel), sep)
	if rel == "" {
		return r.root
	}
	root := r.root
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	return filepath.Clean(root + rel)
}
