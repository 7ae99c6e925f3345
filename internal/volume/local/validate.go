package local

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/GriffinCanCode/finder/internal/volume"
)

const maxNameBytes = 255

// resolve maps a token to an in-root path. Every resolver failure is reported
// as a plain miss.
func (v *Volume) resolve(token string) (string, bool) {
	abs, err := v.resolver.ToAbsolute(token)
	if err != nil {
		return "", false
	}
	return abs, true
}

func (v *Volume) tokenOf(abs string) string {
	tok, err := v.resolver.ToToken(abs)
	if err != nil {
		return ""
	}
	return tok
}

func (v *Volume) isRoot(abs string) bool {
	return v.factory.IsRoot(abs)
}

// inspect returns Lstat info for abs if it is an entry this volume may expose:
// inside the root, present, not a system entry, not hidden, and with its real
// path still inside the root.
func (v *Volume) inspect(abs string) (fs.FileInfo, bool) {
	rel, err := v.resolver.Rel(abs)
	if err != nil {
		return nil, false
	}
	if v.hiddenRel(rel) {
		return nil, false
	}

	info, err := os.Lstat(abs)
	if err != nil {
		return nil, false
	}
	if isSystem(info.Mode()) || platformHidden(info) {
		return nil, false
	}

	if rel != "" {
		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil || !v.resolver.Contains(resolved) {
			return nil, false
		}
	}
	return info, true
}

// inspectDir is inspect restricted to directories.
func (v *Volume) inspectDir(abs string) (fs.FileInfo, bool) {
	info, ok := v.inspect(abs)
	if !ok || !info.IsDir() {
		return nil, false
	}
	return info, true
}

// inspectFile is inspect restricted to regular files.
func (v *Volume) inspectFile(abs string) (fs.FileInfo, bool) {
	info, ok := v.inspect(abs)
	if !ok || !info.Mode().IsRegular() {
		return nil, false
	}
	return info, true
}

// isSystem reports entries that are never exposed: symlinks, devices, named
// pipes, sockets and anything else irregular.
func isSystem(mode fs.FileMode) bool {
	return mode&(fs.ModeSymlink|fs.ModeDevice|fs.ModeCharDevice|fs.ModeNamedPipe|fs.ModeSocket|fs.ModeIrregular) != 0
}

func isDotName(name string) bool {
	return strings.HasPrefix(name, ".")
}

// hiddenRel reports whether any component of rel is hidden by name or by glob.
func (v *Volume) hiddenRel(rel string) bool {
	if rel == "" {
		return false
	}
	prefix := ""
	for _, name := range strings.Split(rel, "/") {
		prefix = path.Join(prefix, name)
		if isDotName(name) {
			return true
		}
		for _, g := range v.opts.HiddenGlobs {
			target := prefix
			if !strings.Contains(g, "/") {
				target = name
			}
			if ok, _ := doublestar.Match(g, target); ok {
				return true
			}
		}
	}
	return false
}

// checkName validates a single path component supplied by a client.
func (v *Volume) checkName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return volume.ErrInvalidName
	case len(name) > maxNameBytes:
		return volume.ErrInvalidName
	case strings.ContainsAny(name, "/\\\x00"):
		return volume.ErrInvalidName
	case strings.TrimSpace(name) != name:
		return volume.ErrInvalidName
	case v.hiddenRel(name):
		return volume.ErrInvalidName
	}
	return nil
}

// child joins a checked name under dir and rejects results a hidden glob on the
// full relative path would hide.
func (v *Volume) child(dir, name string) (string, error) {
	if err := v.checkName(name); err != nil {
		return "", err
	}
	target := filepath.Join(dir, name)
	rel, err := v.resolver.Rel(target)
	if err != nil || v.hiddenRel(rel) {
		return "", volume.ErrInvalidName
	}
	return target, nil
}
