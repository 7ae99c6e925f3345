package local

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/finder/internal/volume"
	"github.com/GriffinCanCode/finder/internal/volume/entry"
)

// Directory describes the directory named by token.
func (v *Volume) Directory(token string) (entry.Directory, error) {
	abs, ok := v.resolve(token)
	if !ok {
		return entry.Directory{}, volume.ErrNotFound
	}
	d, ok := v.directoryAt(abs)
	if !ok {
		return entry.Directory{}, volume.ErrNotFound
	}
	return d, nil
}

// File describes the file named by token. A file whose directory fails
// validation is not found either.
func (v *Volume) File(token string) (entry.File, error) {
	abs, ok := v.resolve(token)
	if !ok {
		return entry.File{}, volume.ErrNotFound
	}
	parent := v.parentToken(abs)
	if parent == "" {
		return entry.File{}, volume.ErrNotFound
	}
	f, ok := v.fileAt(abs, parent)
	if !ok {
		return entry.File{}, volume.ErrNotFound
	}
	return f, nil
}

// Files lists the direct child files of a directory.
func (v *Volume) Files(dirToken string) []entry.File {
	abs, ok := v.resolve(dirToken)
	if !ok {
		return nil
	}
	if _, ok := v.inspectDir(abs); !ok {
		return nil
	}

	children, err := os.ReadDir(abs)
	if err != nil {
		v.log.Debug("list files failed", zap.Error(volume.NewIOError("readdir", err)))
		return nil
	}

	dirToken = v.tokenOf(abs)
	var files []entry.File
	for _, c := range children {
		if !c.Type().IsRegular() {
			continue
		}
		if f, ok := v.fileAt(filepath.Join(abs, c.Name()), dirToken); ok {
			files = append(files, f)
		}
	}
	return files
}

// PathToRoot joins the names from the root's child down to token with "/".
// The root gives "". The walk stops at the first ancestor that fails
// validation and returns what it has.
func (v *Volume) PathToRoot(token string) string {
	abs, ok := v.resolve(token)
	if !ok {
		return ""
	}

	var names []string
	for !v.isRoot(abs) {
		info, ok := v.inspect(abs)
		if !ok {
			break
		}
		names = append(names, info.Name())
		abs = filepath.Dir(abs)
	}

	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, "/")
}

func (v *Volume) directoryAt(abs string) (entry.Directory, bool) {
	info, ok := v.inspectDir(abs)
	if !ok {
		return entry.Directory{}, false
	}
	md := entry.FromFileInfo(abs, info)
	return v.factory.Directory(md, v.tokenOf(abs), v.parentToken(abs), v.hasChildren(abs)), true
}

func (v *Volume) fileAt(abs, parentToken string) (entry.File, bool) {
	info, ok := v.inspectFile(abs)
	if !ok {
		return entry.File{}, false
	}
	f := v.factory.File(entry.FromFileInfo(abs, info), v.tokenOf(abs), parentToken)
	if v.opts.SniffContent && f.Mime == entry.MimeDefault {
		f.Mime = sniff(abs)
	}
	return f, true
}

// parentToken returns the token of abs's parent, or "" when abs is the root or
// the parent fails validation.
func (v *Volume) parentToken(abs string) string {
	if v.isRoot(abs) {
		return ""
	}
	parent := filepath.Dir(abs)
	if _, ok := v.inspectDir(parent); !ok {
		return ""
	}
	return v.tokenOf(parent)
}

// hasChildren reports whether abs holds at least one visible subdirectory.
func (v *Volume) hasChildren(abs string) bool {
	children, err := os.ReadDir(abs)
	if err != nil {
		return false
	}
	for _, c := range children {
		if !c.IsDir() {
			continue
		}
		if _, ok := v.inspectDir(filepath.Join(abs, c.Name())); ok {
			return true
		}
	}
	return false
}

func sniff(abs string) string {
	m, err := mimetype.DetectFile(abs)
	if err != nil {
		return entry.MimeDefault
	}
	t := m.String()
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}
