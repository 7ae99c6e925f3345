package entry

import (
	"path/filepath"
	"strings"
)

// MimeDirectory is the MIME type reported for directories.
const MimeDirectory = "directory"

// Factory turns metadata plus resolved tokens into entries. It never touches
// the filesystem.
type Factory struct {
	VolumeID  string
	RootPath  string
	RootLabel string
	FoldCase  bool
}

// IsRoot reports whether path is the volume root.
func (f Factory) IsRoot(path string) bool {
	path = filepath.Clean(path)
	if f.FoldCase {
		return strings.EqualFold(path, f.RootPath)
	}
	return path == f.RootPath
}

// Directory builds a directory entry. The root gets the configured label, no
// parent and the locked flag.
func (f Factory) Directory(md Metadata, token, parentToken string, hasChildren bool) Directory {
	return Directory{
		Entry:       f.base(md, token, parentToken),
		HasChildren: hasChildren,
	}
}

// File builds a file entry with a MIME type derived from its name.
func (f Factory) File(md Metadata, token, parentToken string) File {
	return File{
		Entry: f.base(md, token, parentToken),
		Size:  md.Size,
		Mime:  MimeByName(md.Name),
	}
}

func (f Factory) base(md Metadata, token, parentToken string) Entry {
	perm := md.Mode.Perm()
	e := Entry{
		Name:        md.Name,
		Token:       token,
		ParentToken: parentToken,
		ModifiedAt:  md.ModTime,
		VolumeID:    f.VolumeID,
		Readable:    perm&0o400 != 0,
		Writable:    perm&0o200 != 0,
	}
	if md.Mode.IsDir() && f.IsRoot(md.Path) {
		e.Name = f.RootLabel
		e.ParentToken = ""
		e.Locked = true
	}
	return e
}
