// Package entry builds the immutable descriptors returned by volumes.
package entry

import (
	"io/fs"
	"time"
)

// Entry holds the fields shared by files and directories. ParentToken is empty
// for the root and for entries whose parent failed validation.
type Entry struct {
	Name        string
	Token       string
	ParentToken string
	ModifiedAt  time.Time
	VolumeID    string
	Readable    bool
	Writable    bool
	Locked      bool
}

// HasParent reports whether ParentToken is set.
func (e Entry) HasParent() bool { return e.ParentToken != "" }

// Directory describes a directory.
type Directory struct {
	Entry
	HasChildren bool
}

// File describes a regular file.
type File struct {
	Entry
	Size int64
	Mime string
}

// Metadata is the raw filesystem information an entry is built from.
type Metadata struct {
	Path    string
	Name    string
	ModTime time.Time
	Size    int64
	Mode    fs.FileMode
}

// FromFileInfo copies what the factory needs out of an fs.FileInfo.
func FromFileInfo(path string, info fs.FileInfo) Metadata {
	return Metadata{
		Path:    path,
		Name:    info.Name(),
		ModTime: info.ModTime(),
		Size:    info.Size(),
		Mode:    info.Mode(),
	}
}
