package local

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/finder/internal/volume"
	"github.com/GriffinCanCode/finder/internal/volume/entry"
)

// CreateDirectory makes name under parentToken. It never reuses an existing
// entry of that name, visible or not.
func (v *Volume) CreateDirectory(parentToken, name string) (entry.Directory, error) {
	parent, err := v.parentDir(parentToken)
	if err != nil {
		return entry.Directory{}, err
	}
	target, err := v.child(parent, name)
	if err != nil {
		return entry.Directory{}, err
	}
	if err := ensureAbsent(target, "mkdir"); err != nil {
		return entry.Directory{}, err
	}

	if err := os.Mkdir(target, v.opts.DirMode); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return entry.Directory{}, volume.ErrAlreadyExists
		}
		return entry.Directory{}, volume.NewIOError("mkdir", err)
	}

	d, ok := v.directoryAt(target)
	if !ok {
		return entry.Directory{}, volume.NewIOError("mkdir", fs.ErrNotExist)
	}
	v.log.Debug("directory created", zap.String("token", d.Token))
	return d, nil
}

// CreateFile makes an empty file name under parentToken.
func (v *Volume) CreateFile(parentToken, name string) (entry.File, error) {
	parent, err := v.parentDir(parentToken)
	if err != nil {
		return entry.File{}, err
	}
	target, err := v.child(parent, name)
	if err != nil {
		return entry.File{}, err
	}
	if err := ensureAbsent(target, "mkfile"); err != nil {
		return entry.File{}, err
	}

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, v.opts.FileMode)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return entry.File{}, volume.ErrAlreadyExists
		}
		return entry.File{}, volume.NewIOError("mkfile", err)
	}
	if err := f.Close(); err != nil {
		return entry.File{}, volume.NewIOError("mkfile", err)
	}

	created, ok := v.fileAt(target, v.tokenOf(parent))
	if !ok {
		return entry.File{}, volume.NewIOError("mkfile", fs.ErrNotExist)
	}
	v.log.Debug("file created", zap.String("token", created.Token))
	return created, nil
}

// RenameFile gives the file a new name in the same directory. An existing
// destination is never replaced.
func (v *Volume) RenameFile(token, newName string) (entry.File, error) {
	abs, ok := v.resolve(token)
	if !ok {
		return entry.File{}, volume.ErrNotFound
	}
	parentToken := v.parentToken(abs)
	if parentToken == "" {
		return entry.File{}, volume.ErrNotFound
	}
	if _, ok := v.inspectFile(abs); !ok {
		return entry.File{}, volume.ErrNotFound
	}

	target, err := v.renameTarget(abs, newName)
	if err != nil {
		return entry.File{}, err
	}

	f, ok := v.fileAt(target, parentToken)
	if !ok {
		return entry.File{}, volume.NewIOError("rename", fs.ErrNotExist)
	}
	return f, nil
}

// RenameDirectory gives the directory a new name in the same parent. The root
// cannot be renamed.
func (v *Volume) RenameDirectory(token, newName string) (entry.Directory, error) {
	abs, ok := v.resolve(token)
	if !ok {
		return entry.Directory{}, volume.ErrNotFound
	}
	if _, ok := v.inspectDir(abs); !ok {
		return entry.Directory{}, volume.ErrNotFound
	}
	if v.isRoot(abs) {
		return entry.Directory{}, volume.ErrLocked
	}

	target, err := v.renameTarget(abs, newName)
	if err != nil {
		return entry.Directory{}, err
	}

	d, ok := v.directoryAt(target)
	if !ok {
		return entry.Directory{}, volume.NewIOError("rename", fs.ErrNotExist)
	}
	return d, nil
}

// renameTarget checks newName and moves abs beside itself.
func (v *Volume) renameTarget(abs, newName string) (string, error) {
	target, err := v.child(filepath.Dir(abs), newName)
	if err != nil {
		return "", err
	}

	if existing, err := os.Lstat(target); err == nil {
		if !v.sameEntry(abs, target, existing) {
			return "", volume.ErrAlreadyExists
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", volume.NewIOError("rename", err)
	}

	if err := os.Rename(abs, target); err != nil {
		return "", volume.NewIOError("rename", err)
	}
	v.log.Debug("entry renamed", zap.String("token", v.tokenOf(target)))
	return target, nil
}

// sameEntry reports a case-only rename on a case-folding filesystem, where the
// destination already "exists" because it is the source.
func (v *Volume) sameEntry(abs, target string, existing fs.FileInfo) bool {
	if !v.foldCase || filepath.Base(abs) == filepath.Base(target) {
		return false
	}
	src, err := os.Lstat(abs)
	if err != nil {
		return false
	}
	return os.SameFile(src, existing)
}

// DeleteFile removes the file. It reports false if the file is absent, invalid
// or could not be removed.
func (v *Volume) DeleteFile(token string) bool {
	abs, ok := v.resolve(token)
	if !ok {
		return false
	}
	if v.parentToken(abs) == "" {
		return false
	}
	if _, ok := v.inspectFile(abs); !ok {
		return false
	}
	if err := os.Remove(abs); err != nil {
		v.log.Debug("delete file failed", zap.Error(volume.NewIOError("remove", err)))
		return false
	}
	return true
}

// DeleteDirectory removes an empty directory. Non-empty directories and the
// root are left untouched and report false.
func (v *Volume) DeleteDirectory(token string) bool {
	abs, ok := v.resolve(token)
	if !ok {
		return false
	}
	if v.isRoot(abs) {
		return false
	}
	if _, ok := v.inspectDir(abs); !ok {
		return false
	}
	if err := os.Remove(abs); err != nil {
		v.log.Debug("delete directory failed", zap.Error(volume.NewIOError("remove", err)))
		return false
	}
	return true
}

// parentDir resolves a directory token that is about to receive a new entry.
func (v *Volume) parentDir(token string) (string, error) {
	abs, ok := v.resolve(token)
	if !ok {
		return "", volume.ErrParentInvalid
	}
	if _, ok := v.inspectDir(abs); !ok {
		return "", volume.ErrParentInvalid
	}
	return abs, nil
}

func ensureAbsent(target, op string) error {
	_, err := os.Lstat(target)
	switch {
	case err == nil:
		return volume.ErrAlreadyExists
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return volume.NewIOError(op, err)
	}
}
