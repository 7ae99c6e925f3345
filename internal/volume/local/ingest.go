package local

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/finder/internal/volume"
	"github.com/GriffinCanCode/finder/internal/volume/entry"
)

var errTooLarge = errors.New("upload exceeds size limit")

// Ingest writes each upload into dirToken and returns the files that were
// saved. An upload that collides with an existing name, has an unusable name,
// exceeds the size ceiling or fails to write is skipped; nothing is replaced.
func (v *Volume) Ingest(dirToken string, uploads []volume.Upload) []entry.File {
	dir, err := v.parentDir(dirToken)
	if err != nil {
		return nil
	}
	parentToken := v.tokenOf(dir)

	var saved []entry.File
	for _, u := range uploads {
		f, err := v.ingestOne(dir, parentToken, u)
		if err != nil {
			v.log.Debug("upload skipped", zap.String("name", uploadName(u.Name)), zap.Error(err))
			continue
		}
		saved = append(saved, f)
	}
	return saved
}

func (v *Volume) ingestOne(dir, parentToken string, u volume.Upload) (entry.File, error) {
	if u.Body == nil {
		return entry.File{}, fmt.Errorf("upload has no body")
	}
	target, err := v.child(dir, uploadName(u.Name))
	if err != nil {
		return entry.File{}, err
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, v.opts.FileMode)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return entry.File{}, volume.ErrAlreadyExists
		}
		return entry.File{}, volume.NewIOError("upload", err)
	}

	body := u.Body
	limit := v.opts.UploadMaxSize
	if limit > 0 {
		body = io.LimitReader(body, limit+1)
	}

	n, err := io.Copy(out, body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && limit > 0 && n > limit {
		err = errTooLarge
	}
	if err != nil {
		if rerr := os.Remove(target); rerr != nil {
			v.log.Warn("partial upload left behind", zap.Error(volume.NewIOError("remove", rerr)))
		}
		if errors.Is(err, errTooLarge) {
			return entry.File{}, err
		}
		return entry.File{}, volume.NewIOError("upload", err)
	}

	f, ok := v.fileAt(target, parentToken)
	if !ok {
		return entry.File{}, volume.NewIOError("upload", fs.ErrNotExist)
	}
	return f, nil
}

// uploadName reduces a client-supplied file name to its last component.
// Browsers on Windows may send the full local path.
func uploadName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimRight(name, "/")
	if name == "" {
		return ""
	}
	return path.Base(name)
}
