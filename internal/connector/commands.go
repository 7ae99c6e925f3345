package connector

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/finder/internal/imaging"
	"github.com/GriffinCanCode/finder/internal/volume"
	"github.com/GriffinCanCode/finder/internal/volume/entry"
)

// lookup returns the volume owning token.
func (c *Connector) lookup(token string) (volume.Volume, bool) {
	v, err := c.registry.Lookup(token)
	return v, err == nil
}

// directory resolves a directory token through the registry.
func (c *Connector) directory(token string) (volume.Volume, entry.Directory, error) {
	v, ok := c.lookup(token)
	if !ok {
		return nil, entry.Directory{}, fail(codeFolderNotFound)
	}
	d, err := v.Directory(token)
	if err != nil {
		return nil, entry.Directory{}, fail(codeFolderNotFound)
	}
	return v, d, nil
}

// describe finds a token as either a file or a directory.
func (c *Connector) describe(token string) (volume.Volume, *entry.File, *entry.Directory) {
	v, ok := c.lookup(token)
	if !ok {
		return nil, nil, nil
	}
	if f, err := v.File(token); err == nil {
		return v, &f, nil
	}
	if d, err := v.Directory(token); err == nil {
		return v, nil, &d
	}
	return v, nil, nil
}

func (c *Connector) open(_ context.Context, r *request) (gin.H, error) {
	args, err := parseOpen(r.params)
	if err != nil {
		return nil, err
	}

	var (
		vol volume.Volume
		cwd entry.Directory
	)
	if args.Target != "" {
		vol, cwd, err = c.directory(args.Target)
	}
	if args.Target == "" || (err != nil && args.Init) {
		vol, err = c.registry.Default()
		if err != nil {
			return nil, fail(codeFolderNotFound)
		}
		cwd, err = vol.Root()
		if err != nil {
			return nil, fail(codeFolderNotFound)
		}
	}
	if err != nil {
		return nil, err
	}

	files := newCollector()
	if args.Tree {
		for _, v := range c.registry.All() {
			root, err := v.Root()
			if err != nil {
				c.log.Warn("volume root unavailable", zap.String("volume", v.ID()))
				continue
			}
			files.add(dirRecord(root))
			files.dirs(v.Subdirectories(root.Token, volume.TreeOptions{}))
		}
	}
	files.add(dirRecord(cwd))
	files.dirs(vol.Subdirectories(cwd.Token, volume.Depth(1)))
	files.files(vol.Files(cwd.Token))

	return gin.H{
		"api":        APIVersion,
		"cwd":        dirRecord(cwd),
		"files":      files.records,
		"uplMaxSize": sizeLimit(c.opts.UploadMaxSize),
		"options": gin.H{
			"path":       vol.PathToRoot(cwd.Token),
			"separator":  "/",
			"disabled":   []string{},
			"thumbnails": imaging.SupportedExtensions(),
		},
	}, nil
}

func (c *Connector) tree(_ context.Context, r *request) (gin.H, error) {
	args, err := parseTarget("tree")(r.params)
	if err != nil {
		return nil, err
	}
	vol, dir, err := c.directory(args.Target)
	if err != nil {
		return nil, err
	}

	tree := newCollector()
	tree.add(dirRecord(dir))
	tree.dirs(vol.Subdirectories(dir.Token, volume.TreeOptions{}))
	return gin.H{"tree": tree.records}, nil
}

func (c *Connector) info(_ context.Context, r *request) (gin.H, error) {
	args, err := parseTargets("info")(r.params)
	if err != nil {
		return nil, err
	}

	files := newCollector()
	for _, t := range args.Targets {
		_, f, d := c.describe(t)
		switch {
		case f != nil:
			files.add(fileRecord(*f))
		case d != nil:
			files.add(dirRecord(*d))
		}
	}
	return gin.H{"files": files.records}, nil
}

func (c *Connector) mkdir(_ context.Context, r *request) (gin.H, error) {
	args, err := parseName("mkdir")(r.params)
	if err != nil {
		return nil, err
	}
	if !safeName(args.Name) {
		return nil, fail(codeInvName)
	}
	vol, ok := c.lookup(args.Target)
	if !ok {
		return nil, fail(codeFolderNotFound)
	}

	d, err := vol.CreateDirectory(args.Target, args.Name)
	if err != nil {
		return nil, volumeError(err, codeFolderNotFound, codeMkdir)
	}
	return gin.H{"added": []record{dirRecord(d)}}, nil
}

func (c *Connector) mkfile(_ context.Context, r *request) (gin.H, error) {
	args, err := parseName("mkfile")(r.params)
	if err != nil {
		return nil, err
	}
	if !safeName(args.Name) {
		return nil, fail(codeInvName)
	}
	vol, ok := c.lookup(args.Target)
	if !ok {
		return nil, fail(codeFolderNotFound)
	}

	f, err := vol.CreateFile(args.Target, args.Name)
	if err != nil {
		return nil, volumeError(err, codeFolderNotFound, codeMkfile)
	}
	return gin.H{"added": []record{fileRecord(f)}}, nil
}

func (c *Connector) rename(_ context.Context, r *request) (gin.H, error) {
	args, err := parseName("rename")(r.params)
	if err != nil {
		return nil, err
	}
	if !safeName(args.Name) {
		return nil, fail(codeInvName)
	}

	vol, f, d := c.describe(args.Target)
	var added record
	switch {
	case f != nil:
		renamed, err := vol.RenameFile(args.Target, args.Name)
		if err != nil {
			return nil, volumeError(err, codeFileNotFound, codeRename)
		}
		added = fileRecord(renamed)
	case d != nil:
		renamed, err := vol.RenameDirectory(args.Target, args.Name)
		if err != nil {
			return nil, volumeError(err, codeFolderNotFound, codeRename)
		}
		added = dirRecord(renamed)
	default:
		return nil, fail(codeFileNotFound)
	}

	return gin.H{"added": []record{added}, "removed": []string{args.Target}}, nil
}

func (c *Connector) rm(_ context.Context, r *request) (gin.H, error) {
	args, err := parseTargets("rm")(r.params)
	if err != nil {
		return nil, err
	}

	removed := []string{}
	var failed []string
	locked := false
	for _, t := range args.Targets {
		vol, f, d := c.describe(t)
		ok := false
		switch {
		case f != nil:
			ok = vol.DeleteFile(t)
			if !ok {
				failed = append(failed, f.Name)
			}
		case d != nil && d.Locked:
			locked = true
			failed = append(failed, d.Name)
		case d != nil:
			ok = vol.DeleteDirectory(t)
			if !ok {
				failed = append(failed, d.Name)
			}
		default:
			// Already gone.
		}
		if ok {
			removed = append(removed, t)
		}
	}

	if len(removed) == 0 && len(failed) > 0 {
		if locked && len(failed) == 1 {
			return nil, fail(codeLocked, failed...)
		}
		return nil, fail(codeRm, failed...)
	}

	resp := gin.H{"removed": removed}
	if len(failed) > 0 {
		resp["warning"] = append([]string{codeRm}, failed...)
	}
	return resp, nil
}

func (c *Connector) upload(_ context.Context, r *request) (gin.H, error) {
	args, err := parseTarget("upload")(r.params)
	if err != nil {
		return nil, err
	}
	if len(r.files) == 0 {
		return nil, fail(codeUploadNoFiles)
	}
	if len(r.files) > c.opts.MaxUploadFiles {
		return nil, fail(codeUpload, "too many files")
	}
	vol, _, err := c.directory(args.Target)
	if err != nil {
		return nil, err
	}

	uploads := make([]volume.Upload, 0, len(r.files))
	var closers []io.Closer
	defer func() {
		for _, cl := range closers {
			cl.Close()
		}
	}()
	for _, fh := range r.files {
		if !safeName(fh.Filename) {
			continue
		}
		if c.opts.UploadMaxSize > 0 && fh.Size > c.opts.UploadMaxSize {
			continue
		}
		body, err := fh.Open()
		if err != nil {
			c.log.Debug("open upload part", zap.Error(err))
			continue
		}
		closers = append(closers, body)
		uploads = append(uploads, volume.Upload{Name: fh.Filename, Body: body})
	}

	saved := vol.Ingest(args.Target, uploads)
	if len(saved) == 0 {
		return nil, fail(codeUpload)
	}

	added := newCollector()
	added.files(saved)
	resp := gin.H{"added": added.records}
	if skipped := len(r.files) - len(saved); skipped > 0 {
		resp["warning"] = []string{codeUpload}
	}
	return resp, nil
}

func (c *Connector) search(ctx context.Context, r *request) (gin.H, error) {
	args, err := parseSearch(r.params)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.SearchTimeout)
	defer cancel()

	type scope struct {
		vol   volume.Volume
		token string
	}
	var scopes []scope
	if args.Target != "" {
		vol, dir, err := c.directory(args.Target)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, scope{vol, dir.Token})
	} else {
		for _, v := range c.registry.All() {
			root, err := v.Root()
			if err != nil {
				continue
			}
			scopes = append(scopes, scope{v, root.Token})
		}
	}

	files := newCollector()
	for _, s := range scopes {
		dirs, found, err := s.vol.Search(ctx, s.token, args.Query)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return nil, fail(codeSearchTimeout)
			}
			return nil, volumeError(err, codeFolderNotFound, codeSearch)
		}
		files.dirs(dirs)
		files.files(found)
	}
	return gin.H{"files": files.records}, nil
}
