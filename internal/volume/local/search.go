package local

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"

	"github.com/GriffinCanCode/finder/internal/volume"
	"github.com/GriffinCanCode/finder/internal/volume/entry"
)

var errLimitReached = errors.New("search limit reached")

// Search walks the subtree below dirToken and returns entries whose names
// match query. A query containing glob metacharacters is matched with
// doublestar against the name; anything else is a case-insensitive substring
// match. Hidden directories are pruned. At most the configured limit of
// entries is returned, sorted by token.
func (v *Volume) Search(ctx context.Context, dirToken, query string) ([]entry.Directory, []entry.File, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil, nil
	}
	root, ok := v.resolve(dirToken)
	if !ok {
		return nil, nil, volume.ErrNotFound
	}
	if _, ok := v.inspectDir(root); !ok {
		return nil, nil, volume.ErrNotFound
	}

	match := matcher(query)

	var (
		mu    sync.Mutex
		dirs  []entry.Directory
		files []entry.File
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(p string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || p == root {
			return nil
		}

		if d.IsDir() {
			if _, ok := v.inspectDir(p); !ok {
				return filepath.SkipDir
			}
		} else if !d.Type().IsRegular() {
			return nil
		}

		if !match(d.Name()) {
			return nil
		}

		parent := v.parentToken(p)
		if parent == "" {
			return nil
		}

		var dir *entry.Directory
		var file *entry.File
		if d.IsDir() {
			found, ok := v.directoryAt(p)
			if !ok {
				return nil
			}
			dir = &found
		} else {
			found, ok := v.fileAt(p, parent)
			if !ok {
				return nil
			}
			file = &found
		}

		mu.Lock()
		defer mu.Unlock()
		if len(dirs)+len(files) >= v.opts.SearchLimit {
			return errLimitReached
		}
		if dir != nil {
			dirs = append(dirs, *dir)
		} else {
			files = append(files, *file)
		}
		return nil
	})

	if err != nil && !errors.Is(err, errLimitReached) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		return nil, nil, volume.NewIOError("search", err)
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Token < dirs[j].Token })
	sort.Slice(files, func(i, j int) bool { return files[i].Token < files[j].Token })
	return dirs, files, nil
}

// matcher builds the name predicate for query.
func matcher(query string) func(string) bool {
	if strings.ContainsAny(query, "*?[{") && doublestar.ValidatePattern(query) {
		return func(name string) bool {
			ok, _ := doublestar.Match(query, name)
			return ok
		}
	}
	q := strings.ToLower(query)
	return func(name string) bool {
		return strings.Contains(strings.ToLower(name), q)
	}
}
