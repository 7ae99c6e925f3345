package local

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/finder/internal/volume"
	"github.com/GriffinCanCode/finder/internal/volume/entry"
)

// Subdirectories lists the directories below dirToken in pre-order. Immediate
// children are at depth 1 and an entry at depth d is listed iff d <= max depth,
// so a depth of 0 lists nothing. Hidden directories are pruned along with their
// subtrees. Any read failure yields an empty result.
func (v *Volume) Subdirectories(dirToken string, opts volume.TreeOptions) []entry.Directory {
	maxDepth := *v.opts.MaxTreeDepth
	if opts.MaxDepth != nil {
		maxDepth = *opts.MaxDepth
	}

	abs, ok := v.resolve(dirToken)
	if !ok {
		return nil
	}
	if _, ok := v.inspectDir(abs); !ok {
		return nil
	}

	var out []entry.Directory
	if err := v.walkDirs(abs, v.tokenOf(abs), 1, maxDepth, &out); err != nil {
		v.log.Debug("tree walk failed", zap.Error(err))
		return nil
	}
	return out
}

func (v *Volume) walkDirs(dir, dirToken string, depth, maxDepth int, out *[]entry.Directory) error {
	if depth > maxDepth {
		return nil
	}

	children, err := os.ReadDir(dir)
	if err != nil {
		return volume.NewIOError("readdir", err)
	}

	for _, c := range children {
		if !c.IsDir() {
			continue
		}
		abs := filepath.Join(dir, c.Name())
		info, ok := v.inspectDir(abs)
		if !ok {
			continue
		}

		token := v.tokenOf(abs)
		md := entry.FromFileInfo(abs, info)
		*out = append(*out, v.factory.Directory(md, token, dirToken, v.hasChildren(abs)))

		if err := v.walkDirs(abs, token, depth+1, maxDepth, out); err != nil {
			return err
		}
	}
	return nil
}
