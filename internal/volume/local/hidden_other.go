//go:build !windows

package local

import "io/fs"

const platformFoldCase = false

// platformHidden is always false; dot names are handled by the caller.
func platformHidden(fs.FileInfo) bool { return false }
