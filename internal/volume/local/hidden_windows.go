//go:build windows

package local

import (
	"io/fs"
	"syscall"
)

const platformFoldCase = true

// platformHidden reports the hidden and system attributes.
func platformHidden(info fs.FileInfo) bool {
	attrs, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return false
	}
	return attrs.FileAttributes&(syscall.FILE_ATTRIBUTE_HIDDEN|syscall.FILE_ATTRIBUTE_SYSTEM) != 0
}
