package watcher

import (
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Superblock magic numbers from statfs(2).
const (
	magicNFS  = 0x6969
	magicSMB  = 0x517B
	magicCIFS = 0xFF534D42
	magicSMB2 = 0xFE534D42
	magicFUSE = 0x65735546
)

func detectFilesystemType(path string) FilesystemType {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		parent := filepath.Dir(path)
		if parent == path {
			return FSTypeUnknown
		}
		if err := unix.Statfs(parent, &st); err != nil {
			return FSTypeUnknown
		}
	}
	switch uint32(st.Type) {
	case magicNFS:
		return FSTypeNFS
	case magicSMB, magicCIFS, magicSMB2:
		return FSTypeSMB
	case magicFUSE:
		return FSTypeFUSE
	default:
		return FSTypeLocal
	}
}
