// Copyright 2026, the snptree contributors.

package utils

import "golang.org/x/sys/unix"

// DiskFree returns the number of bytes available to the current user
// on the filesystem containing path.
func DiskFree(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	return st.Bavail * uint64(st.Bsize), nil
}
