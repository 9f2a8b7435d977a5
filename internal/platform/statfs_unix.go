//go:build unix

package platform

import "golang.org/x/sys/unix"

// fsUsage returns total and free bytes for the filesystem at path.
func fsUsage(path string) (total, free uint64, err error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, 0, err
	}
	bsize := uint64(st.Bsize)
	return st.Blocks * bsize, uint64(st.Bavail) * bsize, nil
}
