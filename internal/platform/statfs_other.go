//go:build !unix

package platform

import "github.com/shirou/gopsutil/v3/disk"

func fsUsage(path string) (total, free uint64, err error) {
	u, err := disk.Usage(path)
	if err != nil {
		return 0, 0, err
	}
	return u.Total, u.Free, nil
}
