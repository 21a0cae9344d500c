//go:build !unix

package lockfile

import "github.com/shirou/gopsutil/v4/process"

func processAlive(pid int) bool {
	ok, err := process.PidExists(int32(pid))
	return err == nil && ok
}
