//go:build !linux

package sysx

import (
	"github.com/hostlayer/hostshim/errs"
)

func osRelease() (string, error) {
	return "", errs.New(errs.NotSupported, "os_release")
}

func memoryInfo() (MemoryInfo, error) {
	return MemoryInfo{}, errs.New(errs.NotSupported, "system_memory_info")
}

func loadAvg() ([3]float64, error) {
	return [3]float64{}, errs.New(errs.NotSupported, "loadavg")
}
