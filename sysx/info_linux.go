//go:build linux

package sysx

import (
	"golang.org/x/sys/unix"

	"github.com/hostlayer/hostshim/errs"
)

const loadScale = 1 << 16 // sysinfo loads are fixed-point

func osRelease() (string, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", errs.FromFS("os_release", "", err)
	}
	return unix.ByteSliceToString(uts.Release[:]), nil
}

func memoryInfo() (MemoryInfo, error) {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return MemoryInfo{}, errs.FromFS("system_memory_info", "", err)
	}
	unit := uint64(si.Unit)
	if unit == 0 {
		unit = 1
	}
	return MemoryInfo{
		Total:     uint64(si.Totalram) * unit,
		Free:      uint64(si.Freeram) * unit,
		Available: uint64(si.Freeram) * unit,
		Buffers:   uint64(si.Bufferram) * unit,
		SwapTotal: uint64(si.Totalswap) * unit,
		SwapFree:  uint64(si.Freeswap) * unit,
	}, nil
}

func loadAvg() ([3]float64, error) {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return [3]float64{}, errs.FromFS("loadavg", "", err)
	}
	return [3]float64{
		float64(si.Loads[0]) / loadScale,
		float64(si.Loads[1]) / loadScale,
		float64(si.Loads[2]) / loadScale,
	}, nil
}
