//go:build linux

package fsx

import (
	"syscall"
	"time"
)

func fillSys(info *FileInfo, sys any) {
	st, ok := sys.(*syscall.Stat_t)
	if !ok {
		return
	}
	info.Dev = uint64(st.Dev)
	info.Ino = st.Ino
	info.Nlink = uint64(st.Nlink)
	info.Uid = st.Uid
	info.Gid = st.Gid
	info.Rdev = uint64(st.Rdev)
	info.Blksize = int64(st.Blksize)
	info.Blocks = st.Blocks
	info.Atime = time.Unix(st.Atim.Sec, st.Atim.Nsec)
}
