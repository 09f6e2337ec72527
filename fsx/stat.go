package fsx

import (
	"context"
	iofs "io/fs"
	"os"
	"time"

	"github.com/hostlayer/hostshim/errs"
)

// FileInfo is the metadata shape returned by Stat and Lstat. Fields beyond
// the portable set are filled on platforms that report them and left zero
// elsewhere.
type FileInfo struct {
	Name      string
	Size      int64
	Mode      iofs.FileMode
	IsFile    bool
	IsDir     bool
	IsSymlink bool
	Mtime     time.Time
	Atime     time.Time

	Dev     uint64
	Ino     uint64
	Nlink   uint64
	Uid     uint32
	Gid     uint32
	Rdev    uint64
	Blksize int64
	Blocks  int64
}

func infoFrom(fi iofs.FileInfo) FileInfo {
	out := FileInfo{
		Name:      fi.Name(),
		Size:      fi.Size(),
		Mode:      fi.Mode(),
		IsDir:     fi.IsDir(),
		IsSymlink: fi.Mode()&iofs.ModeSymlink != 0,
		Mtime:     fi.ModTime(),
	}
	out.IsFile = fi.Mode().IsRegular()
	fillSys(&out, fi.Sys())
	return out
}

// Stat returns metadata for the file at path, following symlinks.
func (s *FS) Stat(ctx context.Context, path string) (info FileInfo, err error) {
	done := s.begin("stat")
	defer func() { done(err) }()

	if err = errs.Interruptible(ctx, "stat"); err != nil {
		return FileInfo{}, err
	}
	abs, err := s.checkRead("stat", path)
	if err != nil {
		return FileInfo{}, err
	}

	fi, statErr := os.Stat(abs)
	if statErr != nil {
		return FileInfo{}, errs.FromFS("stat", abs, statErr)
	}
	return infoFrom(fi), nil
}

// Lstat returns metadata for the file at path without following symlinks.
func (s *FS) Lstat(ctx context.Context, path string) (info FileInfo, err error) {
	done := s.begin("lstat")
	defer func() { done(err) }()

	if err = errs.Interruptible(ctx, "lstat"); err != nil {
		return FileInfo{}, err
	}
	abs, err := s.checkRead("lstat", path)
	if err != nil {
		return FileInfo{}, err
	}

	fi, statErr := os.Lstat(abs)
	if statErr != nil {
		return FileInfo{}, errs.FromFS("lstat", abs, statErr)
	}
	return infoFrom(fi), nil
}
