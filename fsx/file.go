package fsx

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/term"

	"github.com/hostlayer/hostshim/errs"
	"github.com/hostlayer/hostshim/resource"
)

// File is an open file registered in the resource table. Reads and writes
// delegate to the underlying descriptor; errors come back relabeled.
type File struct {
	f      *os.File
	rid    resource.Rid
	table  *resource.Table
	closed atomic.Bool
}

func isEOF(err error) bool { return err == io.EOF }

// Rid returns the file's resource ID, or 0 when the file is untracked.
func (f *File) Rid() resource.Rid { return f.rid }

// Name returns the path the file was opened with.
func (f *File) Name() string { return f.f.Name() }

// Kind implements resource.Resource.
func (f *File) Kind() resource.Kind { return resource.KindFile }

func (f *File) Read(p []byte) (int, error) {
	n, err := f.f.Read(p)
	if err != nil && !isEOF(err) {
		return n, errs.FromFS("read", f.Name(), err)
	}
	return n, err
}

func (f *File) Write(p []byte) (int, error) {
	n, err := f.f.Write(p)
	return n, errs.FromFS("write", f.Name(), err)
}

func (f *File) ReadAt(p []byte, off int64) (int, error) {
	n, err := f.f.ReadAt(p, off)
	if err != nil && !isEOF(err) {
		return n, errs.FromFS("read", f.Name(), err)
	}
	return n, err
}

func (f *File) WriteAt(p []byte, off int64) (int, error) {
	n, err := f.f.WriteAt(p, off)
	return n, errs.FromFS("write", f.Name(), err)
}

func (f *File) Seek(offset int64, whence int) (int64, error) {
	pos, err := f.f.Seek(offset, whence)
	return pos, errs.FromFS("seek", f.Name(), err)
}

// Sync flushes file contents and metadata to stable storage.
func (f *File) Sync() error {
	return errs.FromFS("sync", f.Name(), f.f.Sync())
}

// Truncate resizes the file to size bytes.
func (f *File) Truncate(size int64) error {
	return errs.FromFS("truncate", f.Name(), f.f.Truncate(size))
}

// Stat returns metadata for the open descriptor.
func (f *File) Stat() (FileInfo, error) {
	fi, err := f.f.Stat()
	if err != nil {
		return FileInfo{}, errs.FromFS("stat", f.Name(), err)
	}
	return infoFrom(fi), nil
}

// Utime sets the access and modification times of the open file's path.
func (f *File) Utime(atime, mtime time.Time) error {
	return errs.FromFS("utime", f.Name(), os.Chtimes(f.Name(), atime, mtime))
}

// IsTerminal reports whether the descriptor refers to a terminal.
func (f *File) IsTerminal() bool {
	return term.IsTerminal(int(f.f.Fd()))
}

// Close releases the descriptor and removes it from the resource table.
// A second close reports BadResource.
func (f *File) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return errs.NewPath(errs.BadResource, "close", f.Name())
	}
	if f.table != nil {
		f.table.Remove(f.rid)
	}
	return errs.FromFS("close", f.Name(), f.f.Close())
}
