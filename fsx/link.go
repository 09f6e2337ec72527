package fsx

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/hostlayer/hostshim/errs"
)

// Symlink creates newpath as a symbolic link to oldpath.
func (s *FS) Symlink(ctx context.Context, oldpath, newpath string) (err error) {
	done := s.begin("symlink")
	defer func() { done(err) }()

	if err = errs.Interruptible(ctx, "symlink"); err != nil {
		return err
	}
	dst, err := s.checkWrite("symlink", newpath)
	if err != nil {
		return err
	}
	// The target is stored verbatim so relative links keep working.
	return errs.FromFS("symlink", dst, os.Symlink(oldpath, dst))
}

// Link creates newpath as a hard link to oldpath.
func (s *FS) Link(ctx context.Context, oldpath, newpath string) (err error) {
	done := s.begin("link")
	defer func() { done(err) }()

	if err = errs.Interruptible(ctx, "link"); err != nil {
		return err
	}
	src, err := s.checkRead("link", oldpath)
	if err != nil {
		return err
	}
	dst, err := s.checkWrite("link", newpath)
	if err != nil {
		return err
	}
	return errs.FromFS("link", dst, os.Link(src, dst))
}

// ReadLink returns the target of the symbolic link at path.
func (s *FS) ReadLink(ctx context.Context, path string) (target string, err error) {
	done := s.begin("read_link")
	defer func() { done(err) }()

	if err = errs.Interruptible(ctx, "read_link"); err != nil {
		return "", err
	}
	abs, err := s.checkRead("read_link", path)
	if err != nil {
		return "", err
	}

	target, linkErr := os.Readlink(abs)
	if linkErr != nil {
		return "", errs.FromFS("read_link", abs, linkErr)
	}
	return target, nil
}

// RealPath resolves path to its canonical absolute form, following
// symlinks.
func (s *FS) RealPath(ctx context.Context, path string) (resolved string, err error) {
	done := s.begin("real_path")
	defer func() { done(err) }()

	if err = errs.Interruptible(ctx, "real_path"); err != nil {
		return "", err
	}
	abs, err := s.checkRead("real_path", path)
	if err != nil {
		return "", err
	}

	resolved, evalErr := filepath.EvalSymlinks(abs)
	if evalErr != nil {
		return "", errs.FromFS("real_path", abs, evalErr)
	}
	return resolved, nil
}

// Chmod changes the permission bits of the file at path.
func (s *FS) Chmod(ctx context.Context, path string, mode os.FileMode) (err error) {
	done := s.begin("chmod")
	defer func() { done(err) }()

	if err = errs.Interruptible(ctx, "chmod"); err != nil {
		return err
	}
	abs, err := s.checkWrite("chmod", path)
	if err != nil {
		return err
	}
	return errs.FromFS("chmod", abs, os.Chmod(abs, mode))
}

// Chown changes the owner of the file at path. Pass -1 to leave a field
// unchanged.
func (s *FS) Chown(ctx context.Context, path string, uid, gid int) (err error) {
	done := s.begin("chown")
	defer func() { done(err) }()

	if err = errs.Interruptible(ctx, "chown"); err != nil {
		return err
	}
	abs, err := s.checkWrite("chown", path)
	if err != nil {
		return err
	}
	return errs.FromFS("chown", abs, os.Chown(abs, uid, gid))
}

// Utime sets the access and modification times of the file at path.
func (s *FS) Utime(ctx context.Context, path string, atime, mtime time.Time) (err error) {
	done := s.begin("utime")
	defer func() { done(err) }()

	if err = errs.Interruptible(ctx, "utime"); err != nil {
		return err
	}
	abs, err := s.checkWrite("utime", path)
	if err != nil {
		return err
	}
	return errs.FromFS("utime", abs, os.Chtimes(abs, atime, mtime))
}
