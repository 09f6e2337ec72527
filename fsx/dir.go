package fsx

import (
	"context"
	iofs "io/fs"
	"os"

	"github.com/hostlayer/hostshim/errs"
	"github.com/hostlayer/hostshim/permissions"
)

// DirEntry describes one entry returned by ReadDir.
type DirEntry struct {
	Name      string
	IsFile    bool
	IsDir     bool
	IsSymlink bool
}

// ReadDir lists the entries of the directory at path in directory order.
func (s *FS) ReadDir(ctx context.Context, path string) (entries []DirEntry, err error) {
	done := s.begin("read_dir")
	defer func() { done(err) }()

	if err = errs.Interruptible(ctx, "read_dir"); err != nil {
		return nil, err
	}
	abs, err := s.checkRead("read_dir", path)
	if err != nil {
		return nil, err
	}

	list, readErr := os.ReadDir(abs)
	if readErr != nil {
		return nil, errs.FromFS("read_dir", abs, readErr)
	}

	entries = make([]DirEntry, len(list))
	for i, e := range list {
		entries[i] = DirEntry{
			Name:      e.Name(),
			IsDir:     e.IsDir(),
			IsSymlink: e.Type()&iofs.ModeSymlink != 0,
		}
		entries[i].IsFile = !entries[i].IsDir && !entries[i].IsSymlink
	}
	return entries, nil
}

// MkdirOptions configures Mkdir.
type MkdirOptions struct {
	// Recursive creates missing parents and tolerates an existing target.
	Recursive bool
	// Mode is the permission bits for created directories. Zero means 0o755.
	Mode iofs.FileMode
}

// Mkdir creates the directory at path.
func (s *FS) Mkdir(ctx context.Context, path string, opts MkdirOptions) (err error) {
	done := s.begin("mkdir")
	defer func() { done(err) }()

	if err = errs.Interruptible(ctx, "mkdir"); err != nil {
		return err
	}
	abs, err := s.checkWrite("mkdir", path)
	if err != nil {
		return err
	}

	mode := opts.Mode
	if mode == 0 {
		mode = 0o755
	}
	if opts.Recursive {
		return errs.FromFS("mkdir", abs, os.MkdirAll(abs, mode))
	}
	return errs.FromFS("mkdir", abs, os.Mkdir(abs, mode))
}

// RemoveOptions configures Remove.
type RemoveOptions struct {
	// Recursive removes directories and their contents.
	Recursive bool
}

// Remove deletes the file or directory at path. Removing a non-empty
// directory requires Recursive.
func (s *FS) Remove(ctx context.Context, path string, opts RemoveOptions) (err error) {
	done := s.begin("remove")
	defer func() { done(err) }()

	if err = errs.Interruptible(ctx, "remove"); err != nil {
		return err
	}
	abs, err := s.checkWrite("remove", path)
	if err != nil {
		return err
	}

	if opts.Recursive {
		// RemoveAll succeeds on missing paths; the surface reports NotFound.
		if _, statErr := os.Lstat(abs); statErr != nil {
			return errs.FromFS("remove", abs, statErr)
		}
		return errs.FromFS("remove", abs, os.RemoveAll(abs))
	}
	return errs.FromFS("remove", abs, os.Remove(abs))
}

// Rename moves oldpath to newpath. Requires read and write on the source
// and write on the destination.
func (s *FS) Rename(ctx context.Context, oldpath, newpath string) (err error) {
	done := s.begin("rename")
	defer func() { done(err) }()

	if err = errs.Interruptible(ctx, "rename"); err != nil {
		return err
	}
	src, err := s.checkRead("rename", oldpath)
	if err != nil {
		return err
	}
	if _, err = s.checkWrite("rename", oldpath); err != nil {
		return err
	}
	dst, err := s.checkWrite("rename", newpath)
	if err != nil {
		return err
	}
	return errs.FromFS("rename", src, os.Rename(src, dst))
}

// TempOptions configures MakeTempDir and MakeTempFile.
type TempOptions struct {
	// Dir is the parent directory. Empty means the host temp directory.
	Dir    string
	Prefix string
	Suffix string
}

func (o TempOptions) parent() string {
	if o.Dir != "" {
		return o.Dir
	}
	return os.TempDir()
}

func (o TempOptions) pattern() string {
	return o.Prefix + "*" + o.Suffix
}

// MakeTempDir creates a uniquely named directory and returns its path.
func (s *FS) MakeTempDir(ctx context.Context, opts TempOptions) (path string, err error) {
	done := s.begin("make_temp_dir")
	defer func() { done(err) }()

	if err = errs.Interruptible(ctx, "make_temp_dir"); err != nil {
		return "", err
	}
	parent, err := s.checkWrite("make_temp_dir", opts.parent())
	if err != nil {
		return "", err
	}

	path, tmpErr := os.MkdirTemp(parent, opts.pattern())
	if tmpErr != nil {
		return "", errs.FromFS("make_temp_dir", parent, tmpErr)
	}
	return path, nil
}

// MakeTempFile creates a uniquely named empty file and returns its path.
func (s *FS) MakeTempFile(ctx context.Context, opts TempOptions) (path string, err error) {
	done := s.begin("make_temp_file")
	defer func() { done(err) }()

	if err = errs.Interruptible(ctx, "make_temp_file"); err != nil {
		return "", err
	}
	parent, err := s.checkWrite("make_temp_file", opts.parent())
	if err != nil {
		return "", err
	}

	f, tmpErr := os.CreateTemp(parent, opts.pattern())
	if tmpErr != nil {
		return "", errs.FromFS("make_temp_file", parent, tmpErr)
	}
	path = f.Name()
	if closeErr := f.Close(); closeErr != nil {
		return "", errs.FromFS("make_temp_file", path, closeErr)
	}
	return path, nil
}

// Cwd returns the current working directory. Requires read capability on it.
func (s *FS) Cwd() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", errs.FromFS("cwd", "", err)
	}
	if err := s.perms.Check(permissions.ReadPath(dir), "cwd"); err != nil {
		return "", err
	}
	return dir, nil
}

// Chdir changes the working directory. Requires read capability on dir.
func (s *FS) Chdir(dir string) error {
	abs, err := s.checkRead("chdir", dir)
	if err != nil {
		return err
	}
	return errs.FromFS("chdir", abs, os.Chdir(abs))
}
