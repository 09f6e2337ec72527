package fsx

import (
	"context"
	"io"
	iofs "io/fs"
	"os"

	"github.com/hostlayer/hostshim/errs"
)

// ReadFile reads the whole file at path.
func (s *FS) ReadFile(ctx context.Context, path string) (data []byte, err error) {
	done := s.begin("read_file")
	defer func() { done(err) }()

	if err = errs.Interruptible(ctx, "read_file"); err != nil {
		return nil, err
	}
	abs, err := s.checkRead("read_file", path)
	if err != nil {
		return nil, err
	}

	data, readErr := os.ReadFile(abs)
	if readErr != nil {
		return nil, errs.FromFS("read_file", abs, readErr)
	}
	return data, nil
}

// ReadTextFile reads the whole file at path as a string.
func (s *FS) ReadTextFile(ctx context.Context, path string) (string, error) {
	data, err := s.ReadFile(ctx, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteOptions configures WriteFile. The target is created when missing
// unless NoCreate is set; CreateNew additionally fails if it already
// exists.
type WriteOptions struct {
	Append    bool
	CreateNew bool
	// NoCreate fails with NotFound instead of creating a missing file.
	NoCreate bool
	// Mode is the permission bits applied when the file is created.
	// Zero means 0o644.
	Mode iofs.FileMode
}

// WriteFile writes data to the file at path, replacing its contents unless
// Append is set.
func (s *FS) WriteFile(ctx context.Context, path string, data []byte, opts WriteOptions) (err error) {
	done := s.begin("write_file")
	defer func() { done(err) }()

	if err = errs.Interruptible(ctx, "write_file"); err != nil {
		return err
	}
	abs, err := s.checkWrite("write_file", path)
	if err != nil {
		return err
	}

	if opts.CreateNew && opts.NoCreate {
		return errs.New(errs.InvalidData, "write_file").
			WithDetail("createNew conflicts with noCreate")
	}

	flag := os.O_WRONLY
	if !opts.NoCreate {
		flag |= os.O_CREATE
	}
	if opts.Append {
		flag |= os.O_APPEND
	} else {
		flag |= os.O_TRUNC
	}
	if opts.CreateNew {
		flag |= os.O_EXCL
	}
	mode := opts.Mode
	if mode == 0 {
		mode = 0o644
	}

	f, openErr := os.OpenFile(abs, flag, mode)
	if openErr != nil {
		return errs.FromFS("write_file", abs, openErr)
	}
	_, writeErr := f.Write(data)
	closeErr := f.Close()
	if writeErr != nil {
		return errs.FromFS("write_file", abs, writeErr)
	}
	return errs.FromFS("write_file", abs, closeErr)
}

// WriteTextFile writes text to the file at path.
func (s *FS) WriteTextFile(ctx context.Context, path, text string, opts WriteOptions) error {
	return s.WriteFile(ctx, path, []byte(text), opts)
}

// Copy copies a regular file, preserving its permission bits.
func (s *FS) Copy(ctx context.Context, from, to string) (err error) {
	done := s.begin("copy_file")
	defer func() { done(err) }()

	if err = errs.Interruptible(ctx, "copy_file"); err != nil {
		return err
	}
	src, err := s.checkRead("copy_file", from)
	if err != nil {
		return err
	}
	dst, err := s.checkWrite("copy_file", to)
	if err != nil {
		return err
	}

	in, openErr := os.Open(src)
	if openErr != nil {
		return errs.FromFS("copy_file", src, openErr)
	}
	defer in.Close()

	fi, statErr := in.Stat()
	if statErr != nil {
		return errs.FromFS("copy_file", src, statErr)
	}
	if fi.IsDir() {
		return errs.NewPath(errs.IsADirectory, "copy_file", src)
	}

	out, createErr := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if createErr != nil {
		return errs.FromFS("copy_file", dst, createErr)
	}

	_, copyErr := io.Copy(out, in)
	closeErr := out.Close()
	if copyErr != nil {
		return errs.FromFS("copy_file", dst, copyErr)
	}
	return errs.FromFS("copy_file", dst, closeErr)
}

// Truncate resizes the file at path to size bytes.
func (s *FS) Truncate(ctx context.Context, path string, size int64) (err error) {
	done := s.begin("truncate")
	defer func() { done(err) }()

	if err = errs.Interruptible(ctx, "truncate"); err != nil {
		return err
	}
	abs, err := s.checkWrite("truncate", path)
	if err != nil {
		return err
	}
	return errs.FromFS("truncate", abs, os.Truncate(abs, size))
}
