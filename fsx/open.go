package fsx

import (
	"context"
	iofs "io/fs"
	"os"

	"github.com/hostlayer/hostshim/errs"
	"github.com/hostlayer/hostshim/resource"
)

// OpenOptions selects the access mode for Open. The zero value opens
// read-only. Truncate, Create and CreateNew require write access.
type OpenOptions struct {
	Read      bool
	Write     bool
	Append    bool
	Truncate  bool
	Create    bool
	CreateNew bool
	// Mode is the permission bits applied when a file is created.
	// Zero means 0o644.
	Mode iofs.FileMode
}

func (o OpenOptions) reading() bool {
	return o.Read || (!o.Write && !o.Append)
}

func (o OpenOptions) writing() bool {
	return o.Write || o.Append || o.Truncate || o.Create || o.CreateNew
}

func (o OpenOptions) flags() (int, error) {
	if (o.Truncate || o.Create || o.CreateNew) && !(o.Write || o.Append) {
		return 0, errs.New(errs.InvalidData, "open").
			WithDetail("create or truncate requires write or append access")
	}

	var flag int
	switch {
	case o.reading() && o.writing():
		flag = os.O_RDWR
	case o.writing():
		flag = os.O_WRONLY
	default:
		flag = os.O_RDONLY
	}
	if o.Append {
		flag |= os.O_APPEND
	}
	if o.Truncate {
		flag |= os.O_TRUNC
	}
	if o.CreateNew {
		flag |= os.O_CREATE | os.O_EXCL
	} else if o.Create {
		flag |= os.O_CREATE
	}
	return flag, nil
}

// Open opens a file with explicit access options and registers it in the
// resource table.
func (s *FS) Open(ctx context.Context, path string, opts OpenOptions) (file *File, err error) {
	done := s.begin("open")
	defer func() { done(err) }()

	if err = errs.Interruptible(ctx, "open"); err != nil {
		return nil, err
	}

	flag, err := opts.flags()
	if err != nil {
		return nil, err
	}

	abs := path
	if opts.reading() {
		if abs, err = s.checkRead("open", path); err != nil {
			return nil, err
		}
	}
	if opts.writing() {
		if abs, err = s.checkWrite("open", path); err != nil {
			return nil, err
		}
	}

	mode := opts.Mode
	if mode == 0 {
		mode = 0o644
	}

	f, openErr := os.OpenFile(abs, flag, mode)
	if openErr != nil {
		return nil, errs.FromFS("open", abs, openErr)
	}
	return s.wrapFile(f), nil
}

// Create opens a file for writing, creating it or truncating an existing
// one, and registers it in the resource table.
func (s *FS) Create(ctx context.Context, path string) (*File, error) {
	return s.Open(ctx, path, OpenOptions{
		Read:     true,
		Write:    true,
		Create:   true,
		Truncate: true,
	})
}

func (s *FS) wrapFile(f *os.File) *File {
	file := &File{f: f, table: s.table}
	if s.table != nil {
		file.rid = s.table.Add(file)
	}
	return file
}

var _ resource.Resource = (*File)(nil)
