package fsx

import (
	"path/filepath"

	"github.com/hostlayer/hostshim/errs"
	"github.com/hostlayer/hostshim/metrics"
	"github.com/hostlayer/hostshim/permissions"
	"github.com/hostlayer/hostshim/resource"
)

// FS is the file system surface. Every operation resolves its path to an
// absolute form, checks the matching capability, delegates to the os
// package and relabels the resulting error. Nothing here reimplements I/O.
type FS struct {
	perms   *permissions.Manager
	table   *resource.Table
	metrics *metrics.Registry
}

// New creates a file system surface. table receives every opened file and
// watcher; reg may be nil to disable op counters.
func New(perms *permissions.Manager, table *resource.Table, reg *metrics.Registry) *FS {
	return &FS{perms: perms, table: table, metrics: reg}
}

func (s *FS) begin(op string) func(error) {
	if s.metrics == nil {
		return func(error) {}
	}
	return s.metrics.Begin(op)
}

// checkRead absolutizes path and verifies read capability for it.
func (s *FS) checkRead(op, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errs.Wrap(errs.InvalidData, op, path, err)
	}
	if err := s.perms.Check(permissions.ReadPath(abs), op); err != nil {
		return "", err
	}
	return abs, nil
}

// checkWrite absolutizes path and verifies write capability for it.
func (s *FS) checkWrite(op, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errs.Wrap(errs.InvalidData, op, path, err)
	}
	if err := s.perms.Check(permissions.WritePath(abs), op); err != nil {
		return "", err
	}
	return abs, nil
}
