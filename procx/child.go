package procx

import (
	"errors"
	"io"
	"os/exec"
	"sync/atomic"

	"github.com/hostlayer/hostshim/errs"
	"github.com/hostlayer/hostshim/resource"
)

// Status is the exit state of a finished child process.
type Status struct {
	Success bool
	Code    int
	// Signal is the name of the terminating signal, if any.
	Signal string
}

// Child is a running child process. Piped streams are tracked resources
// until the child is waited on or the streams are closed.
type Child struct {
	pid    int
	cmd    *exec.Cmd
	table  *resource.Table
	waited atomic.Bool

	Stdin  *WriteStream
	Stdout *ReadStream
	Stderr *ReadStream
}

// Pid returns the operating system process ID.
func (c *Child) Pid() int { return c.pid }

// Wait blocks until the child exits and returns its status. The piped
// streams are released as part of waiting.
func (c *Child) Wait() (Status, error) {
	if !c.waited.CompareAndSwap(false, true) {
		return Status{}, errs.New(errs.BadResource, "wait").
			WithDetail("child already waited on")
	}

	// Stdin must be closed or the child may never see EOF.
	if c.Stdin != nil && !c.Stdin.closed.Load() {
		_ = c.Stdin.Close()
	}

	waitErr := c.cmd.Wait()
	c.closeStreams()

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return statusFrom(exitErr.ProcessState), nil
		}
		return Status{}, errs.FromFS("wait", c.cmd.Path, waitErr)
	}
	return statusFrom(c.cmd.ProcessState), nil
}

// Kill sends a named signal ("SIGTERM", "SIGKILL", ...) to the child.
func (c *Child) Kill(signal string) error {
	sig, err := lookupSignal(signal)
	if err != nil {
		return err
	}
	if c.cmd.Process == nil {
		return errs.New(errs.BadResource, "kill")
	}
	return errs.FromFS("kill", c.cmd.Path, c.cmd.Process.Signal(sig))
}

// abortStreams closes any pipes set up before Start could run; the fds
// are still open at that point, so detaching alone would leak them.
func (c *Child) abortStreams() {
	if c.Stdin != nil {
		_ = c.Stdin.Close()
	}
	if c.Stdout != nil {
		_ = c.Stdout.Close()
	}
	if c.Stderr != nil {
		_ = c.Stderr.Close()
	}
}

func (c *Child) closeStreams() {
	if c.Stdout != nil {
		c.Stdout.detach()
	}
	if c.Stderr != nil {
		c.Stderr.detach()
	}
	if c.Stdin != nil {
		c.Stdin.detach()
	}
}

// ReadStream is a tracked read end of a child pipe.
type ReadStream struct {
	rc     io.ReadCloser
	rid    resource.Rid
	kind   resource.Kind
	table  *resource.Table
	closed atomic.Bool
}

func newReadStream(rc io.ReadCloser, kind resource.Kind, table *resource.Table) *ReadStream {
	s := &ReadStream{rc: rc, kind: kind, table: table}
	if table != nil {
		s.rid = table.Add(s)
	}
	return s
}

// Rid returns the stream's resource ID.
func (s *ReadStream) Rid() resource.Rid { return s.rid }

// Kind implements resource.Resource.
func (s *ReadStream) Kind() resource.Kind { return s.kind }

func (s *ReadStream) Read(p []byte) (int, error) {
	n, err := s.rc.Read(p)
	if err != nil && err != io.EOF {
		return n, errs.FromFS("read", s.kind.String(), err)
	}
	return n, err
}

// Close releases the pipe and removes it from the resource table.
func (s *ReadStream) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return errs.New(errs.BadResource, "close")
	}
	if s.table != nil {
		s.table.Remove(s.rid)
	}
	return errs.FromFS("close", s.kind.String(), s.rc.Close())
}

// detach untracks the stream without touching the pipe; exec.Cmd.Wait has
// already closed it.
func (s *ReadStream) detach() {
	if s.closed.CompareAndSwap(false, true) && s.table != nil {
		s.table.Remove(s.rid)
	}
}

// WriteStream is a tracked write end of a child pipe.
type WriteStream struct {
	wc     io.WriteCloser
	rid    resource.Rid
	kind   resource.Kind
	table  *resource.Table
	closed atomic.Bool
}

func newWriteStream(wc io.WriteCloser, kind resource.Kind, table *resource.Table) *WriteStream {
	s := &WriteStream{wc: wc, kind: kind, table: table}
	if table != nil {
		s.rid = table.Add(s)
	}
	return s
}

// Rid returns the stream's resource ID.
func (s *WriteStream) Rid() resource.Rid { return s.rid }

// Kind implements resource.Resource.
func (s *WriteStream) Kind() resource.Kind { return s.kind }

func (s *WriteStream) Write(p []byte) (int, error) {
	n, err := s.wc.Write(p)
	return n, errs.FromFS("write", s.kind.String(), err)
}

// Close closes the pipe, signalling EOF to the child, and removes it from
// the resource table.
func (s *WriteStream) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return errs.New(errs.BadResource, "close")
	}
	if s.table != nil {
		s.table.Remove(s.rid)
	}
	return errs.FromFS("close", s.kind.String(), s.wc.Close())
}

func (s *WriteStream) detach() {
	if s.closed.CompareAndSwap(false, true) && s.table != nil {
		s.table.Remove(s.rid)
	}
}
