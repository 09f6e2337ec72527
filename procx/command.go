package procx

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"

	"golang.org/x/sync/errgroup"

	"github.com/hostlayer/hostshim/errs"
	"github.com/hostlayer/hostshim/metrics"
	"github.com/hostlayer/hostshim/permissions"
	"github.com/hostlayer/hostshim/resource"
)

// Stdio selects how a child stream is wired.
type Stdio uint8

const (
	// StdioInherit shares the parent's stream.
	StdioInherit Stdio = iota
	// StdioPiped exposes the stream as a tracked pipe resource.
	StdioPiped
	// StdioNull discards the stream.
	StdioNull
)

// Command describes a child process to spawn.
type Command struct {
	// Path is the program to run, looked up on PATH when not absolute.
	Path string
	Args []string
	Cwd  string
	// Env entries override or extend the parent environment.
	Env map[string]string
	// ClearEnv starts the child from an empty environment.
	ClearEnv bool

	Stdin  Stdio
	Stdout Stdio
	Stderr Stdio
}

// Proc is the process surface. Spawning is gated by the run capability on
// the program and the env capability on each overridden variable.
type Proc struct {
	perms   *permissions.Manager
	table   *resource.Table
	metrics *metrics.Registry
}

// New creates a process surface. reg may be nil to disable op counters.
func New(perms *permissions.Manager, table *resource.Table, reg *metrics.Registry) *Proc {
	return &Proc{perms: perms, table: table, metrics: reg}
}

func (p *Proc) begin(op string) func(error) {
	if p.metrics == nil {
		return func(error) {}
	}
	return p.metrics.Begin(op)
}

// Spawn starts the child process. The returned Child owns the piped
// streams; cancellation of ctx kills the child.
func (p *Proc) Spawn(ctx context.Context, cmd Command) (child *Child, err error) {
	done := p.begin("spawn")
	defer func() { done(err) }()

	if cmd.Path == "" {
		return nil, errs.New(errs.InvalidData, "spawn").WithDetail("empty program path")
	}
	if err = p.perms.Check(permissions.RunCommand(cmd.Path), "spawn"); err != nil {
		return nil, err
	}

	env, err := p.buildEnv(cmd)
	if err != nil {
		return nil, err
	}

	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Dir = cmd.Cwd
	c.Env = env

	child = &Child{cmd: c, table: p.table}

	switch cmd.Stdin {
	case StdioInherit:
		c.Stdin = os.Stdin
	case StdioPiped:
		wc, pipeErr := c.StdinPipe()
		if pipeErr != nil {
			return nil, errs.FromFS("spawn", cmd.Path, pipeErr)
		}
		child.Stdin = newWriteStream(wc, resource.KindChildStdin, p.table)
	}

	switch cmd.Stdout {
	case StdioInherit:
		c.Stdout = os.Stdout
	case StdioPiped:
		rc, pipeErr := c.StdoutPipe()
		if pipeErr != nil {
			child.abortStreams()
			return nil, errs.FromFS("spawn", cmd.Path, pipeErr)
		}
		child.Stdout = newReadStream(rc, resource.KindChildStdout, p.table)
	}

	switch cmd.Stderr {
	case StdioInherit:
		c.Stderr = os.Stderr
	case StdioPiped:
		rc, pipeErr := c.StderrPipe()
		if pipeErr != nil {
			child.abortStreams()
			return nil, errs.FromFS("spawn", cmd.Path, pipeErr)
		}
		child.Stderr = newReadStream(rc, resource.KindChildStderr, p.table)
	}

	if startErr := c.Start(); startErr != nil {
		child.closeStreams()
		if errors.Is(startErr, exec.ErrNotFound) {
			return nil, errs.Wrap(errs.NotFound, "spawn", cmd.Path, startErr)
		}
		return nil, errs.FromFS("spawn", cmd.Path, startErr)
	}

	child.pid = c.Process.Pid
	return child, nil
}

// Output runs the command to completion with piped stdout and stderr and
// collects both streams concurrently.
func (p *Proc) Output(ctx context.Context, cmd Command) (*Output, error) {
	cmd.Stdout = StdioPiped
	cmd.Stderr = StdioPiped
	if cmd.Stdin == StdioInherit {
		cmd.Stdin = StdioNull
	}

	child, err := p.Spawn(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return child.Output(ctx)
}

// buildEnv assembles the child environment, checking the env capability
// for every override.
func (p *Proc) buildEnv(cmd Command) ([]string, error) {
	var env []string
	if !cmd.ClearEnv {
		env = os.Environ()
	}
	for k, v := range cmd.Env {
		if err := p.perms.Check(permissions.EnvVar(k), "spawn"); err != nil {
			return nil, err
		}
		env = append(env, k+"="+v)
	}
	return env, nil
}

// Output is the collected result of a finished child process.
type Output struct {
	Status Status
	Stdout []byte
	Stderr []byte
}

// Output waits for the child and returns its status along with everything
// the piped streams produced. Both streams are drained concurrently so a
// chatty child cannot deadlock against pipe buffers.
func (c *Child) Output(ctx context.Context) (*Output, error) {
	out := &Output{}

	var g errgroup.Group
	if c.Stdout != nil {
		var buf bytes.Buffer
		g.Go(func() error {
			_, err := buf.ReadFrom(c.Stdout)
			out.Stdout = buf.Bytes()
			return err
		})
	}
	if c.Stderr != nil {
		var buf bytes.Buffer
		g.Go(func() error {
			_, err := buf.ReadFrom(c.Stderr)
			out.Stderr = buf.Bytes()
			return err
		})
	}
	if err := g.Wait(); err != nil {
		c.Wait()
		return nil, errs.FromFS("output", c.cmd.Path, err)
	}

	status, err := c.Wait()
	if err != nil {
		return nil, err
	}
	out.Status = status
	return out, nil
}
