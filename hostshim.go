package hostshim

import (
	"go.uber.org/zap"

	"github.com/hostlayer/hostshim/fsx"
	"github.com/hostlayer/hostshim/guest"
	"github.com/hostlayer/hostshim/metrics"
	"github.com/hostlayer/hostshim/netx"
	"github.com/hostlayer/hostshim/permissions"
	"github.com/hostlayer/hostshim/procx"
	"github.com/hostlayer/hostshim/resource"
	"github.com/hostlayer/hostshim/sysx"
)

// Env bundles the shim's surfaces behind one permission policy and one
// resource table, mirroring how a single runtime instance exposes its
// global namespace.
type Env struct {
	perms *permissions.Manager
	table *resource.Table
	reg   *metrics.Registry

	fs   *fsx.FS
	net  *netx.Net
	proc *procx.Proc
	sys  *sysx.Sys
}

// New builds an environment governed by the given policy. All surfaces
// share the permission manager, resource table and metrics registry.
func New(policy permissions.Policy) *Env {
	perms := permissions.NewManager(policy)
	table := resource.NewTable()
	reg := metrics.NewRegistry()
	table.Subscribe(reg)

	return &Env{
		perms: perms,
		table: table,
		reg:   reg,
		fs:    fsx.New(perms, table, reg),
		net:   netx.New(perms, table, reg),
		proc:  procx.New(perms, table, reg),
		sys:   sysx.New(perms),
	}
}

// FS is the file system surface.
func (e *Env) FS() *fsx.FS { return e.fs }

// Net is the network surface.
func (e *Env) Net() *netx.Net { return e.net }

// Proc is the subprocess surface.
func (e *Env) Proc() *procx.Proc { return e.proc }

// Sys is the environment and system information surface.
func (e *Env) Sys() *sysx.Sys { return e.sys }

// Permissions is the shared permission manager.
func (e *Env) Permissions() *permissions.Manager { return e.perms }

// Resources is the shared resource table.
func (e *Env) Resources() *resource.Table { return e.table }

// Metrics is the shared operation and resource registry.
func (e *Env) Metrics() *metrics.Registry { return e.reg }

// Runner builds a guest runner sharing this environment's policy.
func (e *Env) Runner(opts guest.Options) *guest.Runner {
	return guest.NewRunner(e.perms, opts)
}

// Close releases every resource still tracked by the table.
func (e *Env) Close() error {
	return e.table.Close()
}

// SetLogger configures logging for all shim packages at once.
func SetLogger(l *zap.Logger) {
	permissions.SetLogger(l)
	guest.SetLogger(l)
}
