// Package hostshim provides a capability-checked surface over host
// facilities for embedding runtimes.
//
// Operations that a sandboxed program expects from its global namespace
// are grouped into surfaces, each a thin forward to the operating system
// gated by an explicit permission policy:
//
//	hostshim/            Root package with the Env bundle
//	├── errs/            Error classes shared by every surface
//	├── permissions/     Capability descriptors, policy and manager
//	├── config/          YAML permission policy files
//	├── resource/        Numeric resource ID table
//	├── metrics/         Per-operation counters and open-resource census
//	├── fsx/             File system surface
//	├── netx/            TCP, UDP and unix socket surface
//	├── procx/           Subprocess surface
//	├── sysx/            Environment and system information surface
//	└── guest/           WASI guest execution under the same policy
//
// # Quick Start
//
// Build an environment and use its surfaces:
//
//	pol := permissions.AllowAllPolicy()
//	env := hostshim.New(pol)
//	defer env.Close()
//
//	data, err := env.FS().ReadFile(ctx, "/etc/hosts")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Denied operations fail with errs.NotCapable rather than prompting;
// policies are fixed at construction and can only be narrowed at run
// time through the permission manager.
//
// # Resource IDs
//
// Open files, sockets, listeners, watchers and child process streams
// are registered in a shared table and addressed by uint32 IDs. Closing
// through the owner wrapper removes the table entry exactly once; a
// second close reports errs.BadResource.
//
// # Thread Safety
//
// Env, the permission manager, the resource table and the metrics
// registry are safe for concurrent use. Individual wrappers such as
// fsx.File follow the concurrency rules of the handle they wrap.
package hostshim
