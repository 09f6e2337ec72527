// Package permissions implements capability-based access control for the
// shim surface.
//
// A Descriptor names one capability (read, write, net, env, run, sys) and
// the value it applies to. A Manager resolves descriptors against a static
// Policy of allow and deny lists: paths grant by directory prefix, net
// entries by host with an optional port, and the other capabilities by
// exact value or wildcard. Deny entries always win.
//
// There is no interactive prompt. Request collapses the prompt state to
// denied, so an un-granted capability fails closed with a NotCapable error.
package permissions
