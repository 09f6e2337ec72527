// Package procx is the process surface of the shim.
//
// Spawning delegates to os/exec; the shim adds capability gating (run on
// the program, env on every overridden variable), named-signal delivery,
// and resource-tracked pipe streams. Exit status comes straight from the
// host wait call.
package procx
