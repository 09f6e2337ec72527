// Package errs defines the shim's error taxonomy.
//
// Host errors are never synthesized or recovered here: every constructor
// relabels an underlying os, net or syscall error into one of the named
// classes the reference runtime documents (not-found, permission-denied,
// connection-reset, broken-pipe, ...) while keeping the original error
// reachable through errors.Unwrap.
package errs
