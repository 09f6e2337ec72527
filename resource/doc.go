// Package resource tracks open host resources behind opaque resource IDs.
//
// Every open file, socket, listener, child-process stream and watcher is
// registered in a Table and identified by a Rid. Rid 0 is reserved and
// never issued. Observers can subscribe to open/close lifecycle events;
// the metrics registry and the CLI inspector are the in-tree consumers.
package resource
