// Package fsx is the file system surface of the shim.
//
// Operations mirror a runtime's file system namespace: read-file,
// write-file, open with option bags, stat, directory and link
// manipulation, temp files and a polling change watcher, each one a
// capability-checked forward to the os package. Open files carry a
// resource ID and show up in the resource table until closed.
package fsx
