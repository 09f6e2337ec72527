// Package netx is the network surface of the shim.
//
// Connect, Listen, ListenDatagram and Resolve forward to the net package.
// TCP and UDP endpoints are gated by the net capability on host:port; unix
// sockets are gated by read and write capability on the socket path, the
// way the reference runtime treats them. Open endpoints carry resource IDs.
package netx
