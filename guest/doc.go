// Package guest runs WASI command modules under the shim's permission
// policy.
//
// A Runner compiles a module with wazero, instantiates WASI preview 1
// plus the "hostshim" host module, and calls _start. The same policy
// that gates the in-process surfaces gates the guest: environment
// variables are filtered per variable, directory preopens require read
// permission and fall back to read-only mounts without write, and the
// host module's queries answer according to the live permission state.
package guest
