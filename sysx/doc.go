// Package sysx exposes environment variables and system information
// queries, gated per variable by the env capability and per query kind by
// the sys capability.
package sysx
