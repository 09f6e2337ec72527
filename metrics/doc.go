// Package metrics mirrors the reference runtime's introspection calls:
// per-operation dispatch counters and a census of open resources by kind.
package metrics
