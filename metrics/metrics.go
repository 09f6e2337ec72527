package metrics

import (
	"sort"
	"sync"

	"github.com/hostlayer/hostshim/resource"
)

// OpStats is a point-in-time counter snapshot for one operation.
type OpStats struct {
	Started   uint64
	Completed uint64
	Errored   uint64
}

// Registry counts shim operations and tracks the open-resource census.
// It implements resource.Observer so a table can feed it directly.
type Registry struct {
	mu        sync.Mutex
	ops       map[string]*OpStats
	resources map[resource.Kind]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ops:       make(map[string]*OpStats),
		resources: make(map[resource.Kind]int),
	}
}

// Begin records the start of an operation and returns the completion
// callback. Callers invoke it with the operation's final error:
//
//	done := reg.Begin("read_file")
//	...
//	done(err)
func (r *Registry) Begin(op string) func(error) {
	r.mu.Lock()
	s := r.ops[op]
	if s == nil {
		s = &OpStats{}
		r.ops[op] = s
	}
	s.Started++
	r.mu.Unlock()

	return func(err error) {
		r.mu.Lock()
		s.Completed++
		if err != nil {
			s.Errored++
		}
		r.mu.Unlock()
	}
}

// Snapshot returns a copy of all per-operation counters.
func (r *Registry) Snapshot() map[string]OpStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]OpStats, len(r.ops))
	for op, s := range r.ops {
		out[op] = *s
	}
	return out
}

// Totals sums the counters across all operations.
func (r *Registry) Totals() OpStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total OpStats
	for _, s := range r.ops {
		total.Started += s.Started
		total.Completed += s.Completed
		total.Errored += s.Errored
	}
	return total
}

// Ops returns the recorded operation names, sorted.
func (r *Registry) Ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.ops))
	for op := range r.ops {
		names = append(names, op)
	}
	sort.Strings(names)
	return names
}

// OnResourceEvent implements resource.Observer.
func (r *Registry) OnResourceEvent(e resource.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch e.Type {
	case resource.EventOpened:
		r.resources[e.Kind]++
	case resource.EventClosed:
		if r.resources[e.Kind] > 0 {
			r.resources[e.Kind]--
		}
	}
}

// OpenResources returns the census of open resources by kind.
func (r *Registry) OpenResources() map[resource.Kind]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[resource.Kind]int, len(r.resources))
	for k, n := range r.resources {
		if n > 0 {
			out[k] = n
		}
	}
	return out
}
