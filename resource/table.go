package resource

import (
	"errors"
	"sync"
)

// ErrClosed is returned when a table no longer accepts resources.
var ErrClosed = errors.New("resource table closed")

// Table tracks open resources by Rid with free-list reuse and observer
// support. The zero handle is never issued.
type Table struct {
	entries   []entry
	freeList  []Rid
	mu        sync.RWMutex
	observers []Observer
	obsMu     sync.RWMutex
	closed    bool
}

type entry struct {
	value Resource
	valid bool
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entries:  make([]entry, 0, 64),
		freeList: make([]Rid, 0, 16),
	}
}

// Add stores a resource and returns its Rid. Returns 0 if the table is closed.
func (t *Table) Add(r Resource) Rid {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0
	}

	e := entry{value: r, valid: true}
	var rid Rid
	if n := len(t.freeList); n > 0 {
		rid = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.entries[rid-1] = e
	} else {
		t.entries = append(t.entries, e)
		rid = Rid(len(t.entries))
	}
	t.mu.Unlock()

	t.notify(Event{Rid: rid, Kind: r.Kind(), Type: EventOpened})
	return rid
}

// Get retrieves a resource by Rid.
func (t *Table) Get(rid Rid) (Resource, bool) {
	if rid == 0 {
		return nil, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	idx := int(rid) - 1
	if idx >= len(t.entries) || !t.entries[idx].valid {
		return nil, false
	}
	return t.entries[idx].value, true
}

// GetKind retrieves a resource only if it has the expected kind.
func (t *Table) GetKind(rid Rid, kind Kind) (Resource, bool) {
	r, ok := t.Get(rid)
	if !ok || r.Kind() != kind {
		return nil, false
	}
	return r, true
}

// Remove detaches a resource from the table without closing it, returning
// (resource, true) if the Rid was live. Owners call Remove from their own
// Close so the underlying handle is released exactly once.
func (t *Table) Remove(rid Rid) (Resource, bool) {
	if rid == 0 {
		return nil, false
	}

	t.mu.Lock()
	idx := int(rid) - 1
	if idx >= len(t.entries) || !t.entries[idx].valid {
		t.mu.Unlock()
		return nil, false
	}
	value := t.entries[idx].value
	t.entries[idx] = entry{}
	t.freeList = append(t.freeList, rid)
	t.mu.Unlock()

	t.notify(Event{Rid: rid, Kind: value.Kind(), Type: EventClosed})
	return value, true
}

// Each iterates over live resources until fn returns false.
func (t *Table) Each(fn func(Rid, Resource) bool) {
	t.mu.RLock()
	type pair struct {
		rid Rid
		r   Resource
	}
	live := make([]pair, 0, len(t.entries))
	for i := range t.entries {
		if t.entries[i].valid {
			live = append(live, pair{Rid(i + 1), t.entries[i].value})
		}
	}
	t.mu.RUnlock()

	for _, p := range live {
		if !fn(p.rid, p.r) {
			return
		}
	}
}

// Len returns the number of live resources.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for i := range t.entries {
		if t.entries[i].valid {
			n++
		}
	}
	return n
}

// Clear closes and removes all live resources.
func (t *Table) Clear() {
	var rids []Rid
	t.Each(func(rid Rid, _ Resource) bool {
		rids = append(rids, rid)
		return true
	})
	for _, rid := range rids {
		if r, ok := t.Remove(rid); ok {
			_ = r.Close()
		}
	}
}

// Close clears the table and stops accepting new resources.
func (t *Table) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	t.Clear()
	return nil
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
