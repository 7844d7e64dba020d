// Package stats wraps nadam handlers with a counting/timestamping shim
// shared by the monitor TUI and the HTTP status endpoint, so both
// surfaces read the same counters instead of keeping their own.
package stats

import (
	"sort"
	"sync"
	"time"

	"github.com/tez-capital/nadam/nadam"
)

// Entry is one message type's observed traffic.
type Entry struct {
	Name     string
	Tag      string // base58-encoded negotiated tag, filled in by the caller
	Count    uint64
	LastSeen time.Time
	LastSize int
}

// Counters tracks per-message-name traffic for every handler it wraps.
type Counters struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

func New() *Counters {
	return &Counters{entries: make(map[string]*Entry)}
}

// Wrap returns a nadam.HandlerFunc that records the delivery then calls
// next (which may be nil to just count deliveries with no further
// action).
func (c *Counters) Wrap(name string, next nadam.HandlerFunc) nadam.HandlerFunc {
	c.mu.Lock()
	if _, ok := c.entries[name]; !ok {
		c.entries[name] = &Entry{Name: name}
	}
	c.mu.Unlock()

	return func(msg []byte, descriptor *nadam.MessageDescriptor) {
		c.mu.Lock()
		e := c.entries[name]
		e.Count++
		e.LastSeen = time.Now()
		e.LastSize = len(msg)
		c.mu.Unlock()

		if next != nil {
			next(msg, descriptor)
		}
	}
}

// SetTag records the human-legible tag rendering for name, computed once
// after the handshake negotiates a tag length.
func (c *Counters) SetTag(name, tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[name]; !ok {
		c.entries[name] = &Entry{Name: name}
	}
	c.entries[name].Tag = tag
}

// Snapshot returns a stable, ordered copy of the current counters for
// rendering.
func (c *Counters) Snapshot() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
