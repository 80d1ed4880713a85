// Package feed owns the per-venue connection lifecycles and the single-slot
// cells that publish each venue's most recent normalized book.
package feed

import (
	"sync"

	"github.com/alanyoungcy/crossfeed/internal/domain"
)

// Latest is a single-slot, latest-value-wins cell holding one venue's most
// recent OrderBook. The writer overwrites the slot on every update; readers
// always get the freshest value immediately and may miss intermediate states.
// That coalescing is intentional: consumers only ever need current state.
//
// Level slices stored here are never mutated after publication (the feed
// builds fresh slices per update), so Load can hand out a shallow copy.
type Latest struct {
	mu   sync.RWMutex
	seq  uint64
	book domain.OrderBook
}

// NewLatest creates a cell seeded with the empty initial state for a venue,
// so reads before the first connection succeed and return a disconnected
// empty book.
func NewLatest(initial domain.OrderBook) *Latest {
	return &Latest{book: initial}
}

// Store replaces the slot's value and bumps the change marker.
func (l *Latest) Store(book domain.OrderBook) {
	l.mu.Lock()
	l.book = book
	l.seq++
	l.mu.Unlock()
}

// Load returns the most recently stored book. It never blocks on writers
// beyond the brief critical section.
func (l *Latest) Load() domain.OrderBook {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.book
}

// Seq returns the change marker: it increments on every Store, letting a
// reader detect whether anything changed since its last sample.
func (l *Latest) Seq() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.seq
}
