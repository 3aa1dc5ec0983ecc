// Package store holds the preset.Backend implementations and the change
// fan-out they share.
package store

import (
	"sync"

	"github.com/google/uuid"

	"reply-presets/preset"
)

// Subscribers fans backend changes out to watchers, one registry per key.
//
// Backends call Stamp while holding their own write lock and Notify after
// releasing it. Stamps let Notify discard a snapshot that lost the race to a
// newer one, and unchanged values are not delivered twice. Callbacks run
// synchronously and must not write to the backend.
type Subscribers struct {
	mu      sync.Mutex
	subs    map[string]map[string]func(preset.Set)
	version uint64

	deliverMu sync.Mutex
	delivered map[string]uint64
	last      map[string]preset.Set
}

// NewSubscribers returns an empty registry.
func NewSubscribers() *Subscribers {
	return &Subscribers{
		subs:      make(map[string]map[string]func(preset.Set)),
		delivered: make(map[string]uint64),
		last:      make(map[string]preset.Set),
	}
}

// Add registers fn for changes to key.
func (s *Subscribers) Add(key string, fn func(preset.Set)) (cancel func()) {
	id := uuid.NewString()

	s.mu.Lock()
	if s.subs[key] == nil {
		s.subs[key] = make(map[string]func(preset.Set))
	}
	s.subs[key][id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[key], id)
		if len(s.subs[key]) == 0 {
			delete(s.subs, key)
		}
	}
}

// Len returns the number of watchers on key.
func (s *Subscribers) Len(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs[key])
}

// Keys returns the keys that currently have at least one watcher.
func (s *Subscribers) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.subs))
	for k := range s.subs {
		keys = append(keys, k)
	}
	return keys
}

// Known returns every key that has a watcher or a recorded last value.
func (s *Subscribers) Known() []string {
	seen := make(map[string]bool)
	for _, k := range s.Keys() {
		seen[k] = true
	}
	s.deliverMu.Lock()
	for k := range s.last {
		seen[k] = true
	}
	s.deliverMu.Unlock()

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	return keys
}

// Stamp returns a strictly increasing version number.
func (s *Subscribers) Stamp() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	return s.version
}

// Prime records set as the last known value of key without delivering it.
func (s *Subscribers) Prime(key string, set preset.Set) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	s.last[key] = set.Clone()
}

// Notify delivers set to every watcher of key unless a newer stamp was
// already delivered or the value did not change.
func (s *Subscribers) Notify(key string, set preset.Set, stamp uint64) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	if stamp <= s.delivered[key] {
		return
	}
	s.delivered[key] = stamp
	if prev, ok := s.last[key]; ok && prev.Equal(set) {
		return
	}
	s.last[key] = set.Clone()

	s.mu.Lock()
	targets := make([]func(preset.Set), 0, len(s.subs[key]))
	for _, fn := range s.subs[key] {
		targets = append(targets, fn)
	}
	s.mu.Unlock()

	for _, fn := range targets {
		fn(set.Clone())
	}
}
