// Package memory is an in-process preset.Backend.
package memory

import (
	"context"
	"sync"

	"reply-presets/preset"
	"reply-presets/store"
)

// Backend keeps sets in a map. The zero value is not usable; call New.
type Backend struct {
	mu   sync.Mutex
	data map[string]preset.Set
	subs *store.Subscribers
}

// New returns an empty Backend.
func New() *Backend {
	return &Backend{
		data: make(map[string]preset.Set),
		subs: store.NewSubscribers(),
	}
}

func (b *Backend) Read(_ context.Context, key string) (preset.Set, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.data[key]
	if !ok {
		return nil, false, nil
	}
	return set.Clone(), true, nil
}

func (b *Backend) Write(_ context.Context, key string, set preset.Set) error {
	b.mu.Lock()
	b.data[key] = set.Clone()
	stamp := b.subs.Stamp()
	b.mu.Unlock()

	b.subs.Notify(key, set, stamp)
	return nil
}

func (b *Backend) Update(_ context.Context, key string, fn func(preset.Set) preset.Set) (preset.Set, error) {
	b.mu.Lock()
	next := fn(b.data[key].Clone())
	if next == nil {
		next = preset.Set{}
	}
	b.data[key] = next.Clone()
	stamp := b.subs.Stamp()
	b.mu.Unlock()

	b.subs.Notify(key, next, stamp)
	return next, nil
}

func (b *Backend) Watch(key string, fn func(preset.Set)) func() {
	return b.subs.Add(key, fn)
}
