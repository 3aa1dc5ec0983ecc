package preset

import (
	"context"
	"time"
)

// Backend is the asynchronous key/value store presets are persisted in.
// Implementations live under store/.
type Backend interface {
	// Read returns the set stored under key. ok is false when nothing has
	// been stored yet.
	Read(ctx context.Context, key string) (set Set, ok bool, err error)
	// Write replaces the set stored under key.
	Write(ctx context.Context, key string, set Set) error
	// Update atomically replaces the value under key with fn(current) and
	// returns what was stored. current is an empty Set when key is absent.
	Update(ctx context.Context, key string, fn func(current Set) Set) (Set, error)
	// Watch calls fn with the latest set every time the value under key
	// changes, whoever changed it. The returned func stops delivery.
	Watch(key string, fn func(Set)) (cancel func())
}

// Scheduler runs fn once after d unless cancelled first.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) (cancel func())
}

type timerScheduler struct{}

func (timerScheduler) Schedule(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
