package preset

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"reply-presets/logging"
)

var plog = logging.For("preset")

// DefaultSettleDelay is how long Store waits after the last edit before
// writing to the backend.
const DefaultSettleDelay = time.Second

// Options configures a Store. Zero values select the defaults.
type Options struct {
	Key         string
	Fields      []Field
	SettleDelay time.Duration
	Scheduler   Scheduler
}

// Store edits one Set held in a Backend. Edits are debounced: each Edit
// cancels the commit scheduled by the previous one, so a burst of keystrokes
// produces a single write once the settle delay has passed.
type Store struct {
	backend Backend
	key     string
	fields  []Field
	delay   time.Duration
	sched   Scheduler

	mu     sync.Mutex
	gen    uint64
	cancel func()
	closed bool
	subs   map[string]func()

	// held for the whole read-modify-write so commits never overlap
	commitMu sync.Mutex
}

// NewStore returns a Store editing opts.Key in b.
func NewStore(b Backend, opts Options) *Store {
	s := &Store{
		backend: b,
		key:     opts.Key,
		fields:  opts.Fields,
		delay:   opts.SettleDelay,
		sched:   opts.Scheduler,
		subs:    make(map[string]func()),
	}
	if s.key == "" {
		s.key = DefaultKey
	}
	if len(s.fields) == 0 {
		s.fields = DefaultFields
	}
	if s.delay <= 0 {
		s.delay = DefaultSettleDelay
	}
	if s.sched == nil {
		s.sched = timerScheduler{}
	}
	return s
}

// Key returns the backend key this store edits.
func (s *Store) Key() string {
	return s.key
}

// Fields returns a copy of the editable field list.
func (s *Store) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Load reads the current set from the backend. A key that has never been
// written yields an empty set and no error.
func (s *Store) Load(ctx context.Context) (Set, error) {
	set, ok, err := s.backend.Read(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %w", ErrUnavailable, s.key, err)
	}
	if !ok || set == nil {
		return Set{}, nil
	}
	return set, nil
}

// Rows loads the current set and maps it onto the field list.
func (s *Store) Rows(ctx context.Context) ([]Row, error) {
	set, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Rows(set, s.fields), nil
}

// Edit schedules text to become the value for id once the settle delay has
// passed without another edit. Empty text removes the override. Callers trim
// the text. Edit never blocks on the backend and never fails; unknown ids
// and edits after Close are dropped.
func (s *Store) Edit(id, text string) {
	if !HasField(s.fields, id) {
		plog.Warn("dropping edit for unknown field", "key", s.key, "id", id)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	s.cancel = s.sched.Schedule(s.delay, func() { s.fire(gen, id, text) })
}

// Pending reports whether an edit is waiting for its settle delay.
func (s *Store) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// fire runs when the timer for generation gen elapses. A timer that was
// superseded or outlived Close does nothing.
func (s *Store) fire(gen uint64, id, text string) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.cancel = nil
	s.mu.Unlock()

	s.commit(id, text)
}

// commit applies one edit to the backend. A failure is retried once; after
// that the edit is dropped and logged.
func (s *Store) commit(id, text string) {
	ctx := context.Background()
	apply := func(current Set) Set { return Apply(current, id, text) }

	_, err := s.backend.Update(ctx, s.key, apply)
	if err == nil {
		plog.Debug("preset committed", "key", s.key, "id", id, "removed", text == "")
		return
	}
	plog.Warn("preset commit failed, retrying", "key", s.key, "id", id, "err", err)

	if s.isClosed() {
		return
	}
	if _, err = s.backend.Update(ctx, s.key, apply); err != nil {
		plog.Error("preset commit dropped", "key", s.key, "id", id,
			"err", fmt.Errorf("%w: %w", ErrUnavailable, err))
		return
	}
	plog.Debug("preset committed on retry", "key", s.key, "id", id)
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Subscribe registers fn for every change of the backend value, including
// those made by this store's own commits. The returned func unsubscribes;
// Close unsubscribes everything.
func (s *Store) Subscribe(fn func(Set)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}

	id := uuid.NewString()
	s.subs[id] = s.backend.Watch(s.key, fn)
	return func() {
		s.mu.Lock()
		cancel, ok := s.subs[id]
		delete(s.subs, id)
		s.mu.Unlock()
		if ok {
			cancel()
		}
	}
}

// Close cancels the pending edit, if any, and all subscriptions. It waits for
// a commit already in progress; no write happens after Close returns. Close
// must not be called from a subscriber callback.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, cancel := range subs {
		cancel()
	}

	s.commitMu.Lock()
	s.commitMu.Unlock() //nolint:staticcheck // wait for an in-flight commit
}
