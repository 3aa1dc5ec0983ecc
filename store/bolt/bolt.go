// Package bolt is a preset.Backend on top of bbolt (embedded B+ tree).
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"reply-presets/preset"
	"reply-presets/store"
)

var bucket = []byte("presets")

// Backend stores each key as a JSON-encoded preset set in one bucket.
// bbolt holds an exclusive file lock, so only this process writes the
// database and in-process notification covers every change.
type Backend struct {
	db   *bolt.DB
	subs *store.Subscribers
}

// Open creates or opens the database at path.
func Open(path string) (*Backend, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}
	b := &Backend{db: db, subs: store.NewSubscribers()}

	// Record what is already stored so an unchanged first write is not
	// delivered as a change.
	err = db.View(func(tx *bolt.Tx) error {
		bk := tx.Bucket(bucket)
		if bk == nil {
			return nil
		}
		return bk.ForEach(func(k, v []byte) error {
			var set preset.Set
			if err := json.Unmarshal(v, &set); err != nil {
				return fmt.Errorf("decoding %q: %w", k, err)
			}
			b.subs.Prime(string(k), set)
			return nil
		})
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("reading existing presets: %w", err)
	}
	return b, nil
}

func (b *Backend) Read(_ context.Context, key string) (preset.Set, bool, error) {
	var (
		set preset.Set
		ok  bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		bk := tx.Bucket(bucket)
		if bk == nil {
			return nil
		}
		v := bk.Get([]byte(key))
		if v == nil {
			return nil
		}
		ok = true
		return json.Unmarshal(v, &set)
	})
	if err != nil {
		return nil, false, fmt.Errorf("reading %q: %w", key, err)
	}
	if ok && set == nil {
		set = preset.Set{}
	}
	return set, ok, nil
}

func (b *Backend) Write(ctx context.Context, key string, set preset.Set) error {
	_, err := b.Update(ctx, key, func(preset.Set) preset.Set { return set.Clone() })
	return err
}

// Update runs the whole read-modify-write in one bbolt transaction.
func (b *Backend) Update(_ context.Context, key string, fn func(preset.Set) preset.Set) (preset.Set, error) {
	var (
		next  preset.Set
		stamp uint64
	)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bk, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return fmt.Errorf("creating bucket: %w", err)
		}
		current := preset.Set{}
		if v := bk.Get([]byte(key)); v != nil {
			if err := json.Unmarshal(v, &current); err != nil {
				return fmt.Errorf("decoding %q: %w", key, err)
			}
		}
		next = fn(current)
		if next == nil {
			next = preset.Set{}
		}
		data, err := json.Marshal(next)
		if err != nil {
			return err
		}
		if err := bk.Put([]byte(key), data); err != nil {
			return err
		}
		// bbolt runs one read-write tx at a time, so stamps follow commit order.
		stamp = b.subs.Stamp()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating %q: %w", key, err)
	}

	b.subs.Notify(key, next, stamp)
	return next.Clone(), nil
}

func (b *Backend) Watch(key string, fn func(preset.Set)) func() {
	return b.subs.Add(key, fn)
}

// Close closes the database.
func (b *Backend) Close() error {
	return b.db.Close()
}
