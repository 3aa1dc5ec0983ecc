// Package file is a preset.Backend that keeps every key in one JSON document
// on disk and notices edits made to that document by other processes.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"reply-presets/logging"
	"reply-presets/preset"
	"reply-presets/store"
)

var flog = logging.For("store.file")

// document is the on-disk layout: backend key -> preset set.
type document map[string]preset.Set

// Backend reads and writes a JSON document at a fixed path. Every call goes
// back to disk, so writes made by other processes are never masked by a
// cached copy.
type Backend struct {
	path string

	mu   sync.Mutex // serializes read-modify-write against this process
	subs *store.Subscribers

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// Open prepares the backend at path and starts watching it. A missing file is
// fine and reads as empty; a file that is not valid JSON is an error.
func Open(path string) (*Backend, error) {
	b := &Backend{
		path: filepath.Clean(path),
		subs: store.NewSubscribers(),
		done: make(chan struct{}),
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating preset dir: %w", err)
	}

	doc, err := b.load()
	if err != nil {
		return nil, err
	}
	for key, set := range doc {
		b.subs.Prime(key, set)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	// Watch the directory: an atomic save replaces the file's inode.
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	b.watcher = w

	b.wg.Add(1)
	go b.watch()
	return b, nil
}

// Path returns the document path.
func (b *Backend) Path() string {
	return b.path
}

func (b *Backend) Read(_ context.Context, key string) (preset.Set, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	doc, err := b.load()
	if err != nil {
		return nil, false, err
	}
	set, ok := doc[key]
	if !ok {
		return nil, false, nil
	}
	return set, true, nil
}

func (b *Backend) Write(ctx context.Context, key string, set preset.Set) error {
	_, err := b.Update(ctx, key, func(preset.Set) preset.Set { return set.Clone() })
	return err
}

func (b *Backend) Update(_ context.Context, key string, fn func(preset.Set) preset.Set) (preset.Set, error) {
	b.mu.Lock()
	doc, err := b.load()
	if err != nil {
		b.mu.Unlock()
		return nil, err
	}
	next := fn(doc[key].Clone())
	if next == nil {
		next = preset.Set{}
	}
	doc[key] = next
	if err := b.writeAtomic(doc); err != nil {
		b.mu.Unlock()
		return nil, err
	}
	stamp := b.subs.Stamp()
	b.mu.Unlock()

	b.subs.Notify(key, next, stamp)
	return next.Clone(), nil
}

func (b *Backend) Watch(key string, fn func(preset.Set)) func() {
	return b.subs.Add(key, fn)
}

// Close stops the watcher. Reads and writes keep working afterwards but
// external changes are no longer delivered.
func (b *Backend) Close() error {
	select {
	case <-b.done:
		return nil
	default:
	}
	close(b.done)
	err := b.watcher.Close()
	b.wg.Wait()
	return err
}

func (b *Backend) watch() {
	defer b.wg.Done()
	for {
		select {
		case <-b.done:
			return

		case event, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != b.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
				continue
			}
			b.reload()

		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			flog.Error("watcher error", "path", b.path, "err", err)
		}
	}
}

// reload re-reads the document after an external change. Every key in the
// document or seen before goes through Notify, watched or not, so the
// last-delivered value never goes stale while nobody is listening.
func (b *Backend) reload() {
	b.mu.Lock()
	doc, err := b.load()
	stamp := b.subs.Stamp()
	b.mu.Unlock()
	if err != nil {
		// Typically a writer that does not save atomically; the next event
		// will carry the finished file.
		flog.Warn("reload failed, keeping previous value", "path", b.path, "err", err)
		return
	}

	keys := b.subs.Known()
	for key := range doc {
		keys = append(keys, key)
	}
	for _, key := range keys {
		set := doc[key]
		if set == nil {
			set = preset.Set{}
		}
		b.subs.Notify(key, set, stamp)
	}
}

// load reads the whole document. Caller must hold b.mu.
func (b *Backend) load() (document, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return document{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", b.path, err)
	}
	if len(data) == 0 {
		return document{}, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", b.path, err)
	}
	if doc == nil {
		doc = document{}
	}
	return doc, nil
}

// writeAtomic writes to a temp file then renames it over the document.
// Caller must hold b.mu.
func (b *Backend) writeAtomic(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("replacing %s: %w", b.path, err)
	}
	return nil
}
