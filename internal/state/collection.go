package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

const maxAttempts = 3

// cell caches one persisted key. raw always holds the encoding of val so that
// every mutation starts from a private deep copy.
type cell[V any] struct {
	key     string
	storage Storage
	bus     *Bus
	initial func() V

	mu      sync.Mutex
	val     V
	raw     []byte
	version int64
	loaded  bool
}

func newCell[V any](key string, storage Storage, bus *Bus, initial func() V) *cell[V] {
	c := &cell[V]{key: key, storage: storage, bus: bus, initial: initial}
	bus.Subscribe(c.onEvent)
	return c
}

func (c *cell[V]) onEvent(e Event) {
	if e.Key != c.key || !e.Remote {
		return
	}

	c.mu.Lock()
	if e.Version != c.version {
		c.loaded = false
	}
	c.mu.Unlock()
}

func (c *cell[V]) loadLocked(ctx context.Context) error {
	if c.loaded {
		return nil
	}

	e, err := c.storage.Load(ctx, c.key)
	if err != nil {
		return fmt.Errorf("load %s: %w", c.key, err)
	}

	raw := e.Payload
	if e.Version == 0 || len(raw) == 0 {
		raw, err = json.Marshal(c.initial())
		if err != nil {
			return fmt.Errorf("encode %s: %w", c.key, err)
		}
	}

	var v V
	if err = json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("decode %s: %w", c.key, err)
	}

	c.val, c.raw, c.version, c.loaded = v, raw, e.Version, true
	return nil
}

func (c *cell[V]) get(ctx context.Context) (V, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadLocked(ctx); err != nil {
		var zero V
		return zero, 0, err
	}
	return c.val, c.version, nil
}

func (c *cell[V]) commit(ctx context.Context, apply func(V) (V, error)) (V, error) {
	var (
		next    V
		version int64
	)

	for attempt := 1; ; attempt++ {
		c.mu.Lock()
		if err := c.loadLocked(ctx); err != nil {
			c.mu.Unlock()
			return next, err
		}

		var cur V
		if err := json.Unmarshal(c.raw, &cur); err != nil {
			c.mu.Unlock()
			return next, fmt.Errorf("decode %s: %w", c.key, err)
		}

		var err error
		next, err = apply(cur)
		if err != nil {
			c.mu.Unlock()
			return next, err
		}

		raw, err := json.Marshal(next)
		if err != nil {
			c.mu.Unlock()
			return next, fmt.Errorf("encode %s: %w", c.key, err)
		}

		version, err = c.storage.Save(ctx, c.key, raw, c.version)
		if err != nil {
			c.loaded = false
			c.mu.Unlock()
			if errors.Is(err, ErrVersionConflict) && attempt < maxAttempts {
				continue
			}
			return next, fmt.Errorf("save %s: %w", c.key, err)
		}

		c.val, c.raw, c.version = next, raw, version
		c.mu.Unlock()
		break
	}

	c.bus.Publish(Event{Key: c.key, Version: version})
	return next, nil
}

func (c *cell[V]) subscribe(fn func()) func() {
	return c.bus.Subscribe(func(e Event) {
		if e.Key == c.key {
			fn()
		}
	})
}

// Collection is a persisted, ordered sequence of records stored under one key.
// Snapshots are served from cache until a mutation or a remote change
// invalidates it. Records in a snapshot share nested slices with the cache and
// must be treated as read-only.
type Collection[T any] struct {
	cell *cell[[]T]
	idOf func(T) string
}

// NewCollection creates a collection whose first read of a never-written key
// yields seed.
func NewCollection[T any](key string, storage Storage, bus *Bus, idOf func(T) string, seed []T) *Collection[T] {
	initial := func() []T {
		out := make([]T, len(seed))
		copy(out, seed)
		return out
	}
	return &Collection[T]{cell: newCell(key, storage, bus, initial), idOf: idOf}
}

func (c *Collection[T]) Key() string {
	return c.cell.key
}

func (c *Collection[T]) Snapshot(ctx context.Context) ([]T, error) {
	items, _, err := c.cell.get(ctx)
	if err != nil {
		return nil, err
	}
	return append([]T(nil), items...), nil
}

func (c *Collection[T]) Version(ctx context.Context) (int64, error) {
	_, v, err := c.cell.get(ctx)
	return v, err
}

func (c *Collection[T]) Find(ctx context.Context, id string) (T, error) {
	items, _, err := c.cell.get(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	for _, item := range items {
		if c.idOf(item) == id {
			return item, nil
		}
	}

	var zero T
	return zero, ErrNotFound
}

func (c *Collection[T]) Subscribe(fn func()) (unsubscribe func()) {
	return c.cell.subscribe(fn)
}

// Update applies mutate to the record with the given id and persists the list.
func (c *Collection[T]) Update(ctx context.Context, id string, mutate func(*T) error) (T, error) {
	var updated T
	_, err := c.cell.commit(ctx, func(items []T) ([]T, error) {
		for i := range items {
			if c.idOf(items[i]) != id {
				continue
			}
			if err := mutate(&items[i]); err != nil {
				return nil, err
			}
			updated = items[i]
			return items, nil
		}
		return nil, ErrNotFound
	})
	return updated, err
}

// Insert builds a record from the current list and stores it at the head.
func (c *Collection[T]) Insert(ctx context.Context, build func(current []T) (T, error)) (T, error) {
	var created T
	_, err := c.cell.commit(ctx, func(items []T) ([]T, error) {
		rec, err := build(items)
		if err != nil {
			return nil, err
		}
		created = rec
		return append([]T{rec}, items...), nil
	})
	return created, err
}

// Mutate rewrites the whole list.
func (c *Collection[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	_, err := c.cell.commit(ctx, fn)
	return err
}

// Value is a single persisted value stored under one key.
type Value[T any] struct {
	cell *cell[T]
}

func NewValue[T any](key string, storage Storage, bus *Bus, initial func() T) *Value[T] {
	return &Value[T]{cell: newCell(key, storage, bus, initial)}
}

func (v *Value[T]) Get(ctx context.Context) (T, error) {
	val, _, err := v.cell.get(ctx)
	return val, err
}

func (v *Value[T]) Update(ctx context.Context, fn func(T) (T, error)) (T, error) {
	return v.cell.commit(ctx, fn)
}

func (v *Value[T]) Subscribe(fn func()) (unsubscribe func()) {
	return v.cell.subscribe(fn)
}
