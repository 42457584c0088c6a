// Package blackboard provides a concurrency-safe key-value store, used as the
// world state shared by the nodes of a behavior tree.
package blackboard

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/dop251/goja"
)

// Blackboard is a thread-safe key-value store. The zero value is ready to use.
//
// Nodes receive the same *Blackboard on every tick, so a Blackboard is the
// usual world type for trees built from the leaves in this module.
type Blackboard struct {
	mu       sync.RWMutex
	data     map[string]any
	revision uint64
}

// New returns a blackboard seeded with a copy of initial.
func New(initial map[string]any) *Blackboard {
	b := new(Blackboard)
	if len(initial) != 0 {
		b.data = maps.Clone(initial)
	}
	return b
}

func (b *Blackboard) init() {
	if b.data == nil {
		b.data = make(map[string]any)
	}
}

// Get returns the value stored under key, or nil.
func (b *Blackboard) Get(key string) any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data[key]
}

// Lookup returns the value stored under key, and whether it was present.
func (b *Blackboard) Lookup(key string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.data[key]
	return v, ok
}

// Set stores value under key.
func (b *Blackboard) Set(key string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.init()
	b.data[key] = value
	b.revision++
}

// Update atomically replaces the value under key with fn(old, present).
func (b *Blackboard) Update(key string, fn func(old any, present bool) any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.init()
	old, ok := b.data[key]
	b.data[key] = fn(old, ok)
	b.revision++
}

// Has reports whether key is present.
func (b *Blackboard) Has(key string) bool {
	_, ok := b.Lookup(key)
	return ok
}

// Delete removes key, if present.
func (b *Blackboard) Delete(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.data[key]; ok {
		delete(b.data, key)
		b.revision++
	}
}

// Keys returns the keys in sorted order.
func (b *Blackboard) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.data) == 0 {
		return nil
	}
	return slices.Sorted(maps.Keys(b.data))
}

// Clear removes every entry.
func (b *Blackboard) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = make(map[string]any)
	b.revision++
}

// Len returns the number of entries.
func (b *Blackboard) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// Revision returns a counter incremented by every mutation. Observers may
// compare revisions to detect changes without copying the contents.
func (b *Blackboard) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// Snapshot returns a shallow copy of the contents. Mutable values (slices,
// maps, pointers) are shared with the blackboard.
func (b *Blackboard) Snapshot() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.data == nil {
		return map[string]any{}
	}
	return maps.Clone(b.data)
}

// Float returns the value under key as a float64, converting from the
// integer types and from float32.
func (b *Blackboard) Float(key string) (float64, error) {
	v, ok := b.Lookup(key)
	if !ok {
		return 0, fmt.Errorf("blackboard: %q: %w", key, ErrMissingKey)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("blackboard: %q: %T: %w", key, v, ErrWrongType)
	}
}

// Bool returns the value under key as a bool.
func (b *Blackboard) Bool(key string) (bool, error) {
	v, ok := b.Lookup(key)
	if !ok {
		return false, fmt.Errorf("blackboard: %q: %w", key, ErrMissingKey)
	}
	x, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("blackboard: %q: %T: %w", key, v, ErrWrongType)
	}
	return x, nil
}

// String returns the value under key as a string.
func (b *Blackboard) String(key string) (string, error) {
	v, ok := b.Lookup(key)
	if !ok {
		return "", fmt.Errorf("blackboard: %q: %w", key, ErrMissingKey)
	}
	x, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("blackboard: %q: %T: %w", key, v, ErrWrongType)
	}
	return x, nil
}

// ExposeToJS returns a JavaScript object bound to this blackboard:
//
//	blackboard.get("key")
//	blackboard.set("key", value)
//	blackboard.has("key")
//	blackboard.delete("key")
//	blackboard.keys()
//	blackboard.clear()
//	blackboard.len()
func (b *Blackboard) ExposeToJS(vm *goja.Runtime) goja.Value {
	obj := vm.NewObject()
	// Set cannot fail for plain identifiers on a fresh object.
	_ = obj.Set("get", b.Get)
	_ = obj.Set("set", b.Set)
	_ = obj.Set("has", b.Has)
	_ = obj.Set("delete", b.Delete)
	_ = obj.Set("keys", b.Keys)
	_ = obj.Set("clear", b.Clear)
	_ = obj.Set("len", b.Len)
	return obj
}
