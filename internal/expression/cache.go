// Package expression compiles and caches expr-lang programs used by condition
// leaves and planning conditions.
package expression

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// DefaultCacheSize bounds the number of compiled programs held by
// [Default].
const DefaultCacheSize = 1000

// Default is the process-wide program cache.
var Default = NewCache(DefaultCacheSize)

// Cache is a thread-safe LRU cache of compiled programs.
//
// Programs are keyed by source text and environment type, since the same
// source compiles differently against different environments.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List
	maxSize int
	hits    int64
	misses  int64
}

type entry struct {
	key     string
	program *vm.Program
}

// NewCache returns a cache holding at most maxSize programs. A maxSize below
// one selects [DefaultCacheSize].
func NewCache(maxSize int) *Cache {
	if maxSize < 1 {
		maxSize = DefaultCacheSize
	}
	return &Cache{
		entries: make(map[string]*list.Element),
		lru:     list.New(),
		maxSize: maxSize,
	}
}

func cacheKey(source string, env any) string {
	return fmt.Sprintf("%T\x00%s", env, source)
}

// CompileBool returns the program for source, compiled against env to produce
// a bool. Identifiers absent from env evaluate to nil rather than failing
// compilation.
func (c *Cache) CompileBool(source string, env any) (*vm.Program, error) {
	if source == "" {
		return nil, ErrEmptyExpression
	}
	key := cacheKey(source, env)
	if program, ok := c.get(key); ok {
		return program, nil
	}
	program, err := expr.Compile(source,
		expr.Env(env),
		expr.AsBool(),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", source, err)
	}
	c.put(key, program)
	return program, nil
}

func (c *Cache) get(key string) (*vm.Program, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.lru.MoveToFront(elem)
	return elem.Value.(*entry).program, true
}

func (c *Cache) put(key string, program *vm.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*entry).program = program
		return
	}
	c.entries[key] = c.lru.PushFront(&entry{key: key, program: program})
	c.evict()
}

func (c *Cache) evict() {
	for c.lru.Len() > c.maxSize {
		elem := c.lru.Back()
		delete(c.entries, elem.Value.(*entry).key)
		c.lru.Remove(elem)
	}
}

// Resize changes the capacity, evicting the least recently used programs if
// the cache is over the new limit.
func (c *Cache) Resize(maxSize int) {
	if maxSize < 1 {
		maxSize = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxSize = maxSize
	c.evict()
}

// Clear removes every program and resets the statistics.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.lru.Init()
	c.hits, c.misses = 0, 0
}

// Len returns the number of cached programs.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns the cache size, hit and miss counts, and hit ratio.
func (c *Cache) Stats() (size int, hits, misses int64, ratio float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if total := c.hits + c.misses; total > 0 {
		ratio = float64(c.hits) / float64(total)
	}
	return c.lru.Len(), c.hits, c.misses, ratio
}

func (c *Cache) String() string {
	size, hits, misses, ratio := c.Stats()
	return fmt.Sprintf("expression.Cache{size=%d, hits=%d, misses=%d, hit_ratio=%.2f%%}",
		size, hits, misses, ratio*100)
}

// EvalBool runs a program compiled by [Cache.CompileBool] against env.
func EvalBool(program *vm.Program, env any) (bool, error) {
	out, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate: %w", err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("evaluate: %T: %w", out, ErrNotBool)
	}
	return b, nil
}
