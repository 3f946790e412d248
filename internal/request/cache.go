package request

import (
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/sqlcore/internal/ir"
)

type taskEntry struct {
	task     Task
	requests []*PersistRequest
}

// TaskCache memoizes persist requests by task. Entries are bucketed by
// Task.Hash and told apart with Task.Equal.
//
// Builds run outside the lock; when two goroutines miss on the same task
// the first insert wins and both get its requests.
type TaskCache struct {
	mu      sync.Mutex
	builder *PersistRequestBuilder
	buckets map[uint32][]taskEntry
	size    int
	logger  *slog.Logger
}

// NewTaskCache returns an empty cache that builds with builder.
func NewTaskCache(builder *PersistRequestBuilder, opts ...Option) *TaskCache {
	s := newSettings(opts)
	return &TaskCache{
		builder: builder,
		buckets: make(map[uint32][]taskEntry),
		logger:  s.logger,
	}
}

func (c *TaskCache) lookup(task Task, h uint32) ([]*PersistRequest, bool) {
	for _, e := range c.buckets[h] {
		if e.task.Equal(task) {
			return e.requests, true
		}
	}
	return nil, false
}

// Get returns the requests for task, building them on a miss.
func (c *TaskCache) Get(task Task) ([]*PersistRequest, error) {
	h := task.Hash()

	c.mu.Lock()
	reqs, ok := c.lookup(task, h)
	c.mu.Unlock()
	sampleLookup("task", ok)
	if ok {
		return reqs, nil
	}

	c.logger.Debug("task cache miss", "task", task.String(), "hash", h)
	start := time.Now()
	built, err := c.builder.Build(task)
	sampleBuild("task", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if reqs, ok := c.lookup(task, h); ok {
		return reqs, nil
	}
	c.buckets[h] = append(c.buckets[h], taskEntry{task: task, requests: built})
	c.size++
	return built, nil
}

// Len returns the number of cached tasks.
func (c *TaskCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// QueryCache memoizes prepared query requests by key.
type QueryCache struct {
	mu      sync.Mutex
	entries map[string]*QueryRequest
	logger  *slog.Logger
}

// NewQueryCache returns an empty cache.
func NewQueryCache(opts ...Option) *QueryCache {
	s := newSettings(opts)
	return &QueryCache{
		entries: make(map[string]*QueryRequest),
		logger:  s.logger,
	}
}

// QueryKey fingerprints a structured query description.
func QueryKey(desc ir.IRObject) (string, error) {
	return ir.CacheKey(desc)
}

// GetOrBuild returns the request cached under key, or builds, prepares
// and caches a new one.
func (c *QueryCache) GetOrBuild(key string, build func() (*QueryRequest, error)) (*QueryRequest, error) {
	c.mu.Lock()
	req, ok := c.entries[key]
	c.mu.Unlock()
	sampleLookup("query", ok)
	if ok {
		return req, nil
	}

	c.logger.Debug("query cache miss", "key", key)
	start := time.Now()
	built, err := build()
	if err == nil {
		err = built.Prepare()
	}
	sampleBuild("query", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if req, ok := c.entries[key]; ok {
		return req, nil
	}
	c.entries[key] = built
	return built, nil
}

// Len returns the number of cached queries.
func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
