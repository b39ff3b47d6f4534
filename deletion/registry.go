package deletion

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/shaderres/gpucore"
)

// Unlimited is a flush budget large enough to drain any queue.
const Unlimited = time.Duration(math.MaxInt64)

// DefaultCallCost is the minimum cost charged against the flush budget for
// each delete call. Measured durations below this value are rounded up so
// that every call consumes budget even on coarse clocks.
const DefaultCallCost = 20 * time.Microsecond

// Deleter issues the actual GPU delete call. It is implemented by the
// driver of the context being flushed.
type Deleter interface {
	DeleteShader(h gpucore.ShaderHandle)
}

// DeleterFunc adapts a function to the Deleter interface.
type DeleterFunc func(h gpucore.ShaderHandle)

// DeleteShader calls f(h).
func (f DeleterFunc) DeleteShader(h gpucore.ShaderHandle) { f(h) }

// Config holds configuration for creating a Registry.
type Config struct {
	// CallCost is the minimum budget charged per delete call.
	// Defaults to DefaultCallCost if <= 0.
	CallCost time.Duration

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// Stats contains deletion counters.
type Stats struct {
	// Enqueued is the total number of handles ever enqueued.
	Enqueued uint64

	// Deleted is the number of handles passed to a Deleter.
	Deleted uint64

	// Discarded is the number of handles dropped by Discard.
	Discarded uint64

	// Stale is the number of handles refused because their context was
	// discarded after they were created.
	Stale uint64

	// Pending is the number of handles currently queued across all contexts.
	Pending int

	// Contexts is the number of contexts with a live queue.
	Contexts int
}

// String returns a human-readable string of deletion stats.
func (s Stats) String() string {
	return fmt.Sprintf("Deletion[%d pending in %d contexts, %d enqueued, %d deleted, %d discarded, %d stale]",
		s.Pending, s.Contexts, s.Enqueued, s.Deleted, s.Discarded, s.Stale)
}

// queue is the pending list for one context.
type queue struct {
	mu      sync.Mutex
	handles []gpucore.ShaderHandle
}

// Registry holds one FIFO queue of pending shader handles per context.
// Queues are created on first use and removed by Discard.
//
// Every Discard starts a new generation of its context id. Handles are
// tagged with the generation they were created in; a handle from an
// earlier generation belongs to a destroyed context and is never queued,
// even if the id has been reused since.
//
// Registry is safe for concurrent use as described in the package
// documentation.
type Registry struct {
	mu     sync.RWMutex
	queues map[gpucore.ContextID]*queue
	gens   map[gpucore.ContextID]uint64

	callCost time.Duration
	clock    func() time.Time

	enqueued  atomic.Uint64
	deleted   atomic.Uint64
	discarded atomic.Uint64
	stale     atomic.Uint64
}

// New creates an empty registry.
func New(config Config) *Registry {
	cost := config.CallCost
	if cost <= 0 {
		cost = DefaultCallCost
	}
	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Registry{
		queues:   make(map[gpucore.ContextID]*queue),
		gens:     make(map[gpucore.ContextID]uint64),
		callCost: cost,
		clock:    clock,
	}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry, creating it on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = New(Config{})
	})
	return defaultRegistry
}

// queueFor returns the queue for id, or nil if none exists.
func (r *Registry) queueFor(id gpucore.ContextID) *queue {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.queues[id]
}

// Generation returns the current generation of context id. It starts at
// zero and is incremented by every Discard of id.
func (r *Registry) Generation(id gpucore.ContextID) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gens[id]
}

// Enqueue appends h to the pending list of context id in its current
// generation. Invalid handles are ignored.
func (r *Registry) Enqueue(id gpucore.ContextID, h gpucore.ShaderHandle) {
	r.EnqueueGeneration(id, r.Generation(id), h)
}

// EnqueueGeneration appends h, created in generation gen of context id, to
// the pending list. It reports whether h was queued: invalid handles are
// ignored and handles of a discarded generation are dropped, since their
// context no longer exists.
func (r *Registry) EnqueueGeneration(id gpucore.ContextID, gen uint64, h gpucore.ShaderHandle) bool {
	if !h.Valid() {
		return false
	}

	r.mu.RLock()
	if r.gens[id] != gen {
		r.mu.RUnlock()
		r.dropStale(id, gen, h)
		return false
	}
	q := r.queues[id]
	if q != nil {
		q.push(h)
		r.mu.RUnlock()
		r.enqueued.Add(1)
		return true
	}
	r.mu.RUnlock()

	r.mu.Lock()
	if r.gens[id] != gen {
		r.mu.Unlock()
		r.dropStale(id, gen, h)
		return false
	}
	if q = r.queues[id]; q == nil {
		q = &queue{}
		r.queues[id] = q
	}
	q.push(h)
	r.mu.Unlock()
	r.enqueued.Add(1)
	return true
}

func (r *Registry) dropStale(id gpucore.ContextID, gen uint64, h gpucore.ShaderHandle) {
	r.stale.Add(1)
	logger().Debug("deletion: dropped handle of destroyed context",
		"context", id, "generation", gen, "handle", uint64(h))
}

func (q *queue) push(h gpucore.ShaderHandle) {
	q.mu.Lock()
	q.handles = append(q.handles, h)
	q.mu.Unlock()
}

// Flush deletes queued handles of context id in FIFO order until the queue
// is empty or budget is used up, and returns the unused budget (never
// negative). Each call is charged its measured duration, at least the
// configured call cost. Handles left over stay queued, ahead of anything
// enqueued while the flush ran, and are processed by the next Flush.
//
// Flush must be called from the goroutine that has context id current.
func (r *Registry) Flush(id gpucore.ContextID, d Deleter, budget time.Duration) time.Duration {
	q := r.queueFor(id)
	if q == nil || budget <= 0 {
		return max(budget, 0)
	}

	q.mu.Lock()
	pending := q.handles
	q.handles = nil
	q.mu.Unlock()

	if len(pending) == 0 {
		return budget
	}

	n := 0
	for n < len(pending) && budget > 0 {
		start := r.clock()
		d.DeleteShader(pending[n])
		cost := r.clock().Sub(start)
		if cost < r.callCost {
			cost = r.callCost
		}
		budget -= cost
		n++
	}
	r.deleted.Add(uint64(n))

	if rest := pending[n:]; len(rest) > 0 {
		q.mu.Lock()
		q.handles = append(rest, q.handles...)
		q.mu.Unlock()
		logger().Debug("deletion: flush budget exhausted",
			"context", id, "deleted", n, "remaining", len(rest))
	}

	return max(budget, 0)
}

// Discard drops every queued handle of context id without issuing any GPU
// calls and forgets the context. Use it once the context has been
// destroyed; its handles are implicitly invalid. Discard starts a new
// generation of id, so handles created before it are refused from then on.
// It returns the number of handles dropped.
func (r *Registry) Discard(id gpucore.ContextID) int {
	r.mu.Lock()
	q := r.queues[id]
	delete(r.queues, id)
	r.gens[id]++
	r.mu.Unlock()
	if q == nil {
		return 0
	}

	q.mu.Lock()
	n := len(q.handles)
	q.handles = nil
	q.mu.Unlock()

	r.discarded.Add(uint64(n))
	if n > 0 {
		logger().Debug("deletion: discarded handles", "context", id, "count", n)
	}
	return n
}

// Pending returns the number of handles queued for context id.
func (r *Registry) Pending(id gpucore.ContextID) int {
	q := r.queueFor(id)
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.handles)
}

// Stats returns a snapshot of the registry counters.
func (r *Registry) Stats() Stats {
	s := Stats{
		Enqueued:  r.enqueued.Load(),
		Deleted:   r.deleted.Load(),
		Discarded: r.discarded.Load(),
		Stale:     r.stale.Load(),
	}
	r.mu.RLock()
	s.Contexts = len(r.queues)
	for _, q := range r.queues {
		q.mu.Lock()
		s.Pending += len(q.handles)
		q.mu.Unlock()
	}
	r.mu.RUnlock()
	return s
}
