// Package workers runs keyed tasks on a fixed set of goroutines. Tasks with
// the same key always land on the same worker, so they run one at a time and
// in submission order.
package workers

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/PabloGalante/vibe-agent/internal/observability"
)

var ErrPoolClosed = errors.New("worker pool closed")

const queueSize = 100

type task struct {
	ctx  context.Context
	key  string
	fn   func(ctx context.Context) error
	done chan error
}

type WorkerPool struct {
	numWorkers int
	queues     []chan task
	wg         sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewWorkerPool(n int) *WorkerPool {
	if n <= 0 {
		n = 1
	}
	wp := &WorkerPool{
		numWorkers: n,
		queues:     make([]chan task, n),
	}

	for i := 0; i < n; i++ {
		ch := make(chan task, queueSize)
		wp.queues[i] = ch

		wp.wg.Add(1)
		go func(id int, q chan task) {
			defer wp.wg.Done()
			for t := range q {
				t.done <- run(id, t)
			}
		}(i, ch)
	}

	return wp
}

func run(id int, t task) error {
	// The caller may have given up while the task sat in the queue.
	if err := t.ctx.Err(); err != nil {
		return err
	}
	observability.LoggerFromContext(t.ctx).Debug("processing task", "worker", id, "key", t.key)
	return t.fn(t.ctx)
}

// Do runs fn on the worker owning key and waits for its result.
func (wp *WorkerPool) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	t := task{ctx: ctx, key: key, fn: fn, done: make(chan error, 1)}

	wp.mu.RLock()
	if wp.closed {
		wp.mu.RUnlock()
		return ErrPoolClosed
	}
	select {
	case wp.queues[wp.workerFor(key)] <- t:
		wp.mu.RUnlock()
	case <-ctx.Done():
		wp.mu.RUnlock()
		return ctx.Err()
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop rejects new tasks, drains the queues and waits for the workers.
func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return
	}
	wp.closed = true
	for _, q := range wp.queues {
		close(q)
	}
	wp.mu.Unlock()

	wp.wg.Wait()
}

func (wp *WorkerPool) workerFor(key string) int {
	return int(HashString(key) % uint32(wp.numWorkers))
}

// HashString is 32-bit FNV-1a.
func HashString(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
