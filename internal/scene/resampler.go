package scene

import (
	"context"
	"sync"
)

// Resampler runs sampling passes on its own goroutine. Requests for the
// same element coalesce; a pass always samples the element's text as of
// when it runs, so the latest text wins.
type Resampler struct {
	mu      sync.Mutex
	pending []*Element
	queued  map[*Element]bool

	wake chan struct{}
	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func NewResampler() *Resampler {
	return &Resampler{
		queued: make(map[*Element]bool),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Start launches the worker goroutine. It exits when ctx is done or Close
// is called.
func (r *Resampler) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.done:
				return
			case <-r.wake:
				r.drain(ctx)
			}
		}
	}()
}

// Request queues e for resampling without blocking.
func (r *Resampler) Request(e *Element) {
	r.mu.Lock()
	if !r.queued[e] {
		r.queued[e] = true
		r.pending = append(r.pending, e)
	}
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Resampler) drain(ctx context.Context) {
	for {
		r.mu.Lock()
		if len(r.pending) == 0 {
			r.mu.Unlock()
			return
		}
		e := r.pending[0]
		r.pending = r.pending[1:]
		delete(r.queued, e)
		r.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		// errors are logged by the element; its previous targets remain
		_ = e.Resample()
	}
}

// Pending returns the number of queued elements.
func (r *Resampler) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Close stops the worker and waits for an in-flight pass to finish.
func (r *Resampler) Close() {
	r.once.Do(func() { close(r.done) })
	r.wg.Wait()
}
