package catalog

import (
	"context"
	"sync"
	"time"
)

// Rotator cycles an image index on a fixed interval. With one image or
// fewer it never advances.
type Rotator struct {
	mu       sync.Mutex
	index    int
	count    int
	interval time.Duration
}

func NewRotator(count int, intervalMs int) *Rotator {
	if intervalMs <= 0 {
		intervalMs = 3000
	}
	return &Rotator{
		count:    count,
		interval: time.Duration(intervalMs) * time.Millisecond,
	}
}

func (r *Rotator) Enabled() bool {
	return r.count > 1
}

func (r *Rotator) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

// Advance moves to the next image, looping at the end.
func (r *Rotator) Advance() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count > 1 {
		r.index = (r.index + 1) % r.count
	}
	return r.index
}

// Run advances every interval until ctx is done, calling onAdvance with the
// new index.
func (r *Rotator) Run(ctx context.Context, onAdvance func(int)) {
	if !r.Enabled() {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			idx := r.Advance()
			if onAdvance != nil {
				onAdvance(idx)
			}
		}
	}
}
