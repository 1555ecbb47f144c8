package catalog

import (
	"errors"
	"sync"

	"floral_essence/internal/domain/models"
)

var ErrPageOutOfRange = errors.New("catalog: page out of range")

// Pager keeps the page cursor of every category and guards infinite-scroll
// continuation so a trigger cannot fire twice before the append settled.
type Pager struct {
	mu      sync.Mutex
	pages   map[string]int
	pending map[string]bool
}

func NewPager() *Pager {
	return &Pager{
		pages:   make(map[string]int),
		pending: make(map[string]bool),
	}
}

func (p *Pager) Page(category string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page(category)
}

func (p *Pager) page(category string) int {
	if n, ok := p.pages[category]; ok {
		return n
	}
	return 1
}

// LoadMore advances the cursor by one page.
func (p *Pager) LoadMore(category string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := p.page(category) + 1
	p.pages[category] = next
	return next
}

// GoTo jumps to page within 1..totalPages.
func (p *Pager) GoTo(category string, page, totalPages int) error {
	if page < 1 || page > totalPages {
		return ErrPageOutOfRange
	}

	p.mu.Lock()
	p.pages[category] = page
	p.mu.Unlock()

	return nil
}

// Reset puts the cursor back to page 1.
func (p *Pager) Reset(category string) {
	p.mu.Lock()
	delete(p.pages, category)
	delete(p.pending, category)
	p.mu.Unlock()
}

func (p *Pager) ResetAll() {
	p.mu.Lock()
	p.pages = make(map[string]int)
	p.pending = make(map[string]bool)
	p.mu.Unlock()
}

// SentinelVisible reports an intersection of the sentinel placed after the
// grid. Any non-zero ratio counts. It returns true when the cursor advanced.
func (p *Pager) SentinelVisible(category string, ratio float64, hasMore bool) bool {
	if ratio <= 0 || !hasMore {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pending[category] {
		return false
	}

	p.pending[category] = true
	p.pages[category] = p.page(category) + 1
	return true
}

// Settle marks the pending append as rendered.
func (p *Pager) Settle(category string) {
	p.mu.Lock()
	delete(p.pending, category)
	p.mu.Unlock()
}

func (p *Pager) Pending(category string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending[category]
}

// Observing tells whether the sentinel of view should still be watched.
func Observing(v View) bool {
	return v.Mode == models.PaginationInfinite && v.HasMore
}
