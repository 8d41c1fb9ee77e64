package drilldown

import "sync"

// BodyScroll is the page-level no-scroll flag. Acquisitions nest; the page
// scrolls again once every holder has released.
type BodyScroll struct {
	mu      sync.Mutex
	holders int
}

func (b *BodyScroll) Acquire() {
	b.mu.Lock()
	b.holders++
	b.mu.Unlock()
}

func (b *BodyScroll) Release() {
	b.mu.Lock()
	if b.holders > 0 {
		b.holders--
	}
	b.mu.Unlock()
}

// Locked reports whether page scrolling is currently suspended.
func (b *BodyScroll) Locked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.holders > 0
}
