package bls

import (
	"sync"
	"time"
)

// pacer spaces requests to the public BLS API, which starts answering
// 429 well below its documented quota when calls arrive back to back.
// Each caller reserves the next free slot under the lock, then sleeps
// outside it, so concurrent fetches stay serialized without blocking
// each other's bookkeeping.
type pacer struct {
	mu   sync.Mutex
	next time.Time
	gap  time.Duration
}

func newPacer(requestsPerSecond int) *pacer {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &pacer{gap: time.Second / time.Duration(requestsPerSecond)}
}

func (p *pacer) wait() {
	p.mu.Lock()
	now := time.Now()
	slot := now
	if p.next.After(now) {
		slot = p.next
	}
	p.next = slot.Add(p.gap)
	p.mu.Unlock()

	if sleep := time.Until(slot); sleep > 0 {
		time.Sleep(sleep)
	}
}
