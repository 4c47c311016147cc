package futex

import (
	"sync"
	"sync/atomic"
)

// CondParker emulates futex wait/wake with a condition variable. It keeps
// parked goroutines off OS threads, at the cost of a mutex round trip on
// every Wait and Wake.
//
// All words parked through one CondParker share a single condition, and
// Wake broadcasts to every goroutine parked at that moment regardless of
// n: a targeted wake could otherwise reach a waiter of the other word and
// be lost. Callers loop on their condition, so an extra wakeup only costs
// an iteration.
//
// It is zero-value usable.
type CondParker struct {
	mu   sync.Mutex
	cond sync.Cond
}

// Wait blocks while *addr == val.
func (p *CondParker) Wait(addr *uint32, val uint32) {
	p.mu.Lock()
	// Wakers change the word before taking mu, so either this load sees
	// the new value or this goroutine is parked before Wake broadcasts.
	if atomic.LoadUint32(addr) == val {
		if p.cond.L == nil {
			p.cond.L = &p.mu
		}
		p.cond.Wait()
	}
	p.mu.Unlock()
}

// Wake wakes every goroutine parked on p. n only has to be positive.
func (p *CondParker) Wake(_ *uint32, n int) {
	if n <= 0 {
		return
	}
	p.mu.Lock()
	if p.cond.L != nil {
		p.cond.Broadcast()
	}
	p.mu.Unlock()
}
