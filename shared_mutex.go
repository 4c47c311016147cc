package futexrw

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/llxisdsh/futexrw/internal/futex"
	"github.com/llxisdsh/futexrw/internal/opt"
)

// SharedMutex is a writer-preferred Reader-Writer lock parked on futexes.
//
// The whole lock state lives in one 64-bit word:
//   - Low 32 bits: number of readers holding the lock.
//   - High 32 bits: writer flag, all ones while a writer holds the lock or
//     drains the readers admitted before it, all zeros otherwise.
//
// Each half is a futex word of its own: blocked readers and writers park
// on the high half, the writer draining readers parks on the low half.
// Setting the whole high half in one CAS claims the lock for a writer and
// keeps the resident reader count intact, and from that point no new
// reader is admitted until Unlock.
//
// Properties:
//   - Writer-Preferred (new readers back off while a writer waits).
//   - No reentrancy, no timeouts.
//   - Uncontended acquisition is a single CAS.
//
// Blocking:
//   - On Linux a blocked goroutine sleeps in the futex syscall and holds
//     its OS thread until woken. Every concurrent waiter costs a thread,
//     and the runtime aborts with "thread exhaustion" beyond
//     runtime/debug.SetMaxThreads (10000 by default).
//   - Built with -tags=futexrw_nofutex, or on other platforms, waiters
//     park on a condition variable and hold no thread. Prefer this when
//     thousands of goroutines may wait at once, e.g. a busy
//     [SharedMutexGroup].
//
// It is zero-value usable and must not be copied after first use.
//
// Size: 8 byte state + 4 byte waiters + the parker (empty for the futex
// backend, a mutex and a condition variable for the fallback), padded to
// a cache line unless built with -tags=futexrw_disable_padding.
type SharedMutex struct {
	_ noCopy
	sharedMutexState
	_ [opt.Padding_ * ((opt.CacheLineSize_ - unsafe.Sizeof(sharedMutexState{})%opt.CacheLineSize_) % opt.CacheLineSize_)]byte
}

type sharedMutexState struct {
	state atomic.Uint64

	// waiters counts goroutines parked on the writer half. It only tells
	// Unlock whether the wake syscall is worth making.
	waiters atomic.Uint32

	parker futex.Parker
}

const (
	smReaders = 1<<32 - 1          // low half of state
	smWriters = ^uint64(smReaders) // high half of state
)

//go:nosplit
func upperHalf(s uint64) uint32 {
	return uint32(s >> 32)
}

//go:nosplit
func lowerHalf(s uint64) uint32 {
	return uint32(s)
}

func (m *SharedMutex) word() *uint64 {
	return (*uint64)(unsafe.Pointer(&m.state))
}

// waitWriter parks until the writer half no longer reads as s.
func (m *SharedMutex) waitWriter(s uint64) uint64 {
	m.waiters.Add(1)
	m.parker.Wait(futex.UpperHalf(m.word()), upperHalf(s))
	m.waiters.Add(^uint32(0))
	return m.state.Load()
}

// Lock acquires exclusive ownership.
// It blocks while another writer holds the lock, then waits for the
// readers that were admitted before it to drain.
func (m *SharedMutex) Lock() {
	s := m.state.Load()
	for {
		if s&smWriters != 0 {
			s = m.waitWriter(s)
			continue
		}
		if m.state.CompareAndSwap(s, s|smWriters) {
			break
		}
		s = m.state.Load()
	}

	// Flag is ours; s still carries the readers present at the CAS.
	s |= smWriters
	for s&smReaders != 0 {
		m.parker.Wait(futex.LowerHalf(m.word()), lowerHalf(s))
		s = m.state.Load()
	}
}

// TryLock tries to acquire exclusive ownership without blocking.
// It succeeds only if the lock has neither readers nor a writer.
func (m *SharedMutex) TryLock() bool {
	return m.state.CompareAndSwap(0, smWriters)
}

// Unlock releases exclusive ownership.
// Calling Unlock without holding the lock is undefined.
func (m *SharedMutex) Unlock() {
	// The reader count is already drained, so both halves go to zero.
	m.state.Store(0)
	if m.waiters.Load() != 0 {
		m.parker.Wake(futex.UpperHalf(m.word()), futex.WakeAll)
	}
}

// RLock acquires one unit of shared ownership.
// It blocks while a writer holds or waits for the lock.
func (m *SharedMutex) RLock() {
	s := m.state.Load()
	for {
		if s&smWriters != 0 {
			s = m.waitWriter(s)
			continue
		}
		if m.state.CompareAndSwap(s, s+1) {
			return
		}
		s = m.state.Load()
	}
}

// TryRLock tries to acquire shared ownership without blocking.
// It fails only when a writer holds or waits for the lock; contention
// with other readers is retried.
func (m *SharedMutex) TryRLock() bool {
	ok, _ := m.tryRLock()
	return ok
}

// tryRLock also reports how many CAS attempts were lost. Each lost
// attempt means another goroutine changed the word in between.
func (m *SharedMutex) tryRLock() (bool, int) {
	for retries := 0; ; retries++ {
		s := m.state.Load()
		if s&smWriters != 0 {
			return false, retries
		}
		if m.state.CompareAndSwap(s, s+1) {
			return true, retries
		}
	}
}

// RUnlock releases one unit of shared ownership.
// The last reader leaving while a writer drains wakes that writer.
func (m *SharedMutex) RUnlock() {
	if m.state.Add(^uint64(0)) == smWriters {
		m.parker.Wake(futex.LowerHalf(m.word()), 1)
	}
}

// RLocker returns a [sync.Locker] that acquires and releases shared
// ownership of m.
func (m *SharedMutex) RLocker() sync.Locker {
	return (*rlocker)(m)
}

type rlocker SharedMutex

func (r *rlocker) Lock()   { (*SharedMutex)(r).RLock() }
func (r *rlocker) Unlock() { (*SharedMutex)(r).RUnlock() }

var _ sync.Locker = (*SharedMutex)(nil)
