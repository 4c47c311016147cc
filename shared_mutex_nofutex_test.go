//go:build futexrw_nofutex

package futexrw

import (
	"runtime"
	"runtime/debug"
	"sync"
	"testing"
	"time"
)

// Under futexrw_nofutex waiters park on a condition variable, so a crowd
// of blocked goroutines stays within a small thread budget.
func TestSharedMutex_WaitersHoldNoThread(t *testing.T) {
	limit := max(64, 2*runtime.GOMAXPROCS(0)+32)
	defer debug.SetMaxThreads(debug.SetMaxThreads(limit))

	var m SharedMutex
	m.Lock()

	n := 4 * limit
	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				m.RLock()
				m.RUnlock()
			} else {
				m.Lock()
				m.Unlock()
			}
		}()
	}

	waitFor(t, "parked waiters", func() bool {
		return int(m.waiters.Load()) == n
	})
	m.Unlock()

	ch := make(chan struct{})
	go func() {
		wg.Wait()
		close(ch)
	}()
	select {
	case <-ch:
	case <-time.After(10 * time.Second):
		t.Fatal("waiters not released")
	}
}

// The last reader's wake must reach the draining writer even while a
// reader parked behind the writer flag shares the same parker.
func TestSharedMutex_DrainWithParkedReader(t *testing.T) {
	for range churnLoops(200) {
		var m SharedMutex
		m.RLock()

		writerIn := make(chan struct{})
		go func() {
			m.Lock()
			close(writerIn)
			m.Unlock()
		}()
		waitFor(t, "writer flag", func() bool {
			return m.state.Load()&smWriters != 0
		})

		readerIn := make(chan struct{})
		go func() {
			m.RLock()
			m.RUnlock()
			close(readerIn)
		}()
		waitFor(t, "parked reader", func() bool {
			return m.waiters.Load() != 0
		})

		m.RUnlock()
		for _, ch := range []chan struct{}{writerIn, readerIn} {
			select {
			case <-ch:
			case <-time.After(2 * time.Second):
				t.Fatalf("stuck: state=%#x waiters=%d", m.state.Load(), m.waiters.Load())
			}
		}
	}
}
