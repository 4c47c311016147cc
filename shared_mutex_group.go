package futexrw

import (
	"github.com/llxisdsh/pb"
)

// SharedMutexGroup allows shared Reader-Writer locking on arbitrary keys.
//
// Features:
//   - RLock/RUnlock for shared read access.
//   - Lock/Unlock for exclusive write access.
//   - Infinite Keys & Auto-Cleanup.
//
// Every key is backed by its own [SharedMutex]. The entry is created on
// first use and removed once the last holder or waiter lets go.
//
// Usage:
//
//	var group SharedMutexGroup[string]
//
//	// Readers
//	group.RLock("config")
//	read(config)
//	group.RUnlock("config")
//
//	// Writer
//	group.Lock("config")
//	write(config)
//	group.Unlock("config")
type SharedMutexGroup[K comparable] struct {
	_ noCopy
	m pb.MapOf[K, *sharedMutexGroupEntry]
}

type sharedMutexGroupEntry struct {
	mu SharedMutex
	// ref is only touched inside ProcessEntry.
	ref int32
}

// acquire pins the entry for k, creating it if needed.
func (g *SharedMutexGroup[K]) acquire(k K) *sharedMutexGroupEntry {
	e, _ := g.m.ProcessEntry(
		k,
		func(l *pb.EntryOf[K, *sharedMutexGroupEntry]) (*pb.EntryOf[K, *sharedMutexGroupEntry], *sharedMutexGroupEntry, bool) {
			if l != nil {
				l.Value.ref++
				return l, l.Value, true
			}
			v := &sharedMutexGroupEntry{ref: 1}
			return &pb.EntryOf[K, *sharedMutexGroupEntry]{Value: v}, v, false
		},
	)
	return e
}

// release unpins the entry for k and deletes it on the last reference.
func (g *SharedMutexGroup[K]) release(k K) {
	g.m.ProcessEntry(
		k,
		func(l *pb.EntryOf[K, *sharedMutexGroupEntry]) (*pb.EntryOf[K, *sharedMutexGroupEntry], *sharedMutexGroupEntry, bool) {
			if l == nil {
				return nil, nil, false
			}
			l.Value.ref--
			if l.Value.ref <= 0 {
				return nil, nil, true
			}
			return l, l.Value, true
		},
	)
}

func (g *SharedMutexGroup[K]) Lock(k K) {
	g.acquire(k).mu.Lock()
}

// TryLock acquires the write lock on k only if it is free.
func (g *SharedMutexGroup[K]) TryLock(k K) bool {
	if g.acquire(k).mu.TryLock() {
		return true
	}
	g.release(k)
	return false
}

func (g *SharedMutexGroup[K]) Unlock(k K) {
	v, ok := g.m.Load(k)
	if !ok {
		return
	}
	v.mu.Unlock()
	g.release(k)
}

func (g *SharedMutexGroup[K]) RLock(k K) {
	g.acquire(k).mu.RLock()
}

// TryRLock acquires a read lock on k unless a writer holds or waits for it.
func (g *SharedMutexGroup[K]) TryRLock(k K) bool {
	if g.acquire(k).mu.TryRLock() {
		return true
	}
	g.release(k)
	return false
}

func (g *SharedMutexGroup[K]) RUnlock(k K) {
	v, ok := g.m.Load(k)
	if !ok {
		return
	}
	v.mu.RUnlock()
	g.release(k)
}

// Len returns the number of keys that are currently held or waited on.
func (g *SharedMutexGroup[K]) Len() int {
	return g.m.Size()
}
