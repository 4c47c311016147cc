// Package futex is a thin address-based parking facility.
//
// A waiter blocks on a 32-bit word only while the word still holds the
// value it last observed, so a wake that lands between the caller's load
// and the actual suspension is never lost. Waiters must re-check their
// condition after every return: spurious wakeups are always legal.
//
// Only intra-process words are supported.
package futex

import (
	"math"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// WakeAll wakes every waiter parked on a word.
const WakeAll = math.MaxInt32

// UpperHalf returns the address of the 32-bit half of *p that holds its
// most significant bits.
//
//go:nosplit
func UpperHalf(p *uint64) *uint32 {
	h := (*[2]uint32)(unsafe.Pointer(p))
	if cpu.IsBigEndian {
		return &h[0]
	}
	return &h[1]
}

// LowerHalf returns the address of the 32-bit half of *p that holds its
// least significant bits.
//
//go:nosplit
func LowerHalf(p *uint64) *uint32 {
	h := (*[2]uint32)(unsafe.Pointer(p))
	if cpu.IsBigEndian {
		return &h[1]
	}
	return &h[0]
}
