//go:build linux && !futexrw_nofutex

package futex

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	futexWait        = 0
	futexWake        = 1
	futexPrivateFlag = 128

	futexWaitPrivate = futexWait | futexPrivateFlag
	futexWakePrivate = futexWake | futexPrivateFlag
)

// Parker parks goroutines directly on the kernel futex of the word.
// It carries no state; the kernel keys waiters by address.
//
// A goroutine parked here keeps its OS thread asleep in the kernel for
// the whole wait, so every concurrent waiter costs one thread. Past
// runtime/debug.SetMaxThreads (10000 by default) the runtime aborts with
// "thread exhaustion". Build with -tags=futexrw_nofutex to park on
// [CondParker] instead when many goroutines may block at once.
//
// It is zero-value usable.
type Parker struct{}

// Wait blocks the calling goroutine, and the thread running it, while
// *addr == val. It returns immediately if the word already differs.
// EINTR and EAGAIN are reported by the kernel as plain returns.
func (*Parker) Wait(addr *uint32, val uint32) {
	// Syscall6 enters the scheduler's syscall state, so the P is handed
	// off while this thread sleeps.
	_, _, _ = unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexWaitPrivate,
		uintptr(val),
		0, 0, 0,
	)
}

// Wake wakes up to n waiters parked on addr.
// It is a no-op when nobody is parked.
func (*Parker) Wake(addr *uint32, n int) {
	_, _, _ = unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexWakePrivate,
		uintptr(n),
		0, 0, 0,
	)
}
