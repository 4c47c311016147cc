//go:build !linux || futexrw_nofutex

package futex

// Parker parks on a condition variable where the kernel futex is not
// available, or when disabled with the futexrw_nofutex build tag.
// Goroutines parked here do not hold an OS thread.
type Parker = CondParker
