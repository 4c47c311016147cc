//go:build race

package opt

// Race_ is set under the race detector. Stress tests scale their
// iteration counts down with it.
const Race_ = true
