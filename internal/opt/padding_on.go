//go:build !futexrw_disable_padding

package opt

// Padding_ scales the trailing pad of lock words.
// A lock word is padded out to CacheLineSize_ so that neighbouring data
// does not share its cache line.
// Use: go build -tags=futexrw_disable_padding to drop the pad.
const Padding_ = 1
