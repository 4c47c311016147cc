//go:build futexrw_disable_padding

package opt

// Padding_ scales the trailing pad of lock words.
// Padding is force-disabled via the futexrw_disable_padding build tag.
const Padding_ = 0
