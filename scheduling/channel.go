package scheduling

import (
	"sort"
	"sync"
)

// ChannelAllocator assigns at most one MIDI channel per track, lazily, from
// a fixed pool. PercussionChannel is reserved and never drawn from the
// pool; ForcePercussion assigns it directly. One allocator is shared by
// every track's Scheduler goroutine, so access is mutex-guarded.
type ChannelAllocator struct {
	mu        sync.Mutex
	available []uint8
	assigned  map[int]uint8
}

// DefaultChannelPool returns every channel except PercussionChannel.
func DefaultChannelPool() []uint8 {
	pool := make([]uint8, 0, 15)
	for c := uint8(0); c < 16; c++ {
		if c == PercussionChannel {
			continue
		}
		pool = append(pool, c)
	}
	return pool
}

// NewChannelAllocator builds an allocator over the given pool.
func NewChannelAllocator(available []uint8) *ChannelAllocator {
	pool := make([]uint8, len(available))
	copy(pool, available)
	sort.Slice(pool, func(i, j int) bool { return pool[i] < pool[j] })
	return &ChannelAllocator{
		available: pool,
		assigned:  make(map[int]uint8),
	}
}

// Acquire returns track's previously assigned channel if it has one,
// otherwise draws the smallest free channel from the pool. Acquire never
// fails loudly: when the pool is exhausted it returns (0, false), and the
// caller is expected to warn and drop the event rather than treat this as
// fatal.
func (c *ChannelAllocator) Acquire(track int) (uint8, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ch, ok := c.assigned[track]; ok {
		return ch, true
	}
	if len(c.available) == 0 {
		return 0, false
	}
	ch := c.available[0]
	c.available = c.available[1:]
	c.assigned[track] = ch
	return ch, true
}

// ForcePercussion assigns PercussionChannel to track, without touching the
// melodic pool.
func (c *ChannelAllocator) ForcePercussion(track int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assigned[track] = PercussionChannel
}

// Channel reports track's assigned channel, if any, without allocating one.
func (c *ChannelAllocator) Channel(track int) (uint8, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.assigned[track]
	return ch, ok
}
