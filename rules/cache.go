package rules

import (
	"container/list"
	"encoding/binary"
	"math"
	"sync"

	"github.com/OneOfOne/xxhash"
)

// ReplayCache remembers the results of recent replays. Game lists and history
// views replay the same records over and over; the cache makes the repeat
// calls cheap. It is safe for concurrent use.
type ReplayCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[uint64]*list.Element
	hits     int
	misses   int
}

type cacheEntry struct {
	key uint64
	pos *Position
}

// NewReplayCache returns a cache holding at most capacity positions.
func NewReplayCache(capacity int) *ReplayCache {
	if capacity < 1 {
		capacity = 1
	}
	return &ReplayCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[uint64]*list.Element),
	}
}

// Replay returns the cached result for the same arguments, or runs Replay
// and stores its result. Errors are not cached. OnCoerced is only called
// when the replay actually runs.
func (rc *ReplayCache) Replay(init InitialState, moves []Move, opts ReplayOptions) (*Position, error) {
	key := Fingerprint(init, moves, opts)

	rc.mu.Lock()
	if el, ok := rc.entries[key]; ok {
		rc.order.MoveToFront(el)
		rc.hits++
		pos := el.Value.(*cacheEntry).pos
		rc.mu.Unlock()
		return pos, nil
	}
	rc.misses++
	rc.mu.Unlock()

	pos, err := Replay(init, moves, opts)
	if err != nil {
		return nil, err
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()
	if el, ok := rc.entries[key]; ok {
		rc.order.MoveToFront(el)
		return el.Value.(*cacheEntry).pos, nil
	}
	rc.entries[key] = rc.order.PushFront(&cacheEntry{key: key, pos: pos})
	for rc.order.Len() > rc.capacity {
		oldest := rc.order.Back()
		rc.order.Remove(oldest)
		delete(rc.entries, oldest.Value.(*cacheEntry).key)
	}
	return pos, nil
}

// Len returns the number of cached positions.
func (rc *ReplayCache) Len() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.order.Len()
}

// Stats returns the number of cache hits and misses so far.
func (rc *ReplayCache) Stats() (hits, misses int) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.hits, rc.misses
}

// Purge drops every cached position.
func (rc *ReplayCache) Purge() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.order.Init()
	rc.entries = make(map[uint64]*list.Element)
}

// Fingerprint hashes everything that influences the result of Replay.
func Fingerprint(init InitialState, moves []Move, opts ReplayOptions) uint64 {
	h := xxhash.New64()
	var buf [8]byte
	put := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	putCells := func(cells []Cell) {
		put(int64(len(cells)))
		for _, c := range cells {
			put(int64(c.X))
			put(int64(c.Y))
		}
	}
	flag := func(b bool) int64 {
		if b {
			return 1
		}
		return 0
	}

	put(int64(init.Width))
	put(int64(init.Height))
	putCells(init.Black)
	putCells(init.White)
	put(int64(math.Float64bits(init.Komi)))
	put(flag(init.WhiteFirst))
	put(int64(init.Handicap))
	put(flag(init.FreeHandicapPlacement))

	n := len(moves)
	if opts.Limit > 0 && opts.Limit < n {
		n = opts.Limit
	}
	put(int64(n))
	for _, m := range moves[:n] {
		put(int64(m.Cell.X))
		put(int64(m.Cell.Y))
		put(int64(m.Color))
	}
	put(int64(opts.Policy))
	put(int64(opts.Ko))
	return h.Sum64()
}
