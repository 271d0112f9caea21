package rules

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReplayCacheHit(t *testing.T) {
	rc := NewReplayCache(4)
	ms := moves(Cell{2, 2}, Cell{6, 6})

	a, err := rc.Replay(nineByNine, ms, ReplayOptions{})
	require.NoError(t, err)
	b, err := rc.Replay(nineByNine, moves(Cell{2, 2}, Cell{6, 6}), ReplayOptions{})
	require.NoError(t, err)
	require.Same(t, a, b)

	hits, misses := rc.Stats()
	require.Equal(t, 1, hits)
	require.Equal(t, 1, misses)

	c, err := rc.Replay(nineByNine, ms, ReplayOptions{Limit: 1})
	require.NoError(t, err)
	require.NotSame(t, a, c)
	require.Equal(t, 2, rc.Len())
}

func TestReplayCacheEvictsOldest(t *testing.T) {
	rc := NewReplayCache(2)
	first, err := rc.Replay(nineByNine, moves(Cell{0, 0}), ReplayOptions{})
	require.NoError(t, err)
	_, err = rc.Replay(nineByNine, moves(Cell{1, 1}), ReplayOptions{})
	require.NoError(t, err)
	_, err = rc.Replay(nineByNine, moves(Cell{2, 2}), ReplayOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, rc.Len())

	again, err := rc.Replay(nineByNine, moves(Cell{0, 0}), ReplayOptions{})
	require.NoError(t, err)
	require.NotSame(t, first, again)

	rc.Purge()
	require.Zero(t, rc.Len())
}

func TestReplayCacheSkipsErrors(t *testing.T) {
	rc := NewReplayCache(2)
	_, err := rc.Replay(nineByNine, moves(Cell{0, 0}, Cell{0, 0}), ReplayOptions{})
	require.ErrorIs(t, err, ErrMalformedHistory)
	require.Zero(t, rc.Len())
}

func TestReplayCacheConcurrent(t *testing.T) {
	rc := NewReplayCache(8)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := rc.Replay(nineByNine, moves(Cell{i % 4, 0}, Cell{4, 4}), ReplayOptions{})
			require.NoError(t, err)
			require.Equal(t, 2, p.StoneCount())
		}(i)
	}
	wg.Wait()
	require.Equal(t, 4, rc.Len())
}

func TestFingerprint(t *testing.T) {
	ms := moves(Cell{2, 2}, Cell{6, 6}, Cell{4, 4})
	base := Fingerprint(nineByNine, ms, ReplayOptions{})

	require.Equal(t, base, Fingerprint(nineByNine, ms, ReplayOptions{Limit: 3}))
	require.NotEqual(t, base, Fingerprint(nineByNine, ms, ReplayOptions{Limit: 2}))
	require.NotEqual(t, base, Fingerprint(nineByNine, ms, ReplayOptions{Ko: KoSuperko}))
	require.NotEqual(t, base, Fingerprint(InitialState{Width: 9, Height: 9}, ms, ReplayOptions{}))
	require.NotEqual(t, base, Fingerprint(nineByNine, ms[:2], ReplayOptions{}))
}
