package arena

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAlloc_FastPath tests bump allocation and block alignment.
func TestAlloc_FastPath(t *testing.T) {
	a := newTestArena(t, 1<<16)

	r1, err := a.Alloc(24)
	require.NoError(t, err)
	require.NotEqual(t, RefNil, r1)
	assert.Zero(t, uintptr(r1)%32, "24-byte request rounds to a 32-byte block at natural alignment")

	r2, err := a.Alloc(24)
	require.NoError(t, err)
	assert.NotEqual(t, r1, r2, "blocks must not overlap")
}

// TestAlloc_BadSizes tests the unservable-size edges.
func TestAlloc_BadSizes(t *testing.T) {
	a := newTestArena(t, 1<<16)

	_, err := a.Alloc(0)
	require.ErrorIs(t, err, ErrBadSize)

	_, err = a.Alloc(maxBlock + 1)
	require.ErrorIs(t, err, ErrNoSpace)
}

// TestAlloc_ExhaustionAndReuse tests that exhaustion reports ErrNoSpace
// with no side effects and that freed blocks are reused from the free
// lists once the bump region is full.
func TestAlloc_ExhaustionAndReuse(t *testing.T) {
	a := newTestArena(t, 1024)

	// The 512-byte block lands at offset 512 and fills the reservation.
	ref, err := a.Alloc(512)
	require.NoError(t, err)
	require.Equal(t, Ref(512), ref)

	_, err = a.Alloc(512)
	require.ErrorIs(t, err, ErrNoSpace)

	require.NoError(t, a.Free(ref, 512))

	again, err := a.Alloc(512)
	require.NoError(t, err)
	assert.Equal(t, ref, again, "freed block should be reused")
}

// TestFree_BadRef tests reference validation on Free.
func TestFree_BadRef(t *testing.T) {
	a := newTestArena(t, 1<<12)

	require.ErrorIs(t, a.Free(RefNil, 64), ErrBadRef)
	require.ErrorIs(t, a.Free(Ref(1<<12), 64), ErrBadRef, "out of bounds")
	require.ErrorIs(t, a.Free(Ref(33), 64), ErrBadRef, "misaligned")
	require.ErrorIs(t, a.Free(Ref(64), 0), ErrBadSize)
}

// TestAlloc_Stats tests the allocator counters.
func TestAlloc_Stats(t *testing.T) {
	a := newTestArena(t, 1<<16)

	before := a.Stats()
	ref, err := a.Alloc(64)
	require.NoError(t, err)
	require.NoError(t, a.Free(ref, 64))

	after := a.Stats()
	assert.Equal(t, before.Allocs+1, after.Allocs)
	assert.Equal(t, before.Frees+1, after.Frees)
	assert.Equal(t, uintptr(1<<16), after.Size)
	assert.Greater(t, after.Used, before.Used)
}

// TestAlloc_ConcurrentDisjoint tests that concurrent fast-path allocations
// hand out disjoint blocks.
func TestAlloc_ConcurrentDisjoint(t *testing.T) {
	a := newTestArena(t, 1<<20)

	const workers = 8
	const perWorker = 200
	refs := make([][]Ref, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ref, err := a.Alloc(64)
				if err != nil {
					t.Error(err)
					return
				}
				refs[w] = append(refs[w], ref)
			}
		}()
	}
	wg.Wait()

	seen := make(map[Ref]bool)
	for _, rs := range refs {
		for _, r := range rs {
			require.False(t, seen[r], "block %d handed out twice", r)
			seen[r] = true
		}
	}
	require.Len(t, seen, workers*perWorker)
}

// TestWordAt_RoundTrip tests the word accessors the default class
// accessor is built on.
func TestWordAt_RoundTrip(t *testing.T) {
	a := newTestArena(t, 1<<12)

	ref, err := a.Alloc(16)
	require.NoError(t, err)

	a.SetWordAt(ref, Ref(0xC0FFEE))
	assert.Equal(t, Ref(0xC0FFEE), a.WordAt(ref))
}

// TestWordAt_OutOfRangePanics tests that a bad word reference is fatal.
func TestWordAt_OutOfRangePanics(t *testing.T) {
	a := newTestArena(t, 1<<12)

	require.Panics(t, func() { a.WordAt(RefNil) })
	require.Panics(t, func() { a.WordAt(Ref(1 << 12)) })
}
