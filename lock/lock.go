package lock

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// Trace flag for claim/release logging - controlled by MEMKIT_LOCK_TRACE env var.
var traceLocks = os.Getenv("MEMKIT_LOCK_TRACE") != ""

func tracef(format string, args ...any) {
	if traceLocks {
		fmt.Fprintf(os.Stderr, "lock: "+format+"\n", args...)
	}
}

// Binary is a mutual-exclusion lock for entry-category critical sections.
// It is not reentrant: a goroutine claiming a Binary it already holds is a
// programming error and panics with a diagnostic instead of deadlocking.
//
// The zero value is not usable; construct with NewBinary so the lock
// participates in rank-order validation.
type Binary struct {
	tracked
	mu    sync.Mutex
	owner atomic.Int64 // goroutine id of the holder, 0 when free
}

// NewBinary returns a Binary with the given rank and diagnostic name.
func NewBinary(rank Rank, name string) *Binary {
	return &Binary{tracked: tracked{rank: rank, name: name}}
}

// Claim acquires the lock, blocking while another goroutine holds it.
// Claiming a lock already held by the caller, or in violation of the rank
// ordering, panics.
func (b *Binary) Claim() {
	gid := goid.Get()
	if b.owner.Load() == gid {
		panic(&OrderError{
			Goroutine: gid,
			Claiming:  b.label(),
			Holding:   []string{b.label()},
			Rule:      "a binary lock may not be claimed by its holder",
		})
	}
	checkClaim(gid, &b.tracked)
	b.mu.Lock()
	b.owner.Store(gid)
	tracef("claim %s g%d", b.label(), gid)
}

// Release releases the lock. Only the holder may release; anything else
// panics.
func (b *Binary) Release() {
	gid := goid.Get()
	if b.owner.Load() != gid {
		panic(fmt.Sprintf("lock: release of %s by goroutine %d which does not hold it", b.label(), gid))
	}
	tracef("release %s g%d", b.label(), gid)
	noteRelease(gid, &b.tracked)
	b.owner.Store(0)
	b.mu.Unlock()
}

// HeldByCaller reports whether the calling goroutine holds the lock.
func (b *Binary) HeldByCaller() bool {
	return b.owner.Load() == goid.Get()
}
