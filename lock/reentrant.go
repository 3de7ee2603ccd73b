package lock

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// Reentrant is a mutual-exclusion lock with an explicit owner goroutine and
// claim depth. The owner may claim it again without blocking; each claim
// must be matched by exactly one Release. The first claim and the final
// release cross the underlying mutex; nested claims only adjust the depth
// counter, so reentry cost and depth stay observable.
//
// The zero value is not usable; construct with NewReentrant.
type Reentrant struct {
	tracked
	mu    sync.Mutex
	owner atomic.Int64 // goroutine id of the holder, 0 when free
	depth int          // claims minus releases; touched only by the owner
}

// NewReentrant returns a Reentrant with the given rank and diagnostic name.
func NewReentrant(rank Rank, name string) *Reentrant {
	return &Reentrant{tracked: tracked{rank: rank, name: name}}
}

// Claim acquires the lock for recursive-category callers. If the calling
// goroutine already holds the lock the depth is incremented and Claim
// returns immediately; otherwise it behaves like an entry claim, blocking
// while another goroutine holds the lock. Rank-order violations panic.
func (r *Reentrant) Claim() {
	gid := goid.Get()
	if r.owner.Load() == gid {
		r.depth++
		tracef("reclaim %s g%d depth=%d", r.label(), gid, r.depth)
		return
	}
	checkClaim(gid, &r.tracked)
	r.mu.Lock()
	r.owner.Store(gid)
	r.depth = 1
	tracef("claim %s g%d", r.label(), gid)
}

// ClaimEntry acquires the lock for entry-category callers, which must not
// already hold it. A claim by the current holder panics with a diagnostic;
// otherwise ClaimEntry behaves like Claim.
func (r *Reentrant) ClaimEntry() {
	gid := goid.Get()
	if r.owner.Load() == gid {
		panic(&OrderError{
			Goroutine: gid,
			Claiming:  r.label(),
			Holding:   []string{r.label()},
			Rule:      "an entry-category operation may not be called with the lock held",
		})
	}
	r.Claim()
}

// Release undoes one claim. The final release transfers ownership away and
// unlocks the underlying mutex. Only the holder may release.
func (r *Reentrant) Release() {
	gid := goid.Get()
	if r.owner.Load() != gid {
		panic(fmt.Sprintf("lock: release of %s by goroutine %d which does not hold it", r.label(), gid))
	}
	r.depth--
	if r.depth > 0 {
		tracef("unclaim %s g%d depth=%d", r.label(), gid, r.depth)
		return
	}
	tracef("release %s g%d", r.label(), gid)
	noteRelease(gid, &r.tracked)
	r.owner.Store(0)
	r.mu.Unlock()
}

// HeldByCaller reports whether the calling goroutine holds the lock.
func (r *Reentrant) HeldByCaller() bool {
	return r.owner.Load() == goid.Get()
}

// Depth returns the current claim depth as seen by the holder. It is only
// meaningful when called by the holding goroutine; other callers see 0.
func (r *Reentrant) Depth() int {
	if !r.HeldByCaller() {
		return 0
	}
	return r.depth
}
