package arena

import (
	"fmt"
	"sync/atomic"

	"github.com/memkit/memkit/internal/memfile"
	"github.com/memkit/memkit/lock"
)

// DefaultSize is the default reservation size for new arenas (1 MiB).
const DefaultSize = 1 << 20

// Config controls arena creation.
type Config struct {
	// Size is the reservation size in bytes.
	// Default: DefaultSize
	Size int
}

// Arena is a memory domain: a fixed memory reservation with a block
// allocator over it, the ring of formats registered with it, and its own
// lock. Arenas are independent; operations on different arenas are never
// ordered with respect to each other.
type Arena struct {
	sig     sig
	serial  uint64 // from the global arena counter; immutable
	data    []byte
	release func() error
	lk      *lock.Reentrant
	node    ringNode[*Arena] // membership in the global arena ring

	// Block allocator state. bump is the next unallocated offset and is
	// only ever advanced; freeHeads are guarded by the arena lock.
	bump      atomic.Uintptr
	limit     uintptr
	freeHeads [numClasses]Ref

	// Format registry state, guarded by the arena lock.
	formatSerial uint64
	formatRing   ringNode[*Format]

	allocs atomic.Uint64
	frees  atomic.Uint64
}

// New creates an arena with the given configuration (nil for defaults),
// reserves its memory, and registers it in the global arena ring.
func New(cfg *Config) (*Arena, error) {
	size := DefaultSize
	if cfg != nil && cfg.Size > 0 {
		size = cfg.Size
	}
	data, release, err := memfile.Reserve(size)
	if err != nil {
		return nil, err
	}

	a := &Arena{
		data:    data,
		release: release,
		limit:   uintptr(len(data)),
	}
	// Offset 0 is reserved so RefNil never aliases a real block.
	a.bump.Store(minBlock)
	a.formatRing.init()
	a.node.init()
	a.node.owner = a

	globalShared.Claim()
	a.serial = arenaSerial.Load()
	arenaSerial.Add(1)
	a.lk = lock.NewReentrant(lock.RankArena, fmt.Sprintf("arena.%d", a.serial))
	a.sig = sigArena
	a.node.appendTo(&arenas)
	globalShared.Release()

	return a, nil
}

// Close unregisters the arena and releases its reservation. All formats
// must have been destroyed first; otherwise Close fails with
// ErrFormatsLive and the arena stays usable. Category: entry (plus the
// global shared lock for unregistration). Close must be the handle's last
// use on success.
func (a *Arena) Close() error {
	mustArena(a)
	a.enter()
	if a.formatRing.linked() {
		a.leave()
		return ErrFormatsLive
	}
	a.leave()

	globalShared.Claim()
	a.node.remove()
	globalShared.Release()

	a.sig = sigInvalid
	a.data = nil
	return a.release()
}

// Serial returns the arena's serial number, assigned from the global
// counter at creation. Lock-free: the field is immutable.
func (a *Arena) Serial() uint64 {
	return a.serial
}

// Size returns the reservation size in bytes. Lock-free.
func (a *Arena) Size() uintptr {
	return a.limit
}

// Enter claims the arena lock for an entry-category caller, typically the
// collector at the start of a pass. The caller must not already hold it.
func (a *Arena) Enter() {
	mustArena(a)
	a.lk.ClaimEntry()
}

// Leave releases one claim of the arena lock.
func (a *Arena) Leave() {
	a.lk.Release()
}

// EnterRecursive claims the arena lock for a recursive-category caller: a
// format method re-entering the manager while the collector already holds
// the lock claims it again without blocking.
func (a *Arena) EnterRecursive() {
	mustArena(a)
	a.lk.Claim()
}

// LeaveRecursive releases one recursive claim.
func (a *Arena) LeaveRecursive() {
	a.lk.Release()
}

func (a *Arena) enter() { a.lk.ClaimEntry() }
func (a *Arena) leave() { a.lk.Release() }

func (a *Arena) enterRecursive() { a.lk.Claim() }
func (a *Arena) leaveRecursive() { a.lk.Release() }

// Check runs full validation and returns the first failed invariant, or
// nil. Category: recursive.
func (a *Arena) Check() error {
	if !a.Valid() {
		return violation("Arena", "sig is the arena signature", nil)
	}
	a.enterRecursive()
	defer a.leaveRecursive()
	return a.checkInvariants()
}

// checkInvariants validates the arena. Caller holds the arena lock.
func (a *Arena) checkInvariants() error {
	details := map[string]any{"serial": a.serial}
	switch {
	case a.sig != sigArena:
		return violation("Arena", "sig is the arena signature", details)
	case a.data == nil:
		return violation("Arena", "reservation is live", details)
	case a.serial >= arenaSerial.Load():
		details["arenaSerial"] = arenaSerial.Load()
		return violation("Arena", "serial < global arena counter", details)
	case a.bump.Load() > a.limit:
		details["bump"] = a.bump.Load()
		details["limit"] = a.limit
		return violation("Arena", "bump <= limit", details)
	case !a.formatRing.sound():
		return violation("Arena", "format ring is structurally sound", details)
	case !a.node.sound():
		return violation("Arena", "global ring linkage is structurally sound", details)
	}
	return nil
}

// FormatsDo calls fn for each live format of the arena in creation order,
// stopping early if fn returns false. The arena lock is held for the whole
// traversal; fn may re-enter recursive-category operations on this arena
// but not entry-category ones. Category: recursive.
func (a *Arena) FormatsDo(fn func(*Format) bool) {
	mustArena(a)
	a.enterRecursive()
	defer a.leaveRecursive()
	a.formatRing.do(fn)
}

// FormatCount returns the number of live formats. Category: entry.
func (a *Arena) FormatCount() int {
	mustArena(a)
	a.enter()
	defer a.leave()
	return a.formatRing.length()
}

// Stats is a point-in-time snapshot of the arena's allocator counters.
type Stats struct {
	Size   uintptr // reservation size in bytes
	Used   uintptr // high-water mark of the bump offset
	Allocs uint64  // blocks allocated
	Frees  uint64  // blocks freed
}

// Stats returns allocator counters. Lock-free: all counters are atomics,
// so the snapshot is approximate under concurrent allocation.
func (a *Arena) Stats() Stats {
	return Stats{
		Size:   a.limit,
		Used:   a.bump.Load(),
		Allocs: a.allocs.Load(),
		Frees:  a.frees.Load(),
	}
}
