package arena

import (
	"sync/atomic"

	"github.com/memkit/memkit/lock"
)

// Process-global state. The arena ring and counter are mutated across
// arenas and sit under the global binary lock; the class table is
// initialize-at-most-once state under the global recursive lock.
var (
	globalShared = lock.NewBinary(lock.RankGlobalShared, "arena.arenas")
	globalOnce   = lock.NewReentrant(lock.RankGlobalOnce, "arena.classes")

	arenas      ringNode[*Arena]
	arenaSerial atomic.Uint64
)

func init() {
	arenas.init()
}

// ArenasDo calls fn for each live arena in creation order, stopping early
// if fn returns false. The global shared lock is held for the traversal,
// and it is outermost: fn must not claim any manager lock, including the
// arena locks of the arenas it is handed.
func ArenasDo(fn func(*Arena) bool) {
	globalShared.Claim()
	defer globalShared.Release()
	arenas.do(fn)
}

// ArenaCount returns the number of live arenas.
func ArenaCount() int {
	globalShared.Claim()
	defer globalShared.Release()
	return arenas.length()
}
