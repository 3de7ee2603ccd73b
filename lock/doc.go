// Package lock provides the locking primitives and the lock-order validator
// for the memory manager.
//
// # Lock Kinds
//
// Two lock kinds are provided:
//
//   - Binary: a plain mutual-exclusion lock that records its holder. A
//     goroutine that claims a Binary it already holds is reported as a
//     fatal programming error instead of deadlocking silently.
//
//   - Reentrant: a mutual-exclusion lock with an explicit owner and depth
//     counter. The owning goroutine may claim it again without blocking;
//     each claim must be matched by exactly one release. The depth is
//     observable via Depth for tests and diagnostics.
//
// # Call Categories
//
// Every operation the manager exposes is statically assigned one of four
// locking categories:
//
//   - entry: the caller must NOT already hold the arena lock. The
//     operation claims it on entry and releases it on every exit path.
//     Use ClaimEntry on a Reentrant lock to assert the precondition.
//   - recursive: may be called with the arena lock already held, for
//     example from inside a format method invoked during collection.
//     Use Claim on a Reentrant lock; a re-claim by the holder never blocks.
//   - lock-free: never touches a lock; safety comes from field
//     immutability or a documented client obligation.
//   - maybe-entry: the fast path claims no lock; only the slow path
//     behaves like entry.
//
// # Rank Ordering
//
// Deadlock between manager locks is prevented statically by ranks, checked
// at runtime per goroutine:
//
//   - RankGlobalShared (the global binary lock) is outermost: while it is
//     held no other manager lock may be claimed, and it may not be claimed
//     while any other manager lock is held.
//   - RankArena: a goroutine holds at most one arena lock at a time, and
//     may not claim one while holding the global recursive lock.
//   - RankGlobalOnce (the global recursive lock) is innermost: it may be
//     claimed while an arena lock is held, but nothing outranking it may
//     be claimed while it is held.
//
// A violation panics with an *OrderError naming the offending claim and
// the locks currently held. There is no timeout or runtime deadlock
// detection; the ordering rule is the only avoidance mechanism.
//
// Set MEMKIT_LOCK_TRACE=1 to log every claim and release to stderr.
package lock
