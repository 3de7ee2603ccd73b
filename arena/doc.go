// Package arena implements memory arenas, the object-format registry bound
// to them, and the locking discipline that governs both.
//
// # Overview
//
// An Arena is a memory domain: a fixed reservation of address space with a
// block allocator over it, a serial counter for formats, and its own lock.
// A Format is a client-supplied description of one object layout — the set
// of callbacks a moving collector needs to measure, scan, relocate, and pad
// objects — registered with exactly one arena for its whole lifetime.
//
// # Formats
//
// A format is created with NewFormat from an alignment, a variety, and a
// method table:
//
//	f, err := a.NewFormat(8, arena.VarietyA, arena.Methods{
//	    Scan:    scan,
//	    Skip:    skip,
//	    Move:    move,
//	    IsMoved: isMoved,
//	    Copy:    copyObj,
//	    Pad:     pad,
//	})
//
// VarietyA objects carry no self-describing header; a nil Class slot is
// replaced by a default accessor that returns the word stored at the
// object's first word. VarietyB objects supply their own Class accessor,
// and a nil slot is rejected at construction.
//
// Live formats are linked on their arena's intrusive ring and are visible
// to FormatsDo the moment NewFormat returns. Destroy unlinks the format,
// invalidates its signature tag, and returns its block to the arena; any
// later use of the handle is detected by the tag and treated as a fatal
// programming error.
//
// # Locking Categories
//
// Every exported operation belongs to one of the four categories defined in
// the lock package: entry (NewFormat, Destroy, Free, FormatCount, Close),
// recursive (Describe, Check, FormatsDo, EnterRecursive), lock-free
// (Format.Arena, Serial, Align, Variety, Methods, Valid, WordAt, Stats),
// and maybe-entry (Alloc, whose fast path is a lock-free bump and whose
// slow path claims the arena lock to search the free lists).
//
// Handle signatures are always validated before any lock is claimed, so a
// corrupt or destroyed handle can never cause a claim on the wrong arena.
//
// # Global State
//
// Arenas register themselves in a process-wide ring guarded by the global
// binary lock (lock.RankGlobalShared). The named class table —
// RegisterClass / LookupClass / NewFormatFromClass — is initialized at most
// once under the global recursive lock (lock.RankGlobalOnce) with an
// explicit initialized flag.
//
// # Errors
//
// Construction failures (exhaustion, bad alignment, missing method slots)
// are ordinary sentinel errors with no side effects. Invariant violations
// and use-after-destroy panic with a *CheckError identifying the failed
// invariant and the structure's serial numbers; Describe is the only
// operation that surfaces I/O errors as recoverable results.
//
// # Related Packages
//
//   - github.com/memkit/memkit/lock: lock kinds, categories, rank ordering
//   - github.com/memkit/memkit/internal/memfile: reservation of the
//     arena's backing memory
package arena
