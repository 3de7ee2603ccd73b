package arena

import (
	"math/bits"
	"unsafe"
)

// Ref is an address within an arena's reservation, represented as a byte
// offset. RefNil is never allocated.
type Ref uintptr

// RefNil is the nil reference.
const RefNil Ref = 0

const (
	wordSize = unsafe.Sizeof(uintptr(0))

	// minBlock is the smallest block the allocator hands out. Offset 0
	// up to minBlock is reserved so RefNil stays unallocated.
	minBlock    = 16
	minBlockLog = 4

	// maxBlock caps a single block at 64 MiB.
	maxBlock = 1 << 26

	// maxBlockAlign caps the natural alignment of large blocks.
	maxBlockAlign = 4096

	numClasses = 26 - minBlockLog + 1
)

// blockClass rounds size up to its power-of-two block size and returns it
// with its free-list class index, or (0, -1) if the size is unservable.
func blockClass(size uintptr) (uintptr, int) {
	if size == 0 || size > maxBlock {
		return 0, -1
	}
	if size < minBlock {
		size = minBlock
	}
	lg := bits.Len64(uint64(size - 1))
	return 1 << lg, lg - minBlockLog
}

// blockAlign returns the alignment a block of the given size is placed at:
// its own size, capped at maxBlockAlign. Power-of-two sizes at natural
// alignment satisfy any client alignment up to the cap.
func blockAlign(bsize uintptr) uintptr {
	if bsize > maxBlockAlign {
		return maxBlockAlign
	}
	return bsize
}

func alignUp(x, align uintptr) uintptr {
	return (x + align - 1) &^ (align - 1)
}

// Alloc allocates a block of at least size bytes from the arena's
// reservation and returns its reference. Category: maybe-entry — the fast
// path advances the bump offset with a compare-and-swap and claims no
// lock; only when the bump region is exhausted does Alloc claim the arena
// lock to search the free lists. Freed blocks are therefore reused only
// once the bump region is full.
//
// On exhaustion Alloc returns ErrNoSpace with no side effects; retrying is
// the caller's policy.
func (a *Arena) Alloc(size uintptr) (Ref, error) {
	mustArena(a)
	bsize, class := blockClass(size)
	if class < 0 {
		if size == 0 {
			return RefNil, ErrBadSize
		}
		return RefNil, ErrNoSpace
	}

	// Fast path: bump, no lock.
	for {
		cur := a.bump.Load()
		off := alignUp(cur, blockAlign(bsize))
		end := off + bsize
		if end > a.limit {
			break
		}
		if a.bump.CompareAndSwap(cur, end) {
			a.allocs.Add(1)
			return Ref(off), nil
		}
	}

	// Slow path: free lists, under the arena lock.
	a.enter()
	defer a.leave()
	return a.allocLocked(bsize, class)
}

// allocLocked allocates from the free lists, falling back to the bump
// region. Caller holds the arena lock.
func (a *Arena) allocLocked(bsize uintptr, class int) (Ref, error) {
	if head := a.freeHeads[class]; head != RefNil {
		a.freeHeads[class] = a.wordAt(head)
		a.allocs.Add(1)
		return head, nil
	}
	for {
		cur := a.bump.Load()
		off := alignUp(cur, blockAlign(bsize))
		end := off + bsize
		if end > a.limit {
			return RefNil, ErrNoSpace
		}
		if a.bump.CompareAndSwap(cur, end) {
			a.allocs.Add(1)
			return Ref(off), nil
		}
	}
}

// Free returns the block at ref, previously allocated with size bytes, to
// the arena. Category: entry.
func (a *Arena) Free(ref Ref, size uintptr) error {
	mustArena(a)
	bsize, class := blockClass(size)
	if class < 0 {
		return ErrBadSize
	}
	if !a.validBlock(ref, bsize) {
		return ErrBadRef
	}
	a.enter()
	defer a.leave()
	a.freeLocked(ref, class)
	return nil
}

// freeLocked pushes a block onto its class free list, threading the list
// through the block's first word. Caller holds the arena lock.
func (a *Arena) freeLocked(ref Ref, class int) {
	a.setWordAt(ref, a.freeHeads[class])
	a.freeHeads[class] = ref
	a.frees.Add(1)
}

func (a *Arena) validBlock(ref Ref, bsize uintptr) bool {
	return ref >= minBlock &&
		uintptr(ref)%wordSize == 0 &&
		uintptr(ref)+bsize <= a.limit
}

// WordAt returns the word stored at ref. Lock-free by client obligation:
// the caller must ensure ref addresses memory it owns and that no other
// goroutine is mutating that word. The default VarietyA class accessor is
// built on WordAt. An out-of-range ref is a fatal programming error.
func (a *Arena) WordAt(ref Ref) Ref {
	mustArena(a)
	a.checkWordRef(ref)
	return a.wordAt(ref)
}

// SetWordAt stores w at ref. Same client obligations as WordAt.
func (a *Arena) SetWordAt(ref Ref, w Ref) {
	mustArena(a)
	a.checkWordRef(ref)
	a.setWordAt(ref, w)
}

func (a *Arena) checkWordRef(ref Ref) {
	if ref == RefNil || uintptr(ref)%wordSize != 0 || uintptr(ref)+wordSize > a.limit {
		panic(violation("Arena", "ref addresses a word within the reservation",
			map[string]any{"serial": a.serial, "ref": ref}))
	}
}

func (a *Arena) wordAt(ref Ref) Ref {
	return *(*Ref)(unsafe.Pointer(&a.data[ref]))
}

func (a *Arena) setWordAt(ref Ref, w Ref) {
	*(*Ref)(unsafe.Pointer(&a.data[ref])) = w
}
