package arena

import (
	"fmt"
	"unsafe"
)

// Variety says how objects under a format expose their dynamic type.
type Variety uint8

const (
	// VarietyA objects carry no type pointer discoverable by a generic
	// accessor; a format may omit Class and gets the default first-word
	// accessor.
	VarietyA Variety = iota + 1

	// VarietyB objects supply their own class accessor; Class is
	// required.
	VarietyB
)

func (v Variety) String() string {
	switch v {
	case VarietyA:
		return "A"
	case VarietyB:
		return "B"
	default:
		return fmt.Sprintf("variety(%d)", uint8(v))
	}
}

// Align is a byte alignment. Valid alignments are powers of two up to
// MaxAlign.
type Align uintptr

// MaxAlign is the largest alignment a format may require.
const MaxAlign Align = 4096

func (al Align) valid() bool {
	return al != 0 && al&(al-1) == 0 && al <= MaxAlign
}

// Method types of the format table. The collector, holding the arena lock,
// invokes exactly one of these per object during a pass. Implementations
// may re-enter the manager only through recursive-category operations.
type (
	// ScanMethod enumerates the references inside every object in
	// [base, limit).
	ScanMethod func(base, limit Ref) error

	// SkipMethod returns the address one past the object at obj.
	SkipMethod func(obj Ref) Ref

	// MoveMethod records that the object at obj has been relocated to
	// to. Retained for compatibility with older clients; relocation
	// bookkeeping normally runs through IsMoved.
	MoveMethod func(obj, to Ref)

	// IsMovedMethod returns the forwarding address of obj, or RefNil if
	// the object has not been relocated.
	IsMovedMethod func(obj Ref) Ref

	// CopyMethod copies the object at obj to to.
	CopyMethod func(obj, to Ref)

	// PadMethod writes a filler object of size bytes at at.
	PadMethod func(at Ref, size uintptr)

	// ClassMethod resolves the dynamic type of the object at obj.
	ClassMethod func(obj Ref) Ref
)

// Methods is a format's method table. All slots except Class are required.
// The table is immutable once the format is created; concurrent reads need
// no synchronization beyond the arena lock the collector already holds.
type Methods struct {
	Scan    ScanMethod
	Skip    SkipMethod
	Move    MoveMethod
	IsMoved IsMovedMethod
	Copy    CopyMethod
	Pad     PadMethod
	Class   ClassMethod // optional for VarietyA; required for VarietyB
}

// check validates the table for the given variety at construction time.
func (m Methods) check(v Variety) error {
	required := []struct {
		slot string
		ok   bool
	}{
		{"Scan", m.Scan != nil},
		{"Skip", m.Skip != nil},
		{"Move", m.Move != nil},
		{"IsMoved", m.IsMoved != nil},
		{"Copy", m.Copy != nil},
		{"Pad", m.Pad != nil},
	}
	for _, r := range required {
		if !r.ok {
			return fmt.Errorf("%w (%s)", ErrNilMethod, r.slot)
		}
	}
	if m.Class == nil && v != VarietyA {
		return ErrClassRequired
	}
	return nil
}

// Format is one client-supplied object-layout contract, bound to exactly
// one arena for its entire lifetime. All fields are immutable after
// creation; only the ring linkage and the signature change, both under the
// arena lock.
type Format struct {
	sig     sig
	serial  uint64
	arena   *Arena
	node    ringNode[*Format]
	block   Ref // the format's block in the arena's reservation
	align   Align
	variety Variety
	methods Methods
}

const formatStructSize = unsafe.Sizeof(Format{})

// NewFormat creates a format on the arena from an alignment, a variety,
// and a method table. Category: entry.
//
// Construction is all-or-nothing: parameter validation happens before any
// lock is claimed, allocation failure returns ErrNoSpace with no partial
// state, and the format is linked onto the arena's ring only after it
// passes full validation. On success the format is immediately visible to
// FormatsDo and passes Check.
func (a *Arena) NewFormat(align Align, variety Variety, m Methods) (*Format, error) {
	if !align.valid() {
		return nil, ErrBadAlign
	}
	if variety != VarietyA && variety != VarietyB {
		return nil, ErrBadVariety
	}
	if err := m.check(variety); err != nil {
		return nil, err
	}
	mustArena(a)

	a.enter()
	defer a.leave()

	bsize, class := blockClass(formatStructSize)
	block, err := a.allocLocked(bsize, class)
	if err != nil {
		return nil, err
	}

	f := &Format{
		arena:   a,
		block:   block,
		align:   align,
		variety: variety,
		methods: m,
	}
	f.node.init()
	f.node.owner = f
	if f.methods.Class == nil {
		f.methods.Class = a.firstWordClass
	}
	f.sig = sigFormat
	f.serial = a.formatSerial
	a.formatSerial++

	mustFormat(f)

	f.node.appendTo(&a.formatRing)
	return f, nil
}

// firstWordClass is the default VarietyA class accessor: the object's type
// is the word stored at its first word.
func (a *Arena) firstWordClass(obj Ref) Ref {
	return a.WordAt(obj)
}

// Destroy unlinks the format from its arena's ring, invalidates its
// signature so any later use is detected, and returns its block to the
// arena. Category: entry. Destroy cannot fail once the format validates;
// validating a destroyed format is a fatal client error.
func (f *Format) Destroy() {
	mustFormatSig(f)
	a := f.arena

	a.enter()
	defer a.leave()

	mustFormat(f)

	// Unlink, then invalidate, then free: a traversal serialized behind
	// this critical section sees the format fully linked or not at all.
	f.node.remove()
	f.sig = sigInvalid
	_, class := blockClass(formatStructSize)
	a.freeLocked(f.block, class)
}

// Arena returns the owning arena. Category: lock-free — it reads only the
// owning-arena field, which is fixed at construction, so it is safe on any
// handle at any time without validation. Any lock-claiming implementation
// would need the owning arena to pick a lock in the first place.
func (f *Format) Arena() *Arena {
	return f.arena
}

// Serial returns the format's serial number, unique and strictly
// increasing within its arena. Lock-free: immutable after creation.
func (f *Format) Serial() uint64 {
	return f.serial
}

// Align returns the format's object alignment. Lock-free.
func (f *Format) Align() Align {
	return f.align
}

// Variety returns the format's variety. Lock-free.
func (f *Format) Variety() Variety {
	return f.variety
}

// Methods returns a copy of the format's method table, with the default
// class accessor substituted where one was omitted. Lock-free: the table
// is immutable after creation.
func (f *Format) Methods() Methods {
	return f.methods
}

// Check runs full validation and returns the first failed invariant, or
// nil. A destroyed format fails on its signature before any lock is
// claimed. Category: recursive.
func (f *Format) Check() error {
	if !f.Valid() {
		return violation("Format", "sig is the format signature", nil)
	}
	a := f.arena
	if !a.Valid() {
		return violation("Format", "owning arena is valid",
			map[string]any{"serial": f.serial})
	}
	a.enterRecursive()
	defer a.leaveRecursive()
	return f.checkInvariants()
}

// checkInvariants validates every invariant of a live format. Caller holds
// the arena lock.
func (f *Format) checkInvariants() error {
	details := map[string]any{"serial": f.serial}
	if f.arena != nil {
		details["arena"] = f.arena.serial
	}
	switch {
	case f.sig != sigFormat:
		return violation("Format", "sig is the format signature", details)
	case !f.arena.Valid():
		return violation("Format", "owning arena is valid", details)
	case f.serial >= f.arena.formatSerial:
		details["arenaFormatSerial"] = f.arena.formatSerial
		return violation("Format", "serial < arena format counter", details)
	case f.variety != VarietyA && f.variety != VarietyB:
		return violation("Format", "variety is A or B", details)
	case !f.node.sound():
		return violation("Format", "ring linkage is structurally sound", details)
	case !f.align.valid():
		details["alignment"] = f.align
		return violation("Format", "alignment is a valid power of two", details)
	case f.methods.Scan == nil, f.methods.Skip == nil, f.methods.Move == nil,
		f.methods.IsMoved == nil, f.methods.Copy == nil, f.methods.Pad == nil,
		f.methods.Class == nil:
		return violation("Format", "every method slot is callable", details)
	case f.block == RefNil || !f.arena.validBlock(f.block, formatStructSize):
		return violation("Format", "block lies within the arena reservation", details)
	}
	return nil
}
