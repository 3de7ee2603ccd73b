package arena

import "errors"

var (
	// ErrNoSpace indicates that no free block large enough was found in
	// the arena's reservation.
	ErrNoSpace = errors.New("arena: no free block large enough")

	// ErrBadSize indicates a zero or over-large block size.
	ErrBadSize = errors.New("arena: bad block size")

	// ErrBadRef indicates an invalid or out-of-bounds block reference.
	ErrBadRef = errors.New("arena: bad block reference")

	// ErrBadAlign indicates an alignment that is zero, not a power of
	// two, or above MaxAlign.
	ErrBadAlign = errors.New("arena: alignment must be a power of two not above MaxAlign")

	// ErrBadVariety indicates a variety other than VarietyA or VarietyB.
	ErrBadVariety = errors.New("arena: unknown format variety")

	// ErrNilMethod indicates a required format method slot left nil.
	ErrNilMethod = errors.New("arena: format method slot must be non-nil")

	// ErrClassRequired indicates a VarietyB format constructed without a
	// class accessor. There is no default for VarietyB.
	ErrClassRequired = errors.New("arena: variety B format requires a class accessor")

	// ErrFormatsLive indicates Close was called while formats are still
	// registered with the arena.
	ErrFormatsLive = errors.New("arena: close with live formats")

	// ErrClassExists indicates a duplicate name in the class table.
	ErrClassExists = errors.New("arena: class name already registered")

	// ErrUnknownClass indicates a class-table lookup miss.
	ErrUnknownClass = errors.New("arena: unknown class name")

	// ErrBadClassName indicates an empty class name.
	ErrBadClassName = errors.New("arena: class name must be non-empty")
)
