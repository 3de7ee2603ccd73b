package arena

// sig is the identity tag word embedded in every manager structure. It is
// checked lock-free before any lock claim so that a corrupt, foreign, or
// destroyed handle is caught before it can select a lock to claim.
type sig uint32

const (
	sigArena   sig = 0x519A7E9A
	sigFormat  sig = 0x519F0687
	sigInvalid sig = 0x51915BAD // written on destroy
)

// Valid reports whether a carries a live arena signature. Lock-free; it
// reads only the tag word and never dereferences further.
func (a *Arena) Valid() bool {
	return a != nil && a.sig == sigArena
}

// Valid reports whether f carries a live format signature. Lock-free; a
// destroyed format reports false because Destroy overwrites the tag.
func (f *Format) Valid() bool {
	return f != nil && f.sig == sigFormat
}
