package arena

// Class is a named, reusable format definition. Registering a class once
// and instantiating it per arena keeps method tables in one place for
// clients that create the same layout in many arenas.
type Class struct {
	Align   Align
	Variety Variety
	Methods Methods
}

// The class table is initialize-at-most-once shared state: built lazily on
// first use under the global recursive lock, guarded by an explicit flag
// checked under that lock. No lock-free fast path; the concurrency model
// stays uniform with the rest of the subsystem.
var (
	classesInit bool
	classes     map[string]Class
)

// ensureClassesLocked builds the table on first use. Caller holds the
// global once lock.
func ensureClassesLocked() {
	if !classesInit {
		classes = make(map[string]Class)
		classesInit = true
	}
}

// RegisterClass adds a named format definition to the process-wide class
// table. The definition is validated exactly as NewFormat validates its
// parameters, so instantiation cannot fail on the definition later. A
// duplicate name fails with ErrClassExists.
func RegisterClass(name string, c Class) error {
	if name == "" {
		return ErrBadClassName
	}
	if !c.Align.valid() {
		return ErrBadAlign
	}
	if c.Variety != VarietyA && c.Variety != VarietyB {
		return ErrBadVariety
	}
	if err := c.Methods.check(c.Variety); err != nil {
		return err
	}

	globalOnce.Claim()
	defer globalOnce.Release()
	ensureClassesLocked()
	if _, dup := classes[name]; dup {
		return ErrClassExists
	}
	classes[name] = c
	return nil
}

// LookupClass returns the definition registered under name. The global
// once lock may be claimed while an arena lock is held, so lookups are
// legal from inside format methods running under a collection pass.
func LookupClass(name string) (Class, bool) {
	globalOnce.Claim()
	defer globalOnce.Release()
	ensureClassesLocked()
	c, ok := classes[name]
	return c, ok
}

// NewFormatFromClass instantiates the named class on the arena. The class
// lookup completes before the arena lock is claimed, so no lock nesting
// occurs. Category: entry.
func (a *Arena) NewFormatFromClass(name string) (*Format, error) {
	c, ok := LookupClass(name)
	if !ok {
		return nil, ErrUnknownClass
	}
	return a.NewFormat(c.Align, c.Variety, c.Methods)
}
