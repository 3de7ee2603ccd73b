package arena

import (
	"fmt"
	"io"
	"reflect"
	"runtime"
)

// funcName resolves a method slot to its function name for diagnostics,
// falling back to the raw code pointer.
func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return "<nil>"
	}
	pc := v.Pointer()
	if rf := runtime.FuncForPC(pc); rf != nil {
		return rf.Name()
	}
	return fmt.Sprintf("0x%x", pc)
}

// Describe writes a human-readable dump of the format to w: a
// header/footer pair identifying the format by serial, framing one labeled
// line per field. Category: recursive, so diagnostic dumps work from
// inside a collection pass as well as from client threads.
//
// The first write error is returned immediately; no further lines are
// written after a failure. I/O failure is the only recoverable error this
// subsystem surfaces.
func (f *Format) Describe(w io.Writer) error {
	mustFormatSig(f)
	a := f.arena
	a.enterRecursive()
	defer a.leaveRecursive()

	lines := []struct {
		label string
		value any
	}{
		{"arena", fmt.Sprintf("%d", a.serial)},
		{"alignment", uintptr(f.align)},
		{"variety", f.variety},
		{"scan", funcName(f.methods.Scan)},
		{"skip", funcName(f.methods.Skip)},
		{"move", funcName(f.methods.Move)},
		{"isMoved", funcName(f.methods.IsMoved)},
		{"copy", funcName(f.methods.Copy)},
		{"pad", funcName(f.methods.Pad)},
		{"class", funcName(f.methods.Class)},
	}

	if _, err := fmt.Fprintf(w, "Format %d {\n", f.serial); err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "  %s %v\n", l.label, l.value); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "} Format %d\n", f.serial); err != nil {
		return err
	}
	return nil
}

// Describe writes a human-readable dump of the arena and the serials of
// its live formats to w. Category: recursive.
func (a *Arena) Describe(w io.Writer) error {
	mustArena(a)
	a.enterRecursive()
	defer a.leaveRecursive()

	if _, err := fmt.Fprintf(w, "Arena %d {\n", a.serial); err != nil {
		return err
	}
	st := a.Stats()
	if _, err := fmt.Fprintf(w, "  size %d\n  used %d\n  allocs %d\n  frees %d\n",
		st.Size, st.Used, st.Allocs, st.Frees); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  formatSerial %d\n", a.formatSerial); err != nil {
		return err
	}
	var werr error
	a.formatRing.do(func(f *Format) bool {
		_, werr = fmt.Fprintf(w, "  format %d\n", f.serial)
		return werr == nil
	})
	if werr != nil {
		return werr
	}
	if _, err := fmt.Fprintf(w, "} Arena %d\n", a.serial); err != nil {
		return err
	}
	return nil
}
