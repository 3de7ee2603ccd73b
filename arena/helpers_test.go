package arena

import "testing"

// Stub format methods. Package-level named functions so Describe output
// carries recognizable identities.

func stubScan(base, limit Ref) error { return nil }
func stubSkip(obj Ref) Ref           { return obj }
func stubMove(obj, to Ref)           {}
func stubIsMoved(obj Ref) Ref        { return RefNil }
func stubCopy(obj, to Ref)           {}
func stubPad(at Ref, size uintptr)   {}
func stubClass(obj Ref) Ref          { return obj }

// stubMethods returns a full required table with no class accessor.
func stubMethods() Methods {
	return Methods{
		Scan:    stubScan,
		Skip:    stubSkip,
		Move:    stubMove,
		IsMoved: stubIsMoved,
		Copy:    stubCopy,
		Pad:     stubPad,
	}
}

// newTestArena creates an arena and closes it at test cleanup, destroying
// any formats the test left behind.
func newTestArena(t *testing.T, size int) *Arena {
	t.Helper()
	a, err := New(&Config{Size: size})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if !a.Valid() {
			return
		}
		var leftover []*Format
		a.FormatsDo(func(f *Format) bool {
			leftover = append(leftover, f)
			return true
		})
		for _, f := range leftover {
			f.Destroy()
		}
		if err := a.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return a
}

// ringSerials collects the serial numbers of the arena's live formats in
// ring order.
func ringSerials(a *Arena) []uint64 {
	var out []uint64
	a.FormatsDo(func(f *Format) bool {
		out = append(out, f.serial)
		return true
	})
	return out
}
