package arena

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFormat_CreateValidates tests the spec scenario: create, validate,
// serial assignment, ring membership, destroy in order.
func TestFormat_CreateValidates(t *testing.T) {
	a := newTestArena(t, 1<<16)

	f1, err := a.NewFormat(8, VarietyA, stubMethods())
	require.NoError(t, err)
	require.NoError(t, f1.Check(), "fresh format must pass full validation")
	assert.Equal(t, uint64(0), f1.Serial())
	assert.Same(t, a, f1.Arena())
	assert.Equal(t, Align(8), f1.Align())
	assert.Equal(t, VarietyA, f1.Variety())

	f2, err := a.NewFormat(8, VarietyA, stubMethods())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), f2.Serial())

	f1.Destroy()
	assert.Equal(t, []uint64{1}, ringSerials(a), "ring should contain exactly f2")

	f2.Destroy()
	assert.Empty(t, ringSerials(a), "ring should be empty after all destroys")
	assert.Equal(t, 0, a.FormatCount())
}

// TestFormat_VisibleImmediately tests the creation postcondition: the new
// format shows up in ring traversal right away.
func TestFormat_VisibleImmediately(t *testing.T) {
	a := newTestArena(t, 1<<16)

	f, err := a.NewFormat(16, VarietyA, stubMethods())
	require.NoError(t, err)

	seen := false
	a.FormatsDo(func(g *Format) bool {
		seen = seen || g == f
		return true
	})
	assert.True(t, seen)
}

// TestFormat_SerialsNeverRepeat tests strictly increasing serials across
// interleaved create/destroy sequences.
func TestFormat_SerialsNeverRepeat(t *testing.T) {
	a := newTestArena(t, 1<<16)

	issued := make(map[uint64]bool)
	var last uint64
	first := true
	for i := 0; i < 20; i++ {
		f, err := a.NewFormat(8, VarietyA, stubMethods())
		require.NoError(t, err)
		s := f.Serial()
		require.False(t, issued[s], "serial %d issued twice", s)
		if !first {
			require.Greater(t, s, last)
		}
		issued[s] = true
		last = s
		first = false
		if i%2 == 0 {
			f.Destroy()
		}
	}
}

// TestFormat_DefaultClassAccessor tests that VarietyA with a nil Class
// slot gets the first-word accessor.
func TestFormat_DefaultClassAccessor(t *testing.T) {
	a := newTestArena(t, 1<<16)

	f, err := a.NewFormat(8, VarietyA, stubMethods())
	require.NoError(t, err)

	obj, err := a.Alloc(32)
	require.NoError(t, err)
	a.SetWordAt(obj, Ref(0xBEEF))

	m := f.Methods()
	require.NotNil(t, m.Class, "a default accessor must be substituted")
	assert.Equal(t, Ref(0xBEEF), m.Class(obj),
		"default accessor returns the word at the object's first word")
}

// TestFormat_ExplicitClassKept tests that a supplied accessor is not
// replaced.
func TestFormat_ExplicitClassKept(t *testing.T) {
	a := newTestArena(t, 1<<16)

	m := stubMethods()
	m.Class = stubClass
	f, err := a.NewFormat(8, VarietyB, m)
	require.NoError(t, err)

	got := f.Methods()
	assert.Equal(t, Ref(7), got.Class(Ref(7)), "stubClass echoes its argument")
}

// TestFormat_VarietyBRequiresClass tests the input-validation rule: no
// silent default for VarietyB.
func TestFormat_VarietyBRequiresClass(t *testing.T) {
	a := newTestArena(t, 1<<16)

	_, err := a.NewFormat(8, VarietyB, stubMethods())
	require.ErrorIs(t, err, ErrClassRequired)
	assert.Equal(t, 0, a.FormatCount(), "failed creation leaves no partial state")
}

// TestFormat_ParameterValidation tests rejection of bad alignment, bad
// variety, and missing method slots, all without side effects.
func TestFormat_ParameterValidation(t *testing.T) {
	a := newTestArena(t, 1<<16)

	cases := []struct {
		name    string
		align   Align
		variety Variety
		mutate  func(*Methods)
		wantErr error
	}{
		{"zero alignment", 0, VarietyA, nil, ErrBadAlign},
		{"non power of two", 24, VarietyA, nil, ErrBadAlign},
		{"above max", MaxAlign * 2, VarietyA, nil, ErrBadAlign},
		{"unknown variety", 8, Variety(9), nil, ErrBadVariety},
		{"nil scan", 8, VarietyA, func(m *Methods) { m.Scan = nil }, ErrNilMethod},
		{"nil skip", 8, VarietyA, func(m *Methods) { m.Skip = nil }, ErrNilMethod},
		{"nil move", 8, VarietyA, func(m *Methods) { m.Move = nil }, ErrNilMethod},
		{"nil isMoved", 8, VarietyA, func(m *Methods) { m.IsMoved = nil }, ErrNilMethod},
		{"nil copy", 8, VarietyA, func(m *Methods) { m.Copy = nil }, ErrNilMethod},
		{"nil pad", 8, VarietyA, func(m *Methods) { m.Pad = nil }, ErrNilMethod},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := stubMethods()
			if tc.mutate != nil {
				tc.mutate(&m)
			}
			_, err := a.NewFormat(tc.align, tc.variety, m)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr), "got %v, want %v", err, tc.wantErr)
		})
	}
	assert.Equal(t, 0, a.FormatCount())
}

// TestFormat_UseAfterDestroy tests that a destroyed format is detectably
// invalid, never silently valid.
func TestFormat_UseAfterDestroy(t *testing.T) {
	a := newTestArena(t, 1<<16)

	f, err := a.NewFormat(8, VarietyA, stubMethods())
	require.NoError(t, err)
	f.Destroy()

	assert.False(t, f.Valid(), "signature must be invalidated")
	require.Error(t, f.Check())

	var ce *CheckError
	require.ErrorAs(t, f.Check(), &ce)
	assert.Equal(t, "Format", ce.Struct)

	require.Panics(t, func() { f.Destroy() }, "double destroy is fatal")
	require.Panics(t, func() { f.Describe(nilWriter{}) })
}

// TestFormat_ArenaAccessorOnDestroyed tests the lock-free accessor
// contract: Arena() stays safe even on a destroyed handle.
func TestFormat_ArenaAccessorOnDestroyed(t *testing.T) {
	a := newTestArena(t, 1<<16)

	f, err := a.NewFormat(8, VarietyA, stubMethods())
	require.NoError(t, err)
	f.Destroy()

	assert.Same(t, a, f.Arena())
}

// TestFormat_CreationExhaustion tests ErrNoSpace from a full arena with
// no partial ring linkage.
func TestFormat_CreationExhaustion(t *testing.T) {
	a := newTestArena(t, 4096)

	created := 0
	for {
		_, err := a.NewFormat(8, VarietyA, stubMethods())
		if err != nil {
			require.ErrorIs(t, err, ErrNoSpace)
			break
		}
		created++
		require.Less(t, created, 4096, "exhaustion must eventually occur")
	}
	require.Positive(t, created)
	assert.Equal(t, created, a.FormatCount(), "failed creation must not touch the ring")
}

// TestFormat_DestroyReturnsBlock tests that destroying a format lets a
// full arena create another one.
func TestFormat_DestroyReturnsBlock(t *testing.T) {
	a := newTestArena(t, 4096)

	var formats []*Format
	for {
		f, err := a.NewFormat(8, VarietyA, stubMethods())
		if err != nil {
			break
		}
		formats = append(formats, f)
	}
	require.NotEmpty(t, formats)

	formats[0].Destroy()
	f, err := a.NewFormat(8, VarietyA, stubMethods())
	require.NoError(t, err, "freed format block should be reusable")
	require.NoError(t, f.Check())
}

type nilWriter struct{}

func (nilWriter) Write(p []byte) (int, error) { return len(p), nil }
