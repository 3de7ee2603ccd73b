package arena

import (
	"fmt"
	"sort"
	"strings"
)

// CheckError describes a failed structural invariant. Invariant violations
// are programming errors, not recoverable conditions: operations that
// detect one panic with a *CheckError rather than continue with corrupted
// state. Check methods return it without panicking so tests and diagnostics
// can inspect the failure.
type CheckError struct {
	// Struct names the structure that failed ("Arena", "Format").
	Struct string
	// Invariant is the condition that did not hold.
	Invariant string
	// Details carries identifying fields (serial numbers, arena serial).
	Details map[string]any
}

func (e *CheckError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("arena: invariant violation in %s: %s", e.Struct, e.Invariant)
	}
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, e.Details[k])
	}
	return fmt.Sprintf("arena: invariant violation in %s: %s (%s)",
		e.Struct, e.Invariant, strings.Join(parts, " "))
}

// violation builds a CheckError. Callers either return it (Check methods)
// or panic with it (internal must* guards).
func violation(structName, invariant string, details map[string]any) *CheckError {
	return &CheckError{Struct: structName, Invariant: invariant, Details: details}
}

// mustArena validates a's signature, lock-free. Fatal on failure; called
// before any lock claim so a bad handle never selects a lock.
func mustArena(a *Arena) {
	if !a.Valid() {
		panic(violation("Arena", "sig is the arena signature", nil))
	}
}

// mustFormatSig validates f's signature, lock-free. Fatal on failure.
// Catches use-after-destroy: Destroy overwrites the tag.
func mustFormatSig(f *Format) {
	if !f.Valid() {
		panic(violation("Format", "sig is the format signature", nil))
	}
}

// mustFormat runs full validation on f. Caller holds the arena lock.
// Fatal on failure.
func mustFormat(f *Format) {
	if err := f.checkInvariants(); err != nil {
		panic(err)
	}
}
