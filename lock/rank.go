package lock

import (
	"fmt"
	"strings"
	"sync"
)

// Rank identifies a lock's position in the manager-wide acquisition order.
// See the package documentation for the full ordering rule.
type Rank uint8

const (
	// RankGlobalShared orders the global binary lock guarding state
	// mutated across arenas (the set of all arenas). Outermost.
	RankGlobalShared Rank = iota + 1

	// RankArena orders the per-arena lock. At most one per goroutine.
	RankArena

	// RankGlobalOnce orders the global recursive lock guarding
	// initialize-at-most-once static state. Innermost.
	RankGlobalOnce
)

// String returns the rank name used in diagnostics.
func (r Rank) String() string {
	switch r {
	case RankGlobalShared:
		return "global-shared"
	case RankArena:
		return "arena"
	case RankGlobalOnce:
		return "global-once"
	default:
		return fmt.Sprintf("rank(%d)", uint8(r))
	}
}

// tracked is the identity every lock carries for order validation.
type tracked struct {
	rank Rank
	name string
}

func (t *tracked) label() string {
	return fmt.Sprintf("%s[%s]", t.name, t.rank)
}

// OrderError reports a claim that would violate the lock-ordering rule.
// It is the panic value raised by Claim/ClaimEntry on a violation.
type OrderError struct {
	// Goroutine is the id of the goroutine that attempted the claim.
	Goroutine int64
	// Claiming names the lock whose claim was rejected.
	Claiming string
	// Holding names the locks the goroutine held at the time, in
	// acquisition order.
	Holding []string
	// Rule is the ordering rule that was violated.
	Rule string
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("lock: ordering violation on goroutine %d: claiming %s while holding [%s]: %s",
		e.Goroutine, e.Claiming, strings.Join(e.Holding, ", "), e.Rule)
}

// held tracks, per goroutine, the manager locks currently held in
// acquisition order. Claims and releases of the same lock are matched by
// identity, so reentrant re-claims never reach this table (the Reentrant
// fast path handles them first).
var held = struct {
	mu  sync.Mutex
	byG map[int64][]*tracked
}{byG: make(map[int64][]*tracked)}

// checkClaim validates a claim of l by goroutine gid against the ordering
// rule and records it. Panics with *OrderError on violation.
func checkClaim(gid int64, l *tracked) {
	held.mu.Lock()
	defer held.mu.Unlock()

	stack := held.byG[gid]
	for _, h := range stack {
		rule := ""
		switch {
		case l.rank == RankGlobalShared:
			rule = "the global shared lock must be claimed outermost"
		case h.rank == RankGlobalShared:
			rule = "no lock may be claimed while the global shared lock is held"
		case h.rank == RankGlobalOnce && l.rank == RankArena:
			rule = "an arena lock may not be claimed while the global once lock is held"
		case h.rank == RankArena && l.rank == RankArena:
			rule = "a goroutine holds at most one arena lock"
		}
		if rule != "" {
			panic(&OrderError{
				Goroutine: gid,
				Claiming:  l.label(),
				Holding:   labels(stack),
				Rule:      rule,
			})
		}
	}
	held.byG[gid] = append(stack, l)
}

// noteRelease removes the most recent record of l for goroutine gid.
func noteRelease(gid int64, l *tracked) {
	held.mu.Lock()
	defer held.mu.Unlock()

	stack := held.byG[gid]
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == l {
			stack = append(stack[:i], stack[i+1:]...)
			break
		}
	}
	if len(stack) == 0 {
		delete(held.byG, gid)
	} else {
		held.byG[gid] = stack
	}
}

func labels(stack []*tracked) []string {
	out := make([]string, len(stack))
	for i, h := range stack {
		out[i] = h.label()
	}
	return out
}
