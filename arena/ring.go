package arena

// ringNode is a node of an intrusive circular doubly-linked list. It is
// embedded in the owning structure (a Format on its arena's ring, an Arena
// on the global ring); an anchor node with a zero owner heads each ring.
// All operations are O(1) except traversal; all mutation happens under the
// lock guarding the ring.
type ringNode[T any] struct {
	prev, next *ringNode[T]
	owner      T
}

// init makes r a singleton ring. A removed node is re-initialized so that
// stale linkage is never observable.
func (r *ringNode[T]) init() {
	r.prev = r
	r.next = r
}

// sound reports structural soundness: both links set and the neighbors
// pointing back at r.
func (r *ringNode[T]) sound() bool {
	return r.prev != nil && r.next != nil &&
		r.prev.next == r && r.next.prev == r
}

// linked reports whether r is on a ring with at least one other node.
func (r *ringNode[T]) linked() bool {
	return r.next != r
}

// appendTo inserts r before anchor, i.e. at the tail of anchor's ring.
func (r *ringNode[T]) appendTo(anchor *ringNode[T]) {
	r.prev = anchor.prev
	r.next = anchor
	anchor.prev.next = r
	anchor.prev = r
}

// remove unlinks r from its ring and re-initializes it as a singleton.
func (r *ringNode[T]) remove() {
	r.prev.next = r.next
	r.next.prev = r.prev
	r.init()
}

// do calls fn for each owner on the ring headed by anchor r, stopping early
// if fn returns false. The next link is captured before fn runs, so fn may
// remove the node it is visiting.
func (r *ringNode[T]) do(fn func(T) bool) {
	for n := r.next; n != r; {
		next := n.next
		if !fn(n.owner) {
			return
		}
		n = next
	}
}

// length returns the number of nodes on the ring headed by anchor r.
func (r *ringNode[T]) length() int {
	count := 0
	for n := r.next; n != r; n = n.next {
		count++
	}
	return count
}
