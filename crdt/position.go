package crdt

// Position is a fractional position identifier: a sequence of
// non-negative integers compared lexicographically, component by
// component. A strict prefix sorts before its longer extension, so the
// space between any two positions is infinitely subdividable.
type Position []int

const (
	// posBase is the value assumed for a missing component of the upper
	// bound when allocating. New top-level components land in [0, posBase).
	posBase = 1024

	// maxDepth bounds allocation descent. Repeated insertion at the same
	// point grows identifiers one component per insert; past this depth the
	// allocator widens instead of descending further.
	maxDepth = 128
)

// Compare orders two positions lexicographically. It returns a negative
// number if p sorts before q, a positive number if after, and 0 if the
// positions are identical.
func (p Position) Compare(q Position) int {
	for i := 0; i < len(p) && i < len(q); i++ {
		if p[i] != q[i] {
			if p[i] < q[i] {
				return -1
			}
			return 1
		}
	}
	return len(p) - len(q)
}

// Clone returns an independent copy of p.
func (p Position) Clone() Position {
	if p == nil {
		return nil
	}
	out := make(Position, len(p))
	copy(out, p)
	return out
}

func componentAt(p Position, depth, missing int) int {
	if depth < len(p) {
		return p[depth]
	}
	return missing
}

// Between allocates a new position strictly between before and after.
// A nil before acts as the start-of-sequence sentinel and a nil after as
// the end-of-sequence sentinel. Missing components of before read as 0
// and of after as posBase.
//
// The walk copies equal-or-adjacent components downward until it finds a
// gap wider than 1, then emits the midpoint (rounded up) at that depth.
// At maxDepth the allocator stops descending and widens by incrementing
// instead, so pathological same-point insertion cannot grow identifiers
// without bound.
func Between(before, after Position) Position {
	out := make(Position, 0, len(before)+1)
	for depth := 0; ; depth++ {
		b := componentAt(before, depth, 0)
		a := componentAt(after, depth, posBase)
		if gap := a - b; gap > 1 && depth < maxDepth {
			return append(out, b+gap/2+gap%2)
		}
		if depth >= maxDepth {
			return append(out, b+1)
		}
		out = append(out, b)
	}
}
