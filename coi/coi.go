// Package coi computes the cone-of-influence of a bad-state literal: the set
// of AIG nodes whose value can affect whether the property ever becomes
// true. Nodes outside the cone never need a CNF variable or clause.
package coi

import "github.com/cespare/blimc/aiger"

// Mask reports, for every AIG node index in [0, MaxVar], whether that node is
// in the cone of influence, and if so its discovery order (a positive
// integer, 1 for the bad literal's own node, increasing in BFS order). A
// zero entry means the node is not in the cone.
type Mask []int

// InCOI reports whether node v is in the cone.
func (m Mask) InCOI(v uint32) bool { return int(v) < len(m) && m[v] != 0 }

// Order returns the discovery order of node v, or 0 if v is not in the cone.
func (m Mask) Order(v uint32) int {
	if int(v) >= len(m) {
		return 0
	}
	return m[v]
}

// Stats summarizes the shape of a computed cone, for the verbose "-v"
// statistics line.
type Stats struct {
	Literals  int // total nodes discovered, including the bad literal's own
	Inputs    int
	Latches   int
	Ands      int
	Constants int
}

// Compute performs the iterative worklist breadth-first traversal starting
// from bad's node and following and-gate operands and latch next-state
// literals backward. Ported from blimc.c's travcoi, which
// processes a FIFO-ordered slice as both stack and queue: next indexes the
// node currently being expanded, top is one past the last discovered node,
// and the loop ends when the frontier catches up to the discovery pointer.
func Compute(m *aiger.Model, bad aiger.Lit) (Mask, Stats) {
	size := int(m.MaxVar) + 1
	mask := make(Mask, size)

	queue := make([]aiger.Lit, 1, size)
	queue[0] = bad
	mask[bad.Var()] = 1
	top := 1

	push := func(l aiger.Lit) {
		if idx := l.Var(); mask[idx] == 0 {
			queue = append(queue, l)
			top++
			mask[idx] = top
		}
	}

	var stats Stats
	for next := 0; next < top; next++ {
		lit := queue[next]
		stripped := lit.Strip()
		v := stripped.Var()

		switch m.KindOf(v) {
		case aiger.NodeInput:
			stats.Inputs++
		case aiger.NodeLatch:
			stats.Latches++
			push(m.LatchAt(v).Next)
		case aiger.NodeAnd:
			stats.Ands++
			a := m.AndAt(v)
			push(a.RHS0)
			push(a.RHS1)
		default: // NodeConst: v == 0
			stats.Constants++
		}
	}
	stats.Literals = top
	return mask, stats
}
