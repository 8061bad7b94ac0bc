// Package encode builds the untimed CNF template for an AIG model's
// cone-of-influence: Tseitin clauses for every reachable and-gate, plus the
// latch reset constraints that pin the initial state. Variables are
// compacted into a dense [1, NumVars] range in a fixed, deterministic order
// so that repeated runs (and --backend comparisons) produce byte-identical
// CNF. Ported from blimc.c's logic/mapuntimedlit/mapcnf/init quartet.
package encode

import "github.com/cespare/blimc/aiger"

// coiMask is the subset of coi.Mask this package depends on, so that encode
// does not need to import coi just for a boolean predicate.
type coiMask interface {
	InCOI(v uint32) bool
}

// Template is the untimed CNF for a model's cone of influence: Clauses are
// Tseitin-encoded and-gates (each a slice of signed compact-variable
// literals, no trailing 0 terminator), ready to be copied at every time
// step by package unroll. ResetClauses constrain the initial state only and
// must be asserted once, unshifted (shift(v, 0) == v, so an untimed clause
// already denotes time 0).
type Template struct {
	Clauses      [][]int32
	ResetClauses [][]int32

	// VarOf maps an AIG node's var index to its compact CNF variable
	// (always positive; sign is carried on the literal, not the variable).
	VarOf map[uint32]int32
	// NumVars is the number of compact variables allocated, i.e. the
	// largest value occurring in VarOf.
	NumVars int32
}

// Var returns the compact variable for AIG node v, allocating one if v has
// not been seen before. Exported so package unroll and package bmc can map
// additional untimed literals (e.g. the bad literal) through the same
// compaction table.
func (t *Template) Var(v uint32) int32 {
	if id, ok := t.VarOf[v]; ok {
		return id
	}
	t.NumVars++
	t.VarOf[v] = t.NumVars
	return t.NumVars
}

// Lit returns the signed compact-CNF literal for AIG literal l, allocating
// a variable for its node if necessary.
func (t *Template) Lit(l aiger.Lit) int32 {
	v := t.Var(l.Var())
	if l.Sign() {
		return -v
	}
	return v
}

// Build constructs the untimed template for model m restricted to the nodes
// mask reports as in the cone of influence. Variable compaction proceeds in
// exactly the order blimc.c's init()/mapcnf() produce it: COI latch
// outputs, then COI inputs, then (lazily, in gate-emission order) and-gate
// outputs and operands, then any latch next-state literal not already
// assigned a variable by the gate pass.
func Build(m *aiger.Model, mask coiMask) *Template {
	t := &Template{VarOf: make(map[uint32]int32)}

	for _, latch := range m.Latches {
		if mask.InCOI(latch.Lit.Var()) {
			t.Var(latch.Lit.Var())
		}
	}
	for _, in := range m.Inputs {
		if mask.InCOI(in.Var()) {
			t.Var(in.Var())
		}
	}

	// The constant node, if referenced from within the cone, is forced
	// false. This mirrors blimc.c's "unit(-1)" emitted before any gate
	// clause, so the constant's compact variable is allocated first among
	// the lazily-allocated ones.
	if mask.InCOI(0) {
		t.Clauses = append(t.Clauses, []int32{-t.Lit(aiger.Lit(0))})
	}

	for _, a := range m.Ands {
		if !mask.InCOI(a.LHS.Var()) {
			continue
		}
		lhs := t.Lit(a.LHS)
		rhs0 := t.Lit(a.RHS0)
		rhs1 := t.Lit(a.RHS1)
		t.Clauses = append(t.Clauses,
			[]int32{-lhs, rhs0},
			[]int32{-lhs, rhs1},
			[]int32{-rhs0, -rhs1, lhs},
		)
	}

	for _, latch := range m.Latches {
		if mask.InCOI(latch.Lit.Var()) {
			t.Var(latch.Next.Var())
		}
	}

	for _, latch := range m.Latches {
		if !mask.InCOI(latch.Lit.Var()) || latch.Uninitialized() {
			continue
		}
		v := t.Var(latch.Lit.Var())
		switch latch.Reset {
		case aiger.Lit(0):
			t.ResetClauses = append(t.ResetClauses, []int32{-v})
		case aiger.Lit(1):
			t.ResetClauses = append(t.ResetClauses, []int32{v})
		}
	}

	return t
}
