// Package unroll implements the temporal unrolling step of bounded model
// checking: copying the untimed CNF template into a fresh variable space
// for each time step 0..k and linking consecutive latch states. Ported
// from blimc.c's shift/equiv/shiftcnf.
package unroll

import (
	"github.com/cespare/blimc/aiger"
	"github.com/cespare/blimc/encode"
	"github.com/cespare/blimc/oracle"
)

// coiMask is the subset of coi.Mask this package needs.
type coiMask interface {
	InCOI(v uint32) bool
}

// Shift maps an untimed signed compact literal to its copy at time t:
// v + t*numVars, sign preserved.
func Shift(lit int32, t int, numVars int32) int32 {
	v := lit
	neg := v < 0
	if neg {
		v = -v
	}
	res := v + int32(t)*numVars
	if neg {
		res = -res
	}
	return res
}

// AddStep extends o with the template's gate clauses and latch-equivalence
// clauses for time step t (t must be called in increasing order starting
// at 0, once per bound). At t == 0 it also asserts the template's reset
// constraints, since shift(v, 0) == v makes the untimed reset clauses
// already denote the initial state.
func AddStep(o oracle.Oracle, tpl *encode.Template, m *aiger.Model, mask coiMask, t int) {
	if t == 0 {
		for _, c := range tpl.ResetClauses {
			addClause(o, c)
		}
	} else {
		for _, latch := range m.Latches {
			if !mask.InCOI(latch.Lit.Var()) {
				continue
			}
			prevUntimed := tpl.Lit(latch.Next)
			lit := tpl.Lit(latch.Lit)
			prev := Shift(prevUntimed, t-1, tpl.NumVars)
			cur := Shift(lit, t, tpl.NumVars)
			addEquiv(o, prev, cur)
			o.Melt(prev)
		}
	}

	for _, c := range tpl.Clauses {
		shifted := make([]int32, len(c))
		for i, lit := range c {
			shifted[i] = Shift(lit, t, tpl.NumVars)
		}
		addClause(o, shifted)
	}

	// Freeze this step's next-state variable so in-processing on the
	// oracle can't eliminate it before step t+1's equivalence clause
	// consumes it (and melts it back).
	for _, latch := range m.Latches {
		if !mask.InCOI(latch.Lit.Var()) {
			continue
		}
		o.Freeze(Shift(tpl.Lit(latch.Next), t, tpl.NumVars))
	}
}

// BadAt returns the compact literal, at time t, of the bad-state property
// whose untimed encoding is badLit. The bad literal is assume-only, never
// asserted as a clause.
func BadAt(tpl *encode.Template, badLit aiger.Lit, t int) int32 {
	return Shift(tpl.Lit(badLit), t, tpl.NumVars)
}

func addEquiv(o oracle.Oracle, a, b int32) {
	addClause(o, []int32{-a, b})
	addClause(o, []int32{a, -b})
}

func addClause(o oracle.Oracle, lits []int32) {
	for _, l := range lits {
		o.AddLit(l)
	}
	o.AddLit(0)
}
