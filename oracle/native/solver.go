// Package native is an incremental SAT backend for package oracle, adapted
// from cespare/saturday's Davis-Putnam solver core (two-watched-literal
// BCP, max-heap decision selection by watch-list size, chronological
// backtracking on conflict). The original solved one whole problem per
// call; this adaptation lets clauses accumulate across many Solve calls,
// adds a one-shot Assume layer, a conflict-budget cutoff so Solve can
// return Unknown, and a root-level Fixed()/Simplify() pass reusing the
// original's unit-propagation fixpoint.
package native

import (
	"container/heap"
	"sort"
)

type searchResult int8

const (
	resultUnsat searchResult = iota
	resultSat
	resultUnknown
)

type solver struct {
	sourceVars []sourceVar
	simpleSat  assnVal
	simplified [][]int

	origVars []int
	varIndex map[int]int // source var -> index in sourceVars

	assignments []assnVal
	watches     [][]int

	unassigned litHeap

	decisions    []decision
	implications []literal
	propIndex    int

	clauses []clause

	numDecisions    int64
	numImplications int64
	numConflicts    int64
	conflictLimit   int64 // 0 means unlimited
	plain           bool
}

type sourceVar struct {
	v    int
	assn assnVal
	i    int
}

type clause struct {
	lits []literal
}

type litHeap struct {
	watches [][]int
	lits    []litHeapItem
	m       map[literal]int
	// plain disables the watch-list-size decision heuristic in favor of
	// plain variable-order selection, the "-p" hint.
	plain bool
}

type litHeapItem struct {
	lit literal
	i   int
}

func (h *litHeap) Len() int { return len(h.lits) }

func (h *litHeap) Less(i, j int) bool {
	lit0, lit1 := h.lits[i].lit, h.lits[j].lit
	if h.plain {
		return lit0 < lit1
	}
	return len(h.watches[lit0]) > len(h.watches[lit1])
}

func (h *litHeap) Swap(i, j int) {
	e0, e1 := h.lits[i], h.lits[j]
	e0.i = j
	e1.i = i
	h.lits[i] = e1
	h.lits[j] = e0
	h.m[e0.lit] = j
	h.m[e1.lit] = i
}

func (h *litHeap) Push(x interface{}) {
	elt := x.(litHeapItem)
	h.m[elt.lit] = len(h.lits)
	elt.i = len(h.lits)
	h.lits = append(h.lits, elt)
}

func (h *litHeap) Pop() interface{} {
	elt := h.lits[len(h.lits)-1]
	h.lits = h.lits[:len(h.lits)-1]
	elt.i = -1
	delete(h.m, elt.lit)
	return elt
}

func newSolver(problem [][]int, conflictLimit int64, plain bool) *solver {
	sv := simplify(problem)
	sv.conflictLimit = conflictLimit
	sv.plain = plain
	sv.indexSourceVars()
	if sv.simpleSat != unassigned {
		return sv
	}
	vars := make(map[int]int)
	for _, cls := range sv.simplified {
		for _, v := range cls {
			v = abs(v)
			if _, ok := vars[v]; !ok {
				sv.origVars = append(sv.origVars, v)
				vars[v] = 0
			}
		}
	}
	sort.Ints(sv.origVars)
	for i, v := range sv.origVars {
		vars[v] = i
	}
	for i, v := range sv.sourceVars {
		if v.assn == unassigned {
			sv.sourceVars[i].i = vars[v.v]
		}
	}
	sv.watches = make([][]int, len(sv.origVars)*2)
	sv.assignments = make([]assnVal, len(sv.origVars))
	sv.clauses = make([]clause, len(sv.simplified))
	for i, cls := range sv.simplified {
		for j, v := range cls {
			neg := false
			if v < 0 {
				neg = true
				v = -v
			}
			lit := literal(vars[v]) << 1
			if neg {
				lit ^= 1
			}
			sv.clauses[i].lits = append(sv.clauses[i].lits, lit)
			if j < 2 {
				sv.watches[lit] = append(sv.watches[lit], i)
			}
		}
	}
	sv.unassigned.watches = sv.watches
	sv.unassigned.plain = sv.plain
	sv.unassigned.m = make(map[literal]int)
	for lit := range sv.watches {
		sv.pushUnassigned(literal(lit))
	}
	return sv
}

func (sv *solver) indexSourceVars() {
	sv.varIndex = make(map[int]int, len(sv.sourceVars))
	for i, v := range sv.sourceVars {
		sv.varIndex[v.v] = i
	}
}

// valueOf reports the solved value of source variable v (1 true, -1 false,
// 0 unknown/unassigned) after a successful solve().
func (sv *solver) valueOf(v int) int8 {
	i, ok := sv.varIndex[v]
	if !ok {
		return 0
	}
	sav := sv.sourceVars[i]
	assn := sav.assn
	if assn == unassigned {
		if sav.i >= len(sv.assignments) {
			return 0
		}
		assn = sv.assignments[sav.i] & 3
	}
	switch assn {
	case assnTrue:
		return 1
	case assnFalse:
		return -1
	default:
		return 0
	}
}

func simplify(problem [][]int) *solver {
	var sv solver
	vars := make(map[int]assnVal)
	sv.simplified = make([][]int, len(problem))
	for i, cls := range problem {
		seen := make(map[int]struct{})
		var clause1 []int
		for _, v := range cls {
			if v == 0 {
				panic("zero var passed to Solve")
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			clause1 = append(clause1, v)
			vars[abs(v)] = unassigned
		}
		sv.simplified[i] = clause1
	}
	changed := true
	for changed {
		if len(sv.simplified) == 0 {
			sv.simpleSat = assnTrue
			break
		}
		changed = false
		var i int
	clauseLoop:
		for _, cls := range sv.simplified {
			if len(cls) == 0 {
				sv.simpleSat = assnFalse
				return &sv
			}
			if len(cls) == 1 {
				v := cls[0]
				assn := assnTrue
				if v < 0 {
					assn = assnFalse
					v = -v
				}
				if vars[v] != unassigned && vars[v] != assn {
					sv.simpleSat = assnFalse
					return &sv
				}
				vars[v] = assn
				changed = true
				continue clauseLoop
			}
			var j int
			for _, v := range cls {
				assn := vars[abs(v)]
				if assn == unassigned {
					cls[j] = v
					j++
					continue
				}
				changed = true
				if (assn == assnTrue) == (v > 0) {
					continue clauseLoop
				}
			}
			sv.simplified[i] = cls[:j]
			i++
		}
		sv.simplified = sv.simplified[:i]
	}
	sv.sourceVars = make([]sourceVar, 0, len(vars))
	for v, assn := range vars {
		sv.sourceVars = append(sv.sourceVars, sourceVar{v: v, assn: assn})
	}
	sort.Slice(sv.sourceVars, func(i, j int) bool {
		return sv.sourceVars[i].v < sv.sourceVars[j].v
	})
	return &sv
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

type literal uint32

func (l literal) assn() assnVal {
	return assnVal(l&1) + 1
}

type assnVal uint8

const (
	unassigned      assnVal = 0
	assnTrue        assnVal = 1
	assnFalse       assnVal = 2
	assnTrueSecond  assnVal = 5
	assnFalseSecond assnVal = 6
)

func (a assnVal) inv() assnVal { return a ^ 3 }

type decision struct {
	implicationIdx int
	lit            literal
}

func (sv *solver) solve() searchResult {
	switch sv.simpleSat {
	case assnTrue:
		return resultSat
	case assnFalse:
		return resultUnsat
	}

	for {
		lit, ok := sv.popUnassigned()
		if !ok {
			return resultSat
		}
		sv.deleteUnassigned(lit ^ 1)
		v := lit >> 1
		sv.assignments[v] = lit.assn()
		sv.numDecisions++
		sv.decisions = append(sv.decisions, decision{
			implicationIdx: len(sv.implications),
			lit:            lit,
		})
		sv.propIndex = len(sv.implications)
		sv.implications = append(sv.implications, lit)

		for !sv.bcp() {
			r, ok := sv.resolveConflict()
			if !ok {
				return r
			}
		}
	}
}

func (sv *solver) bcp() bool {
	for {
		imps := sv.implications[sv.propIndex:]
		if len(imps) == 0 {
			return true
		}
		sv.propIndex = len(sv.implications)
		for _, impliedLit := range imps {
			neg := impliedLit ^ 1
			watches := sv.watches[neg]
		watchesLoop:
			for i := 0; i < len(watches); {
				clauseIdx := watches[i]
				cls := sv.clauses[clauseIdx]
				if cls.lits[0] == neg {
					cls.lits[0], cls.lits[1] = cls.lits[1], cls.lits[0]
				} else if cls.lits[1] != neg {
					panic("bad watch var state")
				}
				lit0 := cls.lits[0]
				if sv.assignments[lit0>>1]&3 == lit0.assn() {
					i++
					continue
				}
				for j := 2; j < len(cls.lits); j++ {
					lit := cls.lits[j]
					assn := sv.assignments[lit>>1] & 3
					if assn == lit.assn().inv() {
						continue
					}
					sv.watches[lit] = append(sv.watches[lit], clauseIdx)
					if assn == unassigned {
						sv.updateUnassigned(lit)
					}
					watches[i], watches[len(watches)-1] = watches[len(watches)-1], watches[i]
					watches = watches[:len(watches)-1]
					sv.watches[neg] = watches
					cls.lits[1], cls.lits[j] = cls.lits[j], cls.lits[1]
					continue watchesLoop
				}
				i++
				otherWatch := cls.lits[0]
				v := int(otherWatch >> 1)
				if sv.assignments[v] != unassigned {
					return false
				}
				sv.assignments[v] = otherWatch.assn()
				sv.deleteUnassigned(otherWatch)
				if _, ok := sv.unassigned.m[otherWatch^1]; ok {
					sv.deleteUnassigned(otherWatch ^ 1)
				}
				sv.numImplications++
				sv.implications = append(sv.implications, otherWatch)
			}
		}
	}
}

// resolveConflict tries to fix the current conflict by flipping the most
// recently made decision that hasn't been tried both ways. It reports
// (resultUnknown/resultUnsat, false) when the search must stop, or
// (_, true) when it rolled back and search should continue.
func (sv *solver) resolveConflict() (searchResult, bool) {
	sv.numConflicts++
	if sv.conflictLimit > 0 && sv.numConflicts >= sv.conflictLimit {
		return resultUnknown, false
	}

	di := -1
	var d decision
	for i := len(sv.decisions) - 1; i >= 0; i-- {
		d = sv.decisions[i]
		if sv.assignments[d.lit>>1]&4 == 0 {
			di = i
			break
		}
	}
	if di == -1 {
		return resultUnsat, false
	}
	for i := len(sv.implications) - 1; i > d.implicationIdx; i-- {
		lit := sv.implications[i]
		sv.pushUnassigned(lit)
		if _, ok := sv.unassigned.m[lit^1]; !ok {
			sv.pushUnassigned(lit ^ 1)
		}
		sv.assignments[lit>>1] = unassigned
	}
	sv.implications = sv.implications[:d.implicationIdx+1]
	sv.implications[len(sv.implications)-1] ^= 1
	sv.decisions = sv.decisions[:di+1]
	sv.decisions[di].lit ^= 1
	sv.assignments[d.lit>>1] ^= 7
	sv.propIndex = d.implicationIdx
	return 0, true
}

func (sv *solver) pushUnassigned(lit literal) {
	if _, ok := sv.unassigned.m[lit]; ok {
		panic("push of literal that's already in the unassigned queue")
	}
	heap.Push(&sv.unassigned, litHeapItem{lit: lit})
}

func (sv *solver) popUnassigned() (literal, bool) {
	if len(sv.unassigned.lits) == 0 {
		return 0, false
	}
	e := heap.Pop(&sv.unassigned).(litHeapItem)
	return e.lit, true
}

func (sv *solver) deleteUnassigned(lit literal) {
	i, ok := sv.unassigned.m[lit]
	if !ok {
		panic("delete of nonexistent unassigned var")
	}
	heap.Remove(&sv.unassigned, i)
}

func (sv *solver) updateUnassigned(lit literal) {
	if i, ok := sv.unassigned.m[lit]; ok {
		heap.Fix(&sv.unassigned, i)
	} else {
		heap.Push(&sv.unassigned, litHeapItem{lit: lit})
	}
}
