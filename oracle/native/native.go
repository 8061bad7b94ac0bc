package native

import (
	"fmt"

	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"

	"github.com/cespare/blimc/oracle"
)

// Oracle is the full-capability oracle.Oracle backend: an in-process,
// incrementally-fed DPLL solver. Clauses accumulate across Solve calls;
// assumptions are one-shot. Freeze/Melt are accepted but are no-ops (this
// engine does no variable elimination to protect against), Simplify reruns
// unit propagation to a fixpoint over the live clause database, and Clone
// deep-copies all state, so SupportsClone is always true.
type Oracle struct {
	clauses     [][]int32
	cur         []int32
	assumptions []int32
	frozen      map[int32]bool

	fixedCache    map[int32]int8
	fixedUnsat    bool
	fixedComputed bool

	lastSolver *solver
	lastResult oracle.Result

	verbose int
	plain   bool
	log     *logrus.Entry
}

// New returns a fresh, empty Oracle.
func New() *Oracle {
	return &Oracle{
		frozen: make(map[int32]bool),
		log:    logrus.WithField("backend", "native"),
	}
}

func (o *Oracle) AddLit(lit int32) {
	if lit == 0 {
		clause := append([]int32(nil), o.cur...)
		o.clauses = append(o.clauses, clause)
		o.cur = o.cur[:0]
		o.fixedComputed = false
		return
	}
	o.cur = append(o.cur, lit)
}

func (o *Oracle) Assume(lit int32) { o.assumptions = append(o.assumptions, lit) }

func (o *Oracle) Solve(budget int) (oracle.Result, error) {
	problem := make([][]int, 0, len(o.clauses)+len(o.assumptions))
	for _, c := range o.clauses {
		problem = append(problem, int32sToInts(c))
	}
	for _, a := range o.assumptions {
		problem = append(problem, []int{int(a)})
	}
	o.assumptions = o.assumptions[:0]

	sv := newSolver(problem, int64(budget), o.plain)
	result := sv.solve()
	o.lastSolver = sv

	if o.verbose >= 3 {
		o.log.Debug("oracle state after solve:")
		pretty.Println(sv)
	}

	switch result {
	case resultSat:
		o.lastResult = oracle.SAT
		return oracle.SAT, nil
	case resultUnsat:
		o.lastResult = oracle.UNSAT
		return oracle.UNSAT, nil
	default:
		o.lastResult = oracle.Unknown
		if budget <= 0 {
			return oracle.Unknown, fmt.Errorf("native: solver reported unknown under an unbounded budget")
		}
		return oracle.Unknown, nil
	}
}

func (o *Oracle) Value(lit int32) int8 {
	if o.lastSolver == nil || o.lastResult != oracle.SAT {
		return 0
	}
	v := o.lastSolver.valueOf(int(abs32(lit)))
	if lit < 0 {
		v = -v
	}
	return v
}

func (o *Oracle) Fixed(lit int32) int8 {
	o.ensureFixed()
	if o.fixedUnsat {
		return 0
	}
	v := abs32(lit)
	val, ok := o.fixedCache[v]
	if !ok {
		return 0
	}
	if lit < 0 {
		val = -val
	}
	return val
}

func (o *Oracle) ensureFixed() {
	if o.fixedComputed {
		return
	}
	o.fixedComputed = true
	problem := make([][]int, 0, len(o.clauses))
	for _, c := range o.clauses {
		problem = append(problem, int32sToInts(c))
	}
	sv := simplify(problem)
	o.fixedCache = make(map[int32]int8)
	if sv.simpleSat == assnFalse {
		o.fixedUnsat = true
		return
	}
	for _, sav := range sv.sourceVars {
		switch sav.assn {
		case assnTrue:
			o.fixedCache[int32(sav.v)] = 1
		case assnFalse:
			o.fixedCache[int32(sav.v)] = -1
		}
	}
}

func (o *Oracle) Freeze(lit int32) { o.frozen[abs32(lit)] = true }
func (o *Oracle) Melt(lit int32)   { delete(o.frozen, abs32(lit)) }

func (o *Oracle) FreezeAll() {
	for _, c := range o.clauses {
		for _, l := range c {
			o.frozen[abs32(l)] = true
		}
	}
}

func (o *Oracle) MeltAll() { o.frozen = make(map[int32]bool) }

// Simplify reruns the unit-propagation fixpoint (ported from saturday.go's
// original simplify routine) against the live clause database, refreshing
// the Fixed() cache. This backend has no clause-elimination in-processing
// beyond that fixpoint.
func (o *Oracle) Simplify() { o.fixedComputed = false; o.ensureFixed() }

func (o *Oracle) Clone() (oracle.Oracle, bool) {
	clone := &Oracle{
		clauses:       make([][]int32, len(o.clauses)),
		cur:           append([]int32(nil), o.cur...),
		assumptions:   append([]int32(nil), o.assumptions...),
		frozen:        make(map[int32]bool, len(o.frozen)),
		fixedComputed: o.fixedComputed,
		fixedUnsat:    o.fixedUnsat,
		verbose:       o.verbose,
		plain:         o.plain,
		log:           o.log,
	}
	for i, c := range o.clauses {
		clone.clauses[i] = append([]int32(nil), c...)
	}
	for k, v := range o.frozen {
		clone.frozen[k] = v
	}
	if o.fixedCache != nil {
		clone.fixedCache = make(map[int32]int8, len(o.fixedCache))
		for k, v := range o.fixedCache {
			clone.fixedCache[k] = v
		}
	}
	return clone, true
}

func (o *Oracle) SupportsClone() bool { return true }

// ExtractClauses returns the live clause database, satisfying
// oracle.Extractor.
func (o *Oracle) ExtractClauses() [][]int32 {
	out := make([][]int32, len(o.clauses))
	for i, c := range o.clauses {
		out[i] = append([]int32(nil), c...)
	}
	return out
}

var _ oracle.Extractor = (*Oracle)(nil)

func (o *Oracle) SetVerbose(level int) {
	o.verbose = level
	if level >= 2 {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

// SetPlain disables the watch-list-size decision heuristic in favor of
// plain variable-order selection, satisfying oracle.PlainHinter.
func (o *Oracle) SetPlain(plain bool) { o.plain = plain }

var _ oracle.PlainHinter = (*Oracle)(nil)

func int32sToInts(s []int32) []int {
	out := make([]int, len(s))
	for i, v := range s {
		out[i] = int(v)
	}
	return out
}

func abs32(n int32) int32 {
	if n < 0 {
		return -n
	}
	return n
}

var _ oracle.Oracle = (*Oracle)(nil)
