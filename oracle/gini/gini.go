// Package gini wraps github.com/go-air/gini, the incremental SAT engine
// operator-framework/operator-lifecycle-manager uses for its dependency
// resolver, as a second oracle.Oracle backend alongside oracle/native —
// mirroring blimc.c's own lingeling/cadical dual-backend split, where
// --use-cadical trades in-processing and cloning for a different solver
// core. Gini exposes no clause-level in-processing or whole-state cloning,
// so Freeze/Melt/Simplify are no-ops here and SupportsClone is always
// false, same as blimc.c's --use-cadical path (which implies --no-clone
// for exactly this reason).
package gini

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"github.com/sirupsen/logrus"

	"github.com/cespare/blimc/oracle"
)

const (
	giniSat   = 1
	giniUnsat = -1
)

// Oracle is an oracle.Oracle backed by a single gini solver instance.
type Oracle struct {
	g    *gini.Gini
	log  *logrus.Entry
	vars int32
}

// New returns a fresh Oracle.
func New() *Oracle {
	return &Oracle{g: gini.New(), log: logrus.WithField("backend", "gini")}
}

func (o *Oracle) growTo(v int32) {
	for o.vars < v {
		o.vars++
		o.g.NewVar()
	}
}

func (o *Oracle) AddLit(lit int32) {
	if lit == 0 {
		o.g.Add(0)
		return
	}
	o.growTo(abs32(lit))
	o.g.Add(z.Dimacs2Lit(int(lit)))
}

func (o *Oracle) Assume(lit int32) {
	o.growTo(abs32(lit))
	o.g.Assume(z.Dimacs2Lit(int(lit)))
}

func (o *Oracle) Solve(budget int) (oracle.Result, error) {
	// Gini has no conflict-budget knob in the inter.S surface this adapter
	// uses, so budget is accepted (to satisfy the Oracle interface) but
	// ignored: this backend always runs a Solve to completion.
	switch o.g.Solve() {
	case giniSat:
		return oracle.SAT, nil
	case giniUnsat:
		return oracle.UNSAT, nil
	default:
		return oracle.Unknown, nil
	}
}

func (o *Oracle) Value(lit int32) int8 {
	if int(abs32(lit)) > int(o.vars) {
		return 0
	}
	l := z.Dimacs2Lit(int(lit))
	if o.g.Value(l) {
		return 1
	}
	return -1
}

// Fixed always reports unknown: gini's inter.S surface used here has no
// root-level-implication query, unlike lingeling's lglfixed/CaDiCaL's
// ccadical_fixed that blimc.c relies on for its early bad-literal check.
func (o *Oracle) Fixed(lit int32) int8 { return 0 }

func (o *Oracle) Freeze(lit int32) {}
func (o *Oracle) Melt(lit int32)   {}
func (o *Oracle) FreezeAll()       {}
func (o *Oracle) MeltAll()         {}
func (o *Oracle) Simplify()        {}

func (o *Oracle) Clone() (oracle.Oracle, bool) { return nil, false }
func (o *Oracle) SupportsClone() bool          { return false }

func (o *Oracle) SetVerbose(level int) {
	if level >= 2 {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

// SetPlain is a no-op: gini exposes no in-processing heuristic of its own
// to disable, satisfying oracle.PlainHinter only for uniformity with
// oracle/native.
func (o *Oracle) SetPlain(plain bool) {}

var _ oracle.PlainHinter = (*Oracle)(nil)

func abs32(n int32) int32 {
	if n < 0 {
		return -n
	}
	return n
}

var _ oracle.Oracle = (*Oracle)(nil)
