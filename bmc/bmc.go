// Package bmc drives the per-bound unroll/assume/solve loop, ported from
// blimc.c's main driver loop. Session replaces that file's global mutable
// state (the running solver handle, the variable map, the cloned-solver
// counter) with one value owned by the caller.
package bmc

import (
	"runtime"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cespare/blimc/aiger"
	"github.com/cespare/blimc/coi"
	"github.com/cespare/blimc/encode"
	"github.com/cespare/blimc/oracle"
	"github.com/cespare/blimc/unroll"
)

// Verdict is one of the three bounded-checking outcomes: the property can
// never hold (the model has no latches, or the gate encoding alone forces it
// false), a counterexample was found, or the search exhausted its bound (or
// was interrupted) without deciding. The numeric values are the ones the
// CLI prints on stdout, not just labels.
type Verdict int8

const (
	VerdictUnsat   Verdict = 0
	VerdictSat     Verdict = 1
	VerdictUnknown Verdict = 2
)

func (v Verdict) String() string {
	switch v {
	case VerdictUnsat:
		return "0"
	case VerdictSat:
		return "1"
	case VerdictUnknown:
		return "2"
	default:
		return "?"
	}
}

// Strategy selects how Run reacts to a budgeted Solve returning Unknown.
type Strategy int8

const (
	// SingleSolver always solves to completion (budget 0) and only ever
	// sees SAT or UNSAT.
	SingleSolver Strategy = iota
	// CloneEscalation runs a budgeted Solve; on Unknown it clones the
	// oracle and retries with a full budget on the clone, merging learned
	// fixed literals back into the main oracle. Requires
	// oracle.SupportsClone().
	CloneEscalation
)

// Options configures a Session. The constructor for the throwaway oracle
// used at encoding time is not part of Options; it is NewSession's
// throwaway parameter.
type Options struct {
	MaxK   int
	Oracle oracle.Oracle

	NoClone     bool
	UnforcedAsX bool
	NoWitness   bool
	Plain       bool
	Verbose     int

	// ConflictBudget bounds each per-step Solve when Strategy is
	// CloneEscalation. Ignored under SingleSolver.
	ConflictBudget int
}

// Witness is the counterexample trace for a VerdictSat outcome: one byte
// per model latch (AIG order) for the initial state, then Bound+1 rows of
// one byte per model input (AIG order), each byte '0', '1', or 'x'.
// Latches and inputs outside the cone of influence are always '0'.
type Witness struct {
	LatchInit []byte
	Inputs    [][]byte
}

// Stats reports observability counters worth retaining across a run rather
// than discarding as debug noise.
type Stats struct {
	COI               coi.Stats
	Bound             int
	ClonedEscalations int
	PeakBytes         uint64
}

// Outcome is what Run returns: the verdict, the bound it was decided at,
// and — for VerdictSat — the witness.
type Outcome struct {
	Verdict Verdict
	Bound   int
	Witness *Witness
}

// Session owns everything the bounded-checking loop touches: the parsed
// model, the selected property, the COI mask, the untimed template, the
// oracle, and the escalation strategy. It replaces blimc.c's global state.
type Session struct {
	model *aiger.Model
	bad   aiger.Property
	mask  coi.Mask
	tpl   *encode.Template

	o        oracle.Oracle
	strategy Strategy
	opts     Options

	// lastClone holds the escalated clone that most recently returned SAT,
	// so extractWitness can read its model instead of the main oracle's.
	lastClone oracle.Oracle

	// propertyForcedFalse records whether the untimed bad literal was
	// already implied false by the bare gate encoding, discovered once at
	// construction time, before any reset clause or unrolling is involved.
	propertyForcedFalse bool

	stats Stats
	log   *logrus.Entry
}

// NewSession computes the COI mask and untimed template for model/bad and
// runs the simplify-then-extract dance below on the template; opts.Oracle
// itself receives no clauses until Run. throwaway,
// if non-nil, constructs a fresh same-backend oracle used only
// for that dance (and to probe whether the bad literal is already forced
// false by the bare gate encoding) and then discarded; pass nil to always
// skip both (as is correct for backends, like oracle/gini, with no clause
// extraction or root-level Fixed reporting).
func NewSession(m *aiger.Model, bad aiger.Property, opts Options, throwaway func() oracle.Oracle) (*Session, error) {
	if opts.Oracle == nil {
		return nil, errors.New("bmc: NewSession requires a non-nil Oracle")
	}
	mask, stats := coi.Compute(m, bad.Lit)
	tpl := encode.Build(m, mask)
	tpl, forced := simplifyThenExtract(tpl, bad.Lit, throwaway)

	strategy := SingleSolver
	if !opts.NoClone && opts.Oracle.SupportsClone() {
		strategy = CloneEscalation
	}

	s := &Session{
		model:               m,
		bad:                 bad,
		mask:                mask,
		tpl:                 tpl,
		o:                   opts.Oracle,
		strategy:            strategy,
		opts:                opts,
		propertyForcedFalse: forced,
		stats:               Stats{COI: stats},
		log:                 logrus.WithField("component", "bmc"),
	}
	opts.Oracle.SetVerbose(opts.Verbose)
	if hinter, ok := opts.Oracle.(oracle.PlainHinter); ok {
		hinter.SetPlain(opts.Plain)
	}
	return s, nil
}

// simplifyThenExtract feeds the unsimplified template's gate clauses (not
// reset clauses — those only pin down time 0, not the property's global
// status) to a throwaway
// oracle, simplify it, check whether that already forces the bad literal
// false, and — if the backend can report its clauses back out — adopt the
// simplified clauses as the permanent untimed template. A nil newOracle
// skips all of this and returns tpl unchanged with forced == false.
func simplifyThenExtract(tpl *encode.Template, bad aiger.Lit, newOracle func() oracle.Oracle) (*encode.Template, bool) {
	if newOracle == nil {
		return tpl, false
	}
	scratch := newOracle()
	for _, c := range tpl.Clauses {
		for _, l := range c {
			scratch.AddLit(l)
		}
		scratch.AddLit(0)
	}
	scratch.Simplify()
	forced := scratch.Fixed(tpl.Lit(bad)) < 0

	ext, ok := scratch.(oracle.Extractor)
	if !ok {
		return tpl, forced
	}
	return &encode.Template{
		Clauses:      ext.ExtractClauses(),
		ResetClauses: tpl.ResetClauses,
		VarOf:        tpl.VarOf,
		NumVars:      tpl.NumVars,
	}, forced
}

// Stats returns the session's observability counters, current as of the
// most recent Run call.
func (s *Session) Stats() Stats { return s.stats }

// sampleMemory updates Stats.PeakBytes with the current heap size. There is
// no user-level allocator hook in Go to port blimc.c's new/rsz/del wrapping
// trio onto, so this samples runtime.MemStats.HeapAlloc instead of
// wrapping every allocation site.
func (s *Session) sampleMemory() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	if ms.HeapAlloc > s.stats.PeakBytes {
		s.stats.PeakBytes = ms.HeapAlloc
	}
}

// Run executes the bounded search up to opts.MaxK. Progress lines ("u{k}")
// are written to w as they are decided, not buffered to the end.
// interrupted is polled between bounds; when it becomes true mid-loop the
// run aborts with VerdictUnknown and discards in-flight oracle state. A nil
// interrupted is treated as never-set.
func (s *Session) Run(w progressWriter, interrupted *atomic.Bool) (Outcome, error) {
	if s.propertyForcedFalse {
		s.stats.Bound = 0
		return Outcome{Verdict: VerdictUnsat, Bound: 0}, nil
	}

	for k := 0; k <= s.opts.MaxK; k++ {
		if interrupted != nil && interrupted.Load() {
			s.stats.Bound = k
			return Outcome{Verdict: VerdictUnknown, Bound: k}, nil
		}

		unroll.AddStep(s.o, s.tpl, s.model, s.mask, k)
		badAtK := unroll.BadAt(s.tpl, s.bad.Lit, k)

		s.o.Assume(badAtK)
		res, err := s.solveStep(k, badAtK)
		if err != nil {
			return Outcome{}, errors.Wrap(err, "bmc: solve failed")
		}
		s.sampleMemory()

		switch res {
		case asResult(oracle.SAT), escalatedSat:
			source := s.o
			if res == escalatedSat {
				source = s.lastClone
			}
			s.stats.Bound = k
			wit := s.extractWitness(source, k)
			return Outcome{Verdict: VerdictSat, Bound: k, Witness: wit}, nil
		case asResult(oracle.UNSAT):
			s.log.WithField("bound", k).Debug("reached k")
			w.Progress(uLine(k))
			if s.model.NumLatches() == 0 {
				s.stats.Bound = k
				return Outcome{Verdict: VerdictUnsat, Bound: k}, nil
			}
		default:
			s.stats.Bound = k
			return Outcome{Verdict: VerdictUnknown, Bound: k}, nil
		}

		if k < s.opts.MaxK && (k+1)&k == 0 {
			s.o.Simplify()
		}
	}

	s.stats.Bound = s.opts.MaxK
	return Outcome{Verdict: VerdictUnknown, Bound: s.opts.MaxK}, nil
}

// progressWriter is the narrow interface Run needs to flush u{k} lines
// mid-loop; cmd/blimc's stdout writer satisfies it trivially.
type progressWriter interface {
	Progress(line string)
}

func uLine(k int) string { return "u" + itoa(k) }

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// stepResult distinguishes a plain oracle.Result from a result reached via
// clone escalation, since the latter needs its witness read off the clone.
type stepResult int8

const escalatedSat stepResult = 100

func asResult(r oracle.Result) stepResult { return stepResult(r) }

func (s *Session) solveStep(k int, badAtK int32) (stepResult, error) {
	if s.strategy == SingleSolver {
		res, err := s.o.Solve(0)
		return asResult(res), err
	}

	res, err := s.o.Solve(s.opts.ConflictBudget)
	if err != nil {
		return 0, err
	}
	if res != oracle.Unknown {
		return asResult(res), nil
	}

	clone, ok := s.o.Clone()
	if !ok {
		// Capability regressed (shouldn't happen since strategy was picked
		// from SupportsClone()); report the budget-exhausted result as-is.
		return asResult(oracle.Unknown), nil
	}
	s.stats.ClonedEscalations++
	clone.Simplify()
	clone.MeltAll()
	// The budgeted Solve above already consumed the one-shot assumption;
	// reassert it so the full-budget retry decides the same query.
	clone.Assume(badAtK)
	cloneRes, err := clone.Solve(0)
	if err != nil {
		return 0, err
	}
	switch cloneRes {
	case oracle.SAT:
		s.lastClone = clone
		return escalatedSat, nil
	case oracle.UNSAT:
		s.mergeFixed(clone, k)
		return asResult(oracle.UNSAT), nil
	default:
		return asResult(oracle.Unknown), nil
	}
}

// mergeFixed copies every root-level-implied literal the clone discovered
// back into the main oracle as a unit clause.
func (s *Session) mergeFixed(clone oracle.Oracle, k int) {
	maxVar := s.tpl.NumVars * int32(k+1)
	for v := int32(1); v <= maxVar; v++ {
		if fv := clone.Fixed(v); fv != 0 {
			s.o.AddLit(int32(fv) * v)
			s.o.AddLit(0)
		}
	}
}

// extractWitness reads the initial latch state and per-step input
// stimulus off source (the oracle instance — main or escalated clone —
// that returned SAT), rendering bits per the -x convention.
func (s *Session) extractWitness(source oracle.Oracle, k int) *Witness {
	if s.opts.NoWitness {
		return nil
	}
	w := &Witness{
		LatchInit: make([]byte, s.model.NumLatches()),
		Inputs:    make([][]byte, k+1),
	}
	for i, latch := range s.model.Latches {
		if !s.mask.InCOI(latch.Lit.Var()) {
			w.LatchInit[i] = '0'
			continue
		}
		lit := unroll.Shift(s.tpl.Lit(latch.Lit), 0, s.tpl.NumVars)
		w.LatchInit[i] = s.renderBit(source, lit)
	}
	for t := 0; t <= k; t++ {
		row := make([]byte, s.model.NumInputs())
		for i, in := range s.model.Inputs {
			if !s.mask.InCOI(in.Var()) {
				row[i] = '0'
				continue
			}
			lit := unroll.Shift(s.tpl.Lit(in), t, s.tpl.NumVars)
			row[i] = s.renderBit(source, lit)
		}
		w.Inputs[t] = row
	}
	return w
}

func (s *Session) renderBit(source oracle.Oracle, lit int32) byte {
	switch v := source.Value(lit); {
	case v > 0:
		return '1'
	case v < 0:
		return '0'
	default:
		if s.opts.UnforcedAsX {
			return 'x'
		}
		return '0'
	}
}
