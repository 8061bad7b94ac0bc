// Package oracle defines the SatOracle capability interface the bounded
// model checker drives: an incremental, assumption-based SAT solver that
// clauses and assumptions can be fed into across many Solve calls, with
// optional support for variable freezing/melting, in-processing
// simplification, and state cloning. Two concrete adapters exist:
// oracle/native (an adapted from-scratch DPLL engine, full capability) and
// oracle/gini (a github.com/go-air/gini wrapper, reduced capability) —
// mirroring blimc.c's own lingeling/cadical dual-backend split.
package oracle

// Result is the outcome of a bounded Solve call.
type Result int8

const (
	// UNSAT means the clause database plus the current assumptions has no
	// satisfying assignment.
	UNSAT Result = iota
	// SAT means a satisfying assignment was found; Value reports it.
	SAT
	// Unknown means the solver exhausted its budget before deciding either
	// way. Only legal when Solve was called with budget > 0.
	Unknown
)

func (r Result) String() string {
	switch r {
	case UNSAT:
		return "UNSAT"
	case SAT:
		return "SAT"
	case Unknown:
		return "UNKNOWN"
	default:
		return "invalid-result"
	}
}

// Oracle is the adapter every SAT backend implements. Variables are
// positive int32s; a literal is a variable, or its negation. Var 0 is never
// used; callers allocate their own dense variable numbering (see package
// encode) and only ever hand this interface literals over variables they
// have already introduced via AddLit.
type Oracle interface {
	// AddLit adds one literal of the clause currently being built. A
	// clause ends, and is committed, when AddLit(0) is called — the same
	// convention blimc.c's lgladd/ccadical_add use.
	AddLit(lit int32)
	// Assume adds a one-shot assumption for the next Solve call only.
	Assume(lit int32)
	// Solve runs the solver under the live clauses and pending
	// assumptions. budget <= 0 means unbounded (run to completion);
	// budget > 0 is an opaque conflict-limit-like budget unit after which
	// Unknown may legally be returned.
	Solve(budget int) (Result, error)
	// Value reports the last model's value for lit (only meaningful after
	// Solve returned SAT): 1 true, -1 false, 0 don't-care.
	Value(lit int32) int8
	// Fixed reports whether lit is implied at the root level regardless of
	// assumptions, independent of a prior Solve call having been made: 1
	// implied true, -1 implied false, 0 unknown.
	Fixed(lit int32) int8
	// Freeze marks a variable as externally visible, exempting it from
	// elimination by Simplify. A no-op on backends without in-processing.
	Freeze(lit int32)
	// Melt reverses Freeze.
	Melt(lit int32)
	// FreezeAll freezes every variable introduced so far.
	FreezeAll()
	// MeltAll reverses FreezeAll.
	MeltAll()
	// Simplify runs a round of in-processing (unit propagation and
	// whatever clause elimination the backend supports) against the live
	// clause database. A no-op on backends without in-processing.
	Simplify()
	// Clone returns an independent copy of the solver's full state, or
	// (nil, false) if the backend cannot do so (SupportsClone() == false).
	Clone() (Oracle, bool)
	// SupportsClone reports whether Clone ever succeeds for this backend.
	SupportsClone() bool
	// SetVerbose plumbs -v/-v -v-level verbosity into the backend's own
	// diagnostics, where it has any.
	SetVerbose(level int)
}

// Extractor is implemented by backends that can report their live clause
// database back out, which is what lets the encoder's simplify-then-extract
// step recover a simplified untimed template. Backends with no
// clause-level in-processing of their own (oracle/gini) need not implement
// this; the core falls back to keeping the unsimplified template and
// relying on the oracle's own persistent state for the simplified t=0
// layer.
type Extractor interface {
	ExtractClauses() [][]int32
}

// PlainHinter is implemented by backends that have their own
// in-processing/decision heuristics to disable under a plain-mode hint.
// Backends with no such heuristics (oracle/gini) need not implement it.
type PlainHinter interface {
	SetPlain(plain bool)
}
