// Package aiger implements the data model and parser for the And-Inverter
// Graph circuit format (AIGER, both the ASCII "aag" and binary "aig"
// encodings, including the 1.9 bad/constraint/justice/fairness extension).
//
// A Model is read-only once parsed: nothing in this package or its callers
// mutates a Model after Read returns it.
package aiger

import "fmt"

// Lit is an AIG literal: an AIG node index shifted left by one, with bit 0
// carrying the negation. Lit(0) is the constant-false literal.
type Lit uint32

// Var returns the node index that l refers to, stripping the sign bit.
func (l Lit) Var() uint32 { return uint32(l) >> 1 }

// Sign reports whether l is a negated literal.
func (l Lit) Sign() bool { return l&1 != 0 }

// Not returns the complementary literal.
func (l Lit) Not() Lit { return l ^ 1 }

// Strip returns the positive literal for the same node.
func (l Lit) Strip() Lit { return l &^ 1 }

func (l Lit) String() string {
	if l.Sign() {
		return fmt.Sprintf("-%d", l.Var())
	}
	return fmt.Sprintf("%d", l.Var())
}

// NodeKind identifies the structural role an AIG node plays.
type NodeKind uint8

const (
	NodeConst NodeKind = iota
	NodeInput
	NodeLatch
	NodeAnd
)

// Latch is a sequential element: its value at time t+1 is Next's value at
// time t, sampled before the first timestep according to Reset.
type Latch struct {
	Lit  Lit
	Next Lit
	// Reset is Lit(0) (reset to false), Lit(1) (reset to true), or equal to
	// Lit itself (uninitialized / "self" reset, meaning the latch's initial
	// value is unconstrained).
	Reset Lit
}

// Uninitialized reports whether the latch has a self reset.
func (l Latch) Uninitialized() bool { return l.Reset == l.Lit }

// And is a two-input AND gate: LHS <-> RHS0 /\ RHS1.
type And struct {
	LHS, RHS0, RHS1 Lit
}

// Model is a parsed AIG circuit together with its symbol table lookups.
// Nodes are addressed by var index (Lit.Var()); Model provides O(1)
// classification of any var in [0, MaxVar] via KindOf.
type Model struct {
	MaxVar uint32

	Inputs      []Lit
	Latches     []Latch
	Outputs     []Lit
	Bad         []Lit
	Constraints []Lit
	Justice     [][]Lit
	Fairness    []Lit
	Ands        []And

	InputNames  map[int]string
	LatchNames  map[int]string
	OutputNames map[int]string
	BadNames    map[int]string

	kind     []NodeKind
	latchIdx []int
	andIdx   []int
}

// Finalize populates the O(1) classification tables. Every parser (ascii.go,
// binary.go) must call this once before returning a Model.
func (m *Model) Finalize() error {
	n := int(m.MaxVar) + 1
	m.kind = make([]NodeKind, n)
	m.latchIdx = make([]int, n)
	m.andIdx = make([]int, n)

	mark := func(v uint32, k NodeKind) error {
		if v == 0 || int(v) >= n {
			return fmt.Errorf("aiger: node index %d out of range [0, %d]", v, m.MaxVar)
		}
		if m.kind[v] != NodeConst {
			return fmt.Errorf("aiger: node %d defined more than once", v)
		}
		m.kind[v] = k
		return nil
	}

	for _, l := range m.Inputs {
		if err := mark(l.Var(), NodeInput); err != nil {
			return err
		}
	}
	for i, l := range m.Latches {
		if err := mark(l.Lit.Var(), NodeLatch); err != nil {
			return err
		}
		m.latchIdx[l.Lit.Var()] = i
	}
	for i, a := range m.Ands {
		if err := mark(a.LHS.Var(), NodeAnd); err != nil {
			return err
		}
		m.andIdx[a.LHS.Var()] = i
	}
	return nil
}

// KindOf classifies the node at var v (v must be in [0, MaxVar]).
func (m *Model) KindOf(v uint32) NodeKind { return m.kind[v] }

// LatchAt returns the latch whose output var is v. v must satisfy
// KindOf(v) == NodeLatch.
func (m *Model) LatchAt(v uint32) *Latch { return &m.Latches[m.latchIdx[v]] }

// AndAt returns the and-gate whose LHS var is v. v must satisfy
// KindOf(v) == NodeAnd.
func (m *Model) AndAt(v uint32) *And { return &m.Ands[m.andIdx[v]] }

// NumInputs, NumLatches, NumOutputs, NumAnds, NumBad, NumConstraints,
// NumJustice, and NumFairness mirror aiger_t's MILOA/BCJK header counters.
func (m *Model) NumInputs() int      { return len(m.Inputs) }
func (m *Model) NumLatches() int     { return len(m.Latches) }
func (m *Model) NumOutputs() int     { return len(m.Outputs) }
func (m *Model) NumAnds() int        { return len(m.Ands) }
func (m *Model) NumBad() int         { return len(m.Bad) }
func (m *Model) NumConstraints() int { return len(m.Constraints) }
func (m *Model) NumJustice() int     { return len(m.Justice) }
func (m *Model) NumFairness() int    { return len(m.Fairness) }

// Property is the single designated bad-state literal this model will be
// checked against, selected by SelectBad.
type Property struct {
	Lit  Lit
	Name string
}

// SelectBad applies the acceptance rules of the bounded model checker: it
// picks the sole bad-state property (or, absent one, the sole output) and
// rejects models this checker cannot handle.
func SelectBad(m *Model) (Property, error) {
	switch {
	case m.NumBad() == 0 && m.NumOutputs() == 0:
		return Property{}, &UnsupportedError{Reason: "model contains no output nor bad state property"}
	case m.NumBad() > 1:
		return Property{}, &UnsupportedError{Reason: "cannot handle multiple bad state properties"}
	case m.NumBad() == 0 && m.NumOutputs() > 1:
		return Property{}, &UnsupportedError{Reason: "cannot handle multiple outputs (without bad state property)"}
	case m.NumConstraints() > 0:
		return Property{}, &UnsupportedError{Reason: "cannot handle environment constraints"}
	}
	if m.NumBad() == 1 {
		return Property{Lit: m.Bad[0], Name: m.BadNames[0]}, nil
	}
	return Property{Lit: m.Outputs[0], Name: m.OutputNames[0]}, nil
}

// UnsupportedError is returned by SelectBad for models outside the scope of
// this bounded model checker.
type UnsupportedError struct{ Reason string }

func (e *UnsupportedError) Error() string { return "aiger: " + e.Reason }

// MalformedError wraps a parse failure with the byte offset at which it was
// detected, analogous to blimc.c's "parse error in '%s' at %s" diagnostic.
type MalformedError struct {
	Offset int64
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("aiger: parse error at offset %d: %s", e.Offset, e.Reason)
}
