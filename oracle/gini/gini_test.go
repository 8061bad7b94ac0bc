package gini

import (
	"testing"

	"github.com/cespare/blimc/oracle"
)

func addClause(o *Oracle, lits ...int32) {
	for _, l := range lits {
		o.AddLit(l)
	}
	o.AddLit(0)
}

func TestSolveSatisfiable(t *testing.T) {
	o := New()
	addClause(o, 1, 2)
	addClause(o, -1, 2)
	addClause(o, -2, 3)

	res, err := o.Solve(0)
	if err != nil {
		t.Fatal(err)
	}
	if res != oracle.SAT {
		t.Fatalf("Solve = %v, want SAT", res)
	}
	if v := o.Value(2); v != 1 {
		t.Errorf("Value(2) = %d, want 1", v)
	}
}

func TestSolveUnsatisfiable(t *testing.T) {
	o := New()
	addClause(o, 1)
	addClause(o, -1)

	res, err := o.Solve(0)
	if err != nil {
		t.Fatal(err)
	}
	if res != oracle.UNSAT {
		t.Fatalf("Solve = %v, want UNSAT", res)
	}
}

func TestUnsupportedCapabilities(t *testing.T) {
	o := New()
	if o.SupportsClone() {
		t.Error("gini backend must report SupportsClone() == false")
	}
	if _, ok := o.Clone(); ok {
		t.Error("Clone must fail on the gini backend")
	}
	if got := o.Fixed(1); got != 0 {
		t.Errorf("Fixed always reports 0 on the gini backend, got %d", got)
	}
}
