package unroll

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cespare/blimc/aiger"
	"github.com/cespare/blimc/coi"
	"github.com/cespare/blimc/encode"
	"github.com/cespare/blimc/oracle"
)

// recorder is a minimal oracle.Oracle that just records committed clauses,
// for asserting exactly what package unroll feeds the solver.
type recorder struct {
	clauses [][]int32
	cur     []int32
	melted  []int32
	frozen  []int32
}

func (r *recorder) AddLit(lit int32) {
	if lit == 0 {
		r.clauses = append(r.clauses, append([]int32(nil), r.cur...))
		r.cur = r.cur[:0]
		return
	}
	r.cur = append(r.cur, lit)
}
func (r *recorder) Assume(lit int32)                {}
func (r *recorder) Solve(int) (oracle.Result, error) { return oracle.SAT, nil }
func (r *recorder) Value(int32) int8                { return 0 }
func (r *recorder) Fixed(int32) int8                { return 0 }
func (r *recorder) Freeze(lit int32)                { r.frozen = append(r.frozen, lit) }
func (r *recorder) Melt(lit int32)                  { r.melted = append(r.melted, lit) }
func (r *recorder) FreezeAll()                      {}
func (r *recorder) MeltAll()                        {}
func (r *recorder) Simplify()                       {}
func (r *recorder) Clone() (oracle.Oracle, bool)    { return nil, false }
func (r *recorder) SupportsClone() bool             { return false }
func (r *recorder) SetVerbose(int)                  {}

var _ oracle.Oracle = (*recorder)(nil)

func TestShiftIsIdentityAtZero(t *testing.T) {
	if got := Shift(5, 0, 10); got != 5 {
		t.Errorf("Shift(5,0,10) = %d, want 5", got)
	}
	if got := Shift(-5, 0, 10); got != -5 {
		t.Errorf("Shift(-5,0,10) = %d, want -5", got)
	}
}

func TestShiftPreservesSign(t *testing.T) {
	if got := Shift(-2, 3, 10); got != -32 {
		t.Errorf("Shift(-2,3,10) = %d, want -32", got)
	}
	if got := Shift(2, 3, 10); got != 32 {
		t.Errorf("Shift(2,3,10) = %d, want 32", got)
	}
}

func TestAddStepZeroAssertsResetUnshifted(t *testing.T) {
	// One latch reset to false, one and-gate.
	const src = `aag 2 0 1 0 1
2 4 0
4 2 2
`
	m, err := aiger.Read(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	mask, _ := coi.Compute(m, aiger.Lit(2))
	tpl := encode.Build(m, mask)

	r := &recorder{}
	AddStep(r, tpl, m, mask, 0)

	// At t=0, no latch-equivalence clauses (those only apply for t>0), just
	// the reset unit clause and the gate clauses, both unshifted.
	if diff := cmp.Diff([][]int32{{-1}, {-2, 1}, {-2, 1}, {-1, -1, 2}}, r.clauses); diff != "" {
		t.Errorf("clauses at t=0 mismatch (-want +got):\n%s", diff)
	}

	// The latch's next-state variable at this step (compact var 2, the
	// and-gate output) must come out frozen so it survives until the next
	// step's equivalence clause consumes it.
	if diff := cmp.Diff([]int32{2}, r.frozen); diff != "" {
		t.Errorf("frozen at t=0 mismatch (-want +got):\n%s", diff)
	}
}

func TestAddStepNonzeroLinksLatchToPreviousNext(t *testing.T) {
	const src = `aag 1 0 1 0 0
2 3
`
	m, err := aiger.Read(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	mask, _ := coi.Compute(m, aiger.Lit(2))
	tpl := encode.Build(m, mask)
	if tpl.NumVars != 1 {
		t.Fatalf("NumVars = %d, want 1", tpl.NumVars)
	}

	r := &recorder{}
	AddStep(r, tpl, m, mask, 0)
	r.clauses = nil // discard the t=0 reset clause; only inspect t=1's output
	AddStep(r, tpl, m, mask, 1)

	// latch.Next is the negation of the latch's own untimed var (var 1),
	// so prev = shift(-1, 0, 1) = -1, cur = shift(1, 1, 1) = 2.
	want := [][]int32{{1, 2}, {-1, -2}}
	if diff := cmp.Diff(want, r.clauses); diff != "" {
		t.Errorf("t=1 equivalence clauses mismatch (-want +got):\n%s", diff)
	}
	if len(r.melted) != 1 || r.melted[0] != -1 {
		t.Errorf("melted = %v, want [-1]", r.melted)
	}

	// The t=0 call froze shift(next,0) = -1; the t=1 call just melted
	// exactly that literal, and froze its own step's shift(next,1) = -2
	// in turn, ready to be melted when t=2 arrives.
	if diff := cmp.Diff([]int32{-1, -2}, r.frozen); diff != "" {
		t.Errorf("frozen across t=0,1 mismatch (-want +got):\n%s", diff)
	}
}

func TestBadAtShiftsTheBadLiteral(t *testing.T) {
	const src = `aag 1 0 1 0 0
2 3
`
	m, err := aiger.Read(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	bad := aiger.Lit(2)
	mask, _ := coi.Compute(m, bad)
	tpl := encode.Build(m, mask)

	if got := BadAt(tpl, bad, 0); got != 1 {
		t.Errorf("BadAt(t=0) = %d, want 1", got)
	}
	if got := BadAt(tpl, bad, 2); got != 3 {
		t.Errorf("BadAt(t=2) = %d, want 3 (var 1 + 2*numVars(1))", got)
	}
}
