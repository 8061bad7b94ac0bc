package coi

import (
	"strings"
	"testing"

	"github.com/cespare/blimc/aiger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRead(t *testing.T, src string) *aiger.Model {
	t.Helper()
	m, err := aiger.Read(strings.NewReader(src))
	require.NoError(t, err)
	return m
}

func TestComputeFollowsAndGatesAndLatches(t *testing.T) {
	// Latch 1 (var 1, self-looped) and an input (var 4) both feed the bad
	// and-gate (var 2). Latch 2 (var 3, self-looped) is unreferenced and
	// must be excluded from the cone.
	const src = `aag 4 1 2 0 1 0
8
2 2
6 6
4 2 8
`
	m := mustRead(t, src)
	mask, stats := Compute(m, aiger.Lit(4))

	assert.True(t, mask.InCOI(2))  // and-gate output (the bad node itself)
	assert.True(t, mask.InCOI(1))  // latch 1 output
	assert.True(t, mask.InCOI(4))  // input, reached via the and-gate
	assert.False(t, mask.InCOI(3)) // latch 2 is unreachable

	assert.Equal(t, 1, stats.Inputs)
	assert.Equal(t, 1, stats.Latches)
	assert.Equal(t, 1, stats.Ands)
	assert.Equal(t, 0, stats.Constants)
	assert.Equal(t, 3, stats.Literals)
}

func TestComputeBadIsConstant(t *testing.T) {
	const src = `aag 0 0 0 0 0 1
1
`
	m := mustRead(t, src)
	mask, stats := Compute(m, aiger.Lit(1))
	assert.Equal(t, 1, stats.Constants)
	assert.Equal(t, 0, stats.Inputs)
	assert.Equal(t, 1, mask.Order(0))
}

func TestComputeDiscoveryOrderIsStable(t *testing.T) {
	const src = `aag 3 1 1 0 1
2
4 2
6 2 4
`
	m := mustRead(t, src)
	mask, _ := Compute(m, aiger.Lit(6))
	// The and-gate (var 3) is discovered first (order 1 is the bad node
	// itself), then its two operands in RHS0, RHS1 order: input (var 1),
	// then latch (var 2).
	assert.Equal(t, 1, mask.Order(3))
	assert.Equal(t, 2, mask.Order(1))
	assert.Equal(t, 3, mask.Order(2))
}
