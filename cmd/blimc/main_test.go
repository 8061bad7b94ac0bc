package main

import (
	"bytes"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgsDefaults(t *testing.T) {
	cfg, err := parseArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.optLevel)
	assert.Equal(t, "native", cfg.backend)
	assert.Equal(t, 0, cfg.maxK)
	assert.Equal(t, "", cfg.file)
}

func TestParseArgsBareOMeansO1(t *testing.T) {
	cfg, err := parseArgs([]string{"-O"})
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.optLevel)
}

func TestParseArgsExplicitOptLevel(t *testing.T) {
	cfg, err := parseArgs([]string{"-O2"})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.optLevel)
}

func TestParseArgsStackedVerbosity(t *testing.T) {
	cfg, err := parseArgs([]string{"-v", "-v", "-v"})
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.verbose)
}

func TestParseArgsPositionalsInEitherOrder(t *testing.T) {
	cfg, err := parseArgs([]string{"model.aag", "12"})
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.maxK)
	assert.Equal(t, "model.aag", cfg.file)

	cfg, err = parseArgs([]string{"12", "model.aag"})
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.maxK)
	assert.Equal(t, "model.aag", cfg.file)
}

func TestParseArgsFlagsAroundPositionals(t *testing.T) {
	cfg, err := parseArgs([]string{"-v", "5", "-x", "model.aag", "-n"})
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.verbose)
	assert.True(t, cfg.unforcedAsX)
	assert.True(t, cfg.noWitness)
	assert.Equal(t, 5, cfg.maxK)
	assert.Equal(t, "model.aag", cfg.file)
}

func TestParseArgsBackendFlag(t *testing.T) {
	cfg, err := parseArgs([]string{"--backend=gini", "--no-clone"})
	require.NoError(t, err)
	assert.Equal(t, "gini", cfg.backend)
	assert.True(t, cfg.noClone)
}

func TestParseArgsHelpShortCircuits(t *testing.T) {
	cfg, err := parseArgs([]string{"-v", "-h", "--backend=bogus"})
	require.NoError(t, err)
	assert.True(t, cfg.help)
}

func TestParseArgsRejectsUnknownFlag(t *testing.T) {
	_, err := parseArgs([]string{"--frobnicate"})
	assert.Error(t, err)
}

func TestParseArgsRejectsExtraPositional(t *testing.T) {
	_, err := parseArgs([]string{"a.aag", "b.aag"})
	assert.Error(t, err)
}

func noInterrupt() *atomic.Bool { return new(atomic.Bool) }

func TestExecuteTriviallyUnsatCombinational(t *testing.T) {
	const src = `aag 2 1 0 0 1 1
2
4
4 2 3
`
	var stdout, stderr bytes.Buffer
	code := execute([]string{"0"}, strings.NewReader(src), &stdout, &stderr, noInterrupt())

	assert.Equal(t, 20, code)
	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	assert.Equal(t, "0", lines[0])
	assert.Equal(t, "b0", lines[1])
	assert.Equal(t, ".", lines[len(lines)-1])
}

func TestExecuteTriviallySatCombinational(t *testing.T) {
	// zero inputs, bad is the constant-true node (odd literal of var 0).
	const src = `aag 0 0 0 0 0 1
1
`
	var stdout, stderr bytes.Buffer
	code := execute([]string{"0"}, strings.NewReader(src), &stdout, &stderr, noInterrupt())

	assert.Equal(t, 10, code)
	lines := strings.Split(stdout.String(), "\n")
	assert.Equal(t, "1", lines[0])
	assert.Equal(t, "b0", lines[1])
	assert.Equal(t, "", lines[2]) // empty latch-init line: zero latches
	assert.Equal(t, "", lines[3]) // empty input line for the single step
	assert.Equal(t, ".", lines[4])
}

func TestExecuteCounterReachesBad(t *testing.T) {
	const src = `aag 1 0 1 0 0 1
2 3
2
`
	var stdout, stderr bytes.Buffer
	code := execute([]string{"5"}, strings.NewReader(src), &stdout, &stderr, noInterrupt())

	assert.Equal(t, 10, code)
	out := stdout.String()
	assert.True(t, strings.HasPrefix(out, "u0\n1\nb0\n"), "got %q", out)
	assert.True(t, strings.HasSuffix(out, ".\n"))
}

func TestExecuteUnknownAtBoundExitsZero(t *testing.T) {
	const src = `aag 2 0 1 0 1 1
2 3
4
4 2 3
`
	var stdout, stderr bytes.Buffer
	code := execute([]string{"2"}, strings.NewReader(src), &stdout, &stderr, noInterrupt())

	assert.Equal(t, 0, code)
	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	assert.Equal(t, []string{"u0", "u1", "u2", "2", "b0", "."}, lines)
}

func TestExecuteHelpPrintsUsageAndExitsZero(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := execute([]string{"-h"}, strings.NewReader(""), &stdout, &stderr, noInterrupt())

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "Usage:")
	assert.Empty(t, stderr.String())
}

func TestExecuteUnrecognizedFlagExitsNonzeroWithUsageOnStderr(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := execute([]string{"--bogus"}, strings.NewReader(""), &stdout, &stderr, noInterrupt())

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Usage:")
}

func TestExecuteMalformedInputReportsDiagnosticOnStderr(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := execute([]string{"0"}, strings.NewReader("not an aag file\n"), &stdout, &stderr, noInterrupt())

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "blimc:")
}

func TestExecuteInterruptedBeforeStartReportsUnknown(t *testing.T) {
	const src = `aag 1 0 1 0 0 1
2 3
2
`
	interrupted := new(atomic.Bool)
	interrupted.Store(true)

	var stdout, stderr bytes.Buffer
	code := execute([]string{"5"}, strings.NewReader(src), &stdout, &stderr, interrupted)

	assert.Equal(t, 0, code)
	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	assert.Equal(t, []string{"2", "b0", "."}, lines)
}

func TestExecuteGiniBackendImpliesNoClone(t *testing.T) {
	const src = `aag 2 1 0 0 1 1
2
4
4 2 3
`
	var stdout, stderr bytes.Buffer
	code := execute([]string{"--backend=gini", "0"}, strings.NewReader(src), &stdout, &stderr, noInterrupt())

	assert.Equal(t, 20, code)
	assert.Empty(t, stderr.String())
}

func TestExecuteUnknownBackendReportsError(t *testing.T) {
	const src = `aag 2 1 0 0 1 1
2
4
4 2 3
`
	var stdout, stderr bytes.Buffer
	code := execute([]string{"--backend=nope", "0"}, strings.NewReader(src), &stdout, &stderr, noInterrupt())

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "unknown backend")
}
