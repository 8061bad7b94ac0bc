// Command blimc is a bounded model checker for sequential circuits in
// And-Inverter Graph form, ported from blimc.c's driver: parse an AIG,
// compute its cone of influence against the sole bad-state property,
// encode it to CNF, and search for a counterexample up to a bound.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cespare/blimc/aiger"
	"github.com/cespare/blimc/bmc"
	"github.com/cespare/blimc/oracle"
	ginioracle "github.com/cespare/blimc/oracle/gini"
	"github.com/cespare/blimc/oracle/native"
)

const usage = `blimc: a bounded model checker for AIGER circuits.

Usage:

  blimc [-h] [-v] [-x] [-n] [-p] [-O0|-O1|-O2|-O3|-O] [--no-clone] [--backend=name] [maxk] [file]

Flags:

  -h             print this message and exit
  -v             increase verbosity (stackable)
  -x             render unforced witness bits as 'x' instead of '0'
  -n             suppress witness emission
  -p             hint the SAT backend to disable advanced inprocessing
  -O0..-O3       simplification aggressiveness (bare -O means -O1)
  --no-clone     disable clone-and-retry escalation
  --backend=name select a SAT backend: native (default) or gini

maxk defaults to 0. If file is omitted, the AIG is read from standard input.
`

type config struct {
	help        bool
	verbose     int
	unforcedAsX bool
	noWitness   bool
	plain       bool
	optLevel    int
	noClone     bool
	backend     string
	maxK        int
	file        string
}

func parseArgs(args []string) (config, error) {
	cfg := config{optLevel: 3, backend: "native"}
	var positionals []string

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-h" || a == "--help":
			cfg.help = true
			return cfg, nil
		case a == "-v":
			cfg.verbose++
		case a == "-x":
			cfg.unforcedAsX = true
		case a == "-n":
			cfg.noWitness = true
		case a == "-p":
			cfg.plain = true
		case a == "-O":
			cfg.optLevel = 1
		case a == "-O0" || a == "-O1" || a == "-O2" || a == "-O3":
			lvl, _ := strconv.Atoi(strings.TrimPrefix(a, "-O"))
			cfg.optLevel = lvl
		case a == "--no-clone":
			cfg.noClone = true
		case strings.HasPrefix(a, "--backend="):
			cfg.backend = strings.TrimPrefix(a, "--backend=")
		case strings.HasPrefix(a, "-"):
			return config{}, errors.Errorf("unrecognized flag %q", a)
		default:
			positionals = append(positionals, a)
		}
	}

	for _, p := range positionals {
		if n, err := strconv.Atoi(p); err == nil {
			cfg.maxK = n
			continue
		}
		if cfg.file != "" {
			return config{}, errors.Errorf("unexpected extra argument %q", p)
		}
		cfg.file = p
	}
	return cfg, nil
}

func newBackend(name string) (oracle.Oracle, func() oracle.Oracle, error) {
	switch name {
	case "native":
		return native.New(), func() oracle.Oracle { return native.New() }, nil
	case "gini":
		return ginioracle.New(), nil, nil
	default:
		return nil, nil, errors.Errorf("unknown backend %q", name)
	}
}

// stdoutWriter adapts os.Stdout to bmc's progressWriter, flushing every
// u{k} line immediately rather than buffering it with the final output.
type stdoutWriter struct{ w *bufio.Writer }

func (s stdoutWriter) Progress(line string) {
	fmt.Fprintln(s.w, line)
	s.w.Flush()
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	os.Exit(run())
}

// run wires execute to the real process: os.Args, stdin/stdout/stderr, and
// a goroutine delivering OS termination signals into the interrupt flag
// execute polls between bounds.
func run() int {
	var interrupted atomic.Bool
	var caught atomic.Value
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		caught.Store(sig)
		interrupted.Store(true)
		logrus.WithField("signal", sig).Warn("received termination signal, finishing up")
	}()

	code := execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, &interrupted)

	signal.Stop(sigCh)
	if interrupted.Load() {
		if sig, ok := caught.Load().(syscall.Signal); ok {
			reraise(sig)
		}
	}
	return code
}

// execute contains the whole CLI, independent of the real process's stdio
// and signal plumbing, so tests can drive it against in-memory fixtures.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer, interrupted *atomic.Bool) int {
	cfg, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, "blimc:", err)
		fmt.Fprint(stderr, usage)
		return 1
	}
	if cfg.help {
		fmt.Fprint(stdout, usage)
		return 0
	}
	if cfg.verbose > 0 {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	r := stdin
	if cfg.file != "" {
		f, err := os.Open(cfg.file)
		if err != nil {
			fmt.Fprintln(stderr, "blimc:", errors.Wrap(err, "opening input"))
			return 1
		}
		defer f.Close()
		r = f
	}

	model, err := aiger.Read(r)
	if err != nil {
		fmt.Fprintln(stderr, "blimc:", errors.Wrap(err, "parsing AIG"))
		return 1
	}
	prop, err := aiger.SelectBad(model)
	if err != nil {
		fmt.Fprintln(stderr, "blimc:", errors.Wrap(err, "input unsupported"))
		return 1
	}

	backend, throwaway, err := newBackend(cfg.backend)
	if err != nil {
		fmt.Fprintln(stderr, "blimc:", err)
		return 1
	}
	noClone := cfg.noClone || !backend.SupportsClone()

	opts := bmc.Options{
		MaxK:           cfg.maxK,
		Oracle:         backend,
		NoClone:        noClone,
		UnforcedAsX:    cfg.unforcedAsX,
		NoWitness:      cfg.noWitness,
		Plain:          cfg.plain,
		Verbose:        cfg.verbose,
		ConflictBudget: conflictBudgetFor(cfg.optLevel),
	}

	session, err := bmc.NewSession(model, prop, opts, throwaway)
	if err != nil {
		fmt.Fprintln(stderr, "blimc:", err)
		return 1
	}

	logrus.WithFields(logrus.Fields{
		"M": model.MaxVar, "I": model.NumInputs(), "L": model.NumLatches(),
		"O": model.NumOutputs(), "A": model.NumAnds(), "B": model.NumBad(),
	}).Info("parsed AIG")
	if cfg.verbose > 0 {
		stats := session.Stats()
		logrus.WithFields(logrus.Fields{
			"literals": stats.COI.Literals, "inputs": stats.COI.Inputs,
			"latches": stats.COI.Latches, "ands": stats.COI.Ands,
		}).Info("cone of influence")
	}

	out := bufio.NewWriter(stdout)
	defer out.Flush()
	progress := stdoutWriter{w: out}

	outcome, err := session.Run(progress, interrupted)
	if err != nil {
		fmt.Fprintln(stderr, "blimc:", errors.Wrap(err, "bmc run failed"))
		return 1
	}

	printOutcome(out, outcome)
	out.Flush()

	if cfg.verbose > 0 {
		stats := session.Stats()
		logrus.WithFields(logrus.Fields{
			"bound": stats.Bound, "clonedSolvers": stats.ClonedEscalations,
			"peakHeapBytes": stats.PeakBytes,
		}).Info("finished")
	}

	switch outcome.Verdict {
	case bmc.VerdictSat:
		return 10
	case bmc.VerdictUnsat:
		return 20
	default:
		return 0
	}
}

func conflictBudgetFor(optLevel int) int {
	switch optLevel {
	case 0:
		return 0 // unbounded: no escalation, single-solver-equivalent behavior
	default:
		return 1000 * optLevel
	}
}

func printOutcome(w *bufio.Writer, out bmc.Outcome) {
	fmt.Fprintln(w, out.Verdict.String())
	fmt.Fprintln(w, "b0")
	if out.Verdict == bmc.VerdictSat && out.Witness != nil {
		fmt.Fprintln(w, string(out.Witness.LatchInit))
		for _, row := range out.Witness.Inputs {
			fmt.Fprintln(w, string(row))
		}
	}
	fmt.Fprintln(w, ".")
}

func reraise(sig syscall.Signal) {
	signal.Reset(sig)
	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		return
	}
	p.Signal(sig)
}
