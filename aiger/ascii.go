package aiger

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// readASCII parses the "aag" (ASCII AIGER) encoding: every section is a
// sequence of whitespace-separated-field text lines, in header order
// (inputs, latches, outputs, bad, constraints, justice, fairness, ands),
// followed by the optional symbol table and comment section.
func readASCII(s *bufio.Scanner, h header) (*Model, error) {
	m := &Model{MaxVar: h.maxVar}

	for i := uint32(0); i < h.numInputs; i++ {
		line, err := nextLine(s)
		if err != nil {
			return nil, fmt.Errorf("reading input %d: %w", i, err)
		}
		lit, err := parseLitLine(line)
		if err != nil {
			return nil, fmt.Errorf("reading input %d: %w", i, err)
		}
		m.Inputs = append(m.Inputs, lit)
	}

	for i := uint32(0); i < h.numLatches; i++ {
		line, err := nextLine(s)
		if err != nil {
			return nil, fmt.Errorf("reading latch %d: %w", i, err)
		}
		latch, err := parseASCIILatch(line)
		if err != nil {
			return nil, fmt.Errorf("reading latch %d: %w", i, err)
		}
		m.Latches = append(m.Latches, latch)
	}

	for i := uint32(0); i < h.numOutputs; i++ {
		lit, err := readOneLit(s, "output", i)
		if err != nil {
			return nil, err
		}
		m.Outputs = append(m.Outputs, lit)
	}

	for i := uint32(0); i < h.numBad; i++ {
		lit, err := readOneLit(s, "bad", i)
		if err != nil {
			return nil, err
		}
		m.Bad = append(m.Bad, lit)
	}

	for i := uint32(0); i < h.numConstraints; i++ {
		lit, err := readOneLit(s, "constraint", i)
		if err != nil {
			return nil, err
		}
		m.Constraints = append(m.Constraints, lit)
	}

	for i := uint32(0); i < h.numJustice; i++ {
		countLine, err := nextLine(s)
		if err != nil {
			return nil, fmt.Errorf("reading justice %d count: %w", i, err)
		}
		n, err := strconv.Atoi(strings.TrimSpace(countLine))
		if err != nil {
			return nil, fmt.Errorf("reading justice %d count: %w", i, err)
		}
		lits := make([]Lit, n)
		for j := 0; j < n; j++ {
			lit, err := readOneLit(s, "justice literal", uint32(j))
			if err != nil {
				return nil, err
			}
			lits[j] = lit
		}
		m.Justice = append(m.Justice, lits)
	}

	for i := uint32(0); i < h.numFairness; i++ {
		lit, err := readOneLit(s, "fairness", i)
		if err != nil {
			return nil, err
		}
		m.Fairness = append(m.Fairness, lit)
	}

	for i := uint32(0); i < h.numAnds; i++ {
		line, err := nextLine(s)
		if err != nil {
			return nil, fmt.Errorf("reading and-gate %d: %w", i, err)
		}
		and, err := parseASCIIAnd(line)
		if err != nil {
			return nil, fmt.Errorf("reading and-gate %d: %w", i, err)
		}
		m.Ands = append(m.Ands, and)
	}

	if err := readSymbolsAndComments(s, m); err != nil {
		return nil, err
	}
	if err := m.Finalize(); err != nil {
		return nil, err
	}
	return m, nil
}

func readOneLit(s *bufio.Scanner, what string, i uint32) (Lit, error) {
	line, err := nextLine(s)
	if err != nil {
		return 0, fmt.Errorf("reading %s %d: %w", what, i, err)
	}
	lit, err := parseLitLine(line)
	if err != nil {
		return 0, fmt.Errorf("reading %s %d: %w", what, i, err)
	}
	return lit, nil
}

func nextLine(s *bufio.Scanner) (string, error) {
	if !s.Scan() {
		if err := s.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return s.Text(), nil
}

func parseASCIILatch(line string) (Latch, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 && len(fields) != 3 {
		return Latch{}, fmt.Errorf("malformed latch line %q", line)
	}
	lit, err := parseLit(fields[0])
	if err != nil {
		return Latch{}, err
	}
	next, err := parseLit(fields[1])
	if err != nil {
		return Latch{}, err
	}
	reset := Lit(0) // default: reset to false
	if len(fields) == 3 {
		reset, err = parseLit(fields[2])
		if err != nil {
			return Latch{}, err
		}
	}
	return Latch{Lit: lit, Next: next, Reset: reset}, nil
}

func parseASCIIAnd(line string) (And, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return And{}, fmt.Errorf("malformed and-gate line %q", line)
	}
	lhs, err := parseLit(fields[0])
	if err != nil {
		return And{}, err
	}
	rhs0, err := parseLit(fields[1])
	if err != nil {
		return And{}, err
	}
	rhs1, err := parseLit(fields[2])
	if err != nil {
		return And{}, err
	}
	return And{LHS: lhs, RHS0: rhs0, RHS1: rhs1}, nil
}
