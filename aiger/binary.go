package aiger

import (
	"bufio"
	"fmt"
)

// readBinary parses the "aig" (binary AIGER) encoding. Inputs and latches
// have no explicit literal: variables are numbered 1..I for inputs,
// I+1..I+L for latches, I+L+1..I+L+A for and-gates, in that fixed order, so
// only a latch's "next" (and optional reset) is written, one per line.
// Outputs/bad/constraints/justice/fairness are still ASCII literal lines.
// And-gates are delta-encoded as two unsigned varints per gate, LHS implicit
// and strictly increasing.
func readBinary(br *bufio.Reader, h header) (*Model, error) {
	m := &Model{MaxVar: h.maxVar}

	for i := uint32(0); i < h.numInputs; i++ {
		m.Inputs = append(m.Inputs, Lit((i+1)<<1))
	}

	for i := uint32(0); i < h.numLatches; i++ {
		line, err := readTextLine(br)
		if err != nil {
			return nil, fmt.Errorf("reading latch %d: %w", i, err)
		}
		lit := Lit((h.numInputs + i + 1) << 1)
		latch, err := parseBinaryLatch(line, lit)
		if err != nil {
			return nil, fmt.Errorf("reading latch %d: %w", i, err)
		}
		m.Latches = append(m.Latches, latch)
	}

	readLits := func(n uint32, what string) ([]Lit, error) {
		var lits []Lit
		for i := uint32(0); i < n; i++ {
			line, err := readTextLine(br)
			if err != nil {
				return nil, fmt.Errorf("reading %s %d: %w", what, i, err)
			}
			lit, err := parseLitLine(line)
			if err != nil {
				return nil, fmt.Errorf("reading %s %d: %w", what, i, err)
			}
			lits = append(lits, lit)
		}
		return lits, nil
	}

	var err error
	if m.Outputs, err = readLits(h.numOutputs, "output"); err != nil {
		return nil, err
	}
	if m.Bad, err = readLits(h.numBad, "bad"); err != nil {
		return nil, err
	}
	if m.Constraints, err = readLits(h.numConstraints, "constraint"); err != nil {
		return nil, err
	}
	for i := uint32(0); i < h.numJustice; i++ {
		line, err := readTextLine(br)
		if err != nil {
			return nil, fmt.Errorf("reading justice %d count: %w", i, err)
		}
		var n int
		if _, err := fmt.Sscanf(line, "%d", &n); err != nil {
			return nil, fmt.Errorf("reading justice %d count: %w", i, err)
		}
		lits, err := readLits(uint32(n), "justice literal")
		if err != nil {
			return nil, err
		}
		m.Justice = append(m.Justice, lits)
	}
	if m.Fairness, err = readLits(h.numFairness, "fairness"); err != nil {
		return nil, err
	}

	base := h.numInputs + h.numLatches
	prevLHS := uint32(0)
	for i := uint32(0); i < h.numAnds; i++ {
		lhs := (base + i + 1) << 1
		if lhs <= prevLHS {
			return nil, fmt.Errorf("and-gate %d: LHS %d is not strictly increasing", i, lhs)
		}
		prevLHS = lhs
		d0, err := readDelta(br)
		if err != nil {
			return nil, fmt.Errorf("reading and-gate %d delta0: %w", i, err)
		}
		d1, err := readDelta(br)
		if err != nil {
			return nil, fmt.Errorf("reading and-gate %d delta1: %w", i, err)
		}
		if d0 > lhs {
			return nil, fmt.Errorf("and-gate %d: corrupt delta encoding", i)
		}
		rhs0 := lhs - d0
		if d1 > rhs0 {
			return nil, fmt.Errorf("and-gate %d: corrupt delta encoding", i)
		}
		rhs1 := rhs0 - d1
		m.Ands = append(m.Ands, And{LHS: Lit(lhs), RHS0: Lit(rhs0), RHS1: Lit(rhs1)})
	}

	s := bufio.NewScanner(br)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if err := readSymbolsAndComments(s, m); err != nil {
		return nil, err
	}
	if err := m.Finalize(); err != nil {
		return nil, err
	}
	return m, nil
}

func parseBinaryLatch(line string, lit Lit) (Latch, error) {
	var next, reset uint32
	n, err := fmt.Sscanf(line, "%d %d", &next, &reset)
	switch {
	case n == 2 && err == nil:
		return Latch{Lit: lit, Next: Lit(next), Reset: Lit(reset)}, nil
	default:
		if _, err2 := fmt.Sscanf(line, "%d", &next); err2 != nil {
			return Latch{}, fmt.Errorf("malformed latch line %q", line)
		}
		return Latch{Lit: lit, Next: Lit(next), Reset: 0}, nil
	}
}

// readDelta decodes one AIGER "binary number": a base-128, least-significant
// group first unsigned varint, one byte per 7 bits, high bit as continuation
// (the same scheme LEB128 uses).
func readDelta(br *bufio.Reader) (uint32, error) {
	var x uint32
	var shift uint
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		x |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return x, nil
		}
		shift += 7
		if shift > 35 {
			return 0, fmt.Errorf("binary number too long")
		}
	}
}

func readTextLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line, nil
}
