package aiger

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// header is the parsed "aag"/"aig" MILOA[BCJF] line.
type header struct {
	binary                          bool
	maxVar                          uint32
	numInputs, numLatches           uint32
	numOutputs, numAnds             uint32
	numBad, numConstraints          uint32
	numJustice, numFairness         uint32
}

func parseHeader(line string) (header, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return header{}, fmt.Errorf("malformed header line %q", line)
	}
	var h header
	switch fields[0] {
	case "aag":
		h.binary = false
	case "aig":
		h.binary = true
	default:
		return header{}, fmt.Errorf("unrecognized magic %q", fields[0])
	}
	nums := make([]uint32, 5, 9)
	for i := 0; i < 5; i++ {
		n, err := strconv.ParseUint(fields[i+1], 10, 32)
		if err != nil {
			return header{}, fmt.Errorf("malformed header field %q: %s", fields[i+1], err)
		}
		nums[i] = uint32(n)
	}
	// Optional BCJF fields, any of which may be omitted entirely.
	for _, f := range fields[6:] {
		n, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return header{}, fmt.Errorf("malformed header field %q: %s", f, err)
		}
		nums = append(nums, uint32(n))
	}
	h.maxVar, h.numInputs, h.numLatches, h.numOutputs, h.numAnds = nums[0], nums[1], nums[2], nums[3], nums[4]
	if len(nums) > 5 {
		h.numBad = nums[5]
	}
	if len(nums) > 6 {
		h.numConstraints = nums[6]
	}
	if len(nums) > 7 {
		h.numJustice = nums[7]
	}
	if len(nums) > 8 {
		h.numFairness = nums[8]
	}
	if h.numInputs+h.numLatches+h.numAnds > h.maxVar {
		return header{}, fmt.Errorf("I+L+A (%d) exceeds M (%d)", h.numInputs+h.numLatches+h.numAnds, h.maxVar)
	}
	return h, nil
}

func parseLit(field string) (Lit, error) {
	n, err := strconv.ParseUint(field, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("malformed literal %q: %s", field, err)
	}
	return Lit(n), nil
}

func parseLitLine(line string) (Lit, error) {
	fields := strings.Fields(line)
	if len(fields) != 1 {
		return 0, fmt.Errorf("expected a single literal, got %q", line)
	}
	return parseLit(fields[0])
}

// readSymbolsAndComments consumes the trailing symbol table ("i0 foo",
// "l2 bar", ...) and the "c" comment section, both optional, both present
// verbatim in ASCII and binary AIGER alike.
func readSymbolsAndComments(s *bufio.Scanner, m *Model) error {
	for s.Scan() {
		line := s.Text()
		if line == "c" {
			return nil // remainder of the file is an opaque comment blob
		}
		if line == "" {
			continue
		}
		if err := parseSymbolLine(line, m); err != nil {
			return err
		}
	}
	return s.Err()
}

func parseSymbolLine(line string, m *Model) error {
	kind := line[0]
	rest := line[1:]
	sp := strings.IndexByte(rest, ' ')
	if sp < 0 {
		return fmt.Errorf("malformed symbol line %q", line)
	}
	idx, err := strconv.Atoi(rest[:sp])
	if err != nil {
		return fmt.Errorf("malformed symbol index in %q: %s", line, err)
	}
	name := rest[sp+1:]
	switch kind {
	case 'i':
		if m.InputNames == nil {
			m.InputNames = make(map[int]string)
		}
		m.InputNames[idx] = name
	case 'l':
		if m.LatchNames == nil {
			m.LatchNames = make(map[int]string)
		}
		m.LatchNames[idx] = name
	case 'o':
		if m.OutputNames == nil {
			m.OutputNames = make(map[int]string)
		}
		m.OutputNames[idx] = name
	case 'b':
		if m.BadNames == nil {
			m.BadNames = make(map[int]string)
		}
		m.BadNames[idx] = name
	default:
		// Unknown symbol kinds (justice/fairness/constraint names, or a
		// future extension) are accepted and ignored.
	}
	return nil
}
