package aiger

import (
	"bufio"
	"fmt"
	"io"
)

// Read parses an AIG model from r, auto-detecting the ASCII ("aag") or
// binary ("aig") encoding from the header line.
func Read(r io.Reader) (*Model, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	headerLine, err := readTextLine(br)
	if err != nil {
		return nil, &MalformedError{Reason: fmt.Sprintf("reading header: %s", err)}
	}
	h, err := parseHeader(headerLine)
	if err != nil {
		return nil, &MalformedError{Reason: err.Error()}
	}

	var m *Model
	if h.binary {
		m, err = readBinary(br, h)
	} else {
		s := bufio.NewScanner(br)
		s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		m, err = readASCII(s, h)
	}
	if err != nil {
		return nil, &MalformedError{Reason: err.Error()}
	}
	return m, nil
}
