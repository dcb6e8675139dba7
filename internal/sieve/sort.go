package sieve

import (
	"bufio"
	"bytes"
	"io"
	"slices"
	"strings"
)

// CompareDecimal orders canonical decimal strings (no sign, no leading
// zeros) numerically: a shorter string is smaller, equal lengths compare
// lexicographically.
func CompareDecimal(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// SortLines reads newline-terminated decimal numbers from r and writes them
// to w in ascending numeric order, one per line.
//
// Segments append their batches in completion order, so a raw sieve output
// is only sorted within each batch; SortLines restores the global order.
// The whole input is held in memory.
func SortLines(r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	lines := strings.Split(string(bytes.TrimRight(data, "\n")), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}
	slices.SortFunc(lines, CompareDecimal)

	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
