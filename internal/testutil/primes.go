package testutil

import (
	"strconv"
	"strings"
)

// ReferencePrimes returns the primes below limit by plain trial division.
// It shares no code with the sieve. Keep limit small.
func ReferencePrimes(limit uint64) []uint64 {
	var out []uint64
	for n := uint64(2); n < limit; n++ {
		prime := true
		for d := uint64(2); d*d <= n; d++ {
			if n%d == 0 {
				prime = false
				break
			}
		}
		if prime {
			out = append(out, n)
		}
	}
	return out
}

// ParseLines parses newline-terminated decimal lines into uint64 values.
// Empty lines are skipped; a malformed line yields an error.
func ParseLines(s string) ([]uint64, error) {
	var out []uint64
	for _, line := range strings.Split(s, "\n") {
		if line == "" {
			continue
		}
		v, err := strconv.ParseUint(line, 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
