// Package verify audits sieve output against an independent reference.
//
// The audit reads newline-separated decimal values and reports malformed
// lines, duplicates, values outside [0, limit), composites and primes that
// are missing. Seen values and the reference set are held in roaring
// bitmaps, which keeps the audit of dense prime sets compact.
package verify

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"

	"github.com/agbru/primegen/internal/bignum"
)

// MaxLimit is the largest limit the audit accepts. The reference sieve
// allocates one bit per value below the limit.
const MaxLimit = 1 << 31

// maxSamples bounds the examples kept in a report.
const maxSamples = 20

// ErrLimitTooLarge is returned for limits above MaxLimit.
var ErrLimitTooLarge = errors.New("verify: limit too large to audit")

// Report is the outcome of an audit.
type Report struct {
	Limit      uint64   `json:"limit"`
	Lines      uint64   `json:"lines"`
	Unique     uint64   `json:"unique"`
	Expected   uint64   `json:"expected"`
	Duplicates uint64   `json:"duplicates"`
	Malformed  uint64   `json:"malformed"`
	OutOfRange uint64   `json:"out_of_range"`
	Composites uint64   `json:"composites"`
	Missing    uint64   `json:"missing"`
	Samples    []string `json:"samples,omitempty"`
}

// OK reports whether the output is exactly the set of primes below the
// limit, each listed once.
func (r Report) OK() bool {
	return r.Duplicates == 0 && r.Malformed == 0 && r.OutOfRange == 0 &&
		r.Composites == 0 && r.Missing == 0
}

func (r Report) String() string {
	if r.OK() {
		return fmt.Sprintf("verified %d primes below %d", r.Unique, r.Limit)
	}
	return fmt.Sprintf("%d lines: %d duplicate, %d malformed, %d out of range, %d composite, %d missing (expected %d primes)",
		r.Lines, r.Duplicates, r.Malformed, r.OutOfRange, r.Composites, r.Missing, r.Expected)
}

func (r *Report) sample(format string, args ...any) {
	if len(r.Samples) < maxSamples {
		r.Samples = append(r.Samples, fmt.Sprintf(format, args...))
	}
}

// Audit reads sieve output from r and compares it with the primes below
// limit.
//
// Returns:
//   - Report: The counts of every kind of discrepancy.
//   - error: ErrLimitTooLarge, or a read error.
func Audit(r io.Reader, limit bignum.Nat) (Report, error) {
	lim, ok := limit.Uint64()
	if !ok || lim > MaxLimit {
		return Report{}, fmt.Errorf("%w: %s > %d", ErrLimitTooLarge, limit, uint64(MaxLimit))
	}
	rep := Report{Limit: lim}
	seen := roaring.New()

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		rep.Lines++
		v, err := parseCanonical(line)
		if err != nil {
			rep.Malformed++
			rep.sample("line %d: malformed %q", rep.Lines, line)
			continue
		}
		if v >= lim {
			rep.OutOfRange++
			rep.sample("line %d: %d is not below %d", rep.Lines, v, lim)
			continue
		}
		if seen.Contains(uint32(v)) {
			rep.Duplicates++
			rep.sample("line %d: duplicate %d", rep.Lines, v)
			continue
		}
		seen.Add(uint32(v))
	}
	if err := sc.Err(); err != nil {
		return rep, err
	}

	ref := Reference(lim)
	rep.Unique = seen.GetCardinality()
	rep.Expected = ref.GetCardinality()

	composites := roaring.AndNot(seen, ref)
	rep.Composites = composites.GetCardinality()
	for it := composites.Iterator(); it.HasNext() && len(rep.Samples) < maxSamples; {
		rep.sample("%d is not prime", it.Next())
	}
	missing := roaring.AndNot(ref, seen)
	rep.Missing = missing.GetCardinality()
	for it := missing.Iterator(); it.HasNext() && len(rep.Samples) < maxSamples; {
		rep.sample("prime %d is missing", it.Next())
	}
	return rep, nil
}

// parseCanonical accepts only the form the sieve writes: decimal digits
// without sign, spaces or leading zeros.
func parseCanonical(s string) (uint64, error) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseUint(s, 10, 64)
}

// Reference returns the primes below limit, computed with a plain sieve of
// Eratosthenes over a single bitset. limit must not exceed MaxLimit.
func Reference(limit uint64) *roaring.Bitmap {
	out := roaring.New()
	if limit < 3 {
		return out
	}
	composite := bitset.New(uint(limit))
	for p := uint64(2); p*p < limit; p++ {
		if composite.Test(uint(p)) {
			continue
		}
		for m := p * p; m < limit; m += p {
			composite.Set(uint(m))
		}
	}
	for v := uint64(2); v < limit; v++ {
		if !composite.Test(uint(v)) {
			out.Add(uint32(v))
		}
	}
	return out
}
