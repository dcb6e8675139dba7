package sieve

import (
	"fmt"
	"math"

	"github.com/agbru/primegen/internal/bignum"
)

// Segment is an inclusive range [Low, High] of candidates handled by one
// worker.
type Segment struct {
	Index int
	Low   bignum.Nat
	High  bignum.Nat
}

// NewSegment builds a segment and checks that low <= high.
func NewSegment(index int, low, high bignum.Nat) (Segment, error) {
	if low.Greater(high) {
		return Segment{}, fmt.Errorf("%w: [%s, %s]", ErrInvalidRange, low, high)
	}
	return Segment{Index: index, Low: low, High: high}, nil
}

// Size returns the number of values in the segment as a native count.
// It fails with ErrSegmentTooLarge when the count does not fit in a uint.
func (s Segment) Size() (uint, error) {
	span, err := s.High.Sub(s.Low)
	if err != nil {
		return 0, fmt.Errorf("%w: [%s, %s]", ErrInvalidRange, s.Low, s.High)
	}
	n, ok := span.Uint64()
	if !ok || n >= math.MaxUint64 || n+1 > uint64(math.MaxUint) {
		return 0, fmt.Errorf("%w: [%s, %s]", ErrSegmentTooLarge, s.Low, s.High)
	}
	return uint(n + 1), nil
}

func (s Segment) String() string {
	return fmt.Sprintf("#%d [%s, %s]", s.Index, s.Low, s.High)
}

// Partition splits [0, limit) into exactly n non-overlapping segments of
// size limit/n. The last segment absorbs the remainder and ends at limit-1,
// so every value below limit belongs to exactly one segment.
//
// Parameters:
//   - limit: The exclusive upper bound, at least 1.
//   - n: The number of segments, between 1 and limit.
//
// Returns:
//   - []Segment: The segments in ascending order.
//   - error: ErrZeroLimit, ErrZeroThreads or ErrTooManyThreads.
func Partition(limit bignum.Nat, n int) ([]Segment, error) {
	if limit.IsZero() {
		return nil, ErrZeroLimit
	}
	if n <= 0 {
		return nil, ErrZeroThreads
	}
	count := bignum.New(uint64(n))
	if count.Greater(limit) {
		return nil, fmt.Errorf("%w: %d threads for limit %s", ErrTooManyThreads, n, limit)
	}
	size, err := limit.Div(count)
	if err != nil {
		return nil, err
	}
	last, _ := limit.Sub(bignum.One())

	segments := make([]Segment, 0, n)
	low := bignum.Zero()
	for i := 0; i < n; i++ {
		high := last
		if i < n-1 {
			next := low.Add(size)
			high, _ = next.Sub(bignum.One())
		}
		segments = append(segments, Segment{Index: i, Low: low, High: high})
		low = high.Add(bignum.One())
	}
	return segments, nil
}
