package sieve

import (
	"context"
	"fmt"
	"math/bits"
	"strconv"

	"github.com/bits-and-blooms/bitset"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/primegen/internal/bignum"
)

// State is the lifecycle stage of a worker. A worker moves strictly forward
// through Spawned, Sieving, Writing, Reporting and Done.
type State int

const (
	Spawned State = iota
	Sieving
	Writing
	Reporting
	Done
)

func (s State) String() string {
	switch s {
	case Spawned:
		return "spawned"
	case Sieving:
		return "sieving"
	case Writing:
		return "writing"
	case Reporting:
		return "reporting"
	case Done:
		return "done"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// cancelCheckInterval is the number of small primes crossed off between two
// looks at the context.
const cancelCheckInterval = 256

// SievingPrime is a small prime prepared for repeated use by workers.
type SievingPrime struct {
	P      bignum.Nat
	Square bignum.Nat
	// Native is P as a uint64 when Fits is true.
	Native uint64
	Fits   bool
}

// PrepareSievingPrimes precomputes the squares and native forms that every
// worker would otherwise recompute per segment.
func PrepareSievingPrimes(primes []bignum.Nat) []SievingPrime {
	out := make([]SievingPrime, len(primes))
	for i, p := range primes {
		native, fits := p.Uint64()
		out[i] = SievingPrime{P: p, Square: p.Mul(p), Native: native, Fits: fits}
	}
	return out
}

// Worker sieves one segment and publishes its primes.
//
// A worker owns its bitset and output buffer. The only shared state it
// touches is the injected Sink, Counter and Observer, and the read-only
// slice of sieving primes.
type Worker struct {
	Segment  Segment
	Primes   []SievingPrime
	Sink     Sink
	Counter  *Counter
	Observer ProgressObserver
	Tracer   trace.Tracer

	state State
	found int
}

// State returns the stage the worker has reached.
func (w *Worker) State() State { return w.state }

// Found returns the number of primes the worker emitted.
func (w *Worker) Found() int { return w.found }

// Run executes the worker to completion.
//
// On error the worker stops in its current state and nothing from its
// segment reaches the sink: the output buffer is only handed over once
// sieving and formatting have both succeeded.
func (w *Worker) Run(ctx context.Context) error {
	if w.Tracer != nil {
		var span trace.Span
		ctx, span = w.Tracer.Start(ctx, "sieve.Worker")
		span.SetAttributes(
			attribute.Int("segment.index", w.Segment.Index),
			attribute.String("segment.low", w.Segment.Low.String()),
			attribute.String("segment.high", w.Segment.High.String()),
		)
		defer span.End()
	}

	w.state = Sieving
	candidates, size, err := w.sieve(ctx)
	if err != nil {
		return err
	}

	w.state = Writing
	batch, found := w.format(candidates, size)

	w.state = Reporting
	if err := w.Sink.Append(batch); err != nil {
		return fmt.Errorf("segment %d: append: %w", w.Segment.Index, err)
	}
	w.found = found
	completed := w.Counter.Increment()
	if w.Observer != nil {
		w.Observer.Update(ProgressUpdate{
			Segment:   w.Segment.Index,
			Completed: completed,
			Total:     w.Counter.Total(),
			Primes:    found,
			Value:     clampFraction(completed, w.Counter.Total()),
		})
	}

	w.state = Done
	return nil
}

// sieve crosses off multiples of every small prime inside the segment.
// Bit i stands for Low+i and starts set; a bit still set afterwards is a
// prime.
func (w *Worker) sieve(ctx context.Context) (*bitset.BitSet, uint, error) {
	seg := w.Segment
	size, err := seg.Size()
	if err != nil {
		return nil, 0, err
	}
	candidates := bitset.New(size)
	candidates.FlipRange(0, size)

	// 0 and 1 are not prime.
	if low, ok := seg.Low.Uint64(); ok && low < 2 {
		for v := low; v < 2 && uint(v-low) < size; v++ {
			candidates.Clear(uint(v - low))
		}
	}

	lowN, lowOK := seg.Low.Uint64()
	highN, highOK := seg.High.Uint64()
	native := lowOK && highOK

	for i, sp := range w.Primes {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, 0, fmt.Errorf("segment %d: %w", seg.Index, err)
			}
		}
		var start uint64
		var ok bool
		if native && sp.Fits {
			start, ok = firstOffsetNative(sp.Native, lowN, highN)
		} else {
			var stop bool
			start, ok, stop = firstOffsetBig(sp, seg)
			if stop {
				break
			}
		}
		if !ok {
			if native && sp.Fits && !squareFits(sp.Native, highN) {
				// p*p > high, and so for every larger prime too.
				break
			}
			continue
		}
		if !sp.Fits {
			// A prime wider than 64 bits has at most one multiple in a
			// segment that a bitset can address.
			candidates.Clear(uint(start))
			continue
		}
		step := uint(sp.Native)
		for off := uint(start); off < size; off += step {
			candidates.Clear(off)
			if off > ^uint(0)-step {
				break
			}
		}
	}
	return candidates, size, nil
}

// squareFits reports whether p*p <= high.
func squareFits(p, high uint64) bool {
	hi, lo := bits.Mul64(p, p)
	return hi == 0 && lo <= high
}

// firstOffsetNative returns the offset from low of the first value to cross
// off for p: the larger of p*p and the first multiple of p that is >= low.
// The boolean is false when that value lies beyond high.
func firstOffsetNative(p, low, high uint64) (uint64, bool) {
	if !squareFits(p, high) {
		return 0, false
	}
	sq := p * p
	first := low
	if r := low % p; r != 0 {
		add := p - r
		if low > high-add {
			return 0, false
		}
		first = low + add
	}
	start := max(sq, first)
	if start > high {
		return 0, false
	}
	return start - low, true
}

// firstOffsetBig is firstOffsetNative on bignum values. stop is true when
// p*p > high, which ends the sieving of the segment.
func firstOffsetBig(sp SievingPrime, seg Segment) (offset uint64, ok, stop bool) {
	if sp.Square.Greater(seg.High) {
		return 0, false, true
	}
	first := seg.Low
	r, err := seg.Low.Mod(sp.P)
	if err != nil {
		return 0, false, true
	}
	if !r.IsZero() {
		gap, _ := sp.P.Sub(r)
		first = seg.Low.Add(gap)
	}
	start := bignum.Max(sp.Square, first)
	if start.Greater(seg.High) {
		return 0, false, false
	}
	diff, _ := start.Sub(seg.Low)
	off, fits := diff.Uint64()
	return off, fits, false
}

// format renders every surviving candidate as one decimal line.
func (w *Worker) format(primes *bitset.BitSet, size uint) ([]byte, int) {
	seg := w.Segment
	lowN, lowOK := seg.Low.Uint64()
	_, highOK := seg.High.Uint64()
	native := lowOK && highOK

	count := int(primes.Count())
	if count == 0 {
		return nil, 0
	}

	var buf []byte
	if native {
		buf = make([]byte, 0, count*(decimalWidth(lowN+uint64(size)-1)+1))
	}
	for i, ok := primes.NextSet(0); ok && i < size; i, ok = primes.NextSet(i + 1) {
		if native {
			buf = strconv.AppendUint(buf, lowN+uint64(i), 10)
		} else {
			buf = append(buf, seg.Low.Add(bignum.New(uint64(i))).String()...)
		}
		buf = append(buf, '\n')
	}
	return buf, count
}

func decimalWidth(v uint64) int {
	w := 1
	for v >= 10 {
		v /= 10
		w++
	}
	return w
}

func clampFraction(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	f := float64(completed) / float64(total)
	if f > 1 {
		f = 1
	}
	return f
}
