// Package bignum implements arbitrary-precision unsigned integers.
//
// A Nat stores its magnitude as base-2^32 limbs, least significant first.
// Every limb is held in a uint64 so that a single addition or subtraction
// step can carry or borrow without overflowing. Values are immutable: every
// operation returns a fresh Nat and never writes through its operands.
package bignum

import "math/bits"

const (
	// LimbBits is the number of significant bits in a limb.
	LimbBits = 32
	// Base is the radix of the limb representation.
	Base uint64 = 1 << LimbBits
	// limbMask keeps the low LimbBits of a uint64.
	limbMask = Base - 1
)

// Nat is an arbitrary-precision unsigned integer.
//
// The zero value is the number 0 and is ready to use. The limb slice is
// always normalized: it never ends in a zero limb, so 0 is the empty slice.
type Nat struct {
	limbs []uint64
}

// New returns the Nat whose value is v.
func New(v uint64) Nat {
	if v == 0 {
		return Nat{}
	}
	if v <= limbMask {
		return Nat{limbs: []uint64{v}}
	}
	return Nat{limbs: []uint64{v & limbMask, v >> LimbBits}}
}

// FromLimbs builds a Nat from base-2^32 limbs given least significant first.
// The input slice is copied.
func FromLimbs(limbs []uint32) Nat {
	out := make([]uint64, len(limbs))
	for i, l := range limbs {
		out[i] = uint64(l)
	}
	return Nat{limbs: normalize(out)}
}

// Zero returns 0.
func Zero() Nat { return Nat{} }

// One returns 1.
func One() Nat { return Nat{limbs: []uint64{1}} }

// Limbs returns a copy of the limbs of x, least significant first.
// The result is empty for 0.
func (x Nat) Limbs() []uint32 {
	out := make([]uint32, len(x.limbs))
	for i, l := range x.limbs {
		out[i] = uint32(l)
	}
	return out
}

// Len returns the number of limbs of x. It is 0 for the value 0.
func (x Nat) Len() int { return len(x.limbs) }

// IsZero reports whether x == 0.
func (x Nat) IsZero() bool { return len(x.limbs) == 0 }

// IsOdd reports whether x is odd.
func (x Nat) IsOdd() bool { return len(x.limbs) > 0 && x.limbs[0]&1 == 1 }

// BitLen returns the length of the binary representation of x.
// BitLen of 0 is 0.
func (x Nat) BitLen() int {
	if len(x.limbs) == 0 {
		return 0
	}
	top := x.limbs[len(x.limbs)-1]
	return (len(x.limbs)-1)*LimbBits + bits.Len64(top)
}

// Uint64 returns x as a uint64. The boolean is false when x does not fit,
// in which case the returned value is meaningless.
func (x Nat) Uint64() (uint64, bool) {
	switch len(x.limbs) {
	case 0:
		return 0, true
	case 1:
		return x.limbs[0], true
	case 2:
		return x.limbs[1]<<LimbBits | x.limbs[0], true
	default:
		return 0, false
	}
}

// normalize drops most-significant zero limbs. The returned slice aliases
// the input.
func normalize(limbs []uint64) []uint64 {
	n := len(limbs)
	for n > 0 && limbs[n-1] == 0 {
		n--
	}
	if n == 0 {
		return nil
	}
	return limbs[:n]
}
