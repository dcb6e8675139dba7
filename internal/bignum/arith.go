package bignum

// ─────────────────────────────────────────────────────────────────────────────
// Addition, subtraction and multiplication
// ─────────────────────────────────────────────────────────────────────────────

// Add returns x + y.
//
// Limbs are summed pairwise with a carry of at most one; the result has
// max(len(x), len(y)) limbs, plus one when the final carry is set.
func (x Nat) Add(y Nat) Nat {
	a, b := x.limbs, y.limbs
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return cloneNat(a)
	}
	out := make([]uint64, len(a)+1)
	var carry uint64
	for i := range a {
		sum := a[i] + carry
		if i < len(b) {
			sum += b[i]
		}
		out[i] = sum & limbMask
		carry = sum >> LimbBits
	}
	out[len(a)] = carry
	return Nat{limbs: normalize(out)}
}

// Sub returns x - y, or ErrUnderflow when x < y.
func (x Nat) Sub(y Nat) (Nat, error) {
	if cmpLimbs(x.limbs, y.limbs) < 0 {
		return Nat{}, ErrUnderflow
	}
	return Nat{limbs: subLimbs(x.limbs, y.limbs)}, nil
}

// subLimbs returns a - b for a >= b as a fresh normalized slice.
func subLimbs(a, b []uint64) []uint64 {
	out := make([]uint64, len(a))
	var borrow uint64
	for i := range a {
		sub := borrow
		if i < len(b) {
			sub += b[i]
		}
		if a[i] >= sub {
			out[i] = a[i] - sub
			borrow = 0
		} else {
			out[i] = a[i] + Base - sub
			borrow = 1
		}
	}
	return normalize(out)
}

// Mul returns x * y using schoolbook multiplication.
func (x Nat) Mul(y Nat) Nat {
	a, b := x.limbs, y.limbs
	if len(a) == 0 || len(b) == 0 {
		return Nat{}
	}
	out := make([]uint64, len(a)+len(b))
	for i, ai := range a {
		var carry uint64
		for j, bj := range b {
			// ai*bj < 2^64 - 2^33 + 1, so adding a limb and a carry fits.
			cur := ai*bj + out[i+j] + carry
			out[i+j] = cur & limbMask
			carry = cur >> LimbBits
		}
		out[i+len(b)] += carry
	}
	return Nat{limbs: normalize(out)}
}

// mulWord returns x * w for a single limb w < Base.
func (x Nat) mulWord(w uint64) Nat {
	if w == 0 || len(x.limbs) == 0 {
		return Nat{}
	}
	out := make([]uint64, len(x.limbs)+1)
	var carry uint64
	for i, l := range x.limbs {
		cur := l*w + carry
		out[i] = cur & limbMask
		carry = cur >> LimbBits
	}
	out[len(x.limbs)] = carry
	return Nat{limbs: normalize(out)}
}

// addWord returns x + w for a single limb w < Base.
func (x Nat) addWord(w uint64) Nat {
	if w == 0 {
		return x
	}
	out := make([]uint64, len(x.limbs)+1)
	carry := w
	for i, l := range x.limbs {
		sum := l + carry
		out[i] = sum & limbMask
		carry = sum >> LimbBits
	}
	out[len(x.limbs)] = carry
	return Nat{limbs: normalize(out)}
}

// ─────────────────────────────────────────────────────────────────────────────
// Shifts
// ─────────────────────────────────────────────────────────────────────────────

// Lsh returns x << n, that is x * 2^n.
//
// The shift is split into n/32 whole limbs inserted at the low end and an
// n%32 bit shift whose carry-out may add one limb.
func (x Nat) Lsh(n uint) Nat {
	if len(x.limbs) == 0 {
		return Nat{}
	}
	if n == 0 {
		return x
	}
	words := int(n / LimbBits)
	shift := n % LimbBits
	out := make([]uint64, len(x.limbs)+words+1)
	if shift == 0 {
		copy(out[words:], x.limbs)
	} else {
		var carry uint64
		for i, l := range x.limbs {
			v := l<<shift | carry
			out[i+words] = v & limbMask
			carry = v >> LimbBits
		}
		out[len(x.limbs)+words] = carry
	}
	return Nat{limbs: normalize(out)}
}

// Rsh returns x >> n, that is floor(x / 2^n).
func (x Nat) Rsh(n uint) Nat {
	words := int(n / LimbBits)
	if words >= len(x.limbs) {
		return Nat{}
	}
	shift := n % LimbBits
	src := x.limbs[words:]
	out := make([]uint64, len(src))
	for i := range src {
		v := src[i] >> shift
		if shift != 0 && i+1 < len(src) {
			v |= (src[i+1] << (LimbBits - shift)) & limbMask
		}
		out[i] = v
	}
	return Nat{limbs: normalize(out)}
}

// ─────────────────────────────────────────────────────────────────────────────
// Division
// ─────────────────────────────────────────────────────────────────────────────

// Div returns the quotient floor(x / y), or ErrDivideByZero when y == 0.
func (x Nat) Div(y Nat) (Nat, error) {
	q, _, err := x.DivMod(y)
	return q, err
}

// Mod returns x - (x/y)*y, or ErrDivideByZero when y == 0.
func (x Nat) Mod(y Nat) (Nat, error) {
	q, err := x.Div(y)
	if err != nil {
		return Nat{}, err
	}
	r, err := x.Sub(q.Mul(y))
	if err != nil {
		// Unreachable: q*y <= x by construction of q.
		return Nat{}, err
	}
	return r, nil
}

// DivMod returns the quotient and remainder of x / y.
//
// The dividend is consumed one limb at a time from the most significant end.
// At each step the running remainder r becomes r*Base + limb and the quotient
// digit is the largest q in [0, Base-1] such that y*q <= r, found by binary
// search. When r < y the digit is 0 without searching, which also covers a
// divisor with more limbs than the running remainder.
func (x Nat) DivMod(y Nat) (q, r Nat, err error) {
	if len(y.limbs) == 0 {
		return Nat{}, Nat{}, ErrDivideByZero
	}
	if cmpLimbs(x.limbs, y.limbs) < 0 {
		return Nat{}, x, nil
	}
	quot := make([]uint64, len(x.limbs))
	var rem Nat
	for i := len(x.limbs) - 1; i >= 0; i-- {
		rem = rem.shiftInLimb(x.limbs[i])
		if cmpLimbs(rem.limbs, y.limbs) < 0 {
			continue
		}
		digit := quotientDigit(rem, y)
		quot[i] = digit
		rem = Nat{limbs: subLimbs(rem.limbs, y.mulWord(digit).limbs)}
	}
	return Nat{limbs: normalize(quot)}, rem, nil
}

// shiftInLimb returns x*Base + l.
func (x Nat) shiftInLimb(l uint64) Nat {
	if len(x.limbs) == 0 {
		return New(l)
	}
	out := make([]uint64, len(x.limbs)+1)
	out[0] = l
	copy(out[1:], x.limbs)
	return Nat{limbs: out}
}

// quotientDigit returns the largest q in [0, Base-1] with y*q <= r.
// It requires r < y*Base, which holds inside the long-division loop.
func quotientDigit(r, y Nat) uint64 {
	lo, hi := uint64(0), Base-1
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		if cmpLimbs(y.mulWord(mid).limbs, r.limbs) <= 0 {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// divWord divides limbs by a single non-zero limb w and returns the
// normalized quotient and the remainder. Radix conversion uses it to peel
// off several digits per pass.
func divWord(limbs []uint64, w uint64) ([]uint64, uint64) {
	out := make([]uint64, len(limbs))
	var rem uint64
	for i := len(limbs) - 1; i >= 0; i-- {
		cur := rem<<LimbBits | limbs[i]
		out[i] = cur / w
		rem = cur % w
	}
	return normalize(out), rem
}

func cloneNat(limbs []uint64) Nat {
	if len(limbs) == 0 {
		return Nat{}
	}
	out := make([]uint64, len(limbs))
	copy(out, limbs)
	return Nat{limbs: out}
}
