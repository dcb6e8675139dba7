package bignum

// Sqrt returns floor(sqrt(x)).
//
// Newton's iteration x_{k+1} = (x_k + n/x_k) / 2 is started from a power of
// two not smaller than the root and stops as soon as the sequence stops
// decreasing.
func Sqrt(x Nat) Nat {
	if len(x.limbs) == 0 {
		return Nat{}
	}
	z := One().Lsh(uint((x.BitLen() + 1) / 2))
	for {
		q, _, _ := x.DivMod(z)
		next := z.Add(q).Rsh(1)
		if next.GreaterOrEqual(z) {
			return z
		}
		z = next
	}
}
