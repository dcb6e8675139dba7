package sieve

import "github.com/agbru/primegen/internal/bignum"

// SmallPrimes returns every prime p <= floor(sqrt(limit)) in ascending
// order.
//
// Candidates are tested by trial division against the primes found so far,
// stopping as soon as p*p exceeds the candidate. The search starts from 2 and
// then walks the odd numbers. When the root fits in a uint64 the search runs
// on native integers; otherwise it runs on bignum arithmetic throughout.
func SmallPrimes(limit bignum.Nat) []bignum.Nat {
	root := bignum.Sqrt(limit)
	if r, ok := root.Uint64(); ok {
		native := smallPrimesNative(r)
		out := make([]bignum.Nat, len(native))
		for i, p := range native {
			out[i] = bignum.New(p)
		}
		return out
	}
	return smallPrimesBig(root)
}

func smallPrimesNative(root uint64) []uint64 {
	if root < 2 {
		return nil
	}
	primes := []uint64{2}
	for c := uint64(3); c <= root && c >= 3; c += 2 {
		if isPrimeByTrial(c, primes) {
			primes = append(primes, c)
		}
	}
	return primes
}

func isPrimeByTrial(c uint64, primes []uint64) bool {
	for _, p := range primes {
		if p > c/p {
			return true
		}
		if c%p == 0 {
			return false
		}
	}
	return true
}

func smallPrimesBig(root bignum.Nat) []bignum.Nat {
	two := bignum.New(2)
	if root.Less(two) {
		return nil
	}
	primes := []bignum.Nat{two}
	for c := bignum.New(3); c.LessOrEqual(root); c = c.Add(two) {
		prime := true
		for _, p := range primes {
			if p.Mul(p).Greater(c) {
				break
			}
			if r, _ := c.Mod(p); r.IsZero() {
				prime = false
				break
			}
		}
		if prime {
			primes = append(primes, c)
		}
	}
	return primes
}
