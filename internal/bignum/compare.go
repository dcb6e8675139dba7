package bignum

// Cmp compares x and y and returns -1 if x < y, 0 if x == y and +1 if x > y.
//
// Normalized values with more limbs are larger; equal-length values are
// compared limb by limb from the most significant end.
func (x Nat) Cmp(y Nat) int {
	return cmpLimbs(x.limbs, y.limbs)
}

// Equal reports whether x == y.
func (x Nat) Equal(y Nat) bool { return x.Cmp(y) == 0 }

// Less reports whether x < y.
func (x Nat) Less(y Nat) bool { return x.Cmp(y) < 0 }

// LessOrEqual reports whether x <= y.
func (x Nat) LessOrEqual(y Nat) bool { return x.Cmp(y) <= 0 }

// Greater reports whether x > y.
func (x Nat) Greater(y Nat) bool { return x.Cmp(y) > 0 }

// GreaterOrEqual reports whether x >= y.
func (x Nat) GreaterOrEqual(y Nat) bool { return x.Cmp(y) >= 0 }

func cmpLimbs(a, b []uint64) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	for i := len(a) - 1; i >= 0; i-- {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// Min returns the smaller of a and b.
func Min(a, b Nat) Nat {
	if a.Less(b) {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b Nat) Nat {
	if a.Greater(b) {
		return a
	}
	return b
}
