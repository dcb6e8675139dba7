//go:build gmp

package bignum

import (
	"math/rand"
	"testing"

	"github.com/ncw/gmp"
)

// TestAgainstGMP cross-checks multiplication and long division against the
// GMP library on wide operands.
func TestAgainstGMP(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		a := randomLimbs(rng, 1+rng.Intn(24))
		b := randomLimbs(rng, 1+rng.Intn(12))
		if b.IsZero() {
			continue
		}
		ga, _ := new(gmp.Int).SetString(a.String(), 10)
		gb, _ := new(gmp.Int).SetString(b.String(), 10)

		if got, want := a.Mul(b).String(), new(gmp.Int).Mul(ga, gb).String(); got != want {
			t.Fatalf("%s * %s = %s, want %s", a, b, got, want)
		}

		q, r, err := a.DivMod(b)
		if err != nil {
			t.Fatal(err)
		}
		wq, wr := new(gmp.Int).QuoRem(ga, gb, new(gmp.Int))
		if q.String() != wq.String() || r.String() != wr.String() {
			t.Fatalf("DivMod(%s, %s) = (%s, %s), want (%s, %s)", a, b, q, r, wq, wr)
		}
	}
}
