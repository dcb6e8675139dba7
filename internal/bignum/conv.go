package bignum

import "strings"

const digits = "0123456789abcdefghijklmnopqrstuvwxyz"

// Parse converts a decimal string into a Nat.
//
// The string must be non-empty and contain only the ASCII digits 0-9; no
// sign, whitespace or separators are accepted. Digits are accumulated left to
// right as result = result*10 + digit. Leading zeros are allowed.
//
// Errors are *NumError values wrapping ErrSyntax.
func Parse(s string) (Nat, error) {
	return parse("Parse", s, 10)
}

// ParseBase converts a string in the given base (2 to 36) into a Nat.
// Letters are case-insensitive.
func ParseBase(s string, base int) (Nat, error) {
	if base < 2 || base > len(digits) {
		panic("bignum: invalid base")
	}
	return parse("ParseBase", s, base)
}

// MustParse is like Parse but panics on error. It simplifies tests and
// package-level constants.
func MustParse(s string) Nat {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

func parse(fn, s string, base int) (Nat, error) {
	if s == "" {
		return Nat{}, syntaxError(fn, s)
	}
	var result Nat
	b := uint64(base)
	for i := 0; i < len(s); i++ {
		d, ok := digitValue(s[i])
		if !ok || d >= b {
			return Nat{}, syntaxError(fn, s)
		}
		result = result.mulWord(b).addWord(d)
	}
	return result, nil
}

func digitValue(c byte) (uint64, bool) {
	switch {
	case '0' <= c && c <= '9':
		return uint64(c - '0'), true
	case 'a' <= c && c <= 'z':
		return uint64(c-'a') + 10, true
	case 'A' <= c && c <= 'Z':
		return uint64(c-'A') + 10, true
	}
	return 0, false
}

// String returns the decimal representation of x.
func (x Nat) String() string {
	return x.Text(10)
}

// Text returns the representation of x in the given base, which must be
// between 2 and 36. Digits above 9 are lower-case letters.
//
// The value is divided repeatedly by the largest power of base that fits in
// a limb; each remainder contributes a fixed-width group of digits, and the
// most significant group is written without padding.
func (x Nat) Text(base int) string {
	if base < 2 || base > len(digits) {
		panic("bignum: invalid base")
	}
	if len(x.limbs) == 0 {
		return "0"
	}
	chunk, width := chunkPower(uint64(base))

	var groups []uint64
	cur := x.limbs
	for len(cur) > 0 {
		var rem uint64
		cur, rem = divWord(cur, chunk)
		groups = append(groups, rem)
	}

	var sb strings.Builder
	sb.Grow(len(groups) * width)
	buf := make([]byte, width)
	for i := len(groups) - 1; i >= 0; i-- {
		g := groups[i]
		for j := width - 1; j >= 0; j-- {
			buf[j] = digits[g%uint64(base)]
			g /= uint64(base)
		}
		if i == len(groups)-1 {
			sb.Write(trimLeadingZeros(buf))
		} else {
			sb.Write(buf)
		}
	}
	return sb.String()
}

// chunkPower returns the largest power of base that is below Base and the
// number of digits it spans.
func chunkPower(base uint64) (uint64, int) {
	p, width := base, 1
	for p*base < Base {
		p *= base
		width++
	}
	return p, width
}

func trimLeadingZeros(b []byte) []byte {
	i := 0
	for i < len(b)-1 && b[i] == '0' {
		i++
	}
	return b[i:]
}

// MarshalText implements encoding.TextMarshaler using the decimal form.
func (x Nat) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts the same
// syntax as Parse.
func (x *Nat) UnmarshalText(text []byte) error {
	n, err := parse("UnmarshalText", string(text), 10)
	if err != nil {
		return err
	}
	*x = n
	return nil
}
