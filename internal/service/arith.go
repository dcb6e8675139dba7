package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agbru/primegen/internal/bignum"
)

// MaxShift bounds the shift count of shl and shr.
const MaxShift = 1 << 20

var (
	// ErrUnknownOp is returned for an operation name Eval does not know.
	ErrUnknownOp = errors.New("unknown operation")
	// ErrShiftTooLarge is returned when a shift count exceeds MaxShift.
	ErrShiftTooLarge = errors.New("shift count too large")
)

// Ops lists the operations accepted by Eval, with their arity.
var Ops = map[string]int{
	"add":  2,
	"sub":  2,
	"mul":  2,
	"div":  2,
	"mod":  2,
	"shl":  2,
	"shr":  2,
	"cmp":  2,
	"sqrt": 1,
	"hex":  1,
	"bits": 1,
}

// Eval applies a named operation to its operands and returns the result in
// decimal, except for hex (lower-case hexadecimal with a 0x prefix) and cmp
// (-1, 0 or 1). Unary operations ignore b.
//
// Errors are bignum.ErrUnderflow for sub with a > b, bignum.ErrDivideByZero
// for div and mod by zero, ErrShiftTooLarge and ErrUnknownOp.
func Eval(op string, a, b bignum.Nat) (string, error) {
	op = strings.ToLower(op)
	switch op {
	case "add":
		return a.Add(b).String(), nil
	case "sub":
		d, err := a.Sub(b)
		if err != nil {
			return "", err
		}
		return d.String(), nil
	case "mul":
		return a.Mul(b).String(), nil
	case "div":
		q, err := a.Div(b)
		if err != nil {
			return "", err
		}
		return q.String(), nil
	case "mod":
		r, err := a.Mod(b)
		if err != nil {
			return "", err
		}
		return r.String(), nil
	case "shl", "shr":
		n, ok := b.Uint64()
		if !ok || n > MaxShift {
			return "", fmt.Errorf("%w: %s (max %d)", ErrShiftTooLarge, b, MaxShift)
		}
		if op == "shl" {
			return a.Lsh(uint(n)).String(), nil
		}
		return a.Rsh(uint(n)).String(), nil
	case "cmp":
		return fmt.Sprintf("%d", a.Cmp(b)), nil
	case "sqrt":
		return bignum.Sqrt(a).String(), nil
	case "hex":
		return "0x" + a.Text(16), nil
	case "bits":
		return fmt.Sprintf("%d", a.BitLen()), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOp, op)
	}
}
