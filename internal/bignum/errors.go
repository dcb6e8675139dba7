package bignum

import (
	"errors"
	"fmt"
)

var (
	// ErrUnderflow is returned by Sub when the result would be negative.
	ErrUnderflow = errors.New("bignum: subtraction underflow")
	// ErrDivideByZero is returned by Div, Mod and DivMod for a zero divisor.
	ErrDivideByZero = errors.New("bignum: division by zero")
	// ErrSyntax indicates that a string is not a valid number in the
	// requested base.
	ErrSyntax = errors.New("invalid syntax")
)

// NumError records a failed conversion, in the manner of strconv.NumError.
type NumError struct {
	Func string // the failing function (Parse, ParseBase)
	Num  string // the input
	Err  error  // the reason the conversion failed (ErrSyntax)
}

func (e *NumError) Error() string {
	return fmt.Sprintf("bignum.%s: parsing %q: %v", e.Func, e.Num, e.Err)
}

func (e *NumError) Unwrap() error { return e.Err }

func syntaxError(fn, s string) *NumError {
	return &NumError{Func: fn, Num: s, Err: ErrSyntax}
}
