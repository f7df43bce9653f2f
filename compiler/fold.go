package compiler

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDivisionByZero is a fatal folding failure.
	ErrDivisionByZero = errors.New("division by zero")

	errNotFoldable = errors.New("operands cannot be folded")
)

// Fold evaluates op on two constants the way the source language does.
// A nil constant with errNotFoldable means the operands are simply not a
// folding pair; ErrDivisionByZero must be reported as an error, anything else
// as a warning.
func Fold(op string, l, r *Constant) (*Constant, error) {
	switch {
	case isIntLike(l) && isIntLike(r):
		return foldInt(op, intValue(l), intValue(r))
	case l.Kind == ConstFloat && r.Kind == ConstFloat:
		return foldFloat(op, l.Float, r.Float)
	case l.Kind == ConstStr && r.Kind == ConstStr:
		if op == "+" {
			return StrConst(l.Str + r.Str), nil
		}
		return nil, fmt.Errorf("unsupported operand types for %s: str and str", op)
	}
	return nil, errNotFoldable
}

func isIntLike(c *Constant) bool {
	return c.Kind == ConstInt || c.Kind == ConstBool
}

func intValue(c *Constant) int64 {
	if c.Kind == ConstBool {
		if c.Bool {
			return 1
		}
		return 0
	}
	return c.Int
}

func foldInt(op string, a, b int64) (*Constant, error) {
	switch op {
	case "+":
		return IntConst(a + b), nil
	case "-":
		return IntConst(a - b), nil
	case "*":
		return IntConst(a * b), nil
	case "//":
		if b == 0 {
			return nil, fmt.Errorf("integer %w", ErrDivisionByZero)
		}
		return IntConst(floorDiv(a, b)), nil
	case "%":
		if b == 0 {
			return nil, fmt.Errorf("integer modulo: %w", ErrDivisionByZero)
		}
		return IntConst(floorMod(a, b)), nil
	case "/":
		if b == 0 {
			return nil, ErrDivisionByZero
		}
		return FloatConst(float64(a) / float64(b)), nil
	case "**":
		if b < 0 {
			if a == 0 {
				return nil, fmt.Errorf("0 ** %d: %w", b, ErrDivisionByZero)
			}
			return FloatConst(math.Pow(float64(a), float64(b))), nil
		}
		p, ok := intPow(a, b)
		if !ok {
			return nil, fmt.Errorf("%d ** %d overflows", a, b)
		}
		return IntConst(p), nil
	case "^":
		return IntConst(a ^ b), nil
	case "&":
		return IntConst(a & b), nil
	case "|":
		return IntConst(a | b), nil
	case "<<":
		if b < 0 {
			return nil, fmt.Errorf("negative shift count %d", b)
		}
		if b > 32 {
			return nil, fmt.Errorf("%d << %d overflows", a, b)
		}
		return IntConst(a << uint(b)), nil
	case ">>":
		if b < 0 {
			return nil, fmt.Errorf("negative shift count %d", b)
		}
		if b > 63 {
			b = 63
		}
		return IntConst(a >> uint(b)), nil
	}
	return nil, fmt.Errorf("unsupported operator %q for int", op)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}

// intPow stops once the result leaves the 32-bit range.
func intPow(a, b int64) (int64, bool) {
	switch {
	case b == 0:
		return 1, true
	case a == 0 || a == 1:
		return a, true
	case a == -1:
		if b%2 == 0 {
			return 1, true
		}
		return -1, true
	}
	result := int64(1)
	for i := int64(0); i < b; i++ {
		result *= a
		if result > math.MaxInt32 || result < math.MinInt32 {
			return 0, false
		}
	}
	return result, true
}

func foldFloat(op string, a, b float64) (*Constant, error) {
	switch op {
	case "+":
		return FloatConst(a + b), nil
	case "-":
		return FloatConst(a - b), nil
	case "*":
		return FloatConst(a * b), nil
	case "/":
		if b == 0 {
			return nil, fmt.Errorf("float %w", ErrDivisionByZero)
		}
		return FloatConst(a / b), nil
	case "//":
		if b == 0 {
			return nil, fmt.Errorf("float floor %w", ErrDivisionByZero)
		}
		return FloatConst(math.Floor(a / b)), nil
	case "%":
		if b == 0 {
			return nil, fmt.Errorf("float modulo: %w", ErrDivisionByZero)
		}
		m := math.Mod(a, b)
		if m != 0 && ((m < 0) != (b < 0)) {
			m += b
		}
		return FloatConst(m), nil
	case "**":
		p := math.Pow(a, b)
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("%g ** %g is not a finite real number", a, b)
		}
		return FloatConst(p), nil
	}
	return nil, fmt.Errorf("unsupported operator %q for float", op)
}
