package compiler

import (
	"math"
	"testing"

	"github.com/nalgeon/be"
)

func TestFoldIntFloorSemantics(t *testing.T) {
	tests := []struct {
		a, b int64
		op   string
		want int64
	}{
		{7, 2, "//", 3},
		{-7, 2, "//", -4},
		{7, -2, "//", -4},
		{-7, -2, "//", 3},
		{7, 2, "%", 1},
		{-7, 2, "%", 1},
		{7, -2, "%", -1},
		{-7, -2, "%", -1},
		{2, 10, "**", 1024},
		{-1, 3, "**", -1},
		{-1, 4, "**", 1},
		{0, 0, "**", 1},
		{5, 3, "^", 6},
		{12, 10, "&", 8},
		{12, 3, "|", 15},
		{1, 4, "<<", 16},
		{-16, 2, ">>", -4},
	}
	for _, test := range tests {
		got, err := Fold(test.op, IntConst(test.a), IntConst(test.b))
		be.Err(t, err, nil)
		be.Equal(t, got.Kind, ConstInt)
		be.Equal(t, got.Int, test.want)
	}
}

func TestFoldMatchesHostArithmetic(t *testing.T) {
	for a := int64(-9); a <= 9; a++ {
		for b := int64(-9); b <= 9; b++ {
			direct := map[string]int64{
				"+": a + b,
				"-": a - b,
				"*": a * b,
				"^": a ^ b,
				"&": a & b,
				"|": a | b,
			}
			for op, want := range direct {
				got, err := Fold(op, IntConst(a), IntConst(b))
				be.Err(t, err, nil)
				be.Equal(t, got.Int, want)
			}

			if b < 0 {
				p, err := Fold("**", IntConst(a), IntConst(b))
				if a == 0 {
					be.Err(t, err, ErrDivisionByZero)
				} else {
					be.Err(t, err, nil)
					be.Equal(t, p.Kind, ConstFloat)
					be.Equal(t, p.Float, math.Pow(float64(a), float64(b)))
				}
			}

			if b == 0 {
				continue
			}
			q, err := Fold("//", IntConst(a), IntConst(b))
			be.Err(t, err, nil)
			m, err := Fold("%", IntConst(a), IntConst(b))
			be.Err(t, err, nil)
			be.Equal(t, b*q.Int+m.Int, a)
			be.True(t, m.Int == 0 || (m.Int < 0) == (b < 0))
			be.Equal(t, q.Int, int64(math.Floor(float64(a)/float64(b))))

			if b > 0 && b <= 5 {
				p, err := Fold("**", IntConst(a), IntConst(b))
				be.Err(t, err, nil)
				be.Equal(t, p.Int, int64(math.Pow(float64(a), float64(b))))
			}
		}
	}
}

func TestFoldDivisionByZero(t *testing.T) {
	for _, op := range []string{"//", "%", "/"} {
		_, err := Fold(op, IntConst(10), IntConst(0))
		be.Err(t, err, ErrDivisionByZero)
	}
	for _, op := range []string{"//", "%", "/"} {
		_, err := Fold(op, FloatConst(1.5), FloatConst(0))
		be.Err(t, err, ErrDivisionByZero)
	}
	_, err := Fold("//", IntConst(10), BoolConst(false))
	be.Err(t, err, "integer division by zero")
}

func TestFoldTrueDivisionGivesFloat(t *testing.T) {
	got, err := Fold("/", IntConst(5), IntConst(2))
	be.Err(t, err, nil)
	be.Equal(t, got.Kind, ConstFloat)
	be.Equal(t, got.Float, 2.5)
}

func TestFoldNegativeExponentGivesFloat(t *testing.T) {
	got, err := Fold("**", IntConst(2), IntConst(-1))
	be.Err(t, err, nil)
	be.Equal(t, got.Kind, ConstFloat)
	be.Equal(t, got.Float, 0.5)

	_, err = Fold("**", IntConst(0), IntConst(-2))
	be.Err(t, err, ErrDivisionByZero)
}

func TestFoldFloat(t *testing.T) {
	got, err := Fold("//", FloatConst(-7), FloatConst(2))
	be.Err(t, err, nil)
	be.Equal(t, got.Float, -4.0)

	got, err = Fold("%", FloatConst(-7), FloatConst(2))
	be.Err(t, err, nil)
	be.Equal(t, got.Float, 1.0)

	_, err = Fold("**", FloatConst(-8), FloatConst(0.5))
	be.Err(t, err, "not a finite real number")
}

func TestFoldStrings(t *testing.T) {
	got, err := Fold("+", StrConst("ab"), StrConst("cd"))
	be.Err(t, err, nil)
	be.Equal(t, got.Str, "abcd")

	_, err = Fold("*", StrConst("ab"), StrConst("cd"))
	be.Err(t, err, "unsupported operand types")
}

func TestFoldRefusals(t *testing.T) {
	_, err := Fold("+", IntConst(5), FloatConst(3.14))
	be.Err(t, err, errNotFoldable)

	_, err = Fold("**", IntConst(10), IntConst(12))
	be.Err(t, err, "overflows")

	_, err = Fold("<<", IntConst(1), IntConst(-1))
	be.Err(t, err, "negative shift count")

	_, err = Fold("@", IntConst(1), IntConst(1))
	be.Err(t, err, "unsupported operator")
}
