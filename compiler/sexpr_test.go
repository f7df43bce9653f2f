package compiler

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestReadProgram(t *testing.T) {
	m, err := ReadProgram(`(module
		(assign x 10)
		(assign y (binary "+" x 1.5))
		(if (compare x "<" 3) (block (pass)) (block (expr (call print "no")))))`)
	be.Err(t, err, nil)
	be.Equal(t, len(m.Body), 3)

	assign, ok := m.Body[0].(*Assign)
	be.True(t, ok)
	be.Equal(t, assign.Target, "x")
	k, ok := assign.Value.(*Constant)
	be.True(t, ok)
	be.Equal(t, k.Kind, ConstInt)
	be.Equal(t, k.Int, int64(10))
	be.Equal(t, assign.Pos.Line, 2)

	ifStmt, ok := m.Body[2].(*If)
	be.True(t, ok)
	be.Equal(t, len(ifStmt.Body), 1)
	be.Equal(t, len(ifStmt.Orelse), 1)
}

func TestReadProgramMetaPosition(t *testing.T) {
	m, err := ReadProgram(`(module (assign ^{line: 7, col: 3} y 1))`)
	be.Err(t, err, nil)
	be.Equal(t, m.Body[0].Position(), Pos{Line: 7, Col: 3})
}

func TestReadExpr(t *testing.T) {
	e, err := ReadExpr(`(binary "//" (unary "-" a) True)`)
	be.Err(t, err, nil)
	bin, ok := e.(*BinOp)
	be.True(t, ok)
	be.Equal(t, bin.Op, "//")
	un, ok := bin.Left.(*UnaryOp)
	be.True(t, ok)
	be.Equal(t, un.Operand.(*Name).ID, "a")
	k := bin.Right.(*Constant)
	be.Equal(t, k.Kind, ConstBool)
	be.True(t, k.Bool)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`(assign x 1)`, "expected (module ...)"},
		{`(module (frobnicate))`, "unknown statement"},
		{`(module (assign 1 2))`, "assignment target must be a name"},
		{`(module (assign x))`, "malformed assign form"},
		{`(module (if x (pass)))`, "expected (block ...)"},
		{`(module (def f (x) (block)))`, "malformed def form"},
		{`(module (expr (compare a "<")))`, "malformed compare form"},
		{`(module (expr (lambda x)))`, "unknown expression"},
		{`(module (expr {a: 1}))`, "unexpected"},
		{`(module`, "line 1"},
	}
	for _, test := range tests {
		_, err := ReadProgram(test.src)
		be.Err(t, err, test.want)
	}
}

func TestToSExprRoundTrip(t *testing.T) {
	src := `(module ` +
		`(assign x 10) ` +
		`(assign f 2.0) ` +
		`(assign s "say \"hi\"\n") ` +
		`(augassign x "+" 1) ` +
		`(def add (params a b) (block (global g) (return (binary "+" a b)))) ` +
		`(while (compare x "<" 20) (block (if true (block (break)) (block (continue))))) ` +
		`(for i (call range 0 10 2) (block (pass))) ` +
		`(expr (call print (fstring "x=" (call str x)) (unary "-" x))) ` +
		`(def nothing (params) (block (return))))`

	m, err := ReadProgram(src)
	be.Err(t, err, nil)
	out := ToSExpr(m)
	be.Equal(t, out, src)

	again, err := ReadProgram(out)
	be.Err(t, err, nil)
	be.Equal(t, ToSExpr(again), out)
}

func TestToSExprFloatKeepsPoint(t *testing.T) {
	be.Equal(t, ToSExpr(FloatConst(3)), "3.0")
	be.Equal(t, ToSExpr(FloatConst(-0.5)), "-0.5")
	be.Equal(t, ToSExpr(IntConst(-7)), "-7")
	be.Equal(t, ToSExpr(BoolConst(false)), "false")
}
