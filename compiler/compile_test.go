package compiler

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Logger = nil
	return cfg
}

// compileSource reads an S-expression module and compiles it. The parse
// must succeed; the compile error is returned to the caller.
func compileSource(t *testing.T, src string) (*Result, error) {
	t.Helper()
	m, err := ReadProgram(src)
	be.Err(t, err, nil)
	return Compile(m, testConfig())
}

func mustCompile(t *testing.T, src string) *Result {
	t.Helper()
	res, err := compileSource(t, src)
	if err != nil {
		t.Fatalf("compile failed: %v\n%s", err, res.Diagnostics)
	}
	return res
}

// countInstr counts instructions starting with prefix.
func countInstr(res *Result, prefix string) int {
	n := 0
	for _, l := range res.Code {
		if l.Kind == LineInstr && strings.HasPrefix(l.Text, prefix) {
			n++
		}
	}
	return n
}

func hasLabel(res *Result, prefix string) bool {
	for _, l := range res.Code {
		if l.Kind == LineLabel && strings.HasPrefix(l.Text, prefix) {
			return true
		}
	}
	return false
}

func usesRoutine(res *Result, name string) bool {
	for _, r := range res.Routines {
		if r == name {
			return true
		}
	}
	return false
}

func global(t *testing.T, res *Result, name string) *Variable {
	t.Helper()
	v, ok := res.Global(name)
	if !ok {
		t.Fatalf("no variable %q", name)
	}
	return v
}

func TestCompileIntegerAdd(t *testing.T) {
	res := mustCompile(t, `(module
		(assign x1 10)
		(assign x2 20)
		(assign z (binary "+" x1 x2)))`)

	z := global(t, res, "z")
	be.Equal(t, z.Type, TypeInt)
	be.Equal(t, z.Size, 2)
	be.Equal(t, countInstr(res, "ADC"), 2)
	be.Equal(t, countInstr(res, "JSR check_overflow"), 1)
	be.True(t, !usesRoutine(res, "multiply16"))
	be.True(t, !usesRoutine(res, "divide16"))
}

func TestCompileMixedAddCoercesToFloat(t *testing.T) {
	res := mustCompile(t, `(module (assign z (binary "+" 5 3.14)))`)

	z := global(t, res, "z")
	be.Equal(t, z.Type, TypeFloat)
	be.Equal(t, z.Size, 4)
	be.True(t, usesRoutine(res, "FLOAT"))
	be.True(t, usesRoutine(res, "FADD"))
	be.Equal(t, len(res.Diagnostics.Warnings()), 0)
}

func TestCompileOverflowCheckIsRegistered(t *testing.T) {
	res := mustCompile(t, `(module
		(assign x1 250)
		(assign x2 10)
		(assign z (binary "+" x1 x2)))`)

	be.True(t, usesRoutine(res, "check_overflow"))
	be.True(t, usesRoutine(res, "error_handler"))
	be.True(t, countInstr(res, "JSR check_overflow") > 0)
}

func TestCompileConstantDivisionByZero(t *testing.T) {
	res, err := compileSource(t, `(module (assign y (binary "//" 10 0)))`)
	be.Err(t, err, ErrCompilationFailed)
	be.Equal(t, res.Diagnostics.ErrorCount(), 1)
	be.True(t, strings.Contains(res.Diagnostics.String(), "division by zero"))
	be.True(t, !usesRoutine(res, "divide16"))
}

func TestCompileLiteralZeroDivisor(t *testing.T) {
	for _, op := range []string{"//", "%", "/"} {
		t.Run(op, func(t *testing.T) {
			res, err := compileSource(t, `(module
				(assign x 10)
				(assign y (binary "`+op+`" x 0)))`)
			be.Err(t, err, ErrCompilationFailed)
			be.Equal(t, res.Diagnostics.ErrorCount(), 1)
			be.True(t, strings.Contains(res.Diagnostics.String(), "division by zero"))
			be.True(t, !usesRoutine(res, "divide16"))
			be.True(t, !usesRoutine(res, "FDIV"))
			be.True(t, !usesRoutine(res, "error_handler"))
		})
	}

	res, err := compileSource(t, `(module
		(assign x 1.5)
		(assign y (binary "/" x (unary "-" 0.0))))`)
	be.Err(t, err, ErrCompilationFailed)
	be.True(t, strings.Contains(res.Diagnostics.String(), "division by zero"))
}

func TestCompileXorHasNoRuntimeCall(t *testing.T) {
	res := mustCompile(t, `(module
		(assign a 10)
		(assign b 5)
		(assign c (binary "^" a b)))`)

	be.Equal(t, countInstr(res, "EOR"), 2)
	be.Equal(t, countInstr(res, "JSR"), 0)
	be.Equal(t, len(res.Routines), 0)
}

func TestCompileFunctionCall(t *testing.T) {
	res := mustCompile(t, `(module
		(def add_one (params x) (block
			(return (binary "+" x 1))))
		(assign result (call add_one 5)))`)

	be.Equal(t, countInstr(res, "JSR f_add_one"), 1)
	be.True(t, countInstr(res, "STA l1_x") > 0)
	be.True(t, hasLabel(res, "f_add_one"))
	be.True(t, hasLabel(res, "f_add_one_ret"))

	result := global(t, res, "result")
	be.Equal(t, result.Type, TypeInt)

	fn := res.Functions[0]
	be.Equal(t, fn.RetType, TypeInt)
	be.Equal(t, fn.ParamTypes[0], TypeInt)
	be.Equal(t, fn.Convention, ConventionGlobal)
}

func TestCompileMainEndsBeforeFunctions(t *testing.T) {
	res := mustCompile(t, `(module
		(def f (params) (block (return 1)))
		(assign a (call f)))`)

	mainAt, rtsAt, fnAt := -1, -1, -1
	for i, l := range res.Code {
		switch {
		case l.Kind == LineLabel && l.Text == "main":
			mainAt = i
		case l.Kind == LineInstr && l.Text == "RTS" && rtsAt < 0:
			rtsAt = i
		case l.Kind == LineLabel && l.Text == "f_f":
			fnAt = i
		}
	}
	be.True(t, mainAt >= 0)
	be.True(t, mainAt < rtsAt)
	be.True(t, rtsAt < fnAt)
}

func TestCompileStopsAfterFirstFailingStatement(t *testing.T) {
	res, err := compileSource(t, `(module
		(assign y q)
		(assign z w))`)
	be.Err(t, err, ErrCompilationFailed)
	be.Equal(t, res.Diagnostics.ErrorCount(), 1)
	be.True(t, strings.Contains(res.Diagnostics.String(), `"q" is not defined`))
	_, ok := res.Global("z")
	be.True(t, !ok)
}

func TestCompileContinuesAfterDegradedError(t *testing.T) {
	res, err := compileSource(t, `(module
		(assign a (unary "not" 1))
		(assign b (binary "//" 1 0))
		(assign c 3))`)
	be.Err(t, err, ErrCompilationFailed)
	be.Equal(t, res.Diagnostics.ErrorCount(), 2)
	text := res.Diagnostics.String()
	be.True(t, strings.Contains(text, "unary operator not is not supported"))
	be.True(t, strings.Contains(text, "division by zero"))
	be.True(t, res.Diagnostics.HasFatal())

	_, ok := res.Global("c")
	be.True(t, !ok)
}

func TestCompileDegradedErrorsOnlyStillFail(t *testing.T) {
	res, err := compileSource(t, `(module
		(assign a (unary "not" 1))
		(assign b (unary "~" 2))
		(assign c 3))`)
	be.Err(t, err, ErrCompilationFailed)
	be.Equal(t, res.Diagnostics.ErrorCount(), 2)
	be.True(t, !res.Diagnostics.HasFatal())
	be.Equal(t, global(t, res, "c").Type, TypeInt)
	be.True(t, countInstr(res, "RTS") > 0)
}

func TestCompileCollectsErrorsWithinStatement(t *testing.T) {
	res, err := compileSource(t, `(module (assign y (binary "+" q w)))`)
	be.Err(t, err, ErrCompilationFailed)
	be.Equal(t, res.Diagnostics.ErrorCount(), 2)

	y := global(t, res, "y")
	be.Equal(t, y.Type, TypeInt)
}

func TestCompileOutOfMemory(t *testing.T) {
	m, err := ReadProgram(`(module
		(assign a 1)
		(assign b 2)
		(assign c 3))`)
	be.Err(t, err, nil)
	cfg := testConfig()
	cfg.MemEnd = cfg.MemStart + 7

	res, err := Compile(m, cfg)
	be.Err(t, err, ErrCompilationFailed)
	be.Err(t, err, "out of memory")
	be.Equal(t, res.Diagnostics.ErrorCount(), 1)
}

func TestCompileInferenceWarning(t *testing.T) {
	m, err := ReadProgram(`(module
		(def f (params n) (block (return (binary "+" n 1))))
		(assign a (call f 1))
		(assign b (call f 2.5)))`)
	be.Err(t, err, nil)
	cfg := testConfig()
	cfg.MaxInferPasses = 1

	res, err := Compile(m, cfg)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(res.Diagnostics.String(), "did not converge"))
}

func TestCompileInferenceConvergesWithLocals(t *testing.T) {
	res := mustCompile(t, `(module
		(def g (params x) (block
			(assign y (binary "+" x 1))
			(augassign y "*" 2)
			(for i (call range 3) (block (augassign y "+" i)))
			(return y)))
		(assign r (call g 2)))`)
	be.Equal(t, len(res.Diagnostics.Warnings()), 0)
	be.Equal(t, res.Functions[0].RetType, TypeInt)
}

func TestCompileParamWidensToFloat(t *testing.T) {
	res := mustCompile(t, `(module
		(def f (params n) (block (return (binary "+" n 1))))
		(assign a (call f 1))
		(assign b (call f 2.5)))`)

	fn := res.Functions[0]
	be.Equal(t, fn.ParamTypes[0], TypeFloat)
	be.Equal(t, fn.RetType, TypeFloat)
	be.Equal(t, global(t, res, "a").Type, TypeFloat)
	be.True(t, usesRoutine(res, "FLOAT"))
}

func TestContextCompileIsFresh(t *testing.T) {
	src := `(module (assign x 1) (assign s "hi"))`
	first := mustCompile(t, src)
	second := mustCompile(t, src)
	be.Equal(t, len(first.Code), len(second.Code))
	be.Equal(t, global(t, first, "x").Address, global(t, second, "x").Address)
	be.Equal(t, len(first.Data), len(second.Data))
}
