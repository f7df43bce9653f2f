package compiler

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func assembly(t *testing.T, src, dialect string) string {
	t.Helper()
	res := mustCompile(t, src)
	d, err := LookupDialect(dialect)
	be.Err(t, err, nil)
	var buf bytes.Buffer
	be.Err(t, res.WriteAssembly(&buf, d), nil)
	return buf.String()
}

func hasLine(text, line string) bool {
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) == line {
			return true
		}
	}
	return false
}

func TestLookupDialect(t *testing.T) {
	d, err := LookupDialect("ACME")
	be.Err(t, err, nil)
	be.Equal(t, d.Name, "acme")

	_, err = LookupDialect("tass")
	be.Err(t, err, "known: acme, ca65, kickass")
	be.Equal(t, DialectNames(), []string{"acme", "ca65", "kickass"})
}

func TestAssemblyACME(t *testing.T) {
	asm := assembly(t, `(module (assign x 1) (assign s "hi"))`, "acme")

	for _, want := range []string{
		"; generated by py2c64",
		"MUL_A = $0002",
		"M1 = $00F9",
		"* = $0801",
		"!byte $0B,$08,$0A,$00,$9E,$32,$30,$36,$34,$00,$00,$00",
		"* = $0810",
		"main",
		"RTS",
		`; "hi"`,
		"str_1",
		"!byte $48,$49,$00",
		"* = $C000",
		"v_x",
		"!fill 4",
	} {
		if !hasLine(asm, want) {
			t.Errorf("missing line %q in:\n%s", want, asm)
		}
	}
	be.True(t, strings.Index(asm, "* = $0810") < strings.Index(asm, "* = $C000"))
}

func TestAssemblyCA65(t *testing.T) {
	asm := assembly(t, `(module (assign x 1))`, "ca65")
	for _, want := range []string{".org $0801", ".org $0810", "main:", "v_x:", ".res 4", ".org $C000"} {
		if !hasLine(asm, want) {
			t.Errorf("missing line %q in:\n%s", want, asm)
		}
	}
}

func TestAssemblyKickAss(t *testing.T) {
	asm := assembly(t, `(module (assign x 1))`, "kickass")
	for _, want := range []string{"// generated by py2c64", ".label MUL_A = $0002", "main:", ".fill 4, 0"} {
		if !hasLine(asm, want) {
			t.Errorf("missing line %q in:\n%s", want, asm)
		}
	}
}

func TestAssemblyListsImportedRoutines(t *testing.T) {
	asm := assembly(t, `(module (assign a 1) (assign b (binary "+" a a)))`, "acme")
	be.True(t, hasLine(asm, "; import check_overflow: raise error 1 when V is set"))
	be.True(t, strings.Contains(asm, "; import error_handler: report runtime error code in A and stop (1 overflow, 2 division by zero,"))
}

func TestAssemblyCommentsAreIndented(t *testing.T) {
	asm := assembly(t, `(module (assign x 1))`, "acme")
	be.True(t, strings.Contains(asm, "\n    ; x = ...\n"))
	be.True(t, strings.Contains(asm, "\n    LDA #$01\n"))
}

func TestBufferString(t *testing.T) {
	var b Buffer
	b.Label("main")
	b.Comment("x = %d", 1)
	b.Emit("LDA #$01", "STA v_x")
	be.Equal(t, b.String(), "main:\n; x = 1\n    LDA #$01\n    STA v_x\n")
	be.Equal(t, b.Instructions(), []string{"LDA #$01", "STA v_x"})

	var other Buffer
	other.Emit("RTS")
	b.Append(&other)
	be.Equal(t, b.Len(), 5)
}

func TestRoutineSet(t *testing.T) {
	s := NewRoutineSet()
	s.Use("multiply16")
	be.Equal(t, s.Names(), []string{"multiply16"})

	s.Use("divide16")
	be.Equal(t, s.Names(), []string{"divide16", "error_handler", "multiply16"})
	be.True(t, s.Used("error_handler"))

	panicked := func() (p bool) {
		defer func() { p = recover() != nil }()
		s.Use("no_such_routine")
		return false
	}()
	be.True(t, panicked)
}

func TestRoutineNames(t *testing.T) {
	names := RoutineNames()
	be.True(t, len(names) > 10)
	for i := 1; i < len(names); i++ {
		be.True(t, names[i-1] < names[i])
	}
	for _, name := range names {
		be.True(t, RoutineDescription(name) != "")
	}
	be.True(t, strings.HasSuffix(RoutineDescription("divide16"), "error 2 on a zero divisor"))
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Severity: SeverityError, Pos: Pos{Line: 3, Col: 7}, Message: "boom"}
	be.Equal(t, d.String(), "3:7: error: boom")
	d.Pos.Col = 0
	be.Equal(t, d.String(), "3: error: boom")
	d = Diagnostic{Severity: SeverityWarning, Message: "hmm"}
	be.Equal(t, d.String(), "warning: hmm")

	var l ErrorList
	l.add(d)
	be.True(t, !l.HasErrors())
	l.add(Diagnostic{Severity: SeverityError, Message: "bad"})
	be.Equal(t, l.ErrorCount(), 1)
	be.True(t, !l.HasFatal())
	be.Equal(t, len(l.All()), 2)
	be.Equal(t, len(l.Warnings()), 1)
	be.Equal(t, l.String(), "warning: hmm\nerror: bad")

	l.add(Diagnostic{Severity: SeverityError, Message: "worse", Fatal: true})
	be.True(t, l.HasFatal())
	be.Equal(t, l.ErrorCount(), 2)
}
