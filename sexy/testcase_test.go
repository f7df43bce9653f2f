package sexy

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

const fence = "```"

func TestExtractTestCases_BasicTest(t *testing.T) {
	markdown := `# Arithmetic

## Test: add two globals
` + fence + "py2c64" + `
(module (assign x 1) (assign y (binary "+" x 2)))
` + fence + `
` + fence + "registry" + `
((y int 2))
` + fence + `

## Test: xor
` + fence + "py2c64" + `
(module (assign c (binary "^" a b)))
` + fence + `
` + fence + "no-routines" + `
multiply16
divide16
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 2)

	tc1 := testCases[0]
	be.Equal(t, tc1.Name, "add two globals")
	be.Equal(t, tc1.InputType, InputTypeProgram)
	be.Equal(t, tc1.Input, `(module (assign x 1) (assign y (binary "+" x 2)))`)
	be.Equal(t, len(tc1.Assertions), 1)
	be.Equal(t, tc1.Assertions[0].Type, AssertionTypeRegistry)
	be.Equal(t, tc1.Assertions[0].ParsedSexy.String(), "((y int 2))")

	tc2 := testCases[1]
	be.Equal(t, tc2.Name, "xor")
	be.Equal(t, tc2.Assertions[0].Type, AssertionTypeNoRoutines)
	be.Equal(t, tc2.Assertions[0].Lines(), []string{"multiply16", "divide16"})
	be.True(t, tc2.Assertions[0].ParsedSexy == nil)
}

func TestExtractTestCases_MultipleAssertions(t *testing.T) {
	markdown := `## Test: several fences
` + fence + "py2c64" + `
(module (assign y (binary "//" 10 0)))
` + fence + `
` + fence + "compile-error" + `
division by zero
` + fence + `
` + fence + "asm" + `
  LDA #0

` + fence + `
` + fence + "asm-count" + `
0 JSR divide16
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)

	tc := testCases[0]
	be.Equal(t, len(tc.Assertions), 3)
	be.Equal(t, tc.Assertions[0].Type, AssertionTypeCompileError)
	be.Equal(t, tc.Assertions[1].Type, AssertionTypeAsm)
	be.Equal(t, tc.Assertions[1].Lines(), []string{"LDA #0"})
	be.Equal(t, tc.Assertions[2].Type, AssertionTypeAsmCount)
}

func TestExtractTestCases_ExprInput(t *testing.T) {
	markdown := `## Test: expression input
` + fence + "py2c64-expr" + `
(binary "+" 5 3.14)
` + fence + `
` + fence + "routines" + `
FLOAT
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, testCases[0].InputType, InputTypeExpr)
}

func TestExtractTestCases_EmptyFile(t *testing.T) {
	testCases, err := ExtractTestCases("")
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 0)
}

func TestExtractTestCases_NoTestCases(t *testing.T) {
	testCases, err := ExtractTestCases("# Just prose\n\nNothing to see here.\n")
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 0)
}

func TestExtractTestCases_InvalidSexyAssertion(t *testing.T) {
	markdown := `## Test: invalid sexy
` + fence + "py2c64" + `
(module)
` + fence + `
` + fence + "registry" + `
((unclosed list
` + fence

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "failed to parse Sexy assertion")
	be.Err(t, err, "line")
}

func TestExtractTestCases_FenceOutsideTestCase(t *testing.T) {
	tests := []struct {
		name      string
		markdown  string
		fenceType string
	}{
		{"program fence outside test", "# Document\n\n" + fence + "py2c64\n(module)\n" + fence + "\n", "py2c64"},
		{"registry fence outside test", "# Document\n\n" + fence + "registry\n((x int 2))\n" + fence + "\n", "registry"},
		{"asm fence outside test", "# Document\n\n" + fence + "asm\nRTS\n" + fence + "\n", "asm"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ExtractTestCases(test.markdown)
			be.Err(t, err, test.fenceType+" fence found outside of test case")
			be.Err(t, err, "line")
		})
	}
}

func TestExtractTestCases_UnknownFenceLanguageInTest(t *testing.T) {
	markdown := `## Test: with unknown fence
` + fence + "python" + `
print("hello")
` + fence + `
` + fence + "py2c64" + `
(module)
` + fence + `
` + fence + "asm" + `
RTS
` + fence

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "unknown fence language 'python'")
}

func TestExtractTestCases_TestMissingInputFence(t *testing.T) {
	markdown := "## Test: no input\n" + fence + "asm\nRTS\n" + fence

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "test 'no input' has no input fence")
}

func TestExtractTestCases_TestMissingAssertionFence(t *testing.T) {
	markdown := "## Test: no assertions\n" + fence + "py2c64\n(module)\n" + fence

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "test 'no assertions' has no assertion fences")
}

func TestExtractTestCases_MultipleInputFences(t *testing.T) {
	markdown := "## Test: multiple inputs\n" +
		fence + "py2c64\n(module)\n" + fence + "\n" +
		fence + "py2c64\n(module)\n" + fence + "\n" +
		fence + "asm\nRTS\n" + fence

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "multiple input fences found")
}

func TestExtractTestCases_AllowFencesWithoutLanguage(t *testing.T) {
	markdown := "# Document\n\n" + fence + "\nsome prose code\n" + fence + "\n\n" +
		"## Test: valid test\n" +
		fence + "py2c64\n(module)\n" + fence + "\n" +
		fence + "asm\nRTS\n" + fence + "\n\n" +
		fence + "\nmore prose code\n" + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)
	be.Equal(t, testCases[0].Name, "valid test")
	be.Equal(t, len(testCases[0].Assertions), 1)
}

func TestExtractTestCases_ErrorInSecondTest(t *testing.T) {
	markdown := "## Test: first test\n" +
		fence + "py2c64\n(module)\n" + fence + "\n" +
		fence + "asm\nRTS\n" + fence + "\n\n" +
		"## Test: second test missing input\n" +
		fence + "asm\nRTS\n" + fence

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "test 'second test missing input' has no input fence")
}

func TestAssertionLines(t *testing.T) {
	a := Assertion{Content: "  JSR FLOAT\n\n\tSTA v_z  \n"}
	be.Equal(t, a.Lines(), []string{"JSR FLOAT", "STA v_z"})
	be.True(t, !strings.Contains(a.Lines()[1], "\t"))
}
