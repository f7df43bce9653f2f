package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alby69/py2c64/compiler"
	"github.com/alby69/py2c64/sexy"
)

// Dumper compiles the cases of markdown test files and writes what the
// compiler actually produced for each one, in the same fence format the
// tests read. The output is a starting point for new expectations.
type Dumper struct {
	cfg   compiler.Config
	out   strings.Builder
	cases int
	fails int
}

func NewDumper() *Dumper {
	cfg := compiler.DefaultConfig()
	cfg.Logger = nil
	return &Dumper{cfg: cfg}
}

func (d *Dumper) dumpFile(filename string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	cases, err := sexy.ExtractTestCases(string(content))
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	fmt.Fprintf(&d.out, "# %s\n\n", strings.TrimSuffix(filepath.Base(filename), ".md"))
	for _, tc := range cases {
		d.dumpCase(tc)
	}
	return nil
}

func (d *Dumper) dumpCase(tc sexy.TestCase) {
	d.cases++
	src := tc.Input
	if tc.InputType == sexy.InputTypeExpr {
		src = "(module (assign result " + src + "))"
	}

	fmt.Fprintf(&d.out, "## Test: %s\n\n", tc.Name)
	d.fence(string(tc.InputType), tc.Input)

	m, err := compiler.ReadProgram(src)
	if err != nil {
		d.fails++
		d.fence("compile-error", err.Error())
		return
	}
	res, err := compiler.Compile(m, d.cfg)
	if err != nil {
		d.fails++
		if res.Diagnostics.HasErrors() {
			d.fence("compile-error", messages(res.Diagnostics.Errors()))
		} else {
			d.fence("compile-error", err.Error())
		}
		return
	}
	if w := res.Diagnostics.Warnings(); len(w) > 0 {
		d.fence("warning", messages(w))
	}

	d.fence("registry", registry(res))
	if len(res.Routines) > 0 {
		d.fence("routines", strings.Join(res.Routines, "\n"))
	}
	var code []string
	for _, l := range res.Code {
		if l.Kind == compiler.LineInstr {
			code = append(code, l.Text)
		}
	}
	d.fence("asm", strings.Join(code, "\n"))
}

func (d *Dumper) fence(lang, body string) {
	fmt.Fprintf(&d.out, "```%s\n%s\n```\n\n", lang, strings.TrimRight(body, "\n"))
}

func messages(diags []compiler.Diagnostic) string {
	lines := make([]string, len(diags))
	for i, diag := range diags {
		lines[i] = diag.Message
	}
	return strings.Join(lines, "\n")
}

func registry(res *compiler.Result) string {
	vars := make([]*compiler.Variable, len(res.Variables))
	copy(vars, res.Variables)
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })

	entries := make([]string, 0, len(vars))
	for _, v := range vars {
		entry := fmt.Sprintf("(%s %s %d", v.Name, v.Type, v.Size)
		if v.Is8Bit {
			entry += " 8bit"
		}
		entries = append(entries, entry+")")
	}
	return "(" + strings.Join(entries, " ") + ")"
}

func main() {
	pattern := "compiler/testdata/*_test.md"
	if len(os.Args) > 1 {
		pattern = os.Args[1]
	}

	files, err := filepath.Glob(pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No files match %s\n", pattern)
		os.Exit(1)
	}

	d := NewDumper()
	for _, f := range files {
		if err := d.dumpFile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Print(d.out.String())
	fmt.Fprintf(os.Stderr, "Dumped %d cases from %d files (%d failed to compile)\n", d.cases, len(files), d.fails)
}
