package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/alby69/py2c64/compiler"
)

func showUsage() {
	fmt.Fprintf(os.Stderr, `py2c64 - compiles a Python subset to 6502 assembly for the Commodore 64

The input is the program's syntax tree written as an S-expression, for example
    (module (assign x 10) (expr (call print x)))

Usage:
    py2c64 <command> [arguments]

Commands:
    build <file>    Compile a program to an assembly source file
    check <file>    Compile a program and report diagnostics only
    eval <expr>     Compile one expression and print the assembly
    dump <file>     Print the syntax tree as read
    routines        List the runtime routines the compiler can call
    help            Show this help message

Examples:
    py2c64 build -o prime.s prime.sexpr
    py2c64 build -dialect ca65 -convention stack fact.sexpr
    py2c64 eval '(binary "+" 5 3.14)'

Settings default to the PY2C64_DIALECT, PY2C64_MEM_START, PY2C64_MEM_END,
PY2C64_CONVENTION, PY2C64_MAX_INFER and PY2C64_VERBOSE environment variables.

Use "py2c64 <command> -h" for more information about a command.
`)
}

// compileFlags registers the options shared by the compiling commands.
type compileFlags struct {
	dialect    *string
	convention *string
	memStart   *string
	memEnd     *string
	verbose    *bool
}

func addCompileFlags(fs *flag.FlagSet) *compileFlags {
	return &compileFlags{
		dialect:    fs.String("dialect", "", "Assembler dialect: "+strings.Join(compiler.DialectNames(), ", ")),
		convention: fs.String("convention", "", "Calling convention: global or stack"),
		memStart:   fs.String("mem-start", "", "First address of variable storage (e.g. $C000)"),
		memEnd:     fs.String("mem-end", "", "Last address of variable storage (e.g. $CFFF)"),
		verbose:    fs.Bool("v", false, "Show verbose compilation details"),
	}
}

// config starts from the environment and applies the flags on top.
func (f *compileFlags) config() (compiler.Config, error) {
	cfg, err := compiler.ConfigFromEnv()
	if err != nil {
		return cfg, err
	}
	if *f.dialect != "" {
		cfg.Dialect = *f.dialect
	}
	if *f.convention != "" {
		conv, err := compiler.ParseConvention(*f.convention)
		if err != nil {
			return cfg, err
		}
		cfg.Convention = conv
	}
	if *f.memStart != "" {
		if cfg.MemStart, err = compiler.ParseAddress(*f.memStart); err != nil {
			return cfg, fmt.Errorf("-mem-start: %w", err)
		}
	}
	if *f.memEnd != "" {
		if cfg.MemEnd, err = compiler.ParseAddress(*f.memEnd); err != nil {
			return cfg, fmt.Errorf("-mem-end: %w", err)
		}
	}
	if *f.verbose {
		cfg.Verbose = true
	}
	return cfg, cfg.Validate()
}

func parseArgs(fs *flag.FlagSet, args []string, what string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one %s argument\n", what)
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func readProgram(filename string) *compiler.Module {
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file %s: %v\n", filename, err)
		os.Exit(1)
	}
	m, err := compiler.ReadProgram(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Syntax error in %s: %v\n", filename, err)
		os.Exit(1)
	}
	return m
}

// compileOrExit compiles m and prints every diagnostic. Warnings were
// already logged by the compiler.
func compileOrExit(m *compiler.Module, cfg compiler.Config, name string) *compiler.Result {
	res, err := compiler.Compile(m, cfg)
	if err != nil {
		if errors.Is(err, compiler.ErrCompilationFailed) && res.Diagnostics.HasErrors() {
			fmt.Fprintf(os.Stderr, "Compilation errors in %s:\n", name)
			for _, d := range res.Diagnostics.Errors() {
				fmt.Fprintf(os.Stderr, "  %s\n", d)
			}
		} else {
			fmt.Fprintf(os.Stderr, "Compilation failed: %v\n", err)
		}
		os.Exit(1)
	}
	return res
}

func buildCommand(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	output := fs.String("o", "", "Output file path (default: <filename>.s)")
	flags := addCompileFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: py2c64 build [-o output] [-dialect name] [-convention name] [-v] <file>\n")
		fmt.Fprintf(os.Stderr, "Compile a program to an assembly source file\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	filename := parseArgs(fs, args, "file")

	cfg, err := flags.config()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	dialect, err := compiler.LookupDialect(cfg.Dialect)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	outputFile := *output
	if outputFile == "" {
		outputFile = strings.TrimSuffix(filename, ".sexpr") + ".s"
	}
	if cfg.Verbose {
		fmt.Printf("Compiling %s to %s (%s, %s convention)...\n", filename, outputFile, dialect.Name, cfg.Convention)
	}

	res := compileOrExit(readProgram(filename), cfg, filename)

	f, err := os.Create(outputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", outputFile, err)
		os.Exit(1)
	}
	w := bufio.NewWriter(f)
	if err := res.WriteAssembly(w, dialect); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outputFile, err)
		os.Exit(1)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outputFile, err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outputFile, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s (%d lines of code, %d variables, %d routines)\n",
		outputFile, len(res.Code), len(res.Variables), len(res.Routines))
}

func checkCommand(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	flags := addCompileFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: py2c64 check [-v] <file>\n")
		fmt.Fprintf(os.Stderr, "Compile a program and report diagnostics only\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	filename := parseArgs(fs, args, "file")

	cfg, err := flags.config()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	res := compileOrExit(readProgram(filename), cfg, filename)

	fmt.Printf("%s: no errors found", filename)
	if n := len(res.Diagnostics.Warnings()); n > 0 {
		fmt.Printf(" (%d warnings)", n)
	}
	fmt.Println()

	if cfg.Verbose {
		for _, v := range res.Variables {
			fmt.Printf("  %s\n", v)
		}
		for _, fn := range res.Functions {
			fmt.Printf("  %s: convention %s, returns %s\n", fn.Label, fn.Convention, fn.RetType)
		}
	}
}

func evalCommand(args []string) {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	flags := addCompileFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: py2c64 eval [-dialect name] [-v] <expr>\n")
		fmt.Fprintf(os.Stderr, "Compile `result = <expr>` and print the assembly\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	code := parseArgs(fs, args, "expression")

	cfg, err := flags.config()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	dialect, err := compiler.LookupDialect(cfg.Dialect)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	e, err := compiler.ReadExpr(code)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Syntax error: %v\n", err)
		os.Exit(1)
	}
	m := &compiler.Module{Body: []compiler.Stmt{&compiler.Assign{Target: "result", Value: e}}}
	res := compileOrExit(m, cfg, "expression")
	fmt.Print(res.Assembly(dialect))
}

func dumpCommand(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: py2c64 dump <file>\n")
		fmt.Fprintf(os.Stderr, "Print the syntax tree as read\n")
	}
	filename := parseArgs(fs, args, "file")
	fmt.Println(compiler.ToSExpr(readProgram(filename)))
}

func routinesCommand() {
	for _, name := range compiler.RoutineNames() {
		fmt.Printf("%-14s %s\n", name, compiler.RoutineDescription(name))
	}
}

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "build":
		buildCommand(args)
	case "check":
		checkCommand(args)
	case "eval":
		evalCommand(args)
	case "dump":
		dumpCommand(args)
	case "routines":
		routinesCommand()
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		showUsage()
		os.Exit(1)
	}
}
