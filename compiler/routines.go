package compiler

import (
	"fmt"
	"sort"
)

// Runtime error codes, passed to error_handler in A.
const (
	ErrCodeOverflow    = 1
	ErrCodeDivZero     = 2
	ErrCodeKeyNotFound = 3
	ErrCodeIndexRange  = 4
	ErrCodeType        = 5
)

const errorHandler = "error_handler"

type routineInfo struct {
	faults bool // may jump to error_handler
	desc   string
}

// routineTable lists every runtime routine the generated code may call.
// Argument and result registers are part of each routine's contract.
var routineTable = map[string]routineInfo{
	"check_overflow": {true, fmt.Sprintf("raise error %d when V is set", ErrCodeOverflow)},
	errorHandler: {false, fmt.Sprintf("report runtime error code in A and stop (%d overflow, %d division by zero, %d key not found, %d index out of range, %d type error)",
		ErrCodeOverflow, ErrCodeDivZero, ErrCodeKeyNotFound, ErrCodeIndexRange, ErrCodeType)},

	"multiply16": {false, "PRODUCT = MUL_A * MUL_B (32-bit)"},
	"divide16":   {true, fmt.Sprintf("QUOTIENT, REMAINDER = DIV_A floordiv/mod DIV_B; error %d on a zero divisor", ErrCodeDivZero)},
	"power16":    {true, fmt.Sprintf("MUL_A = MUL_A ** MUL_B; error %d on overflow", ErrCodeOverflow)},
	"shl16":      {false, "MUL_A <<= X"},
	"shr16":      {false, "MUL_A >>= X (arithmetic)"},

	"FLOAT":  {false, "FAC = float(M1:M1+1)"},
	"FIX":    {false, "M1:M1+1 = int(FAC), truncating"},
	"FADD":   {false, "FAC = FAC + ARG"},
	"FSUB":   {false, "FAC = FAC - ARG"},
	"FMUL":   {false, "FAC = FAC * ARG"},
	"FDIV":   {true, fmt.Sprintf("FAC = ARG / FAC; error %d on a zero divisor", ErrCodeDivZero)},
	"FFLOOR": {false, "FAC = floor(FAC)"},
	"FCOMP":  {false, "compare FAC with ARG: C clear if less, Z set if equal"},
	"FABS":   {false, "FAC = abs(FAC)"},

	"str_equal":    {false, "A = string at RT_ARG0 == string at A/X"},
	"str_append":   {false, "append string at A/X to buffer at RT_ARG0"},
	"str_len":      {false, "A/X = length of string at A/X"},
	"str_to_int":   {true, fmt.Sprintf("A/X = int(string at A/X); error %d on bad text", ErrCodeType)},
	"int_to_str":   {false, "A/X = pointer to decimal text of A/X"},
	"float_to_str": {false, "A/X = pointer to decimal text of FAC"},
	"chr_str":      {false, "A/X = one-character string for code A"},
	"str_ord":      {true, fmt.Sprintf("A/X = code of the first character of A/X; error %d when empty", ErrCodeIndexRange)},

	"print_int":     {false, "print A/X as signed decimal"},
	"print_float":   {false, "print FAC"},
	"print_str":     {false, "print string at A/X"},
	"print_space":   {false, "print one space"},
	"print_newline": {false, "print a carriage return"},
	"input_line":    {false, "A/X = pointer to a line read from the keyboard"},

	"peek": {false, "A = byte at address A/X"},
	"poke": {false, "store RT_ARG1 at address RT_ARG0"},

	"stack_push": {false, "push A on the software stack"},
	"stack_pop":  {false, "pop A from the software stack"},
	"stack_drop": {false, "drop A bytes from the software stack"},
}

// RoutineSet records the runtime routines the program uses.
type RoutineSet struct {
	used map[string]bool
}

func NewRoutineSet() *RoutineSet {
	return &RoutineSet{used: make(map[string]bool)}
}

// Use marks routines as used. Routines that can fault pull in
// error_handler as well.
func (s *RoutineSet) Use(names ...string) {
	for _, name := range names {
		info, ok := routineTable[name]
		if !ok {
			panic(fmt.Sprintf("unknown runtime routine %q", name))
		}
		s.used[name] = true
		if info.faults {
			s.used[errorHandler] = true
		}
	}
}

func (s *RoutineSet) Used(name string) bool {
	return s.used[name]
}

// Names returns the used routines, sorted.
func (s *RoutineSet) Names() []string {
	names := make([]string, 0, len(s.used))
	for name := range s.used {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RoutineNames returns every routine the compiler can call, sorted.
func RoutineNames() []string {
	names := make([]string, 0, len(routineTable))
	for name := range routineTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RoutineDescription documents a routine's register contract.
func RoutineDescription(name string) string {
	return routineTable[name].desc
}

// Zero-page and scratch symbols shared with the runtime library.
type symbol struct {
	Name string
	Addr uint16
}

var runtimeSymbols = []symbol{
	{"MUL_A", 0x02},
	{"MUL_B", 0x04},
	{"PRODUCT", 0x06},
	{"DIV_A", 0x0A},
	{"DIV_B", 0x0C},
	{"QUOTIENT", 0x0E},
	{"REMAINDER", 0x10},
	{"RT_ARG0", 0x12},
	{"RT_ARG1", 0x14},
	{"RT_ARG2", 0x16},
	{"RT_ARG3", 0x18},
	{"SP", 0x1A}, // software stack pointer
	{"PTR1", 0x1C},
	{"X2", 0xF4},
	{"M2", 0xF5},
	{"X1", 0xF8},
	{"M1", 0xF9},
}

// maxRuntimeArgs is the number of RT_ARG slots.
const maxRuntimeArgs = 4
