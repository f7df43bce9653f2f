package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// Severity of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Severity Severity
	Pos      Pos
	Message  string
	Fatal    bool // stops compilation after the current top-level statement
}

func (d Diagnostic) String() string {
	if d.Pos.Line > 0 {
		if d.Pos.Col > 0 {
			return fmt.Sprintf("%d:%d: %s: %s", d.Pos.Line, d.Pos.Col, d.Severity, d.Message)
		}
		return fmt.Sprintf("%d: %s: %s", d.Pos.Line, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// ErrorList accumulates diagnostics for one compilation.
type ErrorList struct {
	items  []Diagnostic
	errors int
	fatal  int
}

func (l *ErrorList) add(d Diagnostic) {
	l.items = append(l.items, d)
	if d.Severity == SeverityError {
		l.errors++
		if d.Fatal {
			l.fatal++
		}
	}
}

// HasErrors reports whether any ERROR was recorded.
func (l *ErrorList) HasErrors() bool {
	return l.errors > 0
}

// HasFatal reports whether an error that ends compilation was recorded.
func (l *ErrorList) HasFatal() bool {
	return l.fatal > 0
}

// ErrorCount is the number of ERROR diagnostics.
func (l *ErrorList) ErrorCount() int {
	return l.errors
}

// All returns every diagnostic in report order.
func (l *ErrorList) All() []Diagnostic {
	return append([]Diagnostic(nil), l.items...)
}

// Errors returns only the ERROR diagnostics.
func (l *ErrorList) Errors() []Diagnostic {
	return l.filter(SeverityError)
}

// Warnings returns only the WARNING diagnostics.
func (l *ErrorList) Warnings() []Diagnostic {
	return l.filter(SeverityWarning)
}

func (l *ErrorList) filter(sev Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range l.items {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

func (l *ErrorList) String() string {
	var sb strings.Builder
	for i, d := range l.items {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(d.String())
	}
	return sb.String()
}

// ErrCompilationFailed is returned by Compile when ERROR diagnostics were
// reported.
var ErrCompilationFailed = errors.New("compilation failed")

// OutOfMemoryError is returned when the allocator runs past the memory limit.
type OutOfMemoryError struct {
	Name  string
	Size  int
	Limit uint16
}

func (e *OutOfMemoryError) Error() string {
	return fmt.Sprintf("out of memory allocating %d bytes for %q (limit $%04X)", e.Size, e.Name, e.Limit)
}
