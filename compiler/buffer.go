package compiler

import (
	"fmt"
	"strings"
)

type LineKind int

const (
	LineInstr LineKind = iota
	LineLabel
	LineComment
)

// Line is one entry of the generated code. Text holds the instruction, the
// label name or the comment body, never dialect-specific punctuation.
type Line struct {
	Kind LineKind
	Text string
}

func (l Line) String() string {
	switch l.Kind {
	case LineLabel:
		return l.Text + ":"
	case LineComment:
		return "; " + l.Text
	default:
		return "    " + l.Text
	}
}

// Buffer is an append-only list of code lines.
type Buffer struct {
	lines []Line
}

func (b *Buffer) Emit(instrs ...string) {
	for _, in := range instrs {
		b.lines = append(b.lines, Line{Kind: LineInstr, Text: in})
	}
}

func (b *Buffer) Label(name string) {
	b.lines = append(b.lines, Line{Kind: LineLabel, Text: name})
}

func (b *Buffer) Comment(format string, args ...any) {
	b.lines = append(b.lines, Line{Kind: LineComment, Text: fmt.Sprintf(format, args...)})
}

func (b *Buffer) Append(other *Buffer) {
	b.lines = append(b.lines, other.lines...)
}

func (b *Buffer) Lines() []Line {
	return b.lines
}

func (b *Buffer) Len() int {
	return len(b.lines)
}

// Instructions returns only the instruction texts.
func (b *Buffer) Instructions() []string {
	var out []string
	for _, l := range b.lines {
		if l.Kind == LineInstr {
			out = append(out, l.Text)
		}
	}
	return out
}

func (b *Buffer) String() string {
	var sb strings.Builder
	for _, l := range b.lines {
		sb.WriteString(l.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
