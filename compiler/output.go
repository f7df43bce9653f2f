package compiler

import (
	"fmt"
	"io"
	"strings"
)

const (
	basicStart = 0x0801
	codeStart  = 0x0810
)

// basicStub is the BASIC line "10 SYS 2064" that starts the program.
var basicStub = []byte{0x0B, 0x08, 0x0A, 0x00, 0x9E, '2', '0', '6', '4', 0x00, 0x00, 0x00}

// WriteAssembly renders the program in dialect d: header, runtime
// symbols, BASIC stub, code, string data and variable storage.
func (r *Result) WriteAssembly(w io.Writer, d *Dialect) error {
	_, err := io.WriteString(w, r.Assembly(d))
	return err
}

func (r *Result) Assembly(d *Dialect) string {
	var sb strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&sb, format, args...)
		sb.WriteByte('\n')
	}

	line("%s", d.comment("generated by py2c64"))
	for _, name := range r.Routines {
		line("%s", d.comment(fmt.Sprintf("import %s: %s", name, RoutineDescription(name))))
	}
	line("")
	for _, s := range runtimeSymbols {
		line("%s", d.equate(s.Name, s.Addr))
	}
	line("")

	line("%s", d.org(basicStart))
	line("    %s", d.bytes(basicStub))
	line("%s", d.org(codeStart))
	for _, l := range r.Code {
		switch l.Kind {
		case LineLabel:
			line("%s", d.label(l.Text))
		case LineComment:
			line("    %s", d.comment(l.Text))
		default:
			line("    %s", l.Text)
		}
	}

	var reserves []DataDef
	for _, def := range r.Data {
		switch def.Kind {
		case DataString, DataBytes:
			if def.Kind == DataString {
				line("%s", d.comment(fmt.Sprintf("%q", def.Text)))
			}
			line("%s", d.label(def.Label))
			line("    %s", d.bytes(def.Bytes))
		case DataReserve:
			reserves = append(reserves, def)
		}
	}

	if len(reserves) > 0 {
		line("")
		line("%s", d.org(reserves[0].Addr))
		for _, def := range reserves {
			line("%s", d.label(def.Label))
			line("    %s", d.reserve(def.Size))
		}
	}
	return sb.String()
}
