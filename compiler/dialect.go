package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// Dialect spells the directives of one assembler. The code buffer never
// contains directives; the formatter looks them up here.
type Dialect struct {
	Name        string
	Comment     string // line comment prefix
	LabelSuffix string
	Byte        string
	Word        string
	Org         string // format with one %04X verb
	Equate      string // format with name and %04X
	Reserve     string // format with one %d verb
}

var dialects = map[string]*Dialect{
	"acme": {
		Name:        "acme",
		Comment:     ";",
		LabelSuffix: "",
		Byte:        "!byte",
		Word:        "!word",
		Org:         "* = $%04X",
		Equate:      "%s = $%04X",
		Reserve:     "!fill %d",
	},
	"ca65": {
		Name:        "ca65",
		Comment:     ";",
		LabelSuffix: ":",
		Byte:        ".byte",
		Word:        ".word",
		Org:         ".org $%04X",
		Equate:      "%s = $%04X",
		Reserve:     ".res %d",
	},
	"kickass": {
		Name:        "kickass",
		Comment:     "//",
		LabelSuffix: ":",
		Byte:        ".byte",
		Word:        ".word",
		Org:         "* = $%04X",
		Equate:      ".label %s = $%04X",
		Reserve:     ".fill %d, 0",
	},
}

// LookupDialect returns the named dialect.
func LookupDialect(name string) (*Dialect, error) {
	d, ok := dialects[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown assembler dialect %q (known: %s)", name, strings.Join(DialectNames(), ", "))
	}
	return d, nil
}

// DialectNames lists the known dialects, sorted.
func DialectNames() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Dialect) org(addr uint16) string {
	return fmt.Sprintf(d.Org, addr)
}

func (d *Dialect) equate(name string, addr uint16) string {
	return fmt.Sprintf(d.Equate, name, addr)
}

func (d *Dialect) reserve(n int) string {
	return fmt.Sprintf(d.Reserve, n)
}

func (d *Dialect) bytes(bs []byte) string {
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = fmt.Sprintf("$%02X", b)
	}
	return d.Byte + " " + strings.Join(parts, ",")
}

func (d *Dialect) label(name string) string {
	return name + d.LabelSuffix
}

func (d *Dialect) comment(text string) string {
	if text == "" {
		return d.Comment
	}
	return d.Comment + " " + text
}
