package compiler

import "math"

// floatLiterals holds the known encodings of float literals in the
// Wozniak format: a signed 24-bit mantissa M1 M2 M3 followed by an exponent
// biased by $80. Literals missing from the table compile as 0.0.
var floatLiterals = map[float64][4]byte{
	0.0:     {0x00, 0x00, 0x00, 0x00},
	0.1:     {0x66, 0x66, 0x66, 0x7C},
	0.25:    {0x40, 0x00, 0x00, 0x7E},
	0.5:     {0x40, 0x00, 0x00, 0x7F},
	0.75:    {0x60, 0x00, 0x00, 0x7F},
	1.0:     {0x40, 0x00, 0x00, 0x80},
	1.5:     {0x60, 0x00, 0x00, 0x80},
	2.0:     {0x40, 0x00, 0x00, 0x81},
	2.5:     {0x50, 0x00, 0x00, 0x81},
	3.0:     {0x60, 0x00, 0x00, 0x81},
	3.14:    {0x64, 0x7A, 0xE1, 0x81},
	math.Pi: {0x64, 0x87, 0xED, 0x81},
	4.0:     {0x40, 0x00, 0x00, 0x82},
	5.0:     {0x50, 0x00, 0x00, 0x82},
	10.0:    {0x50, 0x00, 0x00, 0x83},
	100.0:   {0x64, 0x00, 0x00, 0x86},
	-0.5:    {0x80, 0x00, 0x00, 0x7E},
	-1.0:    {0x80, 0x00, 0x00, 0x7F},
	-2.0:    {0x80, 0x00, 0x00, 0x80},
}

// lookupFloat returns the encoding of f and whether it is known.
func lookupFloat(f float64) ([4]byte, bool) {
	b, ok := floatLiterals[f]
	return b, ok
}
