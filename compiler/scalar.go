package compiler

import "fmt"

// at addresses byte i of v as a store target.
func at(v *Variable, i int) string {
	if i == 0 {
		return v.Label
	}
	return fmt.Sprintf("%s+%d", v.Label, i)
}

// byteOf addresses byte i of v as an operand. The high byte of a one-byte
// integer reads as zero.
func byteOf(v *Variable, i int) string {
	if v.Type != TypeFloat && i >= v.Size {
		return "#$00"
	}
	return at(v, i)
}

func imm(b byte) string {
	return fmt.Sprintf("#$%02X", b)
}

// Copy moves src into dst. Differently typed int/float pairs are converted,
// never truncated byte-wise.
func (c *Context) Copy(src, dst *Variable) []string {
	switch {
	case src.Type == TypeInt && dst.Type == TypeFloat:
		return c.IntToFloat(src, dst)
	case src.Type == TypeFloat && dst.Type == TypeInt:
		return c.FloatToInt(src, dst)
	}
	n := min(src.Size, dst.Size)
	out := make([]string, 0, 2*n)
	for i := 0; i < n; i++ {
		out = append(out, "LDA "+at(src, i), "STA "+at(dst, i))
	}
	return out
}

// IntToFloat stages the integer in the FAC mantissa and calls FLOAT.
func (c *Context) IntToFloat(src, dst *Variable) []string {
	c.use("FLOAT")
	out := []string{
		"LDA " + byteOf(src, 1),
		"STA M1",
		"LDA " + at(src, 0),
		"STA M1+1",
		"LDA #$00",
		"STA M1+2",
		"LDA #$8E",
		"STA X1",
		"JSR FLOAT",
	}
	return append(out, c.StoreFAC(dst)...)
}

// FloatToInt truncates toward zero through FIX.
func (c *Context) FloatToInt(src, dst *Variable) []string {
	c.use("FIX")
	out := c.LoadFAC(src)
	out = append(out,
		"JSR FIX",
		"LDA M1+1",
		"STA "+at(dst, 0),
		"LDA M1",
		"STA "+at(dst, 1),
	)
	return out
}

// Floats are stored mantissa first (M1 M2 M3) then the exponent.

func (c *Context) LoadFAC(src *Variable) []string {
	return loadFloat(src, "M1", "X1")
}

func (c *Context) LoadARG(src *Variable) []string {
	return loadFloat(src, "M2", "X2")
}

func (c *Context) StoreFAC(dst *Variable) []string {
	return []string{
		"LDA M1", "STA " + at(dst, 0),
		"LDA M1+1", "STA " + at(dst, 1),
		"LDA M1+2", "STA " + at(dst, 2),
		"LDA X1", "STA " + at(dst, 3),
	}
}

func loadFloat(src *Variable, mant, exp string) []string {
	return []string{
		"LDA " + at(src, 0), "STA " + mant,
		"LDA " + at(src, 1), "STA " + mant + "+1",
		"LDA " + at(src, 2), "STA " + mant + "+2",
		"LDA " + at(src, 3), "STA " + exp,
	}
}

// storeAX writes the A/X result registers into a two-byte dst.
func storeAX(dst *Variable) []string {
	return []string{"STA " + at(dst, 0), "STX " + at(dst, 1)}
}

// loadAX loads a two-byte value into A (low) and X (high).
func loadAX(v *Variable) []string {
	if v.Type != TypeFloat && v.Size < 2 {
		return []string{"LDA " + at(v, 0), "LDX #$00"}
	}
	return []string{"LDA " + at(v, 0), "LDX " + at(v, 1)}
}

// loadAddrAX loads the address of label into A/X.
func loadAddrAX(label string) []string {
	return []string{"LDA #<" + label, "LDX #>" + label}
}

// storeAddr writes the address of label into a pointer variable.
func storeAddr(label string, dst *Variable) []string {
	return []string{
		"LDA #<" + label, "STA " + at(dst, 0),
		"LDA #>" + label, "STA " + at(dst, 1),
	}
}

// storeInt writes a 16-bit constant into dst.
func storeInt(v int64, dst *Variable) []string {
	u := uint16(v)
	return []string{
		"LDA " + imm(byte(u)), "STA " + at(dst, 0),
		"LDA " + imm(byte(u>>8)), "STA " + at(dst, 1),
	}
}

// setZero leaves dst as the integer constant 0. Used wherever an expression
// cannot be lowered.
func (c *Context) setZero(dst *Variable) {
	dst.setType(TypeInt, true)
	c.emit(storeInt(0, dst)...)
}
