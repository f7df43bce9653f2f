package compiler

// lowerBinary emits op applied to two resolved operands and retypes dst.
// dst may be one of the operands; it is written only after the bytes it
// could alias have been read.
func (c *Context) lowerBinary(dst *Variable, op string, l, r *Variable, pos Pos) error {
	if c.lowerHook != nil {
		c.lowerHook(op, l, r)
	}
	if l.Type == TypePointer || r.Type == TypePointer || l.Type == TypeDict || r.Type == TypeDict {
		if l.Type == TypePointer && r.Type == TypePointer && op == "+" {
			return c.lowerConcat(dst, l, r)
		}
		c.errorf(pos, "unsupported operand types for %s: %s and %s", op, l.Type, r.Type)
		c.setZero(dst)
		return nil
	}
	if (l.Type == TypeFloat) != (r.Type == TypeFloat) {
		c.errorf(pos, "internal error: %s operands differ in float-ness (%s, %s)", op, l, r)
		c.setZero(dst)
		return nil
	}
	if l.Type == TypeFloat {
		c.lowerFloatBinary(dst, op, l, r, pos)
		return nil
	}
	c.lowerIntBinary(dst, op, l, r, pos)
	return nil
}

func (c *Context) lowerIntBinary(dst *Variable, op string, l, r *Variable, pos Pos) {
	switch op {
	case "+", "-":
		carry, inst := "CLC", "ADC"
		if op == "-" {
			carry, inst = "SEC", "SBC"
		}
		c.use("check_overflow")
		c.emit(
			carry,
			"LDA "+byteOf(l, 0),
			inst+" "+byteOf(r, 0),
			"STA "+at(dst, 0),
			"LDA "+byteOf(l, 1),
			inst+" "+byteOf(r, 1),
			"STA "+at(dst, 1),
			"JSR check_overflow",
		)
	case "*":
		c.use("multiply16")
		c.emit(copyWord(l, "MUL_A")...)
		c.emit(copyWord(r, "MUL_B")...)
		c.emit("JSR multiply16")
		c.emit(loadWord("PRODUCT", dst)...)
	case "//", "%":
		c.use("divide16")
		c.emit(copyWord(l, "DIV_A")...)
		c.emit(copyWord(r, "DIV_B")...)
		c.emit("JSR divide16")
		if op == "//" {
			c.emit(loadWord("QUOTIENT", dst)...)
		} else {
			c.emit(loadWord("REMAINDER", dst)...)
		}
	case "**":
		c.use("power16")
		c.emit(copyWord(l, "MUL_A")...)
		c.emit(copyWord(r, "MUL_B")...)
		c.emit("JSR power16")
		c.emit(loadWord("MUL_A", dst)...)
	case "&", "|", "^":
		inst := map[string]string{"&": "AND", "|": "ORA", "^": "EOR"}[op]
		c.emit(
			"LDA "+byteOf(l, 0),
			inst+" "+byteOf(r, 0),
			"STA "+at(dst, 0),
			"LDA "+byteOf(l, 1),
			inst+" "+byteOf(r, 1),
			"STA "+at(dst, 1),
		)
	case "<<", ">>":
		routine := "shl16"
		if op == ">>" {
			routine = "shr16"
		}
		c.use(routine)
		c.emit(copyWord(l, "MUL_A")...)
		c.emit("LDX "+byteOf(r, 0), "JSR "+routine)
		c.emit(loadWord("MUL_A", dst)...)
	default:
		c.errorf(pos, "operator %s is not supported for int operands", op)
		c.setZero(dst)
		return
	}
	dst.setType(TypeInt, false)
}

func (c *Context) lowerFloatBinary(dst *Variable, op string, l, r *Variable, pos Pos) {
	switch op {
	case "+", "-", "*":
		routine := map[string]string{"+": "FADD", "-": "FSUB", "*": "FMUL"}[op]
		c.use(routine)
		c.emit(c.LoadFAC(l)...)
		c.emit(c.LoadARG(r)...)
		c.emit("JSR " + routine)
	case "/", "//":
		// FDIV divides ARG by FAC.
		c.use("FDIV")
		c.emit(c.LoadFAC(r)...)
		c.emit(c.LoadARG(l)...)
		c.emit("JSR FDIV")
		if op == "//" {
			c.use("FFLOOR")
			c.emit("JSR FFLOOR")
		}
	default:
		c.errorf(pos, "operator %s is not supported for float operands", op)
		c.setZero(dst)
		return
	}
	c.emit(c.StoreFAC(dst)...)
	dst.setType(TypeFloat, false)
}

// lowerConcat joins two strings into a fresh buffer.
func (c *Context) lowerConcat(dst *Variable, l, r *Variable) error {
	buf, err := c.buffer("sbuf", 255)
	if err != nil {
		return err
	}
	c.use("str_append")
	c.emit("LDA #$00", "STA "+buf)
	for _, v := range []*Variable{l, r} {
		c.emit(appendTarget(buf)...)
		c.emit(loadAX(v)...)
		c.emit("JSR str_append")
	}
	c.emit(storeAddr(buf, dst)...)
	dst.setType(TypePointer, false)
	return nil
}

// appendTarget points RT_ARG0 at the buffer str_append writes into.
func appendTarget(buf string) []string {
	return []string{
		"LDA #<" + buf, "STA RT_ARG0",
		"LDA #>" + buf, "STA RT_ARG0+1",
	}
}

// copyWord copies a 16-bit operand into a runtime scratch location.
func copyWord(v *Variable, scratch string) []string {
	return []string{
		"LDA " + byteOf(v, 0), "STA " + scratch,
		"LDA " + byteOf(v, 1), "STA " + scratch + "+1",
	}
}

// loadWord copies a 16-bit runtime result into dst.
func loadWord(scratch string, dst *Variable) []string {
	return []string{
		"LDA " + scratch, "STA " + at(dst, 0),
		"LDA " + scratch + "+1", "STA " + at(dst, 1),
	}
}
