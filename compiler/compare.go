package compiler

// lowerCompare emits a comparison of two resolved operands and leaves 0 or 1
// in dst as an int.
func (c *Context) lowerCompare(dst *Variable, op string, l, r *Variable, pos Pos) {
	if c.lowerHook != nil {
		c.lowerHook(op, l, r)
	}
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
	default:
		c.errorf(pos, "comparison operator %s is not supported", op)
		c.setZero(dst)
		return
	}

	if l.Type == TypePointer || r.Type == TypePointer {
		if l.Type != r.Type {
			c.errorf(pos, "cannot compare %s with %s", l.Type, r.Type)
			c.setZero(dst)
			return
		}
		if op != "==" && op != "!=" {
			c.errorf(pos, "ordering comparison %s is not supported for strings", op)
			c.setZero(dst)
			return
		}
		c.compareStrings(dst, op, l, r)
		return
	}
	if (l.Type == TypeFloat) != (r.Type == TypeFloat) {
		c.errorf(pos, "internal error: %s operands differ in float-ness (%s, %s)", op, l, r)
		c.setZero(dst)
		return
	}

	if l.Type == TypeFloat {
		c.compareFloats(dst, op, l, r)
		return
	}
	switch op {
	case "==":
		c.boolResult(dst, false, func(t string) { c.branchEqual(l, r, t) })
	case "!=":
		c.boolResult(dst, true, func(t string) { c.branchEqual(l, r, t) })
	case "<":
		c.boolResult(dst, false, func(t string) { c.branchLess(l, r, t) })
	case ">":
		c.boolResult(dst, false, func(t string) { c.branchLess(r, l, t) })
	case "<=":
		c.boolResult(dst, true, func(t string) { c.branchLess(r, l, t) })
	case ">=":
		c.boolResult(dst, true, func(t string) { c.branchLess(l, r, t) })
	}
}

// boolResult runs branch, which jumps to its label when the condition
// holds, and stores the outcome in dst. invert swaps 0 and 1.
func (c *Context) boolResult(dst *Variable, invert bool, branch func(trueLabel string)) {
	isTrue := c.newLabel("true")
	done := c.newLabel("done")
	onFalse, onTrue := byte(0), byte(1)
	if invert {
		onFalse, onTrue = 1, 0
	}
	branch(isTrue)
	c.emit("LDA "+imm(onFalse), "JMP "+done)
	c.label(isTrue)
	c.emit("LDA " + imm(onTrue))
	c.label(done)
	c.emit("STA "+at(dst, 0), "LDA #$00", "STA "+at(dst, 1))
	dst.setType(TypeInt, true)
}

// branchEqual jumps to target when both bytes of a and b match.
func (c *Context) branchEqual(a, b *Variable, target string) {
	skip := c.newLabel("ne")
	c.emit(
		"LDA "+byteOf(a, 0),
		"CMP "+byteOf(b, 0),
		"BNE "+skip,
		"LDA "+byteOf(a, 1),
		"CMP "+byteOf(b, 1),
		"BEQ "+target,
	)
	c.label(skip)
}

// branchLess jumps to target when a < b as signed 16-bit values. The
// overflow flag is folded into N before the sign test.
func (c *Context) branchLess(a, b *Variable, target string) {
	noOverflow := c.newLabel("nv")
	c.emit(
		"SEC",
		"LDA "+byteOf(a, 0),
		"SBC "+byteOf(b, 0),
		"LDA "+byteOf(a, 1),
		"SBC "+byteOf(b, 1),
		"BVC "+noOverflow,
		"EOR #$80",
	)
	c.label(noOverflow)
	c.emit("BMI " + target)
}

// compareFloats uses FCOMP, which clears C when FAC < ARG and sets Z when
// they are equal. > and >= swap the operands.
func (c *Context) compareFloats(dst *Variable, op string, l, r *Variable) {
	c.use("FCOMP")
	if op == ">" || op == ">=" {
		l, r = r, l
		op = map[string]string{">": "<", ">=": "<="}[op]
	}
	c.boolResult(dst, false, func(t string) {
		c.emit(c.LoadFAC(l)...)
		c.emit(c.LoadARG(r)...)
		c.emit("JSR FCOMP")
		switch op {
		case "==":
			c.emit("BEQ " + t)
		case "!=":
			c.emit("BNE " + t)
		case "<":
			c.emit("BCC " + t)
		case "<=":
			c.emit("BCC "+t, "BEQ "+t)
		}
	})
}

func (c *Context) compareStrings(dst *Variable, op string, l, r *Variable) {
	c.use("str_equal")
	c.emit(
		"LDA "+at(l, 0), "STA RT_ARG0",
		"LDA "+at(l, 1), "STA RT_ARG0+1",
	)
	c.emit(loadAX(r)...)
	c.emit("JSR str_equal")
	if op == "!=" {
		c.emit("EOR #$01")
	}
	c.emit("STA "+at(dst, 0), "LDA #$00", "STA "+at(dst, 1))
	dst.setType(TypeInt, true)
}
