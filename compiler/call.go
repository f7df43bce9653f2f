package compiler

import "fmt"

// translateCall lowers a call. Builtin names are matched before user
// functions.
func (c *Context) translateCall(dst *Variable, n *Call, sc *Scope) error {
	if b, ok := builtins[n.Func]; ok {
		return c.lowerBuiltin(dst, b, n, sc)
	}
	fn, ok := c.funcs[n.Func]
	if !ok {
		c.fatalf(n.Pos, "function %q is not defined", n.Func)
		c.setZero(dst)
		return nil
	}
	if len(n.Args) != len(fn.Params) {
		c.fatalf(n.Pos, "%s() takes %d arguments, got %d", fn.Name, len(fn.Params), len(n.Args))
		c.setZero(dst)
		return nil
	}

	// Temporaries held by enclosing expressions, captured before the
	// arguments claim their own.
	live := c.temps.Live()

	s := c.scratch()
	defer s.done()
	args := make([]*Variable, len(n.Args))
	for i, a := range n.Args {
		v, err := c.operand(a, sc, s)
		if err != nil {
			return err
		}
		if v, err = c.convert(v, fn.ParamType(i), s); err != nil {
			return err
		}
		args[i] = v
	}

	c.comment("call %s", fn.signature())
	if fn.Convention == ConventionStack {
		return c.callStack(dst, fn, args, live)
	}
	for i, v := range args {
		slot := fn.paramSlot(i)
		if v.Label != slot.Label || v.Type != slot.Type {
			c.emit(c.Copy(v, slot)...)
		}
	}
	c.emit("JSR " + fn.Label)
	c.storeResult(dst, fn)
	return nil
}

// callStack pushes the arguments last to first, high byte first, so that
// the first argument's low byte ends up on top. A directly recursive call
// also saves the caller's locals and live temporaries around the JSR.
func (c *Context) callStack(dst *Variable, fn *Function, args []*Variable, live []*Variable) error {
	var saved []*Variable
	if c.fn == fn {
		for _, v := range append(fn.Scope.Locals(), live...) {
			if v != dst {
				saved = append(saved, v)
			}
		}
	}

	c.use("stack_push")
	for _, v := range saved {
		for b := 0; b < reserveSize; b++ {
			c.emit("LDA "+at(v, b), "JSR stack_push")
		}
	}
	for i := len(args) - 1; i >= 0; i-- {
		for b := sizeOf(fn.ParamType(i)) - 1; b >= 0; b-- {
			c.emit("LDA "+byteOf(args[i], b), "JSR stack_push")
		}
	}

	c.emit("JSR " + fn.Label)
	c.storeResult(dst, fn)

	if n := fn.ParamBytes(); n > 0 {
		c.use("stack_drop")
		c.emit(fmt.Sprintf("LDA #$%02X", n), "JSR stack_drop")
	}
	if len(saved) > 0 {
		c.use("stack_pop")
		for i := len(saved) - 1; i >= 0; i-- {
			for b := reserveSize - 1; b >= 0; b-- {
				c.emit("JSR stack_pop", "STA "+at(saved[i], b))
			}
		}
	}
	return nil
}

// storeResult copies the return registers into dst by the callee's return
// type.
func (c *Context) storeResult(dst *Variable, fn *Function) {
	switch fn.RetType {
	case TypeFloat:
		c.emit(c.StoreFAC(dst)...)
		dst.setType(TypeFloat, false)
	case TypeInt, TypePointer:
		c.emit(storeAX(dst)...)
		dst.setType(fn.RetType, false)
	default:
		c.setZero(dst)
	}
}

// emitPrologue copies stack arguments into the parameter variables.
func (c *Context) emitPrologue(fn *Function) {
	off := 0
	for i := range fn.Params {
		p := fn.paramSlot(i)
		for b := 0; b < p.Size; b++ {
			c.emit(fmt.Sprintf("LDY #$%02X", off+b), "LDA (SP),Y", "STA "+at(p, b))
		}
		off += p.Size
	}
}
