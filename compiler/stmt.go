package compiler

// compileStmt lowers one statement. sc is nil at module level.
func (c *Context) compileStmt(st Stmt, sc *Scope) error {
	switch n := st.(type) {
	case *Assign:
		dst, err := c.assignTarget(n.Target, sc)
		if err != nil {
			return err
		}
		c.comment("%s = ...", n.Target)
		return c.Translate(dst, n.Value, sc)
	case *AugAssign:
		if _, ok := c.lookupVar(n.Target, sc); !ok {
			c.fatalf(n.Pos, "name %q is not defined", n.Target)
			return nil
		}
		dst, err := c.assignTarget(n.Target, sc)
		if err != nil {
			return err
		}
		c.comment("%s %s= ...", n.Target, n.Op)
		value := &BinOp{Pos: n.Pos, Op: n.Op, Left: &Name{Pos: n.Pos, ID: n.Target}, Right: n.Value}
		return c.Translate(dst, value, sc)
	case *ExprStmt:
		s := c.scratch()
		defer s.done()
		t, err := s.temp()
		if err != nil {
			return err
		}
		return c.Translate(t, n.Value, sc)
	case *If:
		return c.compileIf(n, sc)
	case *While:
		return c.compileWhile(n, sc)
	case *For:
		return c.compileFor(n, sc)
	case *FunctionDef:
		if sc != nil {
			c.fatalf(n.Pos, "nested function %q is not supported", n.Name)
		}
		// Top-level bodies are emitted after the main program.
		return nil
	case *Return:
		return c.compileReturn(n, sc)
	case *Global:
		return nil
	case *Pass:
		return nil
	case *Break:
		if len(c.loops) == 0 {
			c.fatalf(n.Pos, "'break' outside loop")
			return nil
		}
		c.emit("JMP " + c.loops[len(c.loops)-1].breakLabel)
		return nil
	case *Continue:
		if len(c.loops) == 0 {
			c.fatalf(n.Pos, "'continue' not properly in loop")
			return nil
		}
		c.emit("JMP " + c.loops[len(c.loops)-1].continueLabel)
		return nil
	default:
		c.errorf(st.Position(), "unsupported statement %T", st)
		return nil
	}
}

func (c *Context) compileBlock(body []Stmt, sc *Scope) error {
	for _, st := range body {
		if err := c.compileStmt(st, sc); err != nil {
			return err
		}
	}
	return nil
}

// branchFalse evaluates test and jumps to target when it is falsy. The
// conditional branch only skips a JMP, so target can be any distance away.
func (c *Context) branchFalse(test Expr, sc *Scope, target string) error {
	s := c.scratch()
	defer s.done()
	v, err := c.operand(test, sc, s)
	if err != nil {
		return err
	}
	switch v.Type {
	case TypeFloat:
		c.emit("LDA "+at(v, 0), "ORA "+at(v, 1), "ORA "+at(v, 2))
	case TypePointer:
		c.emit(
			"LDA "+at(v, 0), "STA PTR1",
			"LDA "+at(v, 1), "STA PTR1+1",
			"LDY #$00",
			"LDA (PTR1),Y",
		)
	default:
		c.emit("LDA " + at(v, 0))
		if v.Size > 1 {
			c.emit("ORA " + at(v, 1))
		}
	}
	taken := c.newLabel("then")
	c.emit("BNE "+taken, "JMP "+target)
	c.label(taken)
	return nil
}

func (c *Context) compileIf(n *If, sc *Scope) error {
	elseLabel := c.newLabel("else")
	end := c.newLabel("endif")
	if err := c.branchFalse(n.Test, sc, elseLabel); err != nil {
		return err
	}
	if err := c.compileBlock(n.Body, sc); err != nil {
		return err
	}
	if len(n.Orelse) > 0 {
		c.emit("JMP " + end)
	}
	c.label(elseLabel)
	if len(n.Orelse) > 0 {
		if err := c.compileBlock(n.Orelse, sc); err != nil {
			return err
		}
		c.label(end)
	}
	return nil
}

func (c *Context) compileWhile(n *While, sc *Scope) error {
	top := c.newLabel("while")
	end := c.newLabel("endwhile")
	c.label(top)
	if err := c.branchFalse(n.Test, sc, end); err != nil {
		return err
	}
	c.loops = append(c.loops, loopLabels{continueLabel: top, breakLabel: end})
	err := c.compileBlock(n.Body, sc)
	c.loops = c.loops[:len(c.loops)-1]
	if err != nil {
		return err
	}
	c.emit("JMP " + top)
	c.label(end)
	return nil
}

// compileFor lowers for v in range(...). The step must be an integer
// literal; stop is evaluated once.
func (c *Context) compileFor(n *For, sc *Scope) error {
	call, ok := n.Iter.(*Call)
	if !ok || call.Func != "range" {
		c.fatalf(n.Pos, "for loops only support range()")
		return nil
	}
	if len(call.Args) < 1 || len(call.Args) > 3 {
		c.fatalf(call.Pos, "range() takes 1 to 3 arguments, got %d", len(call.Args))
		return nil
	}
	var start, stop Expr = &Constant{Pos: call.Pos, Kind: ConstInt}, call.Args[0]
	step := int64(1)
	if len(call.Args) >= 2 {
		start, stop = call.Args[0], call.Args[1]
	}
	if len(call.Args) == 3 {
		k, ok := constValue(call.Args[2])
		if !ok || !isIntLike(k) {
			c.fatalf(call.Args[2].Position(), "range() step must be an integer literal")
			return nil
		}
		step = intValue(k)
		if step == 0 {
			c.fatalf(call.Args[2].Position(), "range() step must not be zero")
			return nil
		}
		if step < -32768 || step > 32767 {
			c.fatalf(call.Args[2].Position(), "range() step %d does not fit in 16 bits", step)
			return nil
		}
	}

	v, err := c.assignTarget(n.Target, sc)
	if err != nil {
		return err
	}
	c.comment("for %s in range(...)", n.Target)
	if err := c.Translate(v, start, sc); err != nil {
		return err
	}
	if v.Type != TypeInt {
		c.fatalf(n.Pos, "range() arguments must be integers")
		return nil
	}

	s := c.scratch()
	defer s.done()
	limit, err := s.temp()
	if err != nil {
		return err
	}
	if err := c.Translate(limit, stop, sc); err != nil {
		return err
	}
	if limit.Type != TypeInt {
		c.fatalf(n.Pos, "range() arguments must be integers")
		return nil
	}

	top := c.newLabel("for")
	next := c.newLabel("next")
	end := c.newLabel("endfor")
	body := c.newLabel("body")
	c.label(top)
	if step > 0 {
		c.branchLess(v, limit, body)
	} else {
		c.branchLess(limit, v, body)
	}
	c.emit("JMP " + end)
	c.label(body)

	c.loops = append(c.loops, loopLabels{continueLabel: next, breakLabel: end})
	err = c.compileBlock(n.Body, sc)
	c.loops = c.loops[:len(c.loops)-1]
	if err != nil {
		return err
	}

	// A signed overflow here means the next value is past every 16-bit
	// stop in the direction of the step, so the loop is over.
	c.label(next)
	u := uint16(step)
	c.emit(
		"CLC",
		"LDA "+at(v, 0),
		"ADC "+imm(byte(u)),
		"STA "+at(v, 0),
		"LDA "+at(v, 1),
		"ADC "+imm(byte(u>>8)),
		"STA "+at(v, 1),
		"BVS "+end,
		"JMP "+top,
	)
	c.label(end)
	return nil
}

func (c *Context) compileReturn(n *Return, sc *Scope) error {
	if sc == nil || c.fn == nil {
		c.fatalf(n.Pos, "'return' outside function")
		return nil
	}
	fn := c.fn
	if n.Value != nil {
		s := c.scratch()
		defer s.done()
		v, err := c.operand(n.Value, sc, s)
		if err != nil {
			return err
		}
		if v, err = c.convert(v, fn.RetType, s); err != nil {
			return err
		}
		switch v.Type {
		case TypeFloat:
			c.emit(c.LoadFAC(v)...)
		default:
			c.emit(loadAX(v)...)
		}
	}
	c.emit("JMP " + fn.RetLabel)
	return nil
}
