package compiler

import "errors"

// scratch tracks the temporaries acquired while lowering one node.
type scratch struct {
	c    *Context
	held []Temp
}

func (c *Context) scratch() *scratch {
	return &scratch{c: c}
}

func (s *scratch) temp() (*Variable, error) {
	t, v, err := s.c.acquire()
	if err != nil {
		return nil, err
	}
	s.held = append(s.held, t)
	return v, nil
}

func (s *scratch) done() {
	s.c.release(s.held...)
	s.held = nil
}

// Translate lowers e and leaves its value in dst, retyping dst to match.
// Problems with the program are reported as diagnostics and leave dst as
// the constant 0; the error return is reserved for aborting the whole
// compilation, such as running out of memory.
func (c *Context) Translate(dst *Variable, e Expr, sc *Scope) error {
	switch n := e.(type) {
	case *Constant:
		c.translateConstant(dst, n)
		return nil
	case *Name:
		c.translateName(dst, n, sc)
		return nil
	case *BinOp:
		return c.translateBinOp(dst, n, sc)
	case *UnaryOp:
		return c.translateUnary(dst, n, sc)
	case *Compare:
		return c.translateCompare(dst, n, sc)
	case *Call:
		return c.translateCall(dst, n, sc)
	case *JoinedStr:
		return c.translateJoinedStr(dst, n, sc)
	default:
		c.errorf(e.Position(), "unsupported expression %T", e)
		c.setZero(dst)
		return nil
	}
}

func (c *Context) translateConstant(dst *Variable, k *Constant) {
	switch k.Kind {
	case ConstInt, ConstBool:
		v := intValue(k)
		if v < -32768 || v > 65535 {
			c.fatalf(k.Pos, "integer constant %d does not fit in 16 bits", v)
			c.setZero(dst)
			return
		}
		dst.setType(TypeInt, v >= 0 && v <= 255)
		c.emit(storeInt(v, dst)...)
	case ConstFloat:
		b, ok := lookupFloat(k.Float)
		if !ok {
			c.warnf(k.Pos, "float literal %v has no known encoding, using 0.0", k.Float)
		}
		dst.setType(TypeFloat, false)
		for i, x := range b {
			c.emit("LDA "+imm(x), "STA "+at(dst, i))
		}
	case ConstStr:
		label := c.stringLiteral(k.Str)
		dst.setType(TypePointer, false)
		c.emit(storeAddr(label, dst)...)
	default:
		c.errorf(k.Pos, "unsupported constant kind %s", k.Kind)
		c.setZero(dst)
	}
}

func (c *Context) translateName(dst *Variable, n *Name, sc *Scope) {
	v, ok := c.lookupVar(n.ID, sc)
	if !ok {
		c.fatalf(n.Pos, "name %q is not defined", n.ID)
		c.setZero(dst)
		return
	}
	if v == dst {
		return
	}
	dst.Type, dst.Size, dst.Is8Bit = v.Type, v.Size, v.Is8Bit
	c.emit(c.Copy(v, dst)...)
}

// constValue reports whether e is a constant once folded, without
// reporting anything. Failed folds are reported when the node is lowered.
func constValue(e Expr) (*Constant, bool) {
	switch n := e.(type) {
	case *Constant:
		return n, true
	case *UnaryOp:
		if n.Op != "-" {
			return nil, false
		}
		k, ok := constValue(n.Operand)
		if !ok {
			return nil, false
		}
		folded, err := Fold("-", zeroFor(k), k)
		return folded, err == nil
	case *BinOp:
		l, lok := constValue(n.Left)
		r, rok := constValue(n.Right)
		if !lok || !rok {
			return nil, false
		}
		folded, err := Fold(n.Op, l, r)
		return folded, err == nil
	}
	return nil, false
}

func zeroFor(k *Constant) *Constant {
	if k.Kind == ConstFloat {
		return FloatConst(0)
	}
	return IntConst(0)
}

func (c *Context) translateBinOp(dst *Variable, n *BinOp, sc *Scope) error {
	if l, ok := constValue(n.Left); ok {
		if r, ok := constValue(n.Right); ok {
			folded, err := Fold(n.Op, l, r)
			switch {
			case err == nil:
				folded.Pos = n.Pos
				return c.Translate(dst, folded, sc)
			case errors.Is(err, ErrDivisionByZero):
				c.fatalf(n.Pos, "%v", err)
				c.setZero(dst)
				return nil
			case !errors.Is(err, errNotFoldable):
				c.warnf(n.Pos, "constant folding abandoned: %v", err)
			}
		}
	}
	if isDivision(n.Op) {
		if r, ok := constValue(n.Right); ok && isZero(r) {
			c.fatalf(n.Pos, "%s by a literal zero: %v", n.Op, ErrDivisionByZero)
			c.setZero(dst)
			return nil
		}
	}

	s := c.scratch()
	defer s.done()
	l, err := c.operand(n.Left, sc, s)
	if err != nil {
		return err
	}
	r, err := c.operand(n.Right, sc, s)
	if err != nil {
		return err
	}
	if n.Op == "/" {
		if l, err = c.coerceFloat(l, s); err != nil {
			return err
		}
		if r, err = c.coerceFloat(r, s); err != nil {
			return err
		}
	} else if l, r, err = c.coercePair(l, r, s); err != nil {
		return err
	}
	return c.lowerBinary(dst, n.Op, l, r, n.Pos)
}

func isDivision(op string) bool {
	return op == "/" || op == "//" || op == "%"
}

func isZero(k *Constant) bool {
	switch k.Kind {
	case ConstInt:
		return k.Int == 0
	case ConstBool:
		return !k.Bool
	case ConstFloat:
		return k.Float == 0
	}
	return false
}

func (c *Context) translateUnary(dst *Variable, n *UnaryOp, sc *Scope) error {
	if n.Op != "-" {
		c.errorf(n.Pos, "unary operator %s is not supported", n.Op)
		c.setZero(dst)
		return nil
	}
	var zero Expr = &Constant{Pos: n.Pos, Kind: ConstInt}
	if k, ok := n.Operand.(*Constant); ok && k.Kind == ConstFloat {
		zero = &Constant{Pos: n.Pos, Kind: ConstFloat}
	}
	return c.Translate(dst, &BinOp{Pos: n.Pos, Op: "-", Left: zero, Right: n.Operand}, sc)
}

func (c *Context) translateCompare(dst *Variable, n *Compare, sc *Scope) error {
	if len(n.Ops) != 1 || len(n.Comparators) != 1 {
		c.fatalf(n.Pos, "chained comparisons are not supported")
		c.setZero(dst)
		return nil
	}
	s := c.scratch()
	defer s.done()
	l, err := c.operand(n.Left, sc, s)
	if err != nil {
		return err
	}
	r, err := c.operand(n.Comparators[0], sc, s)
	if err != nil {
		return err
	}
	if l, r, err = c.coercePair(l, r, s); err != nil {
		return err
	}
	c.lowerCompare(dst, n.Ops[0], l, r, n.Pos)
	return nil
}

// translateJoinedStr builds an f-string in a fresh buffer with str_append.
func (c *Context) translateJoinedStr(dst *Variable, n *JoinedStr, sc *Scope) error {
	literal, values := 0, 0
	for _, part := range n.Values {
		if k, ok := part.(*Constant); ok && k.Kind == ConstStr {
			literal += len(k.Str)
		} else {
			values++
		}
	}
	buf, err := c.buffer("fstr", min(255, literal+40*values+1))
	if err != nil {
		return err
	}
	c.use("str_append")
	c.emit("LDA #$00", "STA "+buf)
	for _, part := range n.Values {
		if k, ok := part.(*Constant); ok && k.Kind == ConstStr {
			if k.Str == "" {
				continue
			}
			label := c.stringLiteral(k.Str)
			c.emit(appendTarget(buf)...)
			c.emit(loadAddrAX(label)...)
			c.emit("JSR str_append")
			continue
		}
		if err := c.appendSegment(buf, part, sc); err != nil {
			return err
		}
	}
	c.emit(storeAddr(buf, dst)...)
	dst.setType(TypePointer, false)
	return nil
}

func (c *Context) appendSegment(buf string, part Expr, sc *Scope) error {
	s := c.scratch()
	defer s.done()
	v, err := c.operand(part, sc, s)
	if err != nil {
		return err
	}
	if v.Type != TypePointer {
		c.errorf(part.Position(), "f-string value must be a string, got %s", v.Type)
		return nil
	}
	c.emit(appendTarget(buf)...)
	c.emit(loadAX(v)...)
	c.emit("JSR str_append")
	return nil
}

// operand resolves e for use by a lowering step. Names are used in place;
// everything else is computed into a temporary owned by s.
func (c *Context) operand(e Expr, sc *Scope, s *scratch) (*Variable, error) {
	if n, ok := e.(*Name); ok {
		if v, found := c.lookupVar(n.ID, sc); found {
			return v, nil
		}
	}
	t, err := s.temp()
	if err != nil {
		return nil, err
	}
	if err := c.Translate(t, e, sc); err != nil {
		return nil, err
	}
	return t, nil
}

// coerceFloat returns v converted to float in a temporary. Floats and
// non-numeric operands are returned unchanged.
func (c *Context) coerceFloat(v *Variable, s *scratch) (*Variable, error) {
	if v.Type != TypeInt {
		return v, nil
	}
	t, err := s.temp()
	if err != nil {
		return nil, err
	}
	t.setType(TypeFloat, false)
	c.emit(c.IntToFloat(v, t)...)
	return t, nil
}

// coercePair promotes the integer side when exactly one operand is a float.
func (c *Context) coercePair(l, r *Variable, s *scratch) (*Variable, *Variable, error) {
	var err error
	switch {
	case l.Type == TypeFloat && r.Type == TypeInt:
		r, err = c.coerceFloat(r, s)
	case l.Type == TypeInt && r.Type == TypeFloat:
		l, err = c.coerceFloat(l, s)
	}
	return l, r, err
}
