package compiler

import "fmt"

type builtinKind int

const (
	builtinSpecial builtinKind = iota
	builtinGeneric
)

// builtin describes a reserved function name.
type builtin struct {
	name    string
	minArgs int
	maxArgs int // -1 for no limit
	kind    builtinKind

	// builtinSpecial
	lower func(c *Context, dst *Variable, call *Call, sc *Scope) error

	// builtinGeneric
	routine string
	params  []VarType
	result8 bool

	result        VarType
	resultFromArg bool
}

var builtins map[string]*builtin

func init() {
	list := []*builtin{
		{name: "print", minArgs: 0, maxArgs: -1, lower: (*Context).lowerPrint},
		{name: "abs", minArgs: 1, maxArgs: 1, lower: (*Context).lowerAbs, resultFromArg: true},
		{name: "len", minArgs: 1, maxArgs: 1, lower: (*Context).lowerLen, result: TypeInt},
		{name: "float", minArgs: 1, maxArgs: 1, lower: (*Context).lowerFloat, result: TypeFloat},
		{name: "int", minArgs: 1, maxArgs: 1, lower: (*Context).lowerInt, result: TypeInt},
		{name: "str", minArgs: 1, maxArgs: 1, lower: (*Context).lowerStr, result: TypePointer},
		{name: "input", minArgs: 0, maxArgs: 1, lower: (*Context).lowerInput, result: TypePointer},
		{name: "range", minArgs: 1, maxArgs: 3, lower: (*Context).lowerRange},

		{name: "chr", minArgs: 1, maxArgs: 1, kind: builtinGeneric, routine: "chr_str",
			params: []VarType{TypeInt}, result: TypePointer},
		{name: "ord", minArgs: 1, maxArgs: 1, kind: builtinGeneric, routine: "str_ord",
			params: []VarType{TypePointer}, result: TypeInt},
		{name: "peek", minArgs: 1, maxArgs: 1, kind: builtinGeneric, routine: "peek",
			params: []VarType{TypeInt}, result: TypeInt, result8: true},
		{name: "poke", minArgs: 2, maxArgs: 2, kind: builtinGeneric, routine: "poke",
			params: []VarType{TypeInt, TypeInt}},
	}
	builtins = make(map[string]*builtin, len(list))
	for _, b := range list {
		if b.kind == builtinGeneric && len(b.params) > maxRuntimeArgs {
			panic(fmt.Sprintf("builtin %s needs %d runtime argument slots, have %d", b.name, len(b.params), maxRuntimeArgs))
		}
		builtins[b.name] = b
	}
}

// IsBuiltin reports whether name is reserved for a builtin.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

func (b *builtin) arity() string {
	switch {
	case b.maxArgs < 0:
		return fmt.Sprintf("at least %d", b.minArgs)
	case b.minArgs == b.maxArgs:
		return fmt.Sprint(b.minArgs)
	}
	return fmt.Sprintf("%d to %d", b.minArgs, b.maxArgs)
}

func (c *Context) lowerBuiltin(dst *Variable, b *builtin, call *Call, sc *Scope) error {
	n := len(call.Args)
	if n < b.minArgs || (b.maxArgs >= 0 && n > b.maxArgs) {
		c.fatalf(call.Pos, "%s() takes %s arguments, got %d", b.name, b.arity(), n)
		c.setZero(dst)
		return nil
	}
	if b.kind == builtinSpecial {
		return b.lower(c, dst, call, sc)
	}
	return c.lowerGeneric(dst, b, call, sc)
}

// lowerGeneric passes one int or pointer argument in A/X, one float in FAC,
// or several in RT_ARG0.., then calls the routine.
func (c *Context) lowerGeneric(dst *Variable, b *builtin, call *Call, sc *Scope) error {
	s := c.scratch()
	defer s.done()

	args := make([]*Variable, len(call.Args))
	for i, a := range call.Args {
		v, err := c.operand(a, sc, s)
		if err != nil {
			return err
		}
		if v, err = c.convert(v, b.params[i], s); err != nil {
			return err
		}
		if v.Type != b.params[i] {
			c.errorf(a.Position(), "argument %d of %s() must be %s, got %s", i+1, b.name, b.params[i], v.Type)
			c.setZero(dst)
			return nil
		}
		args[i] = v
	}

	switch {
	case len(args) == 1 && args[0].Type == TypeFloat:
		c.emit(c.LoadFAC(args[0])...)
	case len(args) == 1:
		c.emit(loadAX(args[0])...)
	default:
		for i, v := range args {
			c.emit(copyWord(v, fmt.Sprintf("RT_ARG%d", i))...)
		}
	}
	c.use(b.routine)
	c.emit("JSR " + b.routine)

	switch b.result {
	case TypeInt:
		if b.result8 {
			c.emit("STA "+at(dst, 0), "LDA #$00", "STA "+at(dst, 1))
		} else {
			c.emit(storeAX(dst)...)
		}
		dst.setType(TypeInt, b.result8)
	case TypePointer:
		c.emit(storeAX(dst)...)
		dst.setType(TypePointer, false)
	case TypeFloat:
		c.emit(c.StoreFAC(dst)...)
		dst.setType(TypeFloat, false)
	default:
		c.setZero(dst)
	}
	return nil
}

// convert returns v as type want when an int/float conversion applies.
func (c *Context) convert(v *Variable, want VarType, s *scratch) (*Variable, error) {
	switch {
	case want == TypeFloat && v.Type == TypeInt:
		return c.coerceFloat(v, s)
	case want == TypeInt && v.Type == TypeFloat:
		t, err := s.temp()
		if err != nil {
			return nil, err
		}
		c.emit(c.FloatToInt(v, t)...)
		return t, nil
	}
	return v, nil
}

func (c *Context) lowerPrint(dst *Variable, call *Call, sc *Scope) error {
	for i, a := range call.Args {
		if i > 0 {
			c.use("print_space")
			c.emit("JSR print_space")
		}
		if err := c.printValue(a, sc); err != nil {
			return err
		}
	}
	c.use("print_newline")
	c.emit("JSR print_newline")
	c.setZero(dst)
	return nil
}

func (c *Context) printValue(a Expr, sc *Scope) error {
	s := c.scratch()
	defer s.done()
	v, err := c.operand(a, sc, s)
	if err != nil {
		return err
	}
	switch v.Type {
	case TypeInt:
		c.use("print_int")
		c.emit(loadAX(v)...)
		c.emit("JSR print_int")
	case TypeFloat:
		c.use("print_float")
		c.emit(c.LoadFAC(v)...)
		c.emit("JSR print_float")
	case TypePointer:
		c.use("print_str")
		c.emit(loadAX(v)...)
		c.emit("JSR print_str")
	default:
		c.errorf(a.Position(), "cannot print a value of type %s", v.Type)
	}
	return nil
}

func (c *Context) lowerAbs(dst *Variable, call *Call, sc *Scope) error {
	s := c.scratch()
	defer s.done()
	v, err := c.operand(call.Args[0], sc, s)
	if err != nil {
		return err
	}
	switch v.Type {
	case TypeInt:
		positive := c.newLabel("abs_pos")
		done := c.newLabel("abs_done")
		c.emit(
			"LDA "+byteOf(v, 1),
			"BPL "+positive,
			"SEC",
			"LDA #$00",
			"SBC "+byteOf(v, 0),
			"STA "+at(dst, 0),
			"LDA #$00",
			"SBC "+byteOf(v, 1),
			"STA "+at(dst, 1),
			"JMP "+done,
		)
		c.label(positive)
		if v != dst {
			c.emit("LDA "+at(v, 0), "STA "+at(dst, 0), "LDA "+byteOf(v, 1), "STA "+at(dst, 1))
		}
		c.label(done)
		dst.setType(TypeInt, false)
	case TypeFloat:
		c.use("FABS")
		c.emit(c.LoadFAC(v)...)
		c.emit("JSR FABS")
		c.emit(c.StoreFAC(dst)...)
		dst.setType(TypeFloat, false)
	default:
		c.errorf(call.Pos, "abs() of %s is not supported", v.Type)
		c.setZero(dst)
	}
	return nil
}

func (c *Context) lowerLen(dst *Variable, call *Call, sc *Scope) error {
	s := c.scratch()
	defer s.done()
	v, err := c.operand(call.Args[0], sc, s)
	if err != nil {
		return err
	}
	if v.Type != TypePointer {
		c.fatalf(call.Pos, "len() requires a string argument, got %s", v.Type)
		c.setZero(dst)
		return nil
	}
	c.use("str_len")
	c.emit(loadAX(v)...)
	c.emit("JSR str_len")
	c.emit(storeAX(dst)...)
	dst.setType(TypeInt, false)
	return nil
}

func (c *Context) lowerFloat(dst *Variable, call *Call, sc *Scope) error {
	s := c.scratch()
	defer s.done()
	v, err := c.operand(call.Args[0], sc, s)
	if err != nil {
		return err
	}
	switch v.Type {
	case TypeInt:
		c.emit(c.IntToFloat(v, dst)...)
	case TypeFloat:
		if v != dst {
			dst.setType(TypeFloat, false)
			c.emit(c.Copy(v, dst)...)
		}
	default:
		c.errorf(call.Pos, "float() of %s is not supported", v.Type)
		c.setZero(dst)
		return nil
	}
	dst.setType(TypeFloat, false)
	return nil
}

func (c *Context) lowerInt(dst *Variable, call *Call, sc *Scope) error {
	s := c.scratch()
	defer s.done()
	v, err := c.operand(call.Args[0], sc, s)
	if err != nil {
		return err
	}
	switch v.Type {
	case TypeFloat:
		c.emit(c.FloatToInt(v, dst)...)
	case TypeInt:
		if v != dst {
			dst.setType(TypeInt, v.Is8Bit)
			c.emit(c.Copy(v, dst)...)
		}
	case TypePointer:
		c.use("str_to_int")
		c.emit(loadAX(v)...)
		c.emit("JSR str_to_int")
		c.emit(storeAX(dst)...)
	default:
		c.errorf(call.Pos, "int() of %s is not supported", v.Type)
		c.setZero(dst)
		return nil
	}
	dst.setType(TypeInt, dst.Is8Bit && v.Type == TypeInt)
	return nil
}

func (c *Context) lowerStr(dst *Variable, call *Call, sc *Scope) error {
	s := c.scratch()
	defer s.done()
	v, err := c.operand(call.Args[0], sc, s)
	if err != nil {
		return err
	}
	switch v.Type {
	case TypeInt:
		c.use("int_to_str")
		c.emit(loadAX(v)...)
		c.emit("JSR int_to_str")
		c.emit(storeAX(dst)...)
	case TypeFloat:
		c.use("float_to_str")
		c.emit(c.LoadFAC(v)...)
		c.emit("JSR float_to_str")
		c.emit(storeAX(dst)...)
	case TypePointer:
		if v != dst {
			dst.setType(TypePointer, false)
			c.emit(c.Copy(v, dst)...)
		}
	default:
		c.errorf(call.Pos, "str() of %s is not supported", v.Type)
		c.setZero(dst)
		return nil
	}
	dst.setType(TypePointer, false)
	return nil
}

func (c *Context) lowerInput(dst *Variable, call *Call, sc *Scope) error {
	if len(call.Args) == 1 {
		s := c.scratch()
		defer s.done()
		v, err := c.operand(call.Args[0], sc, s)
		if err != nil {
			return err
		}
		if v.Type == TypePointer {
			c.use("print_str")
			c.emit(loadAX(v)...)
			c.emit("JSR print_str")
		} else {
			c.errorf(call.Args[0].Position(), "input() prompt must be a string, got %s", v.Type)
		}
	}
	c.use("input_line")
	c.emit("JSR input_line")
	c.emit(storeAX(dst)...)
	dst.setType(TypePointer, false)
	return nil
}

func (c *Context) lowerRange(dst *Variable, call *Call, sc *Scope) error {
	c.fatalf(call.Pos, "range() is only supported as the iterable of a for loop")
	c.setZero(dst)
	return nil
}
