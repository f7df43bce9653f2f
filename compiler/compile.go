package compiler

import (
	"errors"
	"fmt"
)

// Result is everything the output formatter needs.
type Result struct {
	Code        []Line
	Data        []DataDef
	Routines    []string
	Variables   []*Variable
	Functions   []*Function
	Diagnostics *ErrorList
}

// Global returns the record of a module-level variable.
func (r *Result) Global(name string) (*Variable, bool) {
	for _, v := range r.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// Compile compiles m in a fresh Context.
func Compile(m *Module, cfg Config) (*Result, error) {
	return NewContext(cfg).Compile(m)
}

// Compile lowers a whole module: the main program first, ending in RTS,
// then every function body. Compilation stops after the first top-level
// statement that reported a fatal error; degraded errors let it go on so
// that later problems are reported too.
func (c *Context) Compile(m *Module) (*Result, error) {
	if err := c.collectFunctions(m); err != nil {
		return c.abort(err)
	}
	if c.diags.HasFatal() {
		return c.finish()
	}

	var main []Stmt
	for _, st := range m.Body {
		if _, ok := st.(*FunctionDef); !ok {
			main = append(main, st)
		}
	}
	c.inferTypes(main)

	c.comment("main program")
	c.label("main")
	for _, st := range main {
		if err := c.compileStmt(st, nil); err != nil {
			return c.abort(err)
		}
		if c.diags.HasFatal() {
			return c.finish()
		}
	}
	c.emit("RTS")

	for _, fn := range c.funcList {
		if err := c.compileFunction(fn); err != nil {
			return c.abort(err)
		}
		if c.diags.HasFatal() {
			break
		}
	}
	return c.finish()
}

func (c *Context) compileFunction(fn *Function) error {
	c.fn = fn
	c.loops = nil
	defer func() { c.fn = nil }()

	c.comment("def %s", fn.signature())
	c.label(fn.Label)
	if fn.Convention == ConventionStack {
		c.emitPrologue(fn)
	}
	for _, st := range fn.Def.Body {
		if err := c.compileStmt(st, fn.Scope); err != nil {
			return err
		}
	}
	c.label(fn.RetLabel)
	c.emit("RTS")
	return nil
}

// abort ends compilation on an error that leaves no usable state.
func (c *Context) abort(err error) (*Result, error) {
	var oom *OutOfMemoryError
	if errors.As(err, &oom) {
		c.fatalf(Pos{}, "%v", err)
	}
	return c.result(), fmt.Errorf("%w: %w", ErrCompilationFailed, err)
}

func (c *Context) finish() (*Result, error) {
	res := c.result()
	if c.diags.HasErrors() {
		return res, fmt.Errorf("%w: %d error(s)", ErrCompilationFailed, c.diags.ErrorCount())
	}
	return res, nil
}

func (c *Context) result() *Result {
	data := c.alloc.Reservations()
	data = append(data, c.data...)
	return &Result{
		Code:        append([]Line(nil), c.main.Lines()...),
		Data:        data,
		Routines:    c.routines.Names(),
		Variables:   c.reg.Variables(),
		Functions:   append([]*Function(nil), c.funcList...),
		Diagnostics: &c.diags,
	}
}
