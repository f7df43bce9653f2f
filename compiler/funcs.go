package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// Scope is the symbol table of one function body. Locals and parameters
// shadow globals of the same name.
type Scope struct {
	fn      *Function
	locals  map[string]*Variable
	globals map[string]bool
}

func (s *Scope) Function() *Function {
	return s.fn
}

// Lookup finds a local or parameter by its source name.
func (s *Scope) Lookup(name string) (*Variable, bool) {
	v, ok := s.locals[name]
	return v, ok
}

// IsGlobal reports whether name was declared global in this body.
func (s *Scope) IsGlobal(name string) bool {
	return s.globals[name]
}

// Locals returns the local variables ordered by address.
func (s *Scope) Locals() []*Variable {
	vars := make([]*Variable, 0, len(s.locals))
	for _, v := range s.locals {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Address < vars[j].Address })
	return vars
}

// Function is a user-defined function.
type Function struct {
	Name       string
	Index      int
	Params     []string
	Def        *FunctionDef
	Label      string
	RetLabel   string
	RetType    VarType // TypeUnknown when no return carries a value
	ParamTypes []VarType
	Recursive  bool
	Convention Convention
	Scope      *Scope
}

// ParamVars returns the parameter variables in declaration order.
func (f *Function) ParamVars() []*Variable {
	vars := make([]*Variable, len(f.Params))
	for i, p := range f.Params {
		vars[i] = f.Scope.locals[p]
	}
	return vars
}

// ParamType is the type callers pass for parameter i.
func (f *Function) ParamType(i int) VarType {
	if t := f.ParamTypes[i]; t != TypeUnknown {
		return t
	}
	return TypeInt
}

// paramSlot is parameter i's storage seen with its entry type. The
// registry record itself is retyped while the body is emitted, so call
// sites must not read its type or size.
func (f *Function) paramSlot(i int) *Variable {
	p := f.Scope.locals[f.Params[i]]
	t := f.ParamType(i)
	return &Variable{Name: p.Name, Label: p.Label, Address: p.Address, Type: t, Size: sizeOf(t)}
}

// ParamBytes is the number of bytes the arguments occupy on the stack.
func (f *Function) ParamBytes() int {
	n := 0
	for i := range f.Params {
		n += sizeOf(f.ParamType(i))
	}
	return n
}

func (f *Function) signature() string {
	return fmt.Sprintf("%s(%s)", f.Name, strings.Join(f.Params, ", "))
}

// collectFunctions registers every top-level def and declares its locals.
func (c *Context) collectFunctions(m *Module) error {
	for _, st := range m.Body {
		def, ok := st.(*FunctionDef)
		if !ok {
			continue
		}
		if _, isBuiltin := builtins[def.Name]; isBuiltin {
			c.fatalf(def.Pos, "cannot redefine builtin function %q", def.Name)
			continue
		}
		if _, dup := c.funcs[def.Name]; dup {
			c.fatalf(def.Pos, "function %q is already defined", def.Name)
			continue
		}
		fn := &Function{
			Name:       def.Name,
			Index:      len(c.funcList) + 1,
			Params:     def.Params,
			Def:        def,
			Label:      "f_" + def.Name,
			RetLabel:   "f_" + def.Name + "_ret",
			ParamTypes: make([]VarType, len(def.Params)),
			Convention: c.cfg.Convention,
		}
		fn.Scope = &Scope{fn: fn, locals: make(map[string]*Variable), globals: make(map[string]bool)}
		if err := c.declareLocals(fn); err != nil {
			return err
		}
		fn.Recursive = callsFunction(def.Body, def.Name)
		if fn.Recursive {
			fn.Convention = ConventionStack
		}
		c.funcs[fn.Name] = fn
		c.funcList = append(c.funcList, fn)
		c.tracef("function %s: %d params, convention %s", fn.signature(), len(fn.Params), fn.Convention)
	}
	return nil
}

func (c *Context) declareLocals(fn *Function) error {
	sc := fn.Scope
	walkStmts(fn.Def.Body, func(st Stmt) {
		switch n := st.(type) {
		case *Global:
			for _, name := range n.Names {
				sc.globals[name] = true
			}
		case *FunctionDef:
			c.fatalf(n.Pos, "nested function %q is not supported", n.Name)
		}
	})

	var names []string
	seen := make(map[string]bool)
	for _, p := range fn.Params {
		if seen[p] {
			c.fatalf(fn.Def.Pos, "duplicate parameter %q in %s", p, fn.Name)
			continue
		}
		if sc.globals[p] {
			c.fatalf(fn.Def.Pos, "parameter %q of %s is declared global", p, fn.Name)
		}
		seen[p] = true
		names = append(names, p)
	}
	walkStmts(fn.Def.Body, func(st Stmt) {
		var target string
		switch n := st.(type) {
		case *Assign:
			target = n.Target
		case *AugAssign:
			target = n.Target
		case *For:
			target = n.Target
		default:
			return
		}
		if !seen[target] && !sc.globals[target] {
			seen[target] = true
			names = append(names, target)
		}
	})

	for _, name := range names {
		v, err := c.reg.declare(fn.Name+"."+name, fmt.Sprintf("l%d_%s", fn.Index, name))
		if err != nil {
			return err
		}
		sc.locals[name] = v
	}
	return nil
}

// walkStmts visits every statement in body, descending into compound
// statements but not into nested function definitions.
func walkStmts(body []Stmt, visit func(Stmt)) {
	for _, st := range body {
		visit(st)
		switch n := st.(type) {
		case *If:
			walkStmts(n.Body, visit)
			walkStmts(n.Orelse, visit)
		case *While:
			walkStmts(n.Body, visit)
		case *For:
			walkStmts(n.Body, visit)
		}
	}
}

// walkExpr visits e and all of its subexpressions.
func walkExpr(e Expr, visit func(Expr)) {
	if e == nil {
		return
	}
	visit(e)
	switch n := e.(type) {
	case *BinOp:
		walkExpr(n.Left, visit)
		walkExpr(n.Right, visit)
	case *UnaryOp:
		walkExpr(n.Operand, visit)
	case *Compare:
		walkExpr(n.Left, visit)
		for _, x := range n.Comparators {
			walkExpr(x, visit)
		}
	case *Call:
		for _, a := range n.Args {
			walkExpr(a, visit)
		}
	case *JoinedStr:
		for _, v := range n.Values {
			walkExpr(v, visit)
		}
	}
}

// stmtExprs returns the expressions directly held by st.
func stmtExprs(st Stmt) []Expr {
	switch n := st.(type) {
	case *Assign:
		return []Expr{n.Value}
	case *AugAssign:
		return []Expr{n.Value}
	case *ExprStmt:
		return []Expr{n.Value}
	case *If:
		return []Expr{n.Test}
	case *While:
		return []Expr{n.Test}
	case *For:
		return []Expr{n.Iter}
	case *Return:
		if n.Value != nil {
			return []Expr{n.Value}
		}
	}
	return nil
}

func callsFunction(body []Stmt, name string) bool {
	found := false
	walkStmts(body, func(st Stmt) {
		for _, e := range stmtExprs(st) {
			walkExpr(e, func(x Expr) {
				if call, ok := x.(*Call); ok && call.Func == name {
					found = true
				}
			})
		}
	})
	return found
}

// joinTypes merges two inferred types. int widens to float; conflicting
// kinds keep the first type seen.
func joinTypes(a, b VarType) VarType {
	switch {
	case a == TypeUnknown:
		return b
	case b == TypeUnknown, a == b:
		return a
	case (a == TypeInt && b == TypeFloat) || (a == TypeFloat && b == TypeInt):
		return TypeFloat
	}
	return a
}

type typeEnv struct {
	fn      *Function
	locals  map[string]VarType
	globals map[string]VarType
}

func (env *typeEnv) lookup(name string) VarType {
	if env.fn != nil {
		if _, ok := env.fn.Scope.locals[name]; ok {
			return env.locals[name]
		}
	}
	return env.globals[name]
}

// assign records an assignment and reports whether a type widened.
func (env *typeEnv) assign(name string, t VarType) bool {
	m := env.globals
	if env.fn != nil {
		if _, ok := env.fn.Scope.locals[name]; ok {
			m = env.locals
		}
	}
	old := m[name]
	m[name] = joinTypes(old, t)
	return m[name] != old
}

// inferTypes runs the bounded fixed point over parameter and return types.
func (c *Context) inferTypes(main []Stmt) {
	globals := make(map[string]VarType)
	locals := make(map[*Function]map[string]VarType, len(c.funcList))
	for _, fn := range c.funcList {
		locals[fn] = make(map[string]VarType)
	}
	converged := false
	pass := 0
	for pass < c.cfg.MaxInferPasses && !converged {
		pass++
		changed := c.inferBody(main, &typeEnv{globals: globals})
		for _, fn := range c.funcList {
			env := &typeEnv{fn: fn, locals: locals[fn], globals: globals}
			for i, p := range fn.Params {
				env.locals[p] = joinTypes(env.locals[p], fn.ParamTypes[i])
			}
			if c.inferBody(fn.Def.Body, env) {
				changed = true
			}
		}
		converged = !changed
	}
	if !converged {
		c.warnf(Pos{}, "type inference did not converge after %d passes", pass)
	}
	c.tracef("type inference finished after %d passes", pass)

	for _, fn := range c.funcList {
		for i, v := range fn.ParamVars() {
			v.setType(fn.ParamType(i), false)
		}
	}
}

func (c *Context) inferBody(body []Stmt, env *typeEnv) bool {
	changed := false
	walkStmts(body, func(st Stmt) {
		for _, e := range stmtExprs(st) {
			if c.inferCallSites(e, env) {
				changed = true
			}
		}
		switch n := st.(type) {
		case *Assign:
			if env.assign(n.Target, c.inferExpr(n.Value, env)) {
				changed = true
			}
		case *AugAssign:
			t := c.inferExpr(&BinOp{Op: n.Op, Left: &Name{ID: n.Target}, Right: n.Value}, env)
			if env.assign(n.Target, t) {
				changed = true
			}
		case *For:
			if env.assign(n.Target, TypeInt) {
				changed = true
			}
		case *Return:
			if env.fn != nil && n.Value != nil {
				old := env.fn.RetType
				env.fn.RetType = joinTypes(old, c.inferExpr(n.Value, env))
				if env.fn.RetType != old {
					changed = true
				}
			}
		}
	})
	return changed
}

// inferCallSites widens parameter types from the arguments of every user
// call inside e.
func (c *Context) inferCallSites(e Expr, env *typeEnv) bool {
	changed := false
	walkExpr(e, func(x Expr) {
		call, ok := x.(*Call)
		if !ok {
			return
		}
		fn, ok := c.funcs[call.Func]
		if !ok || len(call.Args) != len(fn.Params) {
			return
		}
		for i, arg := range call.Args {
			old := fn.ParamTypes[i]
			fn.ParamTypes[i] = joinTypes(old, c.inferExpr(arg, env))
			if fn.ParamTypes[i] != old {
				changed = true
			}
		}
	})
	return changed
}

// inferExpr predicts the type Translate will give e.
func (c *Context) inferExpr(e Expr, env *typeEnv) VarType {
	switch n := e.(type) {
	case *Constant:
		switch n.Kind {
		case ConstFloat:
			return TypeFloat
		case ConstStr:
			return TypePointer
		}
		return TypeInt
	case *Name:
		return env.lookup(n.ID)
	case *BinOp:
		if k, ok := constValue(n); ok {
			return c.inferExpr(k, env)
		}
		if n.Op == "/" {
			return TypeFloat
		}
		l, r := c.inferExpr(n.Left, env), c.inferExpr(n.Right, env)
		switch {
		case l == TypePointer && r == TypePointer:
			return TypePointer
		case l == TypeFloat || r == TypeFloat:
			return TypeFloat
		}
		return TypeInt
	case *UnaryOp:
		if c.inferExpr(n.Operand, env) == TypeFloat {
			return TypeFloat
		}
		return TypeInt
	case *Compare:
		return TypeInt
	case *Call:
		if b, ok := builtins[n.Func]; ok {
			if b.resultFromArg && len(n.Args) > 0 {
				return c.inferExpr(n.Args[0], env)
			}
			return b.result
		}
		if fn, ok := c.funcs[n.Func]; ok {
			return fn.RetType
		}
	case *JoinedStr:
		return TypePointer
	}
	return TypeUnknown
}
