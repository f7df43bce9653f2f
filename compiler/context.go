package compiler

import (
	"fmt"
	"log"
)

type loopLabels struct {
	continueLabel string
	breakLabel    string
}

// Context owns all state of one compilation. Creating a new Context is the
// only way to reset it.
type Context struct {
	cfg      Config
	log      *log.Logger
	alloc    *Allocator
	reg      *Registry
	temps    *TempPool
	routines *RoutineSet
	diags    ErrorList

	main Buffer

	data      []DataDef
	strLabels map[string]string
	labelSeq  int
	bufSeq    int

	funcs    map[string]*Function
	funcList []*Function
	fn       *Function // function whose body is being emitted
	loops    []loopLabels

	// lowerHook, when set, sees the operands of every binary and comparison
	// lowering.
	lowerHook func(op string, left, right *Variable)
}

func NewContext(cfg Config) *Context {
	if cfg.MaxInferPasses < 1 {
		cfg.MaxInferPasses = DefaultMaxInferPasses
	}
	alloc := NewAllocator(cfg.MemStart, cfg.MemEnd)
	reg := NewRegistry(alloc)
	c := &Context{
		cfg:       cfg,
		log:       cfg.logger(),
		alloc:     alloc,
		reg:       reg,
		temps:     NewTempPool(reg),
		routines:  NewRoutineSet(),
		strLabels: make(map[string]string),
		funcs:     make(map[string]*Function),
	}
	return c
}

func (c *Context) Config() Config { return c.cfg }

func (c *Context) Registry() *Registry { return c.reg }

func (c *Context) Allocator() *Allocator { return c.alloc }

func (c *Context) Temps() *TempPool { return c.temps }

func (c *Context) Routines() *RoutineSet { return c.routines }

func (c *Context) Diagnostics() *ErrorList { return &c.diags }

// Code is the instruction buffer of the program.
func (c *Context) Code() *Buffer { return &c.main }

// Function returns a collected function, or nil.
func (c *Context) Function(name string) *Function { return c.funcs[name] }

// Report records a diagnostic. Warnings are also logged. Errors reported
// here are degraded: compilation goes on with the next statement.
func (c *Context) Report(msg string, pos Pos, sev Severity) {
	c.record(Diagnostic{Severity: sev, Pos: pos, Message: msg})
}

func (c *Context) record(d Diagnostic) {
	c.diags.add(d)
	if d.Severity == SeverityWarning || c.cfg.Verbose {
		c.log.Print(d.String())
	}
}

func (c *Context) errorf(pos Pos, format string, args ...any) {
	c.Report(fmt.Sprintf(format, args...), pos, SeverityError)
}

// fatalf reports an error that stops compilation once the current
// top-level statement is done.
func (c *Context) fatalf(pos Pos, format string, args ...any) {
	c.record(Diagnostic{Severity: SeverityError, Pos: pos, Message: fmt.Sprintf(format, args...), Fatal: true})
}

func (c *Context) warnf(pos Pos, format string, args ...any) {
	c.Report(fmt.Sprintf(format, args...), pos, SeverityWarning)
}

func (c *Context) tracef(format string, args ...any) {
	if c.cfg.Verbose {
		c.log.Printf(format, args...)
	}
}

func (c *Context) emit(instrs ...string) {
	c.main.Emit(instrs...)
}

func (c *Context) label(name string) {
	c.main.Label(name)
}

func (c *Context) comment(format string, args ...any) {
	c.main.Comment(format, args...)
}

func (c *Context) use(routines ...string) {
	c.routines.Use(routines...)
}

func (c *Context) newLabel(hint string) string {
	c.labelSeq++
	return fmt.Sprintf("lbl%d_%s", c.labelSeq, hint)
}

// acquire takes a temporary from the pool.
func (c *Context) acquire() (Temp, *Variable, error) {
	t, err := c.temps.Acquire()
	if err != nil {
		return Temp{}, nil, err
	}
	return t, c.temps.Var(t), nil
}

// release gives temporaries back. A failure here is a compiler bug.
func (c *Context) release(ts ...Temp) {
	for _, t := range ts {
		if err := c.temps.Release(t); err != nil {
			panic(err)
		}
	}
}

// stringLiteral returns the label of a null-terminated copy of s, reusing
// an earlier identical literal.
func (c *Context) stringLiteral(s string) string {
	if label, ok := c.strLabels[s]; ok {
		return label
	}
	label := fmt.Sprintf("str_%d", len(c.strLabels)+1)
	c.strLabels[s] = label
	bs := append(petscii(s), 0)
	c.data = append(c.data, DataDef{Kind: DataString, Label: label, Size: len(bs), Bytes: bs, Text: s})
	return label
}

// buffer reserves a zero-initialised byte buffer of size bytes.
func (c *Context) buffer(prefix string, size int) (string, error) {
	c.bufSeq++
	label := fmt.Sprintf("%s_%d", prefix, c.bufSeq)
	if _, err := c.alloc.Allocate(label, size); err != nil {
		return "", err
	}
	return label, nil
}

// lookupVar resolves a source name: locals of sc first, then globals.
func (c *Context) lookupVar(name string, sc *Scope) (*Variable, bool) {
	if sc != nil {
		if v, ok := sc.locals[name]; ok {
			return v, true
		}
	}
	return c.reg.Lookup(name)
}

// assignTarget returns the variable an assignment to name writes, declaring
// a global on first use.
func (c *Context) assignTarget(name string, sc *Scope) (*Variable, error) {
	if sc != nil {
		if v, ok := sc.locals[name]; ok {
			return v, nil
		}
	}
	return c.reg.DeclareOrGet(name)
}

// petscii converts text to the C64 upper-case character set.
func petscii(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			out = append(out, byte(r-'a'+'A'))
		case r >= 'A' && r <= 'Z':
			out = append(out, byte(r-'A'+0xC1))
		case r == '\n':
			out = append(out, 0x0D)
		case r < 0x80:
			out = append(out, byte(r))
		default:
			out = append(out, '?')
		}
	}
	return out
}
