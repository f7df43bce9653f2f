package compiler

// Pos is a source position. Zero values mean "unknown".
type Pos struct {
	Line int
	Col  int
}

// Node is any AST node.
type Node interface {
	Position() Pos
}

// Expr is an expression node. The set of implementations is closed.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node. The set of implementations is closed.
type Stmt interface {
	Node
	stmtNode()
}

// ConstKind tags the payload of a Constant.
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstStr
	ConstBool
)

func (k ConstKind) String() string {
	switch k {
	case ConstInt:
		return "int"
	case ConstFloat:
		return "float"
	case ConstStr:
		return "str"
	case ConstBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Constant is a literal value.
type Constant struct {
	Pos   Pos
	Kind  ConstKind
	Int   int64
	Float float64
	Str   string
	Bool  bool
}

// Name references a variable.
type Name struct {
	Pos Pos
	ID  string
}

// BinOp is a binary arithmetic or bitwise operation.
type BinOp struct {
	Pos   Pos
	Op    string // "+", "-", "*", "/", "//", "%", "**", "^", "&", "|", "<<", ">>"
	Left  Expr
	Right Expr
}

// UnaryOp is a prefix operation ("-", "+", "not", "~").
type UnaryOp struct {
	Pos     Pos
	Op      string
	Operand Expr
}

// Compare is a comparison. Ops and Comparators have equal length; more than
// one operator makes it a chained comparison.
type Compare struct {
	Pos         Pos
	Left        Expr
	Ops         []string
	Comparators []Expr
}

// Call is a call of a builtin or user-defined function by name.
type Call struct {
	Pos  Pos
	Func string
	Args []Expr
}

// JoinedStr is an f-string: literal segments are string Constants, the
// others are formatted values.
type JoinedStr struct {
	Pos    Pos
	Values []Expr
}

func (n *Constant) Position() Pos  { return n.Pos }
func (n *Name) Position() Pos      { return n.Pos }
func (n *BinOp) Position() Pos     { return n.Pos }
func (n *UnaryOp) Position() Pos   { return n.Pos }
func (n *Compare) Position() Pos   { return n.Pos }
func (n *Call) Position() Pos      { return n.Pos }
func (n *JoinedStr) Position() Pos { return n.Pos }

func (*Constant) exprNode()  {}
func (*Name) exprNode()      {}
func (*BinOp) exprNode()     {}
func (*UnaryOp) exprNode()   {}
func (*Compare) exprNode()   {}
func (*Call) exprNode()      {}
func (*JoinedStr) exprNode() {}

// Module is a whole compilation unit.
type Module struct {
	Pos  Pos
	Body []Stmt
}

// Assign binds Value to the variable Target.
type Assign struct {
	Pos    Pos
	Target string
	Value  Expr
}

// AugAssign is Target Op= Value.
type AugAssign struct {
	Pos    Pos
	Target string
	Op     string
	Value  Expr
}

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	Pos   Pos
	Value Expr
}

type If struct {
	Pos    Pos
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

type While struct {
	Pos  Pos
	Test Expr
	Body []Stmt
}

// For iterates Target over Iter, which must be a call of range.
type For struct {
	Pos    Pos
	Target string
	Iter   Expr
	Body   []Stmt
}

type FunctionDef struct {
	Pos    Pos
	Name   string
	Params []string
	Body   []Stmt
}

// Return has a nil Value for a bare return.
type Return struct {
	Pos   Pos
	Value Expr
}

// Global declares names as module-level inside a function body.
type Global struct {
	Pos   Pos
	Names []string
}

type Pass struct{ Pos Pos }
type Break struct{ Pos Pos }
type Continue struct{ Pos Pos }

func (n *Module) Position() Pos      { return n.Pos }
func (n *Assign) Position() Pos      { return n.Pos }
func (n *AugAssign) Position() Pos   { return n.Pos }
func (n *ExprStmt) Position() Pos    { return n.Pos }
func (n *If) Position() Pos          { return n.Pos }
func (n *While) Position() Pos       { return n.Pos }
func (n *For) Position() Pos         { return n.Pos }
func (n *FunctionDef) Position() Pos { return n.Pos }
func (n *Return) Position() Pos      { return n.Pos }
func (n *Global) Position() Pos      { return n.Pos }
func (n *Pass) Position() Pos        { return n.Pos }
func (n *Break) Position() Pos       { return n.Pos }
func (n *Continue) Position() Pos    { return n.Pos }

func (*Assign) stmtNode()      {}
func (*AugAssign) stmtNode()   {}
func (*ExprStmt) stmtNode()    {}
func (*If) stmtNode()          {}
func (*While) stmtNode()       {}
func (*For) stmtNode()         {}
func (*FunctionDef) stmtNode() {}
func (*Return) stmtNode()      {}
func (*Global) stmtNode()      {}
func (*Pass) stmtNode()        {}
func (*Break) stmtNode()       {}
func (*Continue) stmtNode()    {}

// Convenience constructors, mostly for tests.

func IntConst(v int64) *Constant          { return &Constant{Kind: ConstInt, Int: v} }
func FloatConst(v float64) *Constant      { return &Constant{Kind: ConstFloat, Float: v} }
func StrConst(s string) *Constant         { return &Constant{Kind: ConstStr, Str: s} }
func BoolConst(b bool) *Constant          { return &Constant{Kind: ConstBool, Bool: b} }
func NameRef(id string) *Name             { return &Name{ID: id} }
func Bin(op string, l, r Expr) *BinOp     { return &BinOp{Op: op, Left: l, Right: r} }
func CallOf(f string, args ...Expr) *Call { return &Call{Func: f, Args: args} }
