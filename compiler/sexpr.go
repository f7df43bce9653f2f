package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alby69/py2c64/sexy"
)

// ReadProgram reads a module written as an S-expression AST, for example
//
//	(module
//	  (assign x 10)
//	  (assign z (binary "+" x 1)))
func ReadProgram(src string) (*Module, error) {
	node, err := sexy.Parse(src)
	if err != nil {
		return nil, err
	}
	if node.Head() != "module" {
		return nil, fmt.Errorf("line %d: expected (module ...), got %s", node.Line, node)
	}
	m := &Module{Pos: posOf(node)}
	m.Body, err = readStmts(node.Items[1:])
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ReadExpr reads a single expression.
func ReadExpr(src string) (Expr, error) {
	node, err := sexy.Parse(src)
	if err != nil {
		return nil, err
	}
	return readExpr(node)
}

func posOf(n *sexy.Node) Pos {
	p := Pos{Line: n.Line}
	if v := n.Meta("line"); v != nil && v.Type == sexy.NodeInteger {
		p.Line, _ = strconv.Atoi(v.Text)
	}
	if v := n.Meta("col"); v != nil && v.Type == sexy.NodeInteger {
		p.Col, _ = strconv.Atoi(v.Text)
	}
	return p
}

func errorAt(n *sexy.Node, format string, args ...any) error {
	return fmt.Errorf("line %d: %s", posOf(n).Line, fmt.Sprintf(format, args...))
}

// args checks the number of items after the head of a list form.
func args(n *sexy.Node, min, max int) ([]*sexy.Node, error) {
	rest := n.Items[1:]
	if len(rest) < min || (max >= 0 && len(rest) > max) {
		return nil, errorAt(n, "malformed %s form: %s", n.Head(), n)
	}
	return rest, nil
}

func symbolText(n *sexy.Node) (string, bool) {
	if n.Type == sexy.NodeSymbol {
		return n.Text, true
	}
	return "", false
}

func opText(n *sexy.Node) (string, bool) {
	if n.Type == sexy.NodeString || n.Type == sexy.NodeSymbol {
		return n.Text, true
	}
	return "", false
}

func readStmts(items []*sexy.Node) ([]Stmt, error) {
	stmts := make([]Stmt, 0, len(items))
	for _, item := range items {
		st, err := readStmt(item)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
	}
	return stmts, nil
}

func readBlock(n *sexy.Node) ([]Stmt, error) {
	if n.Head() != "block" {
		return nil, errorAt(n, "expected (block ...), got %s", n)
	}
	return readStmts(n.Items[1:])
}

func readStmt(n *sexy.Node) (Stmt, error) {
	pos := posOf(n)
	switch n.Head() {
	case "assign":
		rest, err := args(n, 2, 2)
		if err != nil {
			return nil, err
		}
		target, ok := symbolText(rest[0])
		if !ok {
			return nil, errorAt(n, "assignment target must be a name, got %s", rest[0])
		}
		value, err := readExpr(rest[1])
		if err != nil {
			return nil, err
		}
		return &Assign{Pos: pos, Target: target, Value: value}, nil
	case "augassign":
		rest, err := args(n, 3, 3)
		if err != nil {
			return nil, err
		}
		target, ok := symbolText(rest[0])
		op, opOK := opText(rest[1])
		if !ok || !opOK {
			return nil, errorAt(n, "malformed augassign form: %s", n)
		}
		value, err := readExpr(rest[2])
		if err != nil {
			return nil, err
		}
		return &AugAssign{Pos: pos, Target: target, Op: op, Value: value}, nil
	case "expr":
		rest, err := args(n, 1, 1)
		if err != nil {
			return nil, err
		}
		value, err := readExpr(rest[0])
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Pos: pos, Value: value}, nil
	case "if":
		rest, err := args(n, 2, 3)
		if err != nil {
			return nil, err
		}
		test, err := readExpr(rest[0])
		if err != nil {
			return nil, err
		}
		body, err := readBlock(rest[1])
		if err != nil {
			return nil, err
		}
		st := &If{Pos: pos, Test: test, Body: body}
		if len(rest) == 3 {
			if st.Orelse, err = readBlock(rest[2]); err != nil {
				return nil, err
			}
		}
		return st, nil
	case "while":
		rest, err := args(n, 2, 2)
		if err != nil {
			return nil, err
		}
		test, err := readExpr(rest[0])
		if err != nil {
			return nil, err
		}
		body, err := readBlock(rest[1])
		if err != nil {
			return nil, err
		}
		return &While{Pos: pos, Test: test, Body: body}, nil
	case "for":
		rest, err := args(n, 3, 3)
		if err != nil {
			return nil, err
		}
		target, ok := symbolText(rest[0])
		if !ok {
			return nil, errorAt(n, "for target must be a name, got %s", rest[0])
		}
		iter, err := readExpr(rest[1])
		if err != nil {
			return nil, err
		}
		body, err := readBlock(rest[2])
		if err != nil {
			return nil, err
		}
		return &For{Pos: pos, Target: target, Iter: iter, Body: body}, nil
	case "def":
		rest, err := args(n, 3, 3)
		if err != nil {
			return nil, err
		}
		name, ok := symbolText(rest[0])
		if !ok || rest[1].Head() != "params" {
			return nil, errorAt(n, "malformed def form: %s", n)
		}
		var params []string
		for _, p := range rest[1].Items[1:] {
			pname, ok := symbolText(p)
			if !ok {
				return nil, errorAt(n, "parameter must be a name, got %s", p)
			}
			params = append(params, pname)
		}
		body, err := readBlock(rest[2])
		if err != nil {
			return nil, err
		}
		return &FunctionDef{Pos: pos, Name: name, Params: params, Body: body}, nil
	case "return":
		rest, err := args(n, 0, 1)
		if err != nil {
			return nil, err
		}
		st := &Return{Pos: pos}
		if len(rest) == 1 {
			if st.Value, err = readExpr(rest[0]); err != nil {
				return nil, err
			}
		}
		return st, nil
	case "global":
		st := &Global{Pos: pos}
		for _, item := range n.Items[1:] {
			name, ok := symbolText(item)
			if !ok {
				return nil, errorAt(n, "global expects names, got %s", item)
			}
			st.Names = append(st.Names, name)
		}
		return st, nil
	case "pass":
		return &Pass{Pos: pos}, nil
	case "break":
		return &Break{Pos: pos}, nil
	case "continue":
		return &Continue{Pos: pos}, nil
	}
	return nil, errorAt(n, "unknown statement %s", n)
}

func readExpr(n *sexy.Node) (Expr, error) {
	pos := posOf(n)
	switch n.Type {
	case sexy.NodeInteger:
		v, err := strconv.ParseInt(n.Text, 10, 64)
		if err != nil {
			return nil, errorAt(n, "invalid integer %s", n.Text)
		}
		return &Constant{Pos: pos, Kind: ConstInt, Int: v}, nil
	case sexy.NodeFloat:
		f, err := strconv.ParseFloat(n.Text, 64)
		if err != nil {
			return nil, errorAt(n, "invalid float %s", n.Text)
		}
		return &Constant{Pos: pos, Kind: ConstFloat, Float: f}, nil
	case sexy.NodeString:
		return &Constant{Pos: pos, Kind: ConstStr, Str: n.Text}, nil
	case sexy.NodeSymbol:
		switch n.Text {
		case "true", "True":
			return &Constant{Pos: pos, Kind: ConstBool, Bool: true}, nil
		case "false", "False":
			return &Constant{Pos: pos, Kind: ConstBool}, nil
		}
		return &Name{Pos: pos, ID: n.Text}, nil
	case sexy.NodeList:
	default:
		return nil, errorAt(n, "unexpected %s in expression", n)
	}

	switch n.Head() {
	case "binary":
		rest, err := args(n, 3, 3)
		if err != nil {
			return nil, err
		}
		op, ok := opText(rest[0])
		if !ok {
			return nil, errorAt(n, "operator must be a string, got %s", rest[0])
		}
		l, err := readExpr(rest[1])
		if err != nil {
			return nil, err
		}
		r, err := readExpr(rest[2])
		if err != nil {
			return nil, err
		}
		return &BinOp{Pos: pos, Op: op, Left: l, Right: r}, nil
	case "unary":
		rest, err := args(n, 2, 2)
		if err != nil {
			return nil, err
		}
		op, ok := opText(rest[0])
		if !ok {
			return nil, errorAt(n, "operator must be a string, got %s", rest[0])
		}
		operand, err := readExpr(rest[1])
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Pos: pos, Op: op, Operand: operand}, nil
	case "compare":
		rest := n.Items[1:]
		if len(rest) < 3 || len(rest)%2 == 0 {
			return nil, errorAt(n, "malformed compare form: %s", n)
		}
		left, err := readExpr(rest[0])
		if err != nil {
			return nil, err
		}
		cmp := &Compare{Pos: pos, Left: left}
		for i := 1; i < len(rest); i += 2 {
			op, ok := opText(rest[i])
			if !ok {
				return nil, errorAt(n, "operator must be a string, got %s", rest[i])
			}
			right, err := readExpr(rest[i+1])
			if err != nil {
				return nil, err
			}
			cmp.Ops = append(cmp.Ops, op)
			cmp.Comparators = append(cmp.Comparators, right)
		}
		return cmp, nil
	case "call":
		rest, err := args(n, 1, -1)
		if err != nil {
			return nil, err
		}
		name, ok := symbolText(rest[0])
		if !ok {
			return nil, errorAt(n, "callee must be a name, got %s", rest[0])
		}
		call := &Call{Pos: pos, Func: name}
		for _, a := range rest[1:] {
			e, err := readExpr(a)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, e)
		}
		return call, nil
	case "fstring":
		js := &JoinedStr{Pos: pos}
		for _, part := range n.Items[1:] {
			e, err := readExpr(part)
			if err != nil {
				return nil, err
			}
			js.Values = append(js.Values, e)
		}
		return js, nil
	}
	return nil, errorAt(n, "unknown expression %s", n)
}

// ToSExpr prints a node in the form ReadProgram accepts.
func ToSExpr(node Node) string {
	var sb strings.Builder
	writeSExpr(&sb, node)
	return sb.String()
}

func writeSExpr(sb *strings.Builder, node Node) {
	switch n := node.(type) {
	case *Module:
		sb.WriteString("(module")
		writeStmts(sb, n.Body)
		sb.WriteString(")")
	case *Constant:
		switch n.Kind {
		case ConstInt:
			sb.WriteString(strconv.FormatInt(n.Int, 10))
		case ConstFloat:
			s := strconv.FormatFloat(n.Float, 'g', -1, 64)
			if !strings.ContainsAny(s, ".eEnN") {
				s += ".0"
			}
			sb.WriteString(s)
		case ConstStr:
			sb.WriteString(sexy.Quote(n.Str))
		case ConstBool:
			sb.WriteString(strconv.FormatBool(n.Bool))
		}
	case *Name:
		sb.WriteString(n.ID)
	case *BinOp:
		fmt.Fprintf(sb, "(binary %s ", sexy.Quote(n.Op))
		writeSExpr(sb, n.Left)
		sb.WriteString(" ")
		writeSExpr(sb, n.Right)
		sb.WriteString(")")
	case *UnaryOp:
		fmt.Fprintf(sb, "(unary %s ", sexy.Quote(n.Op))
		writeSExpr(sb, n.Operand)
		sb.WriteString(")")
	case *Compare:
		sb.WriteString("(compare ")
		writeSExpr(sb, n.Left)
		for i, op := range n.Ops {
			fmt.Fprintf(sb, " %s ", sexy.Quote(op))
			writeSExpr(sb, n.Comparators[i])
		}
		sb.WriteString(")")
	case *Call:
		sb.WriteString("(call " + n.Func)
		for _, a := range n.Args {
			sb.WriteString(" ")
			writeSExpr(sb, a)
		}
		sb.WriteString(")")
	case *JoinedStr:
		sb.WriteString("(fstring")
		for _, v := range n.Values {
			sb.WriteString(" ")
			writeSExpr(sb, v)
		}
		sb.WriteString(")")
	case *Assign:
		sb.WriteString("(assign " + n.Target + " ")
		writeSExpr(sb, n.Value)
		sb.WriteString(")")
	case *AugAssign:
		fmt.Fprintf(sb, "(augassign %s %s ", n.Target, sexy.Quote(n.Op))
		writeSExpr(sb, n.Value)
		sb.WriteString(")")
	case *ExprStmt:
		sb.WriteString("(expr ")
		writeSExpr(sb, n.Value)
		sb.WriteString(")")
	case *If:
		sb.WriteString("(if ")
		writeSExpr(sb, n.Test)
		writeBlock(sb, n.Body)
		if len(n.Orelse) > 0 {
			writeBlock(sb, n.Orelse)
		}
		sb.WriteString(")")
	case *While:
		sb.WriteString("(while ")
		writeSExpr(sb, n.Test)
		writeBlock(sb, n.Body)
		sb.WriteString(")")
	case *For:
		sb.WriteString("(for " + n.Target + " ")
		writeSExpr(sb, n.Iter)
		writeBlock(sb, n.Body)
		sb.WriteString(")")
	case *FunctionDef:
		fmt.Fprintf(sb, "(def %s (params", n.Name)
		for _, p := range n.Params {
			sb.WriteString(" " + p)
		}
		sb.WriteString(")")
		writeBlock(sb, n.Body)
		sb.WriteString(")")
	case *Return:
		if n.Value == nil {
			sb.WriteString("(return)")
			return
		}
		sb.WriteString("(return ")
		writeSExpr(sb, n.Value)
		sb.WriteString(")")
	case *Global:
		sb.WriteString("(global")
		for _, name := range n.Names {
			sb.WriteString(" " + name)
		}
		sb.WriteString(")")
	case *Pass:
		sb.WriteString("(pass)")
	case *Break:
		sb.WriteString("(break)")
	case *Continue:
		sb.WriteString("(continue)")
	default:
		fmt.Fprintf(sb, "(unknown %T)", node)
	}
}

func writeStmts(sb *strings.Builder, body []Stmt) {
	for _, st := range body {
		sb.WriteString(" ")
		writeSExpr(sb, st)
	}
}

func writeBlock(sb *strings.Builder, body []Stmt) {
	sb.WriteString(" (block")
	writeStmts(sb, body)
	sb.WriteString(")")
}
