package sexy

import (
	"fmt"
	"strings"
	"unicode"
)

// NodeType represents the type of a Node
type NodeType int

const (
	NodeSymbol NodeType = iota
	NodeString
	NodeInteger
	NodeFloat
	NodeList
	NodeMap
)

// Node represents any Sexy data structure
type Node struct {
	Type NodeType

	// Atoms and text
	Text string // NodeSymbol, NodeString, NodeInteger, NodeFloat

	// Collections
	Items []*Node  // NodeList, NodeMap
	Keys  []string // NodeMap - parallel to Items

	// Metadata for NodeList - stored as parallel slices like maps
	MetaKeys  []string // NodeList - metadata keys
	MetaItems []*Node  // NodeList - metadata values

	// Line is the 1-based source line the node started on.
	Line int
}

func (n *Node) String() string {
	switch n.Type {
	case NodeSymbol, NodeInteger, NodeFloat:
		return n.Text
	case NodeString:
		return Quote(n.Text)
	case NodeList:
		var parts []string
		if len(n.MetaKeys) > 0 {
			var metaParts []string
			for i, key := range n.MetaKeys {
				if i < len(n.MetaItems) {
					metaParts = append(metaParts, fmt.Sprintf("%s: %s", key, n.MetaItems[i].String()))
				}
			}
			if len(metaParts) > 0 {
				parts = append(parts, fmt.Sprintf("^{%s}", strings.Join(metaParts, ", ")))
			}
		}
		for _, item := range n.Items {
			parts = append(parts, item.String())
		}
		return fmt.Sprintf("(%s)", strings.Join(parts, " "))
	case NodeMap:
		var parts []string
		for i, key := range n.Keys {
			if i < len(n.Items) {
				parts = append(parts, fmt.Sprintf("%s: %s", key, n.Items[i].String()))
			}
		}
		return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
	default:
		return fmt.Sprintf("UNKNOWN_NODE_TYPE_%d", n.Type)
	}
}

// Quote renders s as a Sexy string literal.
func Quote(s string) string {
	escaped := strings.ReplaceAll(s, "\\", "\\\\")
	escaped = strings.ReplaceAll(escaped, "\"", "\\\"")
	escaped = strings.ReplaceAll(escaped, "\n", "\\n")
	escaped = strings.ReplaceAll(escaped, "\t", "\\t")
	return "\"" + escaped + "\""
}

// Helper constructors for common node types
func NewSymbol(name string) *Node {
	return &Node{Type: NodeSymbol, Text: name}
}

func NewString(value string) *Node {
	return &Node{Type: NodeString, Text: value}
}

func NewInteger(text string) *Node {
	return &Node{Type: NodeInteger, Text: text}
}

func NewFloat(text string) *Node {
	return &Node{Type: NodeFloat, Text: text}
}

func NewList(items []*Node) *Node {
	return &Node{Type: NodeList, Items: items}
}

func NewListWithMeta(items []*Node, metaKeys []string, metaItems []*Node) *Node {
	return &Node{Type: NodeList, Items: items, MetaKeys: metaKeys, MetaItems: metaItems}
}

func NewMap(keys []string, items []*Node) *Node {
	return &Node{Type: NodeMap, Keys: keys, Items: items}
}

// IsAtom checks if the node is an atomic value
func (n *Node) IsAtom() bool {
	return n.Type == NodeSymbol || n.Type == NodeString || n.Type == NodeInteger || n.Type == NodeFloat
}

// Head returns the symbol at the front of a list, or "" if there is none.
func (n *Node) Head() string {
	if n.Type != NodeList || len(n.Items) == 0 || n.Items[0].Type != NodeSymbol {
		return ""
	}
	return n.Items[0].Text
}

// Meta returns the metadata value stored under key, or nil.
func (n *Node) Meta(key string) *Node {
	for i, k := range n.MetaKeys {
		if k == key && i < len(n.MetaItems) {
			return n.MetaItems[i]
		}
	}
	return nil
}

type parser struct {
	lexer        *lexer
	currentToken token
	peekToken    token
}

// Parse parses the entire input and returns the top-level datum
func Parse(input string) (*Node, error) {
	p := &parser{lexer: newLexer(input)}
	p.nextToken()
	p.nextToken()

	result, err := p.ParseDatum()
	if len(p.lexer.errors) > 0 {
		// Lexer errors take priority because they might cause confusing parser errors.
		return nil, fmt.Errorf("%s", p.lexer.errors[0])
	}
	if err != nil {
		return nil, err
	}

	if p.currentToken.Type != tokenEOF {
		return nil, fmt.Errorf("line %d: expected EOF but got %s", p.currentToken.Line, p.currentToken.Type)
	}

	return result, nil
}

func (p *parser) nextToken() {
	p.currentToken = p.peekToken
	p.peekToken = p.lexer.nextToken()
}

func (p *parser) ParseDatum() (*Node, error) {
	line := p.currentToken.Line
	var n *Node
	var err error
	switch p.currentToken.Type {
	case tokenSymbol:
		n = NewSymbol(p.currentToken.Value)
		p.nextToken()
	case tokenString:
		n = NewString(p.currentToken.Value)
		p.nextToken()
	case tokenInteger:
		n = NewInteger(p.currentToken.Value)
		p.nextToken()
	case tokenFloat:
		n = NewFloat(p.currentToken.Value)
		p.nextToken()
	case tokenLParen:
		n, err = p.parseList()
	case tokenLBrace:
		n, err = p.parseMap()
	default:
		return nil, fmt.Errorf("line %d: unexpected token: %s", line, p.currentToken.Type)
	}
	if err != nil {
		return nil, err
	}
	n.Line = line
	return n, nil
}

func (p *parser) parseList() (*Node, error) {
	var items []*Node
	var metaKeys []string
	var metaItems []*Node
	p.nextToken() // consume '('

	for p.currentToken.Type != tokenRParen && p.currentToken.Type != tokenEOF {
		if p.currentToken.Type == tokenCaret {
			metaNode, err := p.parseMeta()
			if err != nil {
				return nil, err
			}

			// Later values win
			for i, key := range metaNode.Keys {
				found := false
				for j, existingKey := range metaKeys {
					if existingKey == key {
						metaItems[j] = metaNode.Items[i]
						found = true
						break
					}
				}
				if !found {
					metaKeys = append(metaKeys, key)
					metaItems = append(metaItems, metaNode.Items[i])
				}
			}
			continue
		}

		item, err := p.ParseDatum()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if p.currentToken.Type != tokenRParen {
		return nil, fmt.Errorf("line %d: expected ')' but got %s", p.currentToken.Line, p.currentToken.Type)
	}
	p.nextToken() // consume ')'

	if len(metaKeys) > 0 {
		return NewListWithMeta(items, metaKeys, metaItems), nil
	}
	return NewList(items), nil
}

func (p *parser) parseMeta() (*Node, error) {
	p.nextToken() // consume '^'

	if p.currentToken.Type != tokenLBrace {
		return nil, fmt.Errorf("line %d: expected '{' after '^' but got %s", p.currentToken.Line, p.currentToken.Type)
	}
	return p.parseMap()
}

func (p *parser) parseMap() (*Node, error) {
	p.nextToken() // consume '{'

	var keys []string
	var items []*Node

	for p.currentToken.Type != tokenRBrace && p.currentToken.Type != tokenEOF {
		if p.currentToken.Type != tokenSymbol {
			return nil, fmt.Errorf("line %d: expected symbol for map key but got %s", p.currentToken.Line, p.currentToken.Type)
		}

		keys = append(keys, p.currentToken.Value)
		p.nextToken()

		if p.currentToken.Type != tokenColon {
			return nil, fmt.Errorf("line %d: expected ':' after map key but got %s", p.currentToken.Line, p.currentToken.Type)
		}
		p.nextToken()

		value, err := p.ParseDatum()
		if err != nil {
			return nil, err
		}
		items = append(items, value)

		if p.currentToken.Type == tokenComma {
			p.nextToken()
		} else if p.currentToken.Type != tokenRBrace {
			return nil, fmt.Errorf("line %d: expected ',' or '}' in map but got %s", p.currentToken.Line, p.currentToken.Type)
		}
	}

	if p.currentToken.Type != tokenRBrace {
		return nil, fmt.Errorf("line %d: expected '}' but got %s", p.currentToken.Line, p.currentToken.Type)
	}
	p.nextToken() // consume '}'

	return NewMap(keys, items), nil
}

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenSymbol
	tokenString
	tokenInteger
	tokenFloat
	tokenLParen
	tokenRParen
	tokenLBrace
	tokenRBrace
	tokenColon
	tokenComma
	tokenCaret
)

func (t tokenType) String() string {
	switch t {
	case tokenEOF:
		return "EOF"
	case tokenSymbol:
		return "symbol"
	case tokenString:
		return "string"
	case tokenInteger:
		return "integer"
	case tokenFloat:
		return "float"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenLBrace:
		return "'{'"
	case tokenRBrace:
		return "'}'"
	case tokenColon:
		return "':'"
	case tokenComma:
		return "','"
	case tokenCaret:
		return "'^'"
	default:
		return fmt.Sprintf("unknown token %d", int(t))
	}
}

type token struct {
	Type  tokenType
	Value string
	Line  int
}

type lexer struct {
	input    string
	position int
	current  rune
	line     int
	errors   []string
}

func newLexer(input string) *lexer {
	l := &lexer{input: input, line: 1}
	l.readChar()
	return l
}

func (l *lexer) readChar() {
	if l.current == '\n' {
		l.line++
	}
	if l.position >= len(l.input) {
		l.current = 0
	} else {
		l.current = rune(l.input[l.position])
	}
	l.position++
}

func (l *lexer) peekChar() rune {
	if l.position >= len(l.input) {
		return 0
	}
	return rune(l.input[l.position])
}

func (l *lexer) skipWhitespace() {
	for unicode.IsSpace(l.current) {
		l.readChar()
	}
}

func (l *lexer) skipComment() {
	for l.current != '\n' && l.current != '\r' && l.current != 0 {
		l.readChar()
	}
}

func (l *lexer) readSymbol() string {
	start := l.position - 1
	for isSymbolChar(l.current) {
		l.readChar()
	}
	return l.input[start : l.position-1]
}

func (l *lexer) readString() (string, error) {
	var sb strings.Builder
	l.readChar() // skip opening quote

	for l.current != '"' && l.current != 0 {
		if l.current == '\\' {
			l.readChar()
			switch l.current {
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				return "", fmt.Errorf("line %d: invalid escape sequence: \\%c", l.line, l.current)
			}
		} else {
			sb.WriteRune(l.current)
		}
		l.readChar()
	}

	if l.current != '"' {
		return "", fmt.Errorf("line %d: unterminated string", l.line)
	}
	l.readChar() // skip closing quote

	return sb.String(), nil
}

// readNumber reads an integer or a decimal float such as -3.14 or 1e-3.
func (l *lexer) readNumber() (string, bool) {
	start := l.position - 1
	isFloat := false
	if l.current == '+' || l.current == '-' {
		l.readChar()
	}
	for unicode.IsDigit(l.current) {
		l.readChar()
	}
	if l.current == '.' && unicode.IsDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for unicode.IsDigit(l.current) {
			l.readChar()
		}
	}
	if l.current == 'e' || l.current == 'E' {
		next := l.peekChar()
		if unicode.IsDigit(next) || next == '-' || next == '+' {
			isFloat = true
			l.readChar()
			if l.current == '-' || l.current == '+' {
				l.readChar()
			}
			for unicode.IsDigit(l.current) {
				l.readChar()
			}
		}
	}
	return l.input[start : l.position-1], isFloat
}

func (l *lexer) nextToken() token {
	for {
		l.skipWhitespace()

		line := l.line

		switch l.current {
		case 0:
			return token{Type: tokenEOF, Line: line}
		case ';':
			l.skipComment()
			continue
		case '(':
			l.readChar()
			return token{Type: tokenLParen, Value: "(", Line: line}
		case ')':
			l.readChar()
			return token{Type: tokenRParen, Value: ")", Line: line}
		case '{':
			l.readChar()
			return token{Type: tokenLBrace, Value: "{", Line: line}
		case '}':
			l.readChar()
			return token{Type: tokenRBrace, Value: "}", Line: line}
		case ':':
			l.readChar()
			return token{Type: tokenColon, Value: ":", Line: line}
		case ',':
			l.readChar()
			return token{Type: tokenComma, Value: ",", Line: line}
		case '^':
			l.readChar()
			return token{Type: tokenCaret, Value: "^", Line: line}
		case '"':
			str, err := l.readString()
			if err != nil {
				l.errors = append(l.errors, err.Error())
				return token{Type: tokenEOF, Line: line}
			}
			return token{Type: tokenString, Value: str, Line: line}
		default:
			if unicode.IsLetter(l.current) || l.current == '_' {
				return token{Type: tokenSymbol, Value: l.readSymbol(), Line: line}
			} else if unicode.IsDigit(l.current) || l.current == '+' || l.current == '-' {
				if (l.current == '+' || l.current == '-') && !unicode.IsDigit(l.peekChar()) {
					// Single + or - is a symbol
					return token{Type: tokenSymbol, Value: l.readSymbol(), Line: line}
				}
				text, isFloat := l.readNumber()
				if isFloat {
					return token{Type: tokenFloat, Value: text, Line: line}
				}
				return token{Type: tokenInteger, Value: text, Line: line}
			}
			l.errors = append(l.errors, fmt.Sprintf("line %d: unexpected character '%c'", line, l.current))
			return token{Type: tokenEOF, Line: line}
		}
	}
}

func isSymbolChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '+'
}
