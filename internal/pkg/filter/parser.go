package filter

import (
	"fmt"
	"strconv"
)

// SyntaxError describes a malformed filter expression. Pos is the index
// of the offending shell word; Token is its text, empty when the error
// is at end of input.
type SyntaxError struct {
	Pos   int
	Token string
	Msg   string
}

func (e *SyntaxError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("filter: %s", e.Msg)
	}
	return fmt.Sprintf("filter: %s (token %q at position %d)", e.Msg, e.Token, e.Pos)
}

// Parser parses a token stream into an expression tree.
type Parser struct {
	tokens []Token
	pos    int
}

// Parse parses shell-split filter words into an expression tree. An
// empty word list yields a nil tree, which matches every record.
// Parsing is deterministic: the same words always yield the same tree.
func Parse(words []string) (Expr, error) {
	tokens, err := Tokenize(words)
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens}
	if p.current().Type == TokenEOF {
		return nil, nil
	}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.current(); tok.Type != TokenEOF {
		if tok.Type == TokenRParen {
			return nil, p.errorf(tok, "unmatched ')'")
		}
		return nil, p.errorf(tok, "expected 'and' or 'or' between expressions")
	}
	return e, nil
}

func (p *Parser) current() Token {
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.pos]
	if tok.Type != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *Parser) errorf(tok Token, format string, args ...interface{}) error {
	return &SyntaxError{Pos: tok.Pos, Token: tok.Text, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) eofErr() error {
	return &SyntaxError{Pos: p.current().Pos, Msg: "unexpected end of expression"}
}

// parseOr handles OR expressions (lowest precedence, left-associative).
func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.current().Type == TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = OrExpr{L: left, R: right}
	}
	return left, nil
}

// parseAnd handles AND expressions, binding tighter than OR.
func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.current().Type == TokenAnd {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = AndExpr{L: left, R: right}
	}
	return left, nil
}

// parseNot handles NOT expressions. NOT is right-associative.
func (p *Parser) parseNot() (Expr, error) {
	if p.current().Type == TokenNot {
		p.advance()
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return NotExpr{X: x}, nil
	}
	return p.parsePrimary()
}

// parsePrimary handles parenthesized groups and primitive predicates.
func (p *Parser) parsePrimary() (Expr, error) {
	switch tok := p.current(); tok.Type {
	case TokenLParen:
		p.advance()
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if end := p.current(); end.Type != TokenRParen {
			if end.Type == TokenEOF {
				return nil, &SyntaxError{Pos: end.Pos, Msg: "missing closing ')'"}
			}
			return nil, p.errorf(end, "expected ')'")
		}
		p.advance()
		return e, nil
	case TokenEOF:
		return nil, p.eofErr()
	case TokenIdent:
		return p.parsePrimitive()
	default:
		return nil, p.errorf(tok, "unexpected token")
	}
}

// parsePrimitive recognizes the fixed leading-keyword predicate forms.
// The leading words are plain identifiers to the tokenizer; grammar
// context decides their meaning here.
func (p *Parser) parsePrimitive() (Expr, error) {
	tok := p.advance()
	switch tok.Text {
	case "node":
		dir, err := p.infixDirection()
		if err != nil {
			return nil, err
		}
		id, err := p.value("node")
		if err != nil {
			return nil, err
		}
		return NodeExpr{Dir: dir, ID: id}, nil

	case "user":
		dir, err := p.infixDirection()
		if err != nil {
			return nil, err
		}
		name, err := p.value("user")
		if err != nil {
			return nil, err
		}
		return UserExpr{Dir: dir, Name: name}, nil

	case "src", "dst":
		dir := DirSrc
		if tok.Text == "dst" {
			dir = DirDst
		}
		kind := p.current()
		if kind.Type != TokenIdent || (kind.Text != "node" && kind.Text != "user") {
			if kind.Type == TokenEOF {
				return nil, p.eofErr()
			}
			return nil, p.errorf(kind, "'%s' must be followed by 'node' or 'user'", tok.Text)
		}
		p.advance()
		value, err := p.value(kind.Text)
		if err != nil {
			return nil, err
		}
		if kind.Text == "node" {
			return NodeExpr{Dir: dir, ID: value}, nil
		}
		return UserExpr{Dir: dir, Name: value}, nil

	case "port":
		name, err := p.value("port")
		if err != nil {
			return nil, err
		}
		return PortExpr{Name: name}, nil

	case "hop_limit":
		return p.parseHopLimit()

	case "priority":
		level, err := p.value("priority")
		if err != nil {
			return nil, err
		}
		return PriorityExpr{Level: level}, nil

	case "want_ack":
		return WantAckExpr{}, nil

	case "encrypted":
		return EncryptedExpr{Encrypted: true}, nil

	case "plaintext":
		return EncryptedExpr{Encrypted: false}, nil

	case "is":
		next := p.current()
		if next.Type == TokenIdent && next.Text == "encrypted" {
			p.advance()
			return EncryptedExpr{Encrypted: true}, nil
		}
		if next.Type == TokenIdent && next.Text == "plaintext" {
			p.advance()
			return EncryptedExpr{Encrypted: false}, nil
		}
		if next.Type == TokenEOF {
			return nil, p.eofErr()
		}
		return nil, p.errorf(next, "'is' must be followed by 'encrypted' or 'plaintext'")

	default:
		return nil, p.errorf(tok, "unrecognized token")
	}
}

// infixDirection consumes an optional trailing direction keyword, the
// "node src == X" spelling of the directional forms.
func (p *Parser) infixDirection() (Direction, error) {
	tok := p.current()
	if tok.Type != TokenIdent {
		return DirAny, nil
	}
	switch tok.Text {
	case "src":
		p.advance()
		return DirSrc, nil
	case "dst":
		p.advance()
		return DirDst, nil
	}
	return DirAny, nil
}

// value consumes the single value token of a primitive, allowing an
// optional equality operator before it ("node == X" is sugar for
// "node X").
func (p *Parser) value(what string) (string, error) {
	if p.current().Type == TokenEqual {
		p.advance()
	}
	tok := p.current()
	if tok.Type == TokenEOF {
		return "", &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("'%s' requires a value", what)}
	}
	if tok.Type != TokenIdent {
		return "", p.errorf(tok, "'%s' requires a value", what)
	}
	p.advance()
	return tok.Text, nil
}

func (p *Parser) parseHopLimit() (Expr, error) {
	var cmp Comparator
	switch op := p.current(); op.Type {
	case TokenLess:
		cmp = CmpLess
	case TokenGreater:
		cmp = CmpGreater
	case TokenEqual:
		cmp = CmpEqual
	case TokenEOF:
		return nil, &SyntaxError{Pos: op.Pos, Msg: "'hop_limit' requires an operator and a value"}
	default:
		return nil, p.errorf(op, "invalid hop_limit operator")
	}
	p.advance()

	tok := p.current()
	if tok.Type == TokenEOF {
		return nil, &SyntaxError{Pos: tok.Pos, Msg: "'hop_limit' requires an operator and a value"}
	}
	if tok.Type != TokenIdent {
		return nil, p.errorf(tok, "invalid hop_limit value")
	}
	v, err := strconv.Atoi(tok.Text)
	if err != nil || v < 0 {
		return nil, p.errorf(tok, "invalid hop_limit value: expected a non-negative integer")
	}
	p.advance()
	return HopLimitExpr{Cmp: cmp, Value: v}, nil
}
