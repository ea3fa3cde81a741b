package filter

// TokenType represents the type of a filter expression token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenLParen
	TokenRParen
	TokenLess
	TokenGreater
	TokenEqual // "=" and "==" are the same operator
	TokenAnd
	TokenOr
	TokenNot
)

// Token is one classified element of a filter expression. Pos is the
// index of the shell word the token came from.
type Token struct {
	Type TokenType
	Text string
	Pos  int
}

// Tokenize classifies already shell-split words into a token stream
// ending with an EOF token. Parentheses are recognized wherever they
// appear inside a word, so "(src" and "A)" split cleanly. Comparison
// operators and the reserved keywords "and", "or", "not" (lowercase)
// are recognized verbatim; every other word is an identifier whose
// meaning is decided by the parser's grammar context. Quoted literals
// arrive already unquoted by the shell and are identifiers too.
func Tokenize(words []string) ([]Token, error) {
	var tokens []Token
	for i, w := range words {
		if w == "" {
			return nil, &SyntaxError{Pos: i, Msg: "empty token"}
		}
		start := 0
		for j := 0; j < len(w); j++ {
			if w[j] != '(' && w[j] != ')' {
				continue
			}
			if j > start {
				tokens = append(tokens, classify(w[start:j], i))
			}
			typ := TokenLParen
			if w[j] == ')' {
				typ = TokenRParen
			}
			tokens = append(tokens, Token{Type: typ, Text: string(w[j]), Pos: i})
			start = j + 1
		}
		if start < len(w) {
			tokens = append(tokens, classify(w[start:], i))
		}
	}
	tokens = append(tokens, Token{Type: TokenEOF, Pos: len(words)})
	return tokens, nil
}

func classify(text string, pos int) Token {
	switch text {
	case "<":
		return Token{Type: TokenLess, Text: text, Pos: pos}
	case ">":
		return Token{Type: TokenGreater, Text: text, Pos: pos}
	case "=", "==":
		return Token{Type: TokenEqual, Text: text, Pos: pos}
	case "and":
		return Token{Type: TokenAnd, Text: text, Pos: pos}
	case "or":
		return Token{Type: TokenOr, Text: text, Pos: pos}
	case "not":
		return Token{Type: TokenNot, Text: text, Pos: pos}
	}
	return Token{Type: TokenIdent, Text: text, Pos: pos}
}
