package dsl

import "fmt"

type tokenType int

const (
	tErr tokenType = iota
	tEol
	tHeader
	tAction
	tSeparator
	tYear
	tHeaderless
	tNoise
	tOptional
	tDummy
	tIdentifier
	tString
	tInt
	tOpenParen
	tCloseParen
	tComma
	tColon
)

var tokenString = map[tokenType]string{
	tErr:        "error",
	tEol:        "end of line",
	tHeader:     "'header'",
	tAction:     "'action'",
	tSeparator:  "'separator'",
	tYear:       "'year'",
	tHeaderless: "'headerless'",
	tNoise:      "'noise'",
	tOptional:   "'optional'",
	tDummy:      "'dummy'",
	tIdentifier: "identifier",
	tString:     "string",
	tInt:        "integer",
	tOpenParen:  "'('",
	tCloseParen: "')'",
	tComma:      "','",
	tColon:      "':'",
}

func (t tokenType) String() string {
	if s, ok := tokenString[t]; ok {
		return s
	}
	return fmt.Sprintf("unknown token %d", int(t))
}

type token struct {
	typ  tokenType
	text string
	line int
	col  int
}

func (t token) String() string {
	switch t.typ {
	case tIdentifier, tString, tInt, tErr:
		return fmt.Sprintf("%s %q at line %d col %d", t.typ, t.text, t.line, t.col)
	default:
		return fmt.Sprintf("%s at line %d col %d", t.typ, t.line, t.col)
	}
}

// tokenStream wraps the lexer channel with single-token lookahead.
type tokenStream struct {
	tokens  <-chan token
	held    token
	hasHeld bool
}

func newTokenStream(tokens <-chan token) *tokenStream {
	return &tokenStream{tokens: tokens}
}

func (s *tokenStream) next() (token, bool) {
	if s.hasHeld {
		s.hasHeld = false
		return s.held, true
	}
	t, ok := <-s.tokens
	return t, ok
}

func (s *tokenStream) pushBack(t token) {
	s.held = t
	s.hasHeld = true
}
