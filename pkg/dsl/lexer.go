package dsl

import (
	"fmt"
	"io"
	"strings"
	"unicode"
)

var keywords = map[string]tokenType{
	"header":     tHeader,
	"action":     tAction,
	"separator":  tSeparator,
	"year":       tYear,
	"headerless": tHeaderless,
	"noise":      tNoise,
	"optional":   tOptional,
	"dummy":      tDummy,
}

type lexer struct {
	buf       *lexBuf
	out       chan token
	line      int
	lineStart int
}

func lex(r io.RuneReader) *tokenStream {
	l := &lexer{
		buf:  newLexBuf(r),
		out:  make(chan token),
		line: 1,
	}
	go l.run()
	return newTokenStream(l.out)
}

func lexString(script string) *tokenStream {
	return lex(strings.NewReader(script))
}

func (l *lexer) col() int {
	return l.buf.pos - l.lineStart + 1
}

func (l *lexer) emit(typ tokenType, text string, col int) {
	l.out <- token{typ: typ, text: text, line: l.line, col: col}
}

func (l *lexer) errorf(col int, msg string, args ...any) {
	l.emit(tErr, fmt.Sprintf(msg, args...), col)
}

func (l *lexer) run() {
	defer close(l.out)
	for {
		if err := l.buf.skipWhitespace(); err != nil {
			if err != io.EOF {
				l.errorf(l.col(), "read failure: %v", err)
			}
			return
		}
		col := l.col()
		c, err := l.buf.read()
		if err != nil {
			if err != io.EOF {
				l.errorf(col, "read failure: %v", err)
			}
			return
		}
		switch {
		case c == '\n':
			l.buf.discard()
			l.emit(tEol, "", col)
			l.line++
			l.lineStart = l.buf.pos
		case c == '#':
			if err := l.buf.skipComment(); err != nil && err != io.EOF {
				l.errorf(col, "read failure: %v", err)
				return
			}
		case c == '(':
			l.buf.discard()
			l.emit(tOpenParen, "", col)
		case c == ')':
			l.buf.discard()
			l.emit(tCloseParen, "", col)
		case c == ',':
			l.buf.discard()
			l.emit(tComma, "", col)
		case c == ':':
			l.buf.discard()
			l.emit(tColon, "", col)
		case c == '"':
			if !l.lexQuoted(col) {
				return
			}
		default:
			l.buf.unread()
			if !l.lexWord(col) {
				return
			}
		}
	}
}

// lexQuoted reads to the closing quote. Escaped quotes and backslashes
// collapse, any other escape passes through untouched so patterns keep
// their character classes.
func (l *lexer) lexQuoted(col int) bool {
	l.buf.discard()
	var text strings.Builder
	for {
		c, err := l.buf.read()
		if err != nil {
			l.errorf(col, "unterminated string")
			return false
		}
		switch c {
		case '"':
			l.buf.discard()
			l.emit(tString, text.String(), col)
			return true
		case '\n':
			l.errorf(col, "unterminated string")
			return false
		case '\\':
			next, err := l.buf.read()
			if err != nil {
				l.errorf(col, "unterminated string")
				return false
			}
			switch next {
			case '"', '\\':
				text.WriteRune(next)
			case 'n':
				text.WriteRune('\n')
			case 't':
				text.WriteRune('\t')
			default:
				text.WriteRune('\\')
				text.WriteRune(next)
			}
		default:
			text.WriteRune(c)
		}
	}
}

func (l *lexer) lexWord(col int) bool {
	if err := l.buf.readWord(); err != nil && err != io.EOF {
		l.errorf(col, "read failure: %v", err)
		return false
	}
	word := l.buf.consume()
	if len(word) == 0 {
		c, _ := l.buf.read()
		l.errorf(col, "unexpected character %q", c)
		return false
	}
	if typ, ok := keywords[word]; ok {
		l.emit(typ, word, col)
		return true
	}
	if isInt(word) {
		l.emit(tInt, word, col)
		return true
	}
	l.emit(tIdentifier, word, col)
	return true
}

func isInt(word string) bool {
	for _, c := range word {
		if !unicode.IsDigit(c) {
			return false
		}
	}
	return len(word) > 0
}
