// Package statement segments the free-format body of a log line into an
// ordered word sequence.
//
// The working unit is a Span: a contiguous piece of body text that is
// either still open for rewriting or protected. An ordered chain of
// Actions is folded over the span sequence; each action consumes one
// sequence and produces the next. Once a span is protected it passes
// through every later action untouched, which is what lets a rule set
// split on ":" without tearing apart an IPv6 literal it fixed earlier.
package statement

import "strings"

// Span is a contiguous run of body text. Protected spans are final:
// no later action may split, shrink, or remove them.
type Span struct {
	Text      string
	Protected bool
}

func open(text string) Span {
	return Span{Text: text}
}

func protected(text string) Span {
	return Span{Text: text, Protected: true}
}

// Concat rebuilds the working string from a span sequence.
// Every action preserves the invariant that Concat reproduces its input
// text exactly, minus only text an action explicitly dropped.
func Concat(spans []Span) string {
	var buf strings.Builder
	for _, s := range spans {
		buf.WriteString(s.Text)
	}
	return buf.String()
}

// Words flattens a span sequence into the final word list, discarding
// empty spans.
func Words(spans []Span) []string {
	words := make([]string, 0, len(spans))
	for _, s := range spans {
		if s.Text == "" {
			continue
		}
		words = append(words, s.Text)
	}
	return words
}
