package statement

import "strings"

// Parser segments the statement (body) part of a log line into an
// ordered word sequence by folding its action chain over a span
// sequence. It is immutable after construction and safe for concurrent
// use; all per-line state lives in the span sequence.
type Parser struct {
	actions []Action
	noise   string
}

// ParserOpt adjusts parser construction.
type ParserOpt func(*Parser)

// WithNoise designates characters whose spans count as pure separator
// noise: a surviving span consisting solely of them is discarded from
// the word list. Defaults to whitespace.
func WithNoise(noise string) ParserOpt {
	return func(p *Parser) {
		p.noise = noise
	}
}

// NewParser builds a statement parser over the given ordered actions.
func NewParser(actions []Action, opt ...ParserOpt) *Parser {
	p := &Parser{actions: actions, noise: " \t"}
	for _, o := range opt {
		o(p)
	}
	return p
}

// Apply runs the action chain over a single open span holding the whole
// body, returning the final span sequence. Most callers want Tokenize;
// Apply exposes the intermediate form for per-action testing.
func (p *Parser) Apply(body string) []Span {
	spans := []Span{open(body)}
	for _, act := range p.actions {
		spans = act.Apply(spans)
	}
	return spans
}

// Tokenize converts the body into its final word list.
func (p *Parser) Tokenize(body string) []string {
	spans := p.Apply(body)
	words := make([]string, 0, len(spans))
	for _, s := range spans {
		if s.Text == "" {
			continue
		}
		if !s.Protected && strings.Trim(s.Text, p.noise) == "" {
			continue
		}
		words = append(words, s.Text)
	}
	return words
}
