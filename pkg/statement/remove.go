package statement

import (
	"fmt"
	"regexp"
)

// Remove deletes every non-overlapping match of any pattern from each
// open span. No span is produced for the deleted text; the remaining
// fragments stay open in their original order.
type Remove struct {
	res []*regexp.Regexp
	max int
}

func NewRemove(patterns ...string) (*Remove, error) {
	return newRemove(0, patterns)
}

// NewRemovePartial removes only the first count matches per span,
// for delimiters that should be stripped once per token rather than
// globally.
func NewRemovePartial(count int, patterns ...string) (*Remove, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: removal count must be positive", ErrRuleDefinition)
	}
	return newRemove(count, patterns)
}

func newRemove(max int, patterns []string) (*Remove, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%w: no remove patterns", ErrRuleDefinition)
	}
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRuleDefinition, err)
		}
		res[i] = re
	}
	return &Remove{res: res, max: max}, nil
}

func (a *Remove) Apply(spans []Span) []Span {
	for _, re := range a.res {
		out := make([]Span, 0, len(spans))
		for _, s := range spans {
			if s.Protected || s.Text == "" {
				out = append(out, s)
				continue
			}
			out = append(out, a.removeSpan(re, s.Text)...)
		}
		spans = out
	}
	return spans
}

func (a *Remove) removeSpan(re *regexp.Regexp, text string) []Span {
	locs := re.FindAllStringIndex(text, a.limit())
	if len(locs) == 0 {
		return []Span{open(text)}
	}
	var out []Span
	current := 0
	for _, loc := range locs {
		if loc[0] == loc[1] {
			continue
		}
		if loc[0] > current {
			out = append(out, open(text[current:loc[0]]))
		}
		current = loc[1]
	}
	if current < len(text) {
		out = append(out, open(text[current:]))
	}
	return out
}

func (a *Remove) limit() int {
	if a.max == 0 {
		return -1
	}
	return a.max
}
