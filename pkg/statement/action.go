package statement

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrRuleDefinition is returned when an action cannot be built from
	// its configuration.
	ErrRuleDefinition = errors.New("invalid rule definition")
)

// Action is one configured step of the body-rewriting chain. Apply
// consumes a span sequence and produces the next one; implementations
// never mutate their input. Actions are immutable after construction and
// safe for concurrent use.
type Action interface {
	Apply(spans []Span) []Span
}

// Split separates every open span on runs of separator characters.
// The separator text is dropped unless the action is built with
// NewSplitKeep, in which case each separator run survives as its own
// open span.
type Split struct {
	re   *regexp.Regexp
	keep bool
}

// NewSplit builds a Split on a set of separator characters.
func NewSplit(separators string) (*Split, error) {
	return newSplit(separators, false)
}

// NewSplitKeep builds a Split that keeps separator runs as spans.
func NewSplitKeep(separators string) (*Split, error) {
	return newSplit(separators, true)
}

func newSplit(separators string, keep bool) (*Split, error) {
	if separators == "" {
		return nil, fmt.Errorf("%w: empty separator set", ErrRuleDefinition)
	}
	re, err := regexp.Compile(`[` + regexp.QuoteMeta(separators) + `]+`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuleDefinition, err)
	}
	return &Split{re: re, keep: keep}, nil
}

// NewSplitPattern builds a Split on an arbitrary delimiter pattern
// instead of a character set.
func NewSplitPattern(pattern string, keep bool) (*Split, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuleDefinition, err)
	}
	return &Split{re: re, keep: keep}, nil
}

func (a *Split) Apply(spans []Span) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Protected || s.Text == "" {
			out = append(out, s)
			continue
		}
		out = append(out, a.splitSpan(s.Text, nil)...)
	}
	return out
}

// splitSpan cuts text on every delimiter occurrence accepted by ok.
// A nil ok accepts every occurrence. The condition sees the fragments
// immediately adjacent to the candidate, bounded by the neighboring
// delimiter occurrences, and each occurrence is judged independently.
func (a *Split) splitSpan(text string, ok SplitCondition) []Span {
	locs := a.re.FindAllStringIndex(text, -1)
	var out []Span
	current := 0
	for i, loc := range locs {
		if ok != nil {
			beforeStart := 0
			if i > 0 {
				beforeStart = locs[i-1][1]
			}
			afterEnd := len(text)
			if i+1 < len(locs) {
				afterEnd = locs[i+1][0]
			}
			if !ok(text[beforeStart:loc[0]], text[loc[1]:afterEnd]) {
				continue
			}
		}
		if loc[0] > current {
			out = append(out, open(text[current:loc[0]]))
		}
		if a.keep {
			out = append(out, open(text[loc[0]:loc[1]]))
		}
		current = loc[1]
	}
	if current < len(text) {
		out = append(out, open(text[current:]))
	}
	return out
}

// SplitCondition gates a single candidate delimiter occurrence given the
// span content on either side of it.
type SplitCondition func(before, after string) bool

// MatchEither accepts a split point when the pattern matches the content
// on at least one side.
func MatchEither(pattern string) (SplitCondition, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuleDefinition, err)
	}
	return func(before, after string) bool {
		return re.MatchString(before) || re.MatchString(after)
	}, nil
}

// MatchNeither accepts a split point only when the pattern matches the
// content on neither side.
func MatchNeither(pattern string) (SplitCondition, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuleDefinition, err)
	}
	return func(before, after string) bool {
		return !re.MatchString(before) && !re.MatchString(after)
	}, nil
}

// ConditionalSplit behaves like Split, but each candidate delimiter
// occurrence is accepted independently by the condition. Occurrences the
// condition rejects are left in place as ordinary span text.
type ConditionalSplit struct {
	split *Split
	cond  SplitCondition
}

func NewConditionalSplit(separators string, cond SplitCondition) (*ConditionalSplit, error) {
	if cond == nil {
		return nil, fmt.Errorf("%w: nil split condition", ErrRuleDefinition)
	}
	split, err := newSplit(separators, false)
	if err != nil {
		return nil, err
	}
	return &ConditionalSplit{split: split, cond: cond}, nil
}

func (a *ConditionalSplit) Apply(spans []Span) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Protected || s.Text == "" {
			out = append(out, s)
			continue
		}
		out = append(out, a.split.splitSpan(s.Text, a.cond)...)
	}
	return out
}
