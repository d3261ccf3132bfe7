package header

import (
	"fmt"
	"regexp"
	"strings"
)

// Statement is one complete header-shape alternative: an ordered run of
// items compiled into a single anchored regular expression. A parser
// tries its statements in order and the first match wins.
type Statement struct {
	items []Item
	picks []Item
	re    *regexp.Regexp
}

// NewStatement compiles items into a statement using whitespace as the
// separator between them.
func NewStatement(items []Item) (*Statement, error) {
	return NewSeparatedStatement(items, "")
}

// NewSeparatedStatement compiles items into a statement using the given
// separator character set between them. An empty separator means
// whitespace.
func NewSeparatedStatement(items []Item, separator string) (*Statement, error) {
	if err := checkItems(items); err != nil {
		return nil, err
	}
	restr := `^` + separatedPattern(items, separator) + `$`
	re, err := regexp.Compile(restr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuleDefinition, err)
	}
	return &Statement{items: items, picks: pickItems(items), re: re}, nil
}

// NewFormattedStatement compiles items into a statement using an explicit
// placement template instead of uniform separators. The template is a
// regular expression with <N> standing for the Nth item, e.g.
// `<0> <1> <2> (\[<3>\])?: <4>`. Optional items must be enclosed in
// `(...)?` by the template author. Runs of spaces match any whitespace.
func NewFormattedStatement(items []Item, format string) (*Statement, error) {
	if err := checkItems(items); err != nil {
		return nil, err
	}
	tmp := regexp.MustCompile(` +`).ReplaceAllString(format, `\s+`)
	for i := len(items) - 1; i >= 0; i-- {
		replacer := fmt.Sprintf("<%d>", i)
		if !strings.Contains(tmp, replacer) {
			return nil, fmt.Errorf("%w: format has no replacer %s", ErrRuleDefinition, replacer)
		}
		tmp = strings.Replace(tmp, replacer, itemRegex(items[i]), 1)
	}
	re, err := regexp.Compile(`^` + tmp + `$`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuleDefinition, err)
	}
	return &Statement{items: items, picks: pickItems(items), re: re}, nil
}

func checkItems(items []Item) error {
	var mandatory, rest int
	for _, item := range items {
		if !item.Optional() {
			mandatory++
		}
		if item.ValueName() == ValueRest {
			rest++
		}
	}
	if mandatory == 0 {
		return fmt.Errorf("%w: at least one item must be non-optional", ErrRuleDefinition)
	}
	if rest == 0 {
		return fmt.Errorf("%w: one Rest item is mandatory", ErrRuleDefinition)
	}
	seen := map[string]bool{}
	for _, item := range pickItems(items) {
		name := item.MatchName()
		if seen[name] {
			return fmt.Errorf("%w: duplicate item name %q", ErrRuleDefinition, name)
		}
		seen[name] = true
	}
	return nil
}

// optionalItem marks members of an optional group optional themselves,
// so an absent group does not fail value extraction.
type optionalItem struct {
	Item
}

func (optionalItem) Optional() bool { return true }

// pickItems flattens groups and drops dummies, yielding the items that
// extract values from a match.
func pickItems(items []Item) []Item {
	var picks []Item
	for _, item := range items {
		if g, ok := item.(*Group); ok {
			members := pickItems(g.Members())
			if g.Optional() {
				for _, m := range members {
					picks = append(picks, optionalItem{m})
				}
				continue
			}
			picks = append(picks, members...)
			continue
		}
		if item.Dummy() {
			continue
		}
		picks = append(picks, item)
	}
	return picks
}

// separatedPattern joins item patterns with a separator pattern,
// attaching each separator to its neighboring optional item so that the
// whole run of (item, separator) disappears together when absent.
func separatedPattern(items []Item, separator string) string {
	sep := `\s+`
	if separator != "" {
		sep = `[` + regexp.QuoteMeta(separator) + `]+`
	}
	sepOpt := `(` + sep + `)?`

	firstMandatory := 0
	for i, item := range items {
		if !item.Optional() {
			firstMandatory = i
			break
		}
	}
	var parts []string
	for i, item := range items {
		p := itemRegex(item)
		switch {
		case i < firstMandatory:
			p = p + sep
		case i == firstMandatory:
			// turning point: separators attach on the other side
		default:
			p = sep + p
		}
		if item.Optional() {
			p = `(` + p + `)?`
		}
		parts = append(parts, p)
	}
	return sepOpt + strings.Join(parts, "") + sepOpt
}

func itemRegex(item Item) string {
	if item.Dummy() {
		return `(` + item.Pattern() + `)`
	}
	return `(?P<` + item.MatchName() + `>` + item.Pattern() + `)`
}

// Match attempts an anchored match against line. On success it returns
// the extracted values keyed by value name. A false return means this
// statement's shape does not fit the line.
func (s *Statement) Match(line string) (map[string]any, bool, error) {
	m := s.re.FindStringSubmatch(line)
	if m == nil {
		return nil, false, nil
	}
	captured := map[string]string{}
	for i, name := range s.re.SubexpNames() {
		if name == "" || i >= len(m) {
			continue
		}
		captured[name] = m[i]
	}
	values := map[string]any{}
	for _, item := range s.picks {
		text := captured[item.MatchName()]
		if text == "" && item.Optional() {
			continue
		}
		val, err := item.Pick(text)
		if err != nil {
			return nil, false, fmt.Errorf("item %q: %w", item.MatchName(), err)
		}
		values[item.ValueName()] = val
	}
	return values, true, nil
}

// Pattern exposes the compiled expression, mostly for debugging rules.
func (s *Statement) Pattern() string {
	return s.re.String()
}
