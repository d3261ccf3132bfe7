package statement

import (
	"fmt"
	"net/netip"
	"regexp"
	"sort"
	"strings"
)

// Fix protects matched substrings from all later actions. Every
// non-overlapping match of any pattern becomes one protected span; the
// surrounding text stays open for further rewriting.
type Fix struct {
	res []*regexp.Regexp
}

func NewFix(patterns ...string) (*Fix, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%w: no fix patterns", ErrRuleDefinition)
	}
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRuleDefinition, err)
		}
		res[i] = re
	}
	return &Fix{res: res}, nil
}

func (a *Fix) Apply(spans []Span) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Protected || s.Text == "" {
			out = append(out, s)
			continue
		}
		out = append(out, a.fixSpan(s.Text)...)
	}
	return out
}

func (a *Fix) fixSpan(text string) []Span {
	for _, re := range a.res {
		locs := re.FindAllStringIndex(text, -1)
		if len(locs) == 0 {
			continue
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
			out = append(out, protected(text[loc[0]:loc[1]]))
			current = loc[1]
		}
		if current < len(text) {
			out = append(out, open(text[current:]))
		}
		return out
	}
	return []Span{open(text)}
}

// FixIP protects IPv4 and IPv6 literals, including zone suffixes like
// fe80::1%eth0 and, optionally, CIDR network shapes like 192.0.2.0/24.
// A span is protected only when its whole text is an address; partial
// recognition inside a span belongs to earlier Split steps.
type FixIP struct {
	address bool
	network bool
}

// NewFixIP recognizes both plain addresses and network shapes.
func NewFixIP() *FixIP {
	return &FixIP{address: true, network: true}
}

// NewFixIPConfig selects which shapes to recognize.
func NewFixIPConfig(address, network bool) *FixIP {
	return &FixIP{address: address, network: network}
}

func (a *FixIP) Apply(spans []Span) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if !s.Protected && s.Text != "" && a.isIP(s.Text) {
			out = append(out, protected(s.Text))
			continue
		}
		out = append(out, s)
	}
	return out
}

func (a *FixIP) isIP(text string) bool {
	// cheap pre-check, address parsing costs more than this scan
	if !strings.ContainsAny(text, ".:") {
		return false
	}
	if a.address {
		if _, err := netip.ParseAddr(text); err == nil {
			return true
		}
	}
	if a.network && strings.Contains(text, "/") {
		if _, err := netip.ParsePrefix(text); err == nil {
			return true
		}
	}
	return false
}

// FixPartial protects sub-strings mid-span without fixing the rest of
// the token. The first matching pattern's first match per span is used;
// when the pattern has named groups listed in groups, only those captures
// are protected, otherwise the whole match is.
type FixPartial struct {
	res    []*regexp.Regexp
	groups []string
	drop   bool
}

func NewFixPartial(groups []string, patterns ...string) (*FixPartial, error) {
	return newFixPartial(groups, false, patterns)
}

// NewFixPartialDrop behaves like NewFixPartial but discards the text
// around the protected captures instead of leaving it open.
func NewFixPartialDrop(groups []string, patterns ...string) (*FixPartial, error) {
	return newFixPartial(groups, true, patterns)
}

func newFixPartial(groups []string, drop bool, patterns []string) (*FixPartial, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%w: no fix patterns", ErrRuleDefinition)
	}
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRuleDefinition, err)
		}
		res[i] = re
	}
	return &FixPartial{res: res, groups: groups, drop: drop}, nil
}

func (a *FixPartial) Apply(spans []Span) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Protected || s.Text == "" {
			out = append(out, s)
			continue
		}
		out = append(out, a.fixSpan(s.Text)...)
	}
	return out
}

func (a *FixPartial) fixSpan(text string) []Span {
	for _, re := range a.res {
		m := re.FindStringSubmatchIndex(text)
		if m == nil {
			continue
		}
		regions := a.protectedRegions(re, m)
		if len(regions) == 0 {
			continue
		}
		var out []Span
		current := 0
		for _, r := range regions {
			if r[0] > current {
				if !a.drop {
					out = append(out, open(text[current:r[0]]))
				}
			}
			out = append(out, protected(text[r[0]:r[1]]))
			current = r[1]
		}
		if current < len(text) && !a.drop {
			out = append(out, open(text[current:]))
		}
		return out
	}
	return []Span{open(text)}
}

// protectedRegions resolves the byte ranges to protect from a submatch
// index vector, ordered by position.
func (a *FixPartial) protectedRegions(re *regexp.Regexp, m []int) [][2]int {
	var regions [][2]int
	if len(a.groups) == 0 {
		regions = append(regions, [2]int{m[0], m[1]})
		return regions
	}
	names := re.SubexpNames()
	for _, g := range a.groups {
		for i, name := range names {
			if name != g {
				continue
			}
			if 2*i+1 < len(m) && m[2*i] >= 0 {
				regions = append(regions, [2]int{m[2*i], m[2*i+1]})
			}
		}
	}
	sort.Slice(regions, func(i, j int) bool {
		return regions[i][0] < regions[j][0]
	})
	return regions
}

// FixParenthesis protects balanced bracket pairs and their entire
// enclosed content as one span, respecting nesting. Each pair of left
// and right markers may be multi-character, like ["<!--", "-->"].
type FixParenthesis struct {
	left    string
	right   string
	include bool
}

// NewFixParenthesis protects the content between left and right,
// excluding the bracket characters themselves.
func NewFixParenthesis(left, right string) (*FixParenthesis, error) {
	return newFixParenthesis(left, right, false)
}

// NewFixParenthesisInclusive protects the brackets along with the
// content.
func NewFixParenthesisInclusive(left, right string) (*FixParenthesis, error) {
	return newFixParenthesis(left, right, true)
}

func newFixParenthesis(left, right string, include bool) (*FixParenthesis, error) {
	if left == "" || right == "" {
		return nil, fmt.Errorf("%w: empty parenthesis marker", ErrRuleDefinition)
	}
	return &FixParenthesis{left: left, right: right, include: include}, nil
}

func (a *FixParenthesis) Apply(spans []Span) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Protected || s.Text == "" {
			out = append(out, s)
			continue
		}
		out = append(out, a.fixSpan(s.Text)...)
	}
	return out
}

// fixSpan protects every outermost balanced pair in the span.
// Identical left and right markers degrade to non-nested pairing.
func (a *FixParenthesis) fixSpan(text string) []Span {
	var out []Span
	current := 0
	pos := 0
	for pos < len(text) {
		start := strings.Index(text[pos:], a.left)
		if start < 0 {
			break
		}
		start += pos
		end := a.findClose(text, start)
		if end < 0 {
			break
		}
		protStart, protEnd := start, end
		if !a.include {
			protStart += len(a.left)
			protEnd -= len(a.right)
		}
		if current < protStart {
			out = append(out, open(text[current:protStart]))
		}
		if protStart < protEnd {
			out = append(out, protected(text[protStart:protEnd]))
		}
		if !a.include && protEnd < end {
			out = append(out, open(text[protEnd:end]))
		}
		current = end
		pos = end
	}
	if current < len(text) {
		out = append(out, open(text[current:]))
	}
	if len(out) == 0 {
		return []Span{open(text)}
	}
	return out
}

// findClose returns the index just past the right marker closing the
// pair opened at start, or -1 when unbalanced.
func (a *FixParenthesis) findClose(text string, start int) int {
	depth := 1
	pos := start + len(a.left)
	nested := a.left != a.right
	for pos < len(text) {
		switch {
		case strings.HasPrefix(text[pos:], a.right):
			depth--
			pos += len(a.right)
			if depth == 0 {
				return pos
			}
		case nested && strings.HasPrefix(text[pos:], a.left):
			depth++
			pos += len(a.left)
		default:
			pos++
		}
	}
	return -1
}
