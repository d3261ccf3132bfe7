package header

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateParts is the value of a date-shaped item before a full timestamp
// is assembled.
type DateParts struct {
	Year  int
	Month int
	Day   int
}

// TimeParts is the value of a time-of-day-shaped item. Zone is nil when
// the matched text carried no offset.
type TimeParts struct {
	Hour        int
	Minute      int
	Second      int
	Microsecond int
	Zone        *time.Location
}

// ISODate matches dates like 2112-09-03.
type ISODate struct {
	baseItem
}

func NewISODate(opt ...ItemOpt) *ISODate {
	return &ISODate{baseItem: applyOpts(opt)}
}

func (*ISODate) MatchName() string { return "iso_date" }
func (*ISODate) ValueName() string { return ValueDate }
func (*ISODate) Pattern() string   { return `\d{4}-\d{2}-\d{2}` }

func (*ISODate) Pick(captured string) (any, error) {
	return parseISODate(captured)
}

func parseISODate(s string) (DateParts, error) {
	var d DateParts
	if len(s) != 10 {
		return d, fmt.Errorf("%w: bad date %q", ErrRuleDefinition, s)
	}
	var err error
	if d.Year, err = strconv.Atoi(s[0:4]); err != nil {
		return d, err
	}
	if d.Month, err = strconv.Atoi(s[5:7]); err != nil {
		return d, err
	}
	if d.Day, err = strconv.Atoi(s[8:10]); err != nil {
		return d, err
	}
	return d, nil
}

// ISOTime matches times of day like 11:22:33, optionally with decimal
// seconds and a zone offset: 11:22:33.012345+09:00.
type ISOTime struct {
	baseItem
}

func NewISOTime(opt ...ItemOpt) *ISOTime {
	return &ISOTime{baseItem: applyOpts(opt)}
}

func (*ISOTime) MatchName() string { return "iso_time" }
func (*ISOTime) ValueName() string { return ValueTime }

func (*ISOTime) Pattern() string {
	return `\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:?\d{2})?`
}

func (*ISOTime) Pick(captured string) (any, error) {
	return parseISOTime(captured)
}

func parseISOTime(s string) (TimeParts, error) {
	var t TimeParts
	if len(s) < 8 {
		return t, fmt.Errorf("%w: bad time %q", ErrRuleDefinition, s)
	}
	var err error
	if t.Hour, err = strconv.Atoi(s[0:2]); err != nil {
		return t, err
	}
	if t.Minute, err = strconv.Atoi(s[3:5]); err != nil {
		return t, err
	}
	if t.Second, err = strconv.Atoi(s[6:8]); err != nil {
		return t, err
	}
	rest := s[8:]
	if strings.HasPrefix(rest, ".") {
		end := 1
		for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
			end++
		}
		if t.Microsecond, err = decimalToMicroseconds(rest[1:end]); err != nil {
			return t, err
		}
		rest = rest[end:]
	}
	if rest != "" {
		if t.Zone, err = parseZoneOffset(rest); err != nil {
			return t, err
		}
	}
	return t, nil
}

// ISODateTime matches full RFC 3339 style timestamps like
// 2112-09-03T11:22:33.012345+09:00 and yields a complete timestamp.
type ISODateTime struct {
	baseItem
}

func NewISODateTime(opt ...ItemOpt) *ISODateTime {
	return &ISODateTime{baseItem: applyOpts(opt)}
}

func (*ISODateTime) MatchName() string { return "iso_datetime" }
func (*ISODateTime) ValueName() string { return ValueTimestamp }

func (*ISODateTime) Pattern() string {
	return `\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:?\d{2})?`
}

func (*ISODateTime) Pick(captured string) (any, error) {
	d, err := parseISODate(captured[:10])
	if err != nil {
		return nil, err
	}
	t, err := parseISOTime(captured[11:])
	if err != nil {
		return nil, err
	}
	return combine(d, t, time.Local), nil
}

func combine(d DateParts, t TimeParts, loc *time.Location) time.Time {
	if t.Zone != nil {
		loc = t.Zone
	}
	return time.Date(d.Year, time.Month(d.Month), d.Day,
		t.Hour, t.Minute, t.Second, t.Microsecond*1000, loc)
}

// ConcatDate matches dates without separators, like 20190225.
// With the noCentury option the year is two digits: 190225.
type ConcatDate struct {
	baseItem
	noCentury bool
}

func NewConcatDate(noCentury bool, opt ...ItemOpt) *ConcatDate {
	return &ConcatDate{baseItem: applyOpts(opt), noCentury: noCentury}
}

func (*ConcatDate) MatchName() string { return "date_concat" }
func (*ConcatDate) ValueName() string { return ValueDate }

func (c *ConcatDate) Pattern() string {
	if c.noCentury {
		return `[0-9]{6}`
	}
	return `[0-9]{8}`
}

func (c *ConcatDate) Pick(captured string) (any, error) {
	var d DateParts
	var err error
	if c.noCentury {
		yy, err := strconv.Atoi(captured[0:2])
		if err != nil {
			return nil, err
		}
		d.Year = time.Now().Year()/100*100 + yy
		captured = captured[2:]
	} else {
		if d.Year, err = strconv.Atoi(captured[0:4]); err != nil {
			return nil, err
		}
		captured = captured[4:]
	}
	if d.Month, err = strconv.Atoi(captured[0:2]); err != nil {
		return nil, err
	}
	if d.Day, err = strconv.Atoi(captured[2:4]); err != nil {
		return nil, err
	}
	return d, nil
}

// ConcatTime matches times without separators, like 010203 for 01:02:03.
type ConcatTime struct {
	baseItem
}

func NewConcatTime(opt ...ItemOpt) *ConcatTime {
	return &ConcatTime{baseItem: applyOpts(opt)}
}

func (*ConcatTime) MatchName() string { return "time_concat" }
func (*ConcatTime) ValueName() string { return ValueTime }
func (*ConcatTime) Pattern() string   { return `[0-9]{6}` }

func (*ConcatTime) Pick(captured string) (any, error) {
	var t TimeParts
	var err error
	if t.Hour, err = strconv.Atoi(captured[0:2]); err != nil {
		return nil, err
	}
	if t.Minute, err = strconv.Atoi(captured[2:4]); err != nil {
		return nil, err
	}
	if t.Second, err = strconv.Atoi(captured[4:6]); err != nil {
		return nil, err
	}
	return t, nil
}

// Group treats an ordered run of items as one unit, typically to make
// several items optional together or to use a different separator set
// inside the group. A group extracts no value of its own; its members do.
type Group struct {
	baseItem
	items     []Item
	separator string
}

// NewGroup builds an item group with the default whitespace separator.
func NewGroup(items []Item, opt ...ItemOpt) *Group {
	return NewSeparatedGroup(items, "", opt...)
}

// NewSeparatedGroup builds an item group whose members are joined with
// the given separator character set instead of whitespace.
func NewSeparatedGroup(items []Item, separator string, opt ...ItemOpt) *Group {
	b := applyOpts(opt)
	b.dummy = true
	return &Group{baseItem: b, items: items, separator: separator}
}

func (g *Group) MatchName() string { return "" }
func (g *Group) ValueName() string { return "" }

func (g *Group) Pattern() string {
	return separatedPattern(g.items, g.separator)
}

func (g *Group) Members() []Item {
	return g.items
}

func (g *Group) Pick(string) (any, error) {
	return nil, nil
}
