// Package header recognizes the fixed-shape prefix of a log line.
//
// A header rule is an ordered list of Items. Each Item matches one
// variable part of the prefix (a day number, a month abbreviation, a
// hostname) and extracts a typed value for it. A Statement assembles the
// Items into a single anchored regular expression, and a Parser tries an
// ordered list of Statements against each line, first match wins.
package header

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrRuleDefinition is returned when a rule set is structurally
	// invalid and no parser can be built from it.
	ErrRuleDefinition = errors.New("invalid rule definition")
)

// Value names with timestamp assembly significance.
// Items binding one of these feed the assembled @timestamp value.
const (
	ValueTimestamp   = "timestamp"
	ValueDate        = "date"
	ValueTime        = "time"
	ValueYear        = "year"
	ValueMonth       = "month"
	ValueDay         = "day"
	ValueHour        = "hour"
	ValueMinute      = "minute"
	ValueSecond      = "second"
	ValueMicrosecond = "microsecond"
	ValueTimeZone    = "tz"
	ValueRest        = "message"
)

// Item is a single named terminal matcher within a header Statement.
// Implementations are immutable and shared read-only across matches.
type Item interface {
	// MatchName is the regex capture group name for this item.
	// It must be unique within one Statement.
	MatchName() string
	// ValueName keys the extracted value in the parse result.
	ValueName() string
	// Pattern returns the regular expression fragment for this item,
	// without the enclosing named group.
	Pattern() string
	// Optional items may be absent from the line without failing the match.
	Optional() bool
	// Dummy items participate in matching but extract no value.
	Dummy() bool
	// Pick converts the captured text for this item into its typed value.
	Pick(captured string) (any, error)
}

type baseItem struct {
	optional bool
	dummy    bool
}

func (b baseItem) Optional() bool { return b.optional }
func (b baseItem) Dummy() bool    { return b.dummy }

// ItemOpt adjusts optional item construction flags.
type ItemOpt func(*baseItem)

// Opt marks an item as optional: the line may omit it.
func Opt() ItemOpt {
	return func(b *baseItem) {
		b.optional = true
	}
}

// Dummy marks an item as matching without extracting a value.
// Useful when the same value appears twice in one header shape.
func Dummy() ItemOpt {
	return func(b *baseItem) {
		b.dummy = true
	}
}

func applyOpts(opt []ItemOpt) baseItem {
	var b baseItem
	for _, o := range opt {
		o(&b)
	}
	return b
}

// Rest matches the unconstrained remainder of the line, greedy.
// Exactly one Rest item is mandatory in every Statement; its capture
// becomes the body handed to the statement parser.
type Rest struct {
	baseItem
}

func NewRest() *Rest {
	return &Rest{}
}

func (*Rest) MatchName() string { return ValueRest }
func (*Rest) ValueName() string { return ValueRest }
func (*Rest) Pattern() string   { return `.*` }

func (*Rest) Pick(captured string) (any, error) {
	return captured, nil
}

var monthNames = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// MonthAbbreviation matches three-letter month names like "Jan" and
// yields the month number.
type MonthAbbreviation struct {
	baseItem
}

func NewMonthAbbreviation(opt ...ItemOpt) *MonthAbbreviation {
	return &MonthAbbreviation{baseItem: applyOpts(opt)}
}

func (*MonthAbbreviation) MatchName() string { return "month_abb" }
func (*MonthAbbreviation) ValueName() string { return ValueMonth }

func (*MonthAbbreviation) Pattern() string {
	p := monthNames[0]
	for _, m := range monthNames[1:] {
		p += "|" + m
	}
	return p
}

func (*MonthAbbreviation) Pick(captured string) (any, error) {
	for i, m := range monthNames {
		if m == captured {
			return i + 1, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown month %q", ErrRuleDefinition, captured)
}

// Digit is a named item matching one integer value.
type Digit struct {
	baseItem
	name string
}

func NewDigit(name string, opt ...ItemOpt) *Digit {
	return &Digit{baseItem: applyOpts(opt), name: name}
}

func (d *Digit) MatchName() string { return d.name }
func (d *Digit) ValueName() string { return d.name }
func (*Digit) Pattern() string     { return `\d+` }

func (d *Digit) Pick(captured string) (any, error) {
	return strconv.Atoi(captured)
}

// String is a named item matching an alphanumeric token.
// Additional allowed symbol characters may be supplied.
type String struct {
	baseItem
	name    string
	pattern string
}

func NewString(name string, opt ...ItemOpt) *String {
	return NewSymbolString(name, "", opt...)
}

func NewSymbolString(name, symbols string, opt ...ItemOpt) *String {
	pattern := `[a-zA-Z0-9]+`
	if symbols != "" {
		// a literal '-' must sit at the end of the character class
		if strings.Contains(symbols, "-") {
			symbols = strings.ReplaceAll(symbols, "-", "") + "-"
		}
		pattern = `[a-zA-Z0-9` + regexp.QuoteMeta(symbols) + `]+`
	}
	return &String{baseItem: applyOpts(opt), name: name, pattern: pattern}
}

func (s *String) MatchName() string { return s.name }
func (s *String) ValueName() string { return s.name }
func (s *String) Pattern() string   { return s.pattern }

func (s *String) Pick(captured string) (any, error) {
	return captured, nil
}

// Hostname is a named item matching a hostname or address token.
// The shape is deliberately loose; hosts in the wild carry dots, colons,
// and dashes. Use UserItem for stricter shapes.
type Hostname struct {
	baseItem
	name string
}

func NewHostname(name string, opt ...ItemOpt) *Hostname {
	return &Hostname{baseItem: applyOpts(opt), name: name}
}

func (h *Hostname) MatchName() string { return h.name }
func (h *Hostname) ValueName() string { return h.name }

func (*Hostname) Pattern() string {
	return `([a-zA-Z0-9:][a-zA-Z0-9:._-]*[a-zA-Z0-9]+)|([a-zA-Z0-9])`
}

func (h *Hostname) Pick(captured string) (any, error) {
	return captured, nil
}

// UnixTime matches an epoch-seconds integer and yields the full timestamp.
type UnixTime struct {
	baseItem
}

func NewUnixTime(opt ...ItemOpt) *UnixTime {
	return &UnixTime{baseItem: applyOpts(opt)}
}

func (*UnixTime) MatchName() string { return "unixtime" }
func (*UnixTime) ValueName() string { return ValueTimestamp }
func (*UnixTime) Pattern() string   { return `[0-9]+` }

func (*UnixTime) Pick(captured string) (any, error) {
	sec, err := strconv.ParseInt(captured, 10, 64)
	if err != nil {
		return nil, err
	}
	return time.Unix(sec, 0), nil
}

// YearWithoutCentury matches a two-digit year and expands it using the
// current century.
type YearWithoutCentury struct {
	baseItem
}

func NewYearWithoutCentury(opt ...ItemOpt) *YearWithoutCentury {
	return &YearWithoutCentury{baseItem: applyOpts(opt)}
}

func (*YearWithoutCentury) MatchName() string { return "year_nocentury" }
func (*YearWithoutCentury) ValueName() string { return ValueYear }
func (*YearWithoutCentury) Pattern() string   { return `[0-9]{2}` }

func (*YearWithoutCentury) Pick(captured string) (any, error) {
	yy, err := strconv.Atoi(captured)
	if err != nil {
		return nil, err
	}
	century := time.Now().Year() / 100
	return century*100 + yy, nil
}

// DecimalSecond matches sub-second digits and yields microseconds.
// Three digits are milliseconds, six are microseconds.
type DecimalSecond struct {
	baseItem
}

func NewDecimalSecond(opt ...ItemOpt) *DecimalSecond {
	return &DecimalSecond{baseItem: applyOpts(opt)}
}

func (*DecimalSecond) MatchName() string { return "dsecond" }
func (*DecimalSecond) ValueName() string { return ValueMicrosecond }
func (*DecimalSecond) Pattern() string   { return `[0-9]+` }

func (*DecimalSecond) Pick(captured string) (any, error) {
	return decimalToMicroseconds(captured)
}

func decimalToMicroseconds(digits string) (int, error) {
	val, err := strconv.Atoi(digits)
	if err != nil {
		return 0, err
	}
	scale := 1
	for i := 0; i < len(digits); i++ {
		scale *= 10
	}
	return val * 1_000_000 / scale, nil
}

// TimeZone matches a zone offset like +0900, -06:00, or Z.
type TimeZone struct {
	baseItem
}

func NewTimeZone(opt ...ItemOpt) *TimeZone {
	return &TimeZone{baseItem: applyOpts(opt)}
}

func (*TimeZone) MatchName() string { return "timezone" }
func (*TimeZone) ValueName() string { return ValueTimeZone }
func (*TimeZone) Pattern() string   { return `Z|([+-]\d{2}:?\d{2})` }

func (*TimeZone) Pick(captured string) (any, error) {
	return parseZoneOffset(captured)
}

func parseZoneOffset(s string) (*time.Location, error) {
	if s == "Z" {
		return time.UTC, nil
	}
	if len(s) < 5 {
		return nil, fmt.Errorf("%w: bad zone offset %q", ErrRuleDefinition, s)
	}
	sign := 1
	if s[0] == '-' {
		sign = -1
	}
	rest := s[1:]
	if rest[2] == ':' {
		rest = rest[:2] + rest[3:]
	}
	hours, err := strconv.Atoi(rest[:2])
	if err != nil {
		return nil, err
	}
	minutes, err := strconv.Atoi(rest[2:4])
	if err != nil {
		return nil, err
	}
	offset := sign * (hours*3600 + minutes*60)
	return time.FixedZone(s, offset), nil
}

// UserItem is a named item with a caller-supplied pattern.
// The pattern must not contain anchors or optional groups of its own;
// optionality is expressed through the item flags so that the statement
// assembly stays well formed.
type UserItem struct {
	baseItem
	name    string
	pattern string
	strip   string
}

func NewUserItem(name, pattern string, opt ...ItemOpt) *UserItem {
	return &UserItem{baseItem: applyOpts(opt), name: name, pattern: pattern}
}

// NewStripItem behaves like NewUserItem, but trims the given cutset from
// the extracted value.
func NewStripItem(name, pattern, strip string, opt ...ItemOpt) *UserItem {
	return &UserItem{baseItem: applyOpts(opt), name: name, pattern: pattern, strip: strip}
}

func (u *UserItem) MatchName() string { return u.name }
func (u *UserItem) ValueName() string { return u.name }
func (u *UserItem) Pattern() string   { return u.pattern }

func (u *UserItem) Pick(captured string) (any, error) {
	if u.strip != "" {
		return strings.Trim(captured, u.strip), nil
	}
	return captured, nil
}
