package header

import (
	"errors"
	"fmt"
	"time"

	"github.com/saylorsolutions/logseq/pkg/entries"
)

var (
	// ErrNoMatch is returned by Match when no statement fits the line
	// and the parser is not in headerless mode.
	ErrNoMatch = errors.New("no header statement matched")
	// ErrParseFailure is returned when a matched statement cannot be
	// assembled into a complete record, typically a missing date field
	// with no configured default.
	ErrParseFailure = errors.New("header parse failure")
)

// Parser recognizes the header part of a log line by trying an ordered
// list of statements. It is immutable after construction and safe for
// concurrent use.
type Parser struct {
	statements []*Statement
	defaults   map[string]any
	headerless bool
	noStamp    bool
	loc        *time.Location
}

// ParserOpt adjusts parser construction.
type ParserOpt func(*Parser)

// Headerless makes the parser treat unmatched lines as all-body records
// with empty header fields instead of returning ErrNoMatch.
func Headerless() ParserOpt {
	return func(p *Parser) {
		p.headerless = true
	}
}

// WithDefaults supplies fallback values for fields a matched statement
// omits. A "year" default covers syslog's yearless timestamps.
func WithDefaults(defaults map[string]any) ParserOpt {
	return func(p *Parser) {
		for k, v := range defaults {
			p.defaults[k] = v
		}
	}
}

// WithReferenceYear sets the year used when a matched statement has no
// year item. Shorthand for a "year" default.
func WithReferenceYear(year int) ParserOpt {
	return func(p *Parser) {
		p.defaults[ValueYear] = year
	}
}

// InLocation sets the location used to assemble timestamps whose
// matched text carries no zone offset. Defaults to time.Local.
func InLocation(loc *time.Location) ParserOpt {
	return func(p *Parser) {
		p.loc = loc
	}
}

// NoTimestamp disables timestamp assembly for rule sets whose lines
// carry no time information.
func NoTimestamp() ParserOpt {
	return func(p *Parser) {
		p.noStamp = true
	}
}

// NewParser builds a header parser over the given ordered statements.
// Ordering is the precedence rule: more specific statements must come
// before more general ones.
func NewParser(statements []*Statement, opt ...ParserOpt) (*Parser, error) {
	if len(statements) == 0 {
		return nil, fmt.Errorf("%w: no statements", ErrRuleDefinition)
	}
	p := &Parser{
		statements: statements,
		defaults:   map[string]any{},
		loc:        time.Local,
	}
	for _, o := range opt {
		o(p)
	}
	return p, nil
}

// Match parses the header of line, using the construction-time reference
// year for yearless timestamps.
func (p *Parser) Match(line string) (entries.LogEntry, error) {
	return p.match(line, p.defaults)
}

// MatchYear behaves like Match with an explicit reference year for this
// call only.
func (p *Parser) MatchYear(line string, year int) (entries.LogEntry, error) {
	defaults := make(map[string]any, len(p.defaults)+1)
	for k, v := range p.defaults {
		defaults[k] = v
	}
	defaults[ValueYear] = year
	return p.match(line, defaults)
}

func (p *Parser) match(line string, defaults map[string]any) (entries.LogEntry, error) {
	for _, s := range p.statements {
		values, ok, err := s.Match(line)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
		}
		if !ok {
			continue
		}
		merged := make(map[string]any, len(defaults)+len(values))
		for k, v := range defaults {
			merged[k] = v
		}
		for k, v := range values {
			merged[k] = v
		}
		return p.assemble(merged)
	}
	if p.headerless {
		return entries.LogEntry{entries.StandardMessageField: line}, nil
	}
	return nil, ErrNoMatch
}

// assemble folds timestamp component values into one @timestamp and maps
// the remaining value names onto entry fields.
func (p *Parser) assemble(values map[string]any) (entries.LogEntry, error) {
	entry := entries.LogEntry{}
	if !p.noStamp {
		ts, err := p.buildTimestamp(values)
		if err != nil {
			return nil, err
		}
		entry[entries.StandardTimestampField] = ts
	}
	for k, v := range values {
		switch k {
		case ValueRest:
			entry[entries.StandardMessageField] = v
		case "host":
			entry[entries.StandardHostField] = v
		default:
			entry[k] = v
		}
	}
	return entry, nil
}

func (p *Parser) buildTimestamp(values map[string]any) (time.Time, error) {
	var none time.Time
	if ts, ok := values[ValueTimestamp]; ok {
		delete(values, ValueTimestamp)
		t, ok := ts.(time.Time)
		if !ok {
			return none, fmt.Errorf("%w: timestamp value is %T", ErrParseFailure, ts)
		}
		return t, nil
	}

	var date DateParts
	if d, ok := values[ValueDate]; ok {
		delete(values, ValueDate)
		date, ok = d.(DateParts)
		if !ok {
			return none, fmt.Errorf("%w: date value is %T", ErrParseFailure, d)
		}
	} else {
		var err error
		if date.Year, err = intField(values, ValueYear); err != nil {
			return none, err
		}
		if date.Month, err = intField(values, ValueMonth); err != nil {
			return none, err
		}
		if date.Day, err = intField(values, ValueDay); err != nil {
			return none, err
		}
	}

	var tod TimeParts
	if t, ok := values[ValueTime]; ok {
		delete(values, ValueTime)
		tod, ok = t.(TimeParts)
		if !ok {
			return none, fmt.Errorf("%w: time value is %T", ErrParseFailure, t)
		}
	} else {
		// smaller units default to zero
		tod.Hour = optionalIntField(values, ValueHour)
		tod.Minute = optionalIntField(values, ValueMinute)
		tod.Second = optionalIntField(values, ValueSecond)
		tod.Microsecond = optionalIntField(values, ValueMicrosecond)
		if z, ok := values[ValueTimeZone]; ok {
			delete(values, ValueTimeZone)
			if loc, ok := z.(*time.Location); ok {
				tod.Zone = loc
			}
		}
	}
	return combine(date, tod, p.loc), nil
}

func intField(values map[string]any, key string) (int, error) {
	v, ok := values[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s is missing; use defaults to add it", ErrParseFailure, key)
	}
	delete(values, key)
	i, ok := v.(int)
	if !ok {
		return 0, fmt.Errorf("%w: %s is %T, want int", ErrParseFailure, key, v)
	}
	return i, nil
}

func optionalIntField(values map[string]any, key string) int {
	v, ok := values[key]
	if !ok {
		return 0
	}
	delete(values, key)
	i, _ := v.(int)
	return i
}
