// Package dsl loads parser rule scripts. A script is line oriented:
// each line declares one header statement, one body action, or a
// setting that scopes the lines after it.
//
//	# reference year for headers without one
//	year 2024
//
//	header syslog: digit(year) optional, month, digit(day), time, hostname(host), rest
//	header asctime: date, time, hostname(host), rest
//
//	action split "\"()[]{}|+',=><;` "
//	action fixip
//	action fix "^\d{2}:\d{2}:\d{2}$"
//	action split ":"
//
// Scripts are materialized with [Load] or [LoadFile] into a ready
// [parse.LogParser].
package dsl

import (
	"errors"
	"fmt"
)

// ErrScript reports a malformed rule script.
var ErrScript = errors.New("invalid rule script")

type argKind int

const (
	argString argKind = iota
	argInt
	argIdent
)

type arg struct {
	kind argKind
	text string
	num  int
	line int
	col  int
}

type itemSpec struct {
	kind     string
	args     []arg
	optional bool
	dummy    bool
	line     int
	col      int
}

type headerRule struct {
	name      string
	items     []itemSpec
	separator string
	hasSep    bool
	line      int
}

type actionRule struct {
	kind string
	args []arg
	line int
	col  int
}

type script struct {
	headers    []headerRule
	actions    []actionRule
	year       int
	hasYear    bool
	headerless bool
	noise      string
	hasNoise   bool
}

func errAt(t token, msg string, args ...any) error {
	return fmt.Errorf("%w: line %d col %d: %s", ErrScript, t.line, t.col, fmt.Sprintf(msg, args...))
}

func parseScript(s *tokenStream) (*script, error) {
	sc := &script{}
	var (
		separator string
		hasSep    bool
	)
	for {
		t, ok := s.next()
		if !ok {
			return sc, nil
		}
		switch t.typ {
		case tEol:
			continue
		case tErr:
			return nil, errAt(t, "%s", t.text)
		case tHeader:
			rule, err := parseHeaderRule(s, t.line)
			if err != nil {
				return nil, err
			}
			rule.separator = separator
			rule.hasSep = hasSep
			sc.headers = append(sc.headers, rule)
		case tAction:
			rule, err := parseActionRule(s, t.line)
			if err != nil {
				return nil, err
			}
			sc.actions = append(sc.actions, rule)
		case tSeparator:
			val, err := expect(s, tString)
			if err != nil {
				return nil, err
			}
			separator, hasSep = val.text, true
			if err := endOfLine(s); err != nil {
				return nil, err
			}
		case tYear:
			val, err := expect(s, tInt)
			if err != nil {
				return nil, err
			}
			fmt.Sscanf(val.text, "%d", &sc.year)
			sc.hasYear = true
			if err := endOfLine(s); err != nil {
				return nil, err
			}
		case tHeaderless:
			sc.headerless = true
			if err := endOfLine(s); err != nil {
				return nil, err
			}
		case tNoise:
			val, err := expect(s, tString)
			if err != nil {
				return nil, err
			}
			sc.noise, sc.hasNoise = val.text, true
			if err := endOfLine(s); err != nil {
				return nil, err
			}
		default:
			return nil, errAt(t, "expected a rule or setting, got %s", t.typ)
		}
	}
}

func parseHeaderRule(s *tokenStream, line int) (headerRule, error) {
	rule := headerRule{line: line}
	name, err := expect(s, tIdentifier)
	if err != nil {
		return rule, err
	}
	rule.name = name.text
	if _, err := expect(s, tColon); err != nil {
		return rule, err
	}
	for {
		item, err := parseItemSpec(s)
		if err != nil {
			return rule, err
		}
		rule.items = append(rule.items, item)

		t, ok := s.next()
		if !ok || t.typ == tEol {
			return rule, nil
		}
		if t.typ != tComma {
			return rule, errAt(t, "expected ',' or end of line, got %s", t.typ)
		}
	}
}

func parseItemSpec(s *tokenStream) (itemSpec, error) {
	var spec itemSpec
	kind, err := expect(s, tIdentifier)
	if err != nil {
		return spec, err
	}
	spec.kind = kind.text
	spec.line, spec.col = kind.line, kind.col

	t, ok := s.next()
	if !ok {
		return spec, nil
	}
	if t.typ == tOpenParen {
		args, err := parseArgs(s)
		if err != nil {
			return spec, err
		}
		spec.args = args
		t, ok = s.next()
		if !ok {
			return spec, nil
		}
	}
	for {
		switch t.typ {
		case tOptional:
			spec.optional = true
		case tDummy:
			spec.dummy = true
		default:
			s.pushBack(t)
			return spec, nil
		}
		t, ok = s.next()
		if !ok {
			return spec, nil
		}
	}
}

// parseArgs reads a comma separated argument list up to the closing
// parenthesis, which has already been committed to by the caller.
func parseArgs(s *tokenStream) ([]arg, error) {
	var args []arg
	for {
		t, ok := s.next()
		if !ok {
			return nil, fmt.Errorf("%w: unexpected end of script in argument list", ErrScript)
		}
		a, err := asArg(t)
		if err != nil {
			return nil, err
		}
		args = append(args, a)

		t, ok = s.next()
		if !ok {
			return nil, fmt.Errorf("%w: unexpected end of script in argument list", ErrScript)
		}
		switch t.typ {
		case tCloseParen:
			return args, nil
		case tComma:
		default:
			return nil, errAt(t, "expected ',' or ')', got %s", t.typ)
		}
	}
}

func parseActionRule(s *tokenStream, line int) (actionRule, error) {
	rule := actionRule{line: line}
	kind, err := expect(s, tIdentifier)
	if err != nil {
		return rule, err
	}
	rule.kind = kind.text
	rule.col = kind.col
	for {
		t, ok := s.next()
		if !ok || t.typ == tEol {
			return rule, nil
		}
		if t.typ == tComma {
			continue
		}
		a, err := asArg(t)
		if err != nil {
			return rule, err
		}
		rule.args = append(rule.args, a)
	}
}

func asArg(t token) (arg, error) {
	a := arg{text: t.text, line: t.line, col: t.col}
	switch t.typ {
	case tString:
		a.kind = argString
	case tInt:
		a.kind = argInt
		fmt.Sscanf(t.text, "%d", &a.num)
	case tIdentifier:
		a.kind = argIdent
	case tHeader, tAction, tSeparator, tYear, tHeaderless, tNoise, tOptional, tDummy:
		// Keywords double as plain names in argument position, so
		// digit(year) works as expected.
		a.kind = argIdent
	case tErr:
		return a, errAt(t, "%s", t.text)
	default:
		return a, errAt(t, "expected an argument, got %s", t.typ)
	}
	return a, nil
}

func expect(s *tokenStream, typ tokenType) (token, error) {
	t, ok := s.next()
	if !ok {
		return token{}, fmt.Errorf("%w: unexpected end of script, expected %s", ErrScript, typ)
	}
	if t.typ == tErr {
		return t, errAt(t, "%s", t.text)
	}
	if t.typ != typ {
		return t, errAt(t, "expected %s, got %s", typ, t.typ)
	}
	return t, nil
}

func endOfLine(s *tokenStream) error {
	t, ok := s.next()
	if !ok || t.typ == tEol {
		return nil
	}
	return errAt(t, "expected end of line, got %s", t.typ)
}
