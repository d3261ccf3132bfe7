package dsl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/saylorsolutions/logseq/pkg/header"
	"github.com/saylorsolutions/logseq/pkg/parse"
	"github.com/saylorsolutions/logseq/pkg/statement"
)

// Load reads a rule script and materializes it into a log parser.
func Load(r io.RuneReader) (*parse.LogParser, error) {
	sc, err := parseScript(lex(r))
	if err != nil {
		return nil, err
	}
	return materialize(sc)
}

// LoadString materializes a rule script held in a string.
func LoadString(script string) (*parse.LogParser, error) {
	return Load(strings.NewReader(script))
}

// LoadFile materializes the rule script at path.
func LoadFile(path string) (*parse.LogParser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule script: %w", err)
	}
	return LoadString(string(data))
}

func materialize(sc *script) (*parse.LogParser, error) {
	if len(sc.headers) == 0 {
		return nil, fmt.Errorf("%w: script declares no header rules", ErrScript)
	}
	var statements []*header.Statement
	for _, rule := range sc.headers {
		stmt, err := buildStatement(rule)
		if err != nil {
			return nil, fmt.Errorf("header %q at line %d: %w", rule.name, rule.line, err)
		}
		statements = append(statements, stmt)
	}

	var opts []header.ParserOpt
	if sc.hasYear {
		opts = append(opts, header.WithReferenceYear(sc.year))
	}
	if sc.headerless {
		opts = append(opts, header.Headerless())
	}
	headerParser, err := header.NewParser(statements, opts...)
	if err != nil {
		return nil, err
	}

	var actions []statement.Action
	for _, rule := range sc.actions {
		action, err := buildAction(rule)
		if err != nil {
			return nil, fmt.Errorf("action %q at line %d: %w", rule.kind, rule.line, err)
		}
		actions = append(actions, action)
	}
	var stOpts []statement.ParserOpt
	if sc.hasNoise {
		stOpts = append(stOpts, statement.WithNoise(sc.noise))
	}
	return parse.NewLogParser(statement.NewParser(actions, stOpts...), headerParser)
}

func buildStatement(rule headerRule) (*header.Statement, error) {
	var items []header.Item
	for _, spec := range rule.items {
		item, err := buildItem(spec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if rule.hasSep {
		return header.NewSeparatedStatement(items, rule.separator)
	}
	return header.NewStatement(items)
}

func buildItem(spec itemSpec) (header.Item, error) {
	var opts []header.ItemOpt
	if spec.optional {
		opts = append(opts, header.Opt())
	}
	if spec.dummy {
		opts = append(opts, header.Dummy())
	}
	switch spec.kind {
	case "rest":
		if err := wantArgs(spec, 0); err != nil {
			return nil, err
		}
		if spec.optional || spec.dummy {
			return nil, fmt.Errorf("%w: rest item takes no modifiers", ErrScript)
		}
		return header.NewRest(), nil
	case "month":
		if err := wantArgs(spec, 0); err != nil {
			return nil, err
		}
		return header.NewMonthAbbreviation(opts...), nil
	case "digit":
		name, err := nameArg(spec)
		if err != nil {
			return nil, err
		}
		return header.NewDigit(name, opts...), nil
	case "string":
		if len(spec.args) == 2 {
			name, err := identArg(spec, 0)
			if err != nil {
				return nil, err
			}
			symbols, err := stringArg(spec, 1)
			if err != nil {
				return nil, err
			}
			return header.NewSymbolString(name, symbols, opts...), nil
		}
		name, err := nameArg(spec)
		if err != nil {
			return nil, err
		}
		return header.NewString(name, opts...), nil
	case "hostname":
		name, err := nameArg(spec)
		if err != nil {
			return nil, err
		}
		return header.NewHostname(name, opts...), nil
	case "date":
		if err := wantArgs(spec, 0); err != nil {
			return nil, err
		}
		return header.NewISODate(opts...), nil
	case "time":
		if err := wantArgs(spec, 0); err != nil {
			return nil, err
		}
		return header.NewISOTime(opts...), nil
	case "datetime":
		if err := wantArgs(spec, 0); err != nil {
			return nil, err
		}
		return header.NewISODateTime(opts...), nil
	case "cdate":
		noCentury := false
		if len(spec.args) == 1 {
			flag, err := identArg(spec, 0)
			if err != nil {
				return nil, err
			}
			if flag != "nocentury" {
				return nil, fmt.Errorf("%w: unknown cdate flag %q", ErrScript, flag)
			}
			noCentury = true
		} else if err := wantArgs(spec, 0); err != nil {
			return nil, err
		}
		return header.NewConcatDate(noCentury, opts...), nil
	case "ctime":
		if err := wantArgs(spec, 0); err != nil {
			return nil, err
		}
		return header.NewConcatTime(opts...), nil
	case "unixtime":
		if err := wantArgs(spec, 0); err != nil {
			return nil, err
		}
		return header.NewUnixTime(opts...), nil
	case "year2":
		if err := wantArgs(spec, 0); err != nil {
			return nil, err
		}
		return header.NewYearWithoutCentury(opts...), nil
	case "dsecond":
		if err := wantArgs(spec, 0); err != nil {
			return nil, err
		}
		return header.NewDecimalSecond(opts...), nil
	case "tz":
		if err := wantArgs(spec, 0); err != nil {
			return nil, err
		}
		return header.NewTimeZone(opts...), nil
	case "user":
		if len(spec.args) == 3 {
			name, err := identArg(spec, 0)
			if err != nil {
				return nil, err
			}
			pattern, err := stringArg(spec, 1)
			if err != nil {
				return nil, err
			}
			strip, err := stringArg(spec, 2)
			if err != nil {
				return nil, err
			}
			return header.NewStripItem(name, pattern, strip, opts...), nil
		}
		if err := wantArgs(spec, 2); err != nil {
			return nil, err
		}
		name, err := identArg(spec, 0)
		if err != nil {
			return nil, err
		}
		pattern, err := stringArg(spec, 1)
		if err != nil {
			return nil, err
		}
		return header.NewUserItem(name, pattern, opts...), nil
	default:
		return nil, fmt.Errorf("%w: unknown item kind %q at line %d col %d", ErrScript, spec.kind, spec.line, spec.col)
	}
}

func buildAction(rule actionRule) (statement.Action, error) {
	switch rule.kind {
	case "split", "splitpattern":
		separators, err := actionString(rule, 0)
		if err != nil {
			return nil, err
		}
		keep := false
		if len(rule.args) == 2 {
			flag, err := actionIdent(rule, 1)
			if err != nil {
				return nil, err
			}
			if flag != "keep" {
				return nil, fmt.Errorf("%w: unknown split flag %q", ErrScript, flag)
			}
			keep = true
		} else if len(rule.args) != 1 {
			return nil, argCountErr(rule, 1)
		}
		if rule.kind == "splitpattern" {
			return statement.NewSplitPattern(separators, keep)
		}
		if keep {
			return statement.NewSplitKeep(separators)
		}
		return statement.NewSplit(separators)
	case "splitif":
		if len(rule.args) != 3 {
			return nil, argCountErr(rule, 3)
		}
		mode, err := actionIdent(rule, 0)
		if err != nil {
			return nil, err
		}
		pattern, err := actionString(rule, 1)
		if err != nil {
			return nil, err
		}
		separators, err := actionString(rule, 2)
		if err != nil {
			return nil, err
		}
		var cond statement.SplitCondition
		switch mode {
		case "either":
			cond, err = statement.MatchEither(pattern)
		case "neither":
			cond, err = statement.MatchNeither(pattern)
		default:
			return nil, fmt.Errorf("%w: splitif mode must be 'either' or 'neither', got %q", ErrScript, mode)
		}
		if err != nil {
			return nil, err
		}
		return statement.NewConditionalSplit(separators, cond)
	case "fix":
		patterns, err := actionStrings(rule, 0)
		if err != nil {
			return nil, err
		}
		return statement.NewFix(patterns...)
	case "fixip":
		address, network := false, false
		for i := range rule.args {
			flag, err := actionIdent(rule, i)
			if err != nil {
				return nil, err
			}
			switch flag {
			case "address":
				address = true
			case "network":
				network = true
			default:
				return nil, fmt.Errorf("%w: unknown fixip flag %q", ErrScript, flag)
			}
		}
		if !address && !network {
			return statement.NewFixIP(), nil
		}
		return statement.NewFixIPConfig(address, network), nil
	case "fixpartial", "fixpartialdrop":
		var (
			groups   []string
			patterns []string
		)
		for _, a := range rule.args {
			switch a.kind {
			case argString:
				patterns = append(patterns, a.text)
			case argIdent:
				groups = append(groups, a.text)
			default:
				return nil, fmt.Errorf("%w: %s takes patterns and group names", ErrScript, rule.kind)
			}
		}
		if rule.kind == "fixpartialdrop" {
			return statement.NewFixPartialDrop(groups, patterns...)
		}
		return statement.NewFixPartial(groups, patterns...)
	case "fixparen":
		inclusive := false
		if len(rule.args) == 3 {
			flag, err := actionIdent(rule, 2)
			if err != nil {
				return nil, err
			}
			if flag != "inclusive" {
				return nil, fmt.Errorf("%w: unknown fixparen flag %q", ErrScript, flag)
			}
			inclusive = true
		} else if len(rule.args) != 2 {
			return nil, argCountErr(rule, 2)
		}
		left, err := actionString(rule, 0)
		if err != nil {
			return nil, err
		}
		right, err := actionString(rule, 1)
		if err != nil {
			return nil, err
		}
		if inclusive {
			return statement.NewFixParenthesisInclusive(left, right)
		}
		return statement.NewFixParenthesis(left, right)
	case "remove":
		patterns, err := actionStrings(rule, 0)
		if err != nil {
			return nil, err
		}
		return statement.NewRemove(patterns...)
	case "removefirst":
		if len(rule.args) < 2 {
			return nil, argCountErr(rule, 2)
		}
		if rule.args[0].kind != argInt {
			return nil, fmt.Errorf("%w: removefirst needs a match count first", ErrScript)
		}
		patterns, err := actionStrings(rule, 1)
		if err != nil {
			return nil, err
		}
		return statement.NewRemovePartial(rule.args[0].num, patterns...)
	default:
		return nil, fmt.Errorf("%w: unknown action kind %q at line %d col %d", ErrScript, rule.kind, rule.line, rule.col)
	}
}

func wantArgs(spec itemSpec, n int) error {
	if len(spec.args) != n {
		return fmt.Errorf("%w: item %q takes %d argument(s), got %d", ErrScript, spec.kind, n, len(spec.args))
	}
	return nil
}

func nameArg(spec itemSpec) (string, error) {
	if err := wantArgs(spec, 1); err != nil {
		return "", err
	}
	return identArg(spec, 0)
}

func identArg(spec itemSpec, i int) (string, error) {
	a := spec.args[i]
	if a.kind != argIdent {
		return "", fmt.Errorf("%w: item %q argument %d must be a name", ErrScript, spec.kind, i+1)
	}
	return a.text, nil
}

func stringArg(spec itemSpec, i int) (string, error) {
	a := spec.args[i]
	if a.kind != argString {
		return "", fmt.Errorf("%w: item %q argument %d must be a string", ErrScript, spec.kind, i+1)
	}
	return a.text, nil
}

func actionString(rule actionRule, i int) (string, error) {
	if i >= len(rule.args) {
		return "", argCountErr(rule, i+1)
	}
	a := rule.args[i]
	if a.kind != argString {
		return "", fmt.Errorf("%w: action %q argument %d must be a string", ErrScript, rule.kind, i+1)
	}
	return a.text, nil
}

func actionIdent(rule actionRule, i int) (string, error) {
	if i >= len(rule.args) {
		return "", argCountErr(rule, i+1)
	}
	a := rule.args[i]
	if a.kind != argIdent {
		return "", fmt.Errorf("%w: action %q argument %d must be a name", ErrScript, rule.kind, i+1)
	}
	return a.text, nil
}

func actionStrings(rule actionRule, from int) ([]string, error) {
	if len(rule.args) <= from {
		return nil, argCountErr(rule, from+1)
	}
	var patterns []string
	for i := from; i < len(rule.args); i++ {
		p, err := actionString(rule, i)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

func argCountErr(rule actionRule, want int) error {
	return fmt.Errorf("%w: action %q needs at least %d argument(s), got %d", ErrScript, rule.kind, want, len(rule.args))
}
