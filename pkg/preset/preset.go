// Package preset provides rule sets for frequently seen log formats.
package preset

import (
	"time"

	"github.com/saylorsolutions/logseq/pkg/header"
	"github.com/saylorsolutions/logseq/pkg/parse"
	"github.com/saylorsolutions/logseq/pkg/statement"
)

const (
	// PatternTime fixes bare time-of-day tokens like 12:34:56.789 so a
	// later ":" split cannot tear them apart.
	PatternTime = `^\d{2}:\d{2}:\d{2}(\.\d+)?$`
	// PatternMAC fixes MAC address tokens.
	PatternMAC = `^([0-9a-fA-F]{2}:){5}[0-9a-fA-F]{2}$`
	// SplitSymbols is the first-pass separator set for free-format
	// bodies. ":" is deliberately absent; it is split later, after
	// address and time tokens have been fixed.
	SplitSymbols = "\"()[]{}|+',=><;`# "
)

// DefaultHeaderParsers returns header parsers for the two classic
// shapes: syslogd (optional year, month abbreviation, day, time, host)
// and asctime (ISO date, time, host). The current year is the reference
// year for yearless lines.
func DefaultHeaderParsers(opt ...header.ParserOpt) ([]*header.Parser, error) {
	syslog, err := header.NewStatement([]header.Item{
		header.NewDigit("year", header.Opt()),
		header.NewMonthAbbreviation(),
		header.NewDigit("day"),
		header.NewISOTime(),
		header.NewHostname("host"),
		header.NewRest(),
	})
	if err != nil {
		return nil, err
	}
	asctime, err := header.NewStatement([]header.Item{
		header.NewISODate(),
		header.NewISOTime(),
		header.NewHostname("host"),
		header.NewRest(),
	})
	if err != nil {
		return nil, err
	}
	opt = append([]header.ParserOpt{header.WithReferenceYear(time.Now().Year())}, opt...)
	p, err := header.NewParser([]*header.Statement{syslog, asctime}, opt...)
	if err != nil {
		return nil, err
	}
	return []*header.Parser{p}, nil
}

// DefaultStatementParser returns the default four-step action chain:
// split on standard symbols, fix IP addresses, fix time and MAC tokens,
// then split on ":".
func DefaultStatementParser() (*statement.Parser, error) {
	firstSplit, err := statement.NewSplit(SplitSymbols)
	if err != nil {
		return nil, err
	}
	fixKnown, err := statement.NewFix(PatternTime, PatternMAC)
	if err != nil {
		return nil, err
	}
	colonSplit, err := statement.NewSplit(":")
	if err != nil {
		return nil, err
	}
	return statement.NewParser([]statement.Action{
		firstSplit,
		statement.NewFixIP(),
		fixKnown,
		colonSplit,
	}), nil
}

// Default returns a LogParser combining DefaultHeaderParsers and
// DefaultStatementParser.
func Default(opt ...header.ParserOpt) (*parse.LogParser, error) {
	hps, err := DefaultHeaderParsers(opt...)
	if err != nil {
		return nil, err
	}
	sp, err := DefaultStatementParser()
	if err != nil {
		return nil, err
	}
	return parse.NewLogParser(sp, hps...)
}

// clientGroup matches the optional "[client ADDR]" field of apache
// error lines. The keyword and the address come and go together, so a
// bare host item cannot swallow the first body word.
func clientGroup() header.Item {
	return header.NewSeparatedGroup([]header.Item{
		header.NewUserItem("client", `client`, header.Dummy()),
		header.NewHostname("host"),
	}, " []", header.Opt())
}

// ApacheErrorLog returns a LogParser for apache error_log lines, with
// and without the core/pid/tid fields of newer releases.
func ApacheErrorLog() (*parse.LogParser, error) {
	short, err := header.NewSeparatedStatement([]header.Item{
		header.NewString("weekday", header.Dummy()),
		header.NewMonthAbbreviation(),
		header.NewDigit("day"),
		header.NewISOTime(),
		header.NewDigit("year"),
		header.NewString("severityname"),
		clientGroup(),
		header.NewRest(),
	}, " []")
	if err != nil {
		return nil, err
	}
	long, err := header.NewSeparatedStatement([]header.Item{
		header.NewString("weekday", header.Dummy()),
		header.NewMonthAbbreviation(),
		header.NewDigit("day"),
		header.NewISOTime(),
		header.NewDigit("year"),
		header.NewUserItem("core", `core`, header.Dummy()),
		header.NewString("severityname"),
		header.NewUserItem("pid", `pid`, header.Dummy()),
		header.NewDigit("processid"),
		header.NewUserItem("tid", `tid`, header.Dummy()),
		header.NewDigit("threadid"),
		clientGroup(),
		header.NewRest(),
	}, " []:")
	if err != nil {
		return nil, err
	}
	hp, err := header.NewParser([]*header.Statement{long, short})
	if err != nil {
		return nil, err
	}
	sp, err := DefaultStatementParser()
	if err != nil {
		return nil, err
	}
	return parse.NewLogParser(sp, hp)
}
