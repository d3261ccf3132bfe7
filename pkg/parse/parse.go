// Package parse wires the header and statement engines into a single
// line-at-a-time log parser.
package parse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/saylorsolutions/logseq/pkg/entries"
	"github.com/saylorsolutions/logseq/pkg/header"
	"github.com/saylorsolutions/logseq/pkg/statement"
)

var (
	// ErrNoHeaderMatch reports a line whose prefix fit none of the
	// configured header statements. Per-line and recoverable: the parser
	// instance stays usable for the next line.
	ErrNoHeaderMatch = header.ErrNoMatch
	// ErrEmptyLine reports a blank input line, which produces no record.
	ErrEmptyLine = errors.New("empty line")
)

// LogParser converts one raw log line into a structured record:
// timestamp and host from the header part, an ordered word sequence from
// the body. Immutable after construction and safe for concurrent use.
type LogParser struct {
	headers   []*header.Parser
	statement *statement.Parser
}

// NewLogParser combines one or more header parsers (tried in order,
// first match wins) with a statement parser.
func NewLogParser(statementParser *statement.Parser, headerParsers ...*header.Parser) (*LogParser, error) {
	if len(headerParsers) == 0 {
		return nil, fmt.Errorf("%w: no header parsers", header.ErrRuleDefinition)
	}
	if statementParser == nil {
		return nil, fmt.Errorf("%w: no statement parser", statement.ErrRuleDefinition)
	}
	return &LogParser{headers: headerParsers, statement: statementParser}, nil
}

// ProcessLine parses one log line into a record. A trailing line feed is
// ignored. Returns ErrNoHeaderMatch when no header statement fits and no
// header parser is headerless; the failure is attributable to this line
// only.
func (p *LogParser) ProcessLine(line string) (entries.LogEntry, error) {
	line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
	if line == "" {
		return nil, ErrEmptyLine
	}
	entry, err := p.processHeader(line)
	if err != nil {
		return nil, err
	}
	body, _ := entry.AsString(entries.StandardMessageField)
	entry[entries.StandardWordsField] = p.statement.Tokenize(body)
	return entry, nil
}

// ProcessStatement tokenizes text as a bare body, skipping header
// recognition entirely.
func (p *LogParser) ProcessStatement(body string) []string {
	return p.statement.Tokenize(body)
}

func (p *LogParser) processHeader(line string) (entries.LogEntry, error) {
	for _, hp := range p.headers {
		entry, err := hp.Match(line)
		if err == nil {
			return entry, nil
		}
		if errors.Is(err, header.ErrNoMatch) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("%w: %s", ErrNoHeaderMatch, truncate(line, 50))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
