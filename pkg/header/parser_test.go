package header

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/saylorsolutions/logseq/pkg/entries"
)

func syslogParser(t *testing.T, opt ...ParserOpt) *Parser {
	t.Helper()
	stmt, err := NewStatement(syslogItems())
	require.NoError(t, err)
	p, err := NewParser([]*Statement{stmt}, opt...)
	require.NoError(t, err)
	return p
}

func TestParser_Match(t *testing.T) {
	p := syslogParser(t, WithReferenceYear(2023), InLocation(time.UTC))

	entry, err := p.Match("Jan  1 12:34:56 host-device1 something happened")
	require.NoError(t, err)

	ts, ok := entry.Timestamp()
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 1, 1, 12, 34, 56, 0, time.UTC), ts)
	host, _ := entry.AsString(entries.StandardHostField)
	assert.Equal(t, "host-device1", host)
	msg, _ := entry.AsString(entries.StandardMessageField)
	assert.Equal(t, "something happened", msg)
}

func TestParser_MatchYear(t *testing.T) {
	p := syslogParser(t, WithReferenceYear(2023), InLocation(time.UTC))

	entry, err := p.MatchYear("Jan  1 12:34:56 host-device1 msg", 1999)
	require.NoError(t, err)
	ts, ok := entry.Timestamp()
	require.True(t, ok)
	assert.Equal(t, 1999, ts.Year())

	// the explicit year binds to one call only
	entry, err = p.Match("Jan  1 12:34:56 host-device1 msg")
	require.NoError(t, err)
	ts, _ = entry.Timestamp()
	assert.Equal(t, 2023, ts.Year())
}

func TestParser_MissingYear(t *testing.T) {
	p := syslogParser(t, InLocation(time.UTC))
	_, err := p.Match("Jan  1 12:34:56 host-device1 msg")
	assert.ErrorIs(t, err, ErrParseFailure)

	// a line carrying its own year still parses
	entry, err := p.Match("2022 Jan  1 12:34:56 host-device1 msg")
	require.NoError(t, err)
	ts, ok := entry.Timestamp()
	require.True(t, ok)
	assert.Equal(t, 2022, ts.Year())
}

func TestParser_NoMatch(t *testing.T) {
	p := syslogParser(t, WithReferenceYear(2023))
	_, err := p.Match("completely unstructured line")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestParser_Headerless(t *testing.T) {
	p := syslogParser(t, WithReferenceYear(2023), Headerless())
	entry, err := p.Match("completely unstructured line")
	require.NoError(t, err)
	msg, _ := entry.AsString(entries.StandardMessageField)
	assert.Equal(t, "completely unstructured line", msg)
	assert.False(t, entry.HasField(entries.StandardTimestampField))
}

func TestParser_FirstMatchWins(t *testing.T) {
	withTime, err := NewStatement([]Item{
		NewISODateTime(),
		NewHostname("host"),
		NewRest(),
	})
	require.NoError(t, err)
	catchAll, err := NewStatement([]Item{
		NewRest(),
	})
	require.NoError(t, err)
	p, err := NewParser([]*Statement{withTime, catchAll}, NoTimestamp())
	require.NoError(t, err)

	entry, err := p.Match("2112-09-03T11:22:33Z myhost hello")
	require.NoError(t, err)
	host, _ := entry.AsString(entries.StandardHostField)
	assert.Equal(t, "myhost", host)

	entry, err = p.Match("just some text")
	require.NoError(t, err)
	assert.False(t, entry.HasField(entries.StandardHostField))
	msg, _ := entry.AsString(entries.StandardMessageField)
	assert.Equal(t, "just some text", msg)
}

func TestParser_ZoneOffset(t *testing.T) {
	stmt, err := NewStatement([]Item{
		NewISODateTime(),
		NewHostname("host"),
		NewRest(),
	})
	require.NoError(t, err)
	p, err := NewParser([]*Statement{stmt}, InLocation(time.UTC))
	require.NoError(t, err)

	entry, err := p.Match("2112-09-03T11:22:33+09:00 myhost msg")
	require.NoError(t, err)
	ts, ok := entry.Timestamp()
	require.True(t, ok)
	assert.True(t, ts.Equal(time.Date(2112, 9, 3, 2, 22, 33, 0, time.UTC)))
}

func TestNewParser_NoStatements(t *testing.T) {
	_, err := NewParser(nil)
	assert.ErrorIs(t, err, ErrRuleDefinition)
}
