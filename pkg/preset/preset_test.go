package preset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/saylorsolutions/logseq/pkg/entries"
	"github.com/saylorsolutions/logseq/pkg/header"
)

func TestDefault_Syslog(t *testing.T) {
	p, err := Default(header.InLocation(time.UTC))
	require.NoError(t, err)

	entry, err := p.ProcessLine("Jan  1 12:34:56 host-device1 system[12345]: connection from 192.168.0.10 closed")
	require.NoError(t, err)

	ts, ok := entry.Timestamp()
	require.True(t, ok)
	assert.Equal(t, time.Now().Year(), ts.Year())
	assert.Equal(t, time.January, ts.Month())

	host, _ := entry.AsString(entries.StandardHostField)
	assert.Equal(t, "host-device1", host)

	words, ok := entry.Words()
	require.True(t, ok)
	assert.Equal(t, []string{
		"system", "12345", "connection", "from", "192.168.0.10", "closed",
	}, words)
}

func TestDefault_Asctime(t *testing.T) {
	p, err := Default(header.InLocation(time.UTC))
	require.NoError(t, err)

	entry, err := p.ProcessLine("2022-12-05 01:02:03 myhost kernel: disk sda1 mounted")
	require.NoError(t, err)

	ts, ok := entry.Timestamp()
	require.True(t, ok)
	assert.Equal(t, time.Date(2022, 12, 5, 1, 2, 3, 0, time.UTC), ts)

	words, ok := entry.Words()
	require.True(t, ok)
	assert.Equal(t, []string{"kernel", "disk", "sda1", "mounted"}, words)
}

func TestDefault_FixedTokens(t *testing.T) {
	p, err := Default()
	require.NoError(t, err)

	// times, MACs, and IPv6 literals survive the late ":" split whole
	words := p.ProcessStatement("at 12:34:56 from aa:bb:cc:dd:ee:ff via 2001:db8::1 port:22")
	assert.Equal(t, []string{
		"at", "12:34:56", "from", "aa:bb:cc:dd:ee:ff", "via", "2001:db8::1", "port", "22",
	}, words)
}

func TestApacheErrorLog(t *testing.T) {
	p, err := ApacheErrorLog()
	require.NoError(t, err)

	tests := map[string]struct {
		line     string
		severity string
		words    []string
	}{
		"short form": {
			line:     "[Mon Dec 05 12:34:56 2022] [error] something broke",
			severity: "error",
			words:    []string{"something", "broke"},
		},
		"long form": {
			line:     "[Mon Dec 05 12:34:56.123456 2022] [core:error] [pid 123:tid 456] something broke",
			severity: "error",
			words:    []string{"something", "broke"},
		},
	}
	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			entry, err := p.ProcessLine(tc.line)
			require.NoError(t, err)

			ts, ok := entry.Timestamp()
			require.True(t, ok)
			assert.Equal(t, 2022, ts.Year())
			assert.Equal(t, time.December, ts.Month())

			severity, _ := entry.AsString("severityname")
			assert.Equal(t, tc.severity, severity)

			words, ok := entry.Words()
			require.True(t, ok)
			assert.Equal(t, tc.words, words)
		})
	}
}
