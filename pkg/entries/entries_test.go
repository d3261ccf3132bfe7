package entries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogEntry_AsInt(t *testing.T) {
	tests := map[string]struct {
		val      any
		expected int64
		exists   bool
	}{
		"int64": {
			val:      int64(5),
			expected: 5,
			exists:   true,
		},
		"int": {
			val:      5,
			expected: 5,
			exists:   true,
		},
		"int string": {
			val:      "5",
			expected: 5,
			exists:   true,
		},
		"something else": {
			val:      'a',
			expected: 97,
			exists:   true,
		},
		"not a number": {
			val:      "five",
			expected: 0,
			exists:   false,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			entry := LogEntry{
				"val": tc.val,
			}
			got, ok := entry.AsInt("val")
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, tc.exists, ok)
		})
	}
}

func TestLogEntry_AsWords(t *testing.T) {
	tests := map[string]struct {
		val      any
		expected []string
		exists   bool
	}{
		"string slice": {
			val:      []string{"a", "b"},
			expected: []string{"a", "b"},
			exists:   true,
		},
		"any slice": {
			val:      []any{"a", 2},
			expected: []string{"a", "2"},
			exists:   true,
		},
		"bare string": {
			val:      "a",
			expected: []string{"a"},
			exists:   true,
		},
		"something else": {
			val:    5,
			exists: false,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			entry := LogEntry{
				StandardWordsField: tc.val,
			}
			got, ok := entry.Words()
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, tc.exists, ok)
		})
	}
}

func TestLogEntry_Timestamp(t *testing.T) {
	ts := time.Date(2023, 4, 5, 6, 7, 8, 0, time.UTC)
	entry := LogEntry{StandardTimestampField: ts}
	got, ok := entry.Timestamp()
	assert.True(t, ok)
	assert.Equal(t, ts, got)

	entry = LogEntry{StandardTimestampField: "2023-04-05T06:07:08Z"}
	got, ok = entry.Timestamp()
	assert.True(t, ok)
	assert.True(t, ts.Equal(got))

	entry = LogEntry{}
	_, ok = entry.Timestamp()
	assert.False(t, ok)
}

func TestFromString(t *testing.T) {
	entry := FromString(`{"@message":"hello","level":"info"}`)
	msg, ok := entry.AsString(StandardMessageField)
	assert.True(t, ok)
	assert.Equal(t, "hello", msg)
	level, ok := entry.AsString("level")
	assert.True(t, ok)
	assert.Equal(t, "info", level)

	entry = FromString("plain text line")
	msg, ok = entry.AsString(StandardMessageField)
	assert.True(t, ok)
	assert.Equal(t, "plain text line", msg)
	assert.Len(t, entry, 1)
}

func TestTransform(t *testing.T) {
	ts := time.Date(2023, 4, 5, 6, 7, 8, 0, time.UTC)
	entry := LogEntry{
		StandardTimestampField: ts,
		StandardWordsField:     []string{"a", "b", "c"},
		"other":                "untouched",
	}
	spec := NewTransformSpec().
		With(StandardTimestampField, FormatTime(time.RFC3339)).
		With(StandardWordsField, JoinWords(" "))
	got := Transform(entry, spec)

	assert.Equal(t, "2023-04-05T06:07:08Z", got[StandardTimestampField])
	assert.Equal(t, "a b c", got[StandardWordsField])
	assert.Equal(t, "untouched", got["other"])
	// the original entry is not mutated
	assert.Equal(t, ts, entry[StandardTimestampField])
}
