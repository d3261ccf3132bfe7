package stdstream

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/saylorsolutions/logseq/pkg/entries"
	"github.com/saylorsolutions/logseq/pkg/iterator"
)

func TestSource(t *testing.T) {
	input := "plain line\n" + `{"@message":"structured"}` + "\n"
	iter := Source(context.Background(), strings.NewReader(input))

	var got []entries.LogEntry
	require.NoError(t, iter.Iterate(func(entry entries.LogEntry, i int) error {
		got = append(got, entry)
		return nil
	}))
	require.Len(t, got, 2)
	msg, _ := got[0].AsString(entries.StandardMessageField)
	assert.Equal(t, "plain line", msg)
	msg, _ = got[1].AsString(entries.StandardMessageField)
	assert.Equal(t, "structured", msg)
}

func TestSink(t *testing.T) {
	var buf bytes.Buffer
	iter := iterator.FromSlice([]entries.LogEntry{
		{entries.StandardMessageField: "hello"},
	})
	require.NoError(t, Sink(&buf, iter))
	assert.Equal(t, `{"@message":"hello"}`+"\n", buf.String())
}

func TestWordsSink(t *testing.T) {
	var buf bytes.Buffer
	iter := iterator.FromSlice([]entries.LogEntry{
		{entries.StandardWordsField: []string{"a", "b", "c"}},
		{entries.StandardMessageField: "no words here"},
	})
	require.NoError(t, WordsSink(&buf, iter))
	assert.Equal(t, "a b c\nno words here\n", buf.String())
}
