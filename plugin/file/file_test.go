package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/saylorsolutions/logseq/pkg/entries"
	"github.com/saylorsolutions/logseq/pkg/iterator"
)

func TestSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	content := "plain text line\n" + `{"@message":"structured","level":"info"}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	iter, err := Source(path)
	require.NoError(t, err)

	var got []entries.LogEntry
	require.NoError(t, iter.Iterate(func(entry entries.LogEntry, i int) error {
		got = append(got, entry)
		return nil
	}))
	require.Len(t, got, 2)

	msg, _ := got[0].AsString(entries.StandardMessageField)
	assert.Equal(t, "plain text line", msg)
	num, _ := got[0].AsInt(readLineField)
	assert.Equal(t, int64(1), num)

	level, _ := got[1].AsString("level")
	assert.Equal(t, "info", level)
	num, _ = got[1].AsInt(readLineField)
	assert.Equal(t, int64(2), num)
}

func TestSource_Missing(t *testing.T) {
	_, err := Source(filepath.Join(t.TempDir(), "nope.log"))
	assert.Error(t, err)
}

func TestSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	iter := iterator.FromSlice([]entries.LogEntry{
		{entries.StandardMessageField: "first", "n": 1},
		{entries.StandardMessageField: "second", "n": 2},
	})
	require.NoError(t, Sink(iter, path, 0600))

	back, err := Source(path)
	require.NoError(t, err)
	var got []entries.LogEntry
	require.NoError(t, back.Iterate(func(entry entries.LogEntry, i int) error {
		got = append(got, entry)
		return nil
	}))
	require.Len(t, got, 2)
	msg, _ := got[0].AsString(entries.StandardMessageField)
	assert.Equal(t, "first", msg)
	n, _ := got[1].AsInt("n")
	assert.Equal(t, int64(2), n)
}
