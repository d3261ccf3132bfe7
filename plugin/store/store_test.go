package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/saylorsolutions/logseq/pkg/entries"
	"github.com/saylorsolutions/logseq/pkg/iterator"
)

func _tempStore(t *testing.T) *Store {
	t.Helper()
	log := hclog.Default()
	log.SetLevel(hclog.Debug)
	s, err := NewStore(log, filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, s.Close())
	})
	return s
}

func TestStore_Sink(t *testing.T) {
	iter := iterator.FromSlice([]entries.LogEntry{
		{
			"A":           "A",
			"other-field": "value",
		},
		{
			"A": "A",
			"B": "B",
		},
		{
			"A": "A",
			"B": "B",
			"C": "C",
		},
	})
	s := _tempStore(t)
	assert.NoError(t, s.Sink(iter, "test"))
}

func TestStore_BadTable(t *testing.T) {
	s := _tempStore(t)
	err := s.Sink(iterator.FromSlice(nil), "bad table; drop everything")
	assert.ErrorIs(t, err, ErrBadTable)
	_, err = s.QueryEntries("also bad!")
	assert.ErrorIs(t, err, ErrBadTable)
}

func TestStore_RoundTrip(t *testing.T) {
	ts := time.Date(2023, 1, 1, 12, 34, 56, 0, time.UTC)
	s := _tempStore(t)
	require.NoError(t, s.Sink(iterator.FromSlice([]entries.LogEntry{
		{
			entries.StandardTimestampField: ts,
			entries.StandardHostField:      "host-device1",
			entries.StandardMessageField:   "something happened",
			entries.StandardWordsField:     []string{"something", "happened"},
		},
	}), "logs"))

	iter, err := s.QueryEntries("logs")
	require.NoError(t, err)
	var got []entries.LogEntry
	require.NoError(t, iter.Iterate(func(entry entries.LogEntry, i int) error {
		got = append(got, entry)
		return nil
	}))
	require.Len(t, got, 1)

	back, ok := got[0].Timestamp()
	require.True(t, ok)
	assert.True(t, ts.Equal(back))
	host, _ := got[0].AsString(entries.StandardHostField)
	assert.Equal(t, "host-device1", host)
	words, ok := got[0].Words()
	require.True(t, ok)
	assert.Equal(t, []string{"something", "happened"}, words)
}

func TestStore_QueryRange(t *testing.T) {
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	var batch []entries.LogEntry
	for i := 0; i < 5; i++ {
		batch = append(batch, entries.LogEntry{
			entries.StandardTimestampField: base.Add(time.Duration(i) * time.Hour),
			"n":                            i,
		})
	}
	s := _tempStore(t)
	require.NoError(t, s.Sink(iterator.FromSlice(batch), "logs"))

	iter, err := s.QueryRange("logs", base.Add(time.Hour), base.Add(3*time.Hour))
	require.NoError(t, err)
	var ns []string
	require.NoError(t, iter.Iterate(func(entry entries.LogEntry, i int) error {
		n, _ := entry.AsString("n")
		ns = append(ns, n)
		return nil
	}))
	assert.Equal(t, []string{"1", "2"}, ns)
}
