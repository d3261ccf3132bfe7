// Package file sources log lines from files and sinks parsed entries
// back to them.
package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/nxadm/tail"
	"github.com/saylorsolutions/logseq/pkg/entries"
	"github.com/saylorsolutions/logseq/pkg/iterator"
)

const (
	readTimeField = "@read_timestamp"
	readLineField = "@read_line_number"
)

// Source reads filename to its current end and returns an iterator over
// its lines. JSON lines expand into entry fields, anything else lands
// in the @message field.
func Source(filename string) (iterator.Iterator, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	ch := make(chan entries.LogEntry)
	go func() {
		defer close(ch)
		defer func() {
			_ = f.Close()
		}()
		num := 0
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			num++
			entry := entries.FromString(scanner.Text())
			entry[readLineField] = num
			ch <- entry
		}
	}()
	return iterator.FromChannel(ch), nil
}

// Follow tails filename, emitting new lines as they are appended. The
// iterator ends when ctx is cancelled or the file goes away for good.
func Follow(ctx context.Context, filename string) (iterator.Iterator, error) {
	t, err := tail.TailFile(filename, tail.Config{
		ReOpen:    true,
		MustExist: true,
		Follow:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to tail log file: %w", err)
	}
	ch := make(chan entries.LogEntry)
	go func() {
		defer close(ch)
		defer func() {
			_ = t.Stop()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case l, ok := <-t.Lines:
				if !ok {
					return
				}
				entry := entries.FromString(l.Text)
				entry[readTimeField] = l.Time.Format(time.RFC3339)
				entry[readLineField] = l.Num
				ch <- entry
			}
		}
	}()
	return iterator.FromChannel(ch), nil
}

// Sink appends each entry to filename as one JSON object per line,
// creating the file if needed. On error the iterator is drained so the
// producing side never blocks.
func Sink(iter iterator.Iterator, filename string, perms os.FileMode) error {
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, perms)
	if err != nil {
		iterator.Drain(iter)
		return fmt.Errorf("failed to open sink file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	w := bufio.NewWriter(f)
	err = iter.Iterate(func(entry entries.LogEntry, _ int) error {
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		return w.WriteByte('\n')
	})
	if err != nil {
		iterator.Drain(iter)
		return err
	}
	return w.Flush()
}
