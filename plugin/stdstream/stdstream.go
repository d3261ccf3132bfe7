// Package stdstream sources log lines from standard input and sinks
// entries to standard output or error.
package stdstream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/saylorsolutions/logseq/pkg/entries"
	"github.com/saylorsolutions/logseq/pkg/iterator"
)

// Source reads each line of r as a log entry. The input may be a valid
// JSON object, or completely unstructured.
func Source(ctx context.Context, r io.Reader) iterator.Iterator {
	ch := make(chan entries.LogEntry)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if ctx.Err() != nil {
				return
			}
			ch <- entries.FromString(scanner.Text())
		}
	}()
	return iterator.FromChannel(ch)
}

// In sources entries from STDIN.
func In(ctx context.Context) iterator.Iterator {
	return Source(ctx, os.Stdin)
}

// Sink writes each log entry to w as one JSON object per line. On
// error the iterator is drained so the producing side never blocks.
func Sink(w io.Writer, iter iterator.Iterator) error {
	err := iter.Iterate(func(entry entries.LogEntry, _ int) error {
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	})
	if err != nil {
		iterator.Drain(iter)
		return err
	}
	return nil
}

// WordsSink writes only the tokenized words of each entry, space
// joined, one entry per line. Entries without words fall back to their
// message field.
func WordsSink(w io.Writer, iter iterator.Iterator) error {
	err := iter.Iterate(func(entry entries.LogEntry, _ int) error {
		words, _ := entry.Words()
		if len(words) == 0 {
			msg, _ := entry.AsString(entries.StandardMessageField)
			_, err := fmt.Fprintln(w, msg)
			return err
		}
		_, err := fmt.Fprintln(w, strings.Join(words, " "))
		return err
	})
	if err != nil {
		iterator.Drain(iter)
		return err
	}
	return nil
}

// Out sinks entries to STDOUT as JSON lines.
func Out(iter iterator.Iterator) error {
	return Sink(os.Stdout, iter)
}

// Err sinks entries to STDERR as JSON lines.
func Err(iter iterator.Iterator) error {
	return Sink(os.Stderr, iter)
}
