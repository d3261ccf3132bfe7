package iterator

import "github.com/saylorsolutions/logseq/pkg/entries"

var _ Iterator = (Func)(nil)

// Func adapts a Next-shaped function into an Iterator.
type Func func() (entries.LogEntry, int, error)

func (f Func) Next() (entries.LogEntry, int, error) {
	return f()
}

func (f Func) Iterate(iter func(entry entries.LogEntry, i int) error) error {
	for {
		entry, i, err := f()
		if err != nil {
			if IsEnd(err) {
				return nil
			}
			return err
		}
		if err := iter(entry, i); err != nil {
			if IsEnd(err) {
				return nil
			}
			return err
		}
	}
}
