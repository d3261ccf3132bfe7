package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/saylorsolutions/logseq/pkg/entries"
	"github.com/saylorsolutions/logseq/pkg/iterator"
)

const (
	createTable = `
create table if not exists %s (
	evt_id integer primary key
)`
)

var (
	ErrUnexpectedColumnType = errors.New("unexpected column type")
)

// QueryEntries returns an iterator over every entry in table, in
// insertion order.
func (s *Store) QueryEntries(table string) (iterator.Iterator, error) {
	if !tablePattern.MatchString(table) {
		return nil, fmt.Errorf("%w: %s", ErrBadTable, table)
	}
	rows, err := s.db.Query("select * from " + table + " order by evt_id")
	if err != nil {
		return nil, err
	}
	return newQueryIterator(s.log, rows)
}

// QueryRange returns entries whose timestamp falls in [from, to).
// Timestamps are stored as RFC3339 text, which compares in time order.
func (s *Store) QueryRange(table string, from, to time.Time) (iterator.Iterator, error) {
	if !tablePattern.MatchString(table) {
		return nil, fmt.Errorf("%w: %s", ErrBadTable, table)
	}
	query := fmt.Sprintf(
		`select * from %s where "%s" >= ? and "%s" < ? order by evt_id`,
		table, entries.StandardTimestampField, entries.StandardTimestampField,
	)
	rows, err := s.db.Query(query, from.Format(time.RFC3339), to.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	return newQueryIterator(s.log, rows)
}

func newQueryIterator(log hclog.Logger, rows *sql.Rows) (iterator.Iterator, error) {
	cols, err := rows.Columns()
	if err != nil {
		log.Error("Failed to read result columns", "error", err)
		return nil, err
	}
	if len(cols) == 0 {
		_ = rows.Close()
		return iterator.Func(iterator.End), nil
	}
	var rowNum int

	return iterator.Func(func() (entries.LogEntry, int, error) {
		if !rows.Next() {
			_ = rows.Close()
			return iterator.End()
		}
		rowNum++
		var rowID int
		vals := make([]any, len(cols))
		if cols[0] == "evt_id" {
			vals[0] = &rowID
			for i := 1; i < len(vals); i++ {
				vals[i] = &sql.NullString{}
			}
		} else {
			for i := range vals {
				vals[i] = &sql.NullString{}
			}
		}
		if err := rows.Scan(vals...); err != nil {
			_ = rows.Close()
			return nil, -1, err
		}

		entry := entries.LogEntry{}
		for i, v := range vals {
			switch s := v.(type) {
			case *sql.NullString:
				if s.Valid {
					entry[cols[i]] = fieldValue(cols[i], s.String)
				}
			case *int:
				entry[cols[i]] = *s
			default:
				return nil, -1, fmt.Errorf("%w: %T", ErrUnexpectedColumnType, v)
			}
		}
		return entry, rowNum, nil
	}), nil
}

// fieldValue undoes the flattening applied on insert for the fields
// with a known shape.
func fieldValue(col, text string) any {
	switch col {
	case entries.StandardTimestampField:
		ts, err := time.Parse(time.RFC3339, text)
		if err != nil {
			return text
		}
		return ts
	case entries.StandardWordsField:
		if !strings.HasPrefix(text, "[") {
			return text
		}
		var words []string
		if err := json.Unmarshal([]byte(text), &words); err != nil {
			return text
		}
		return words
	default:
		return text
	}
}
