// Package store persists parsed log entries in a sqlite database, one
// table per log source, growing columns as new fields appear.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/saylorsolutions/logseq/pkg/entries"
	"github.com/saylorsolutions/logseq/pkg/iterator"
	_ "modernc.org/sqlite"
)

var (
	tablePattern = regexp.MustCompile(`^[\w\d]+(\.[\w\d]+)?$`)
	ErrBadTable  = errors.New("invalid table name")
)

// Store keeps log entries in a sqlite database file.
type Store struct {
	db  *sql.DB
	log hclog.Logger
}

func NewStore(log hclog.Logger, filename string) (*Store, error) {
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open entry store: %w", err)
	}
	return &Store{
		db:  db,
		log: log.Named("entry-store"),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Sink behaves the same as SinkCtx with context.Background.
func (s *Store) Sink(iter iterator.Iterator, table string) error {
	return s.SinkCtx(context.Background(), iter, table)
}

// SinkCtx inserts every entry from iter into table, creating the table
// if needed and adding a text column for each field not seen before.
// In case of an error the iterator is drained to prevent upstream
// blocking.
func (s *Store) SinkCtx(ctx context.Context, iter iterator.Iterator, table string) error {
	if !tablePattern.MatchString(table) {
		iterator.Drain(iter)
		return fmt.Errorf("%w: %s", ErrBadTable, table)
	}
	conn, err := s.db.Conn(ctx)
	if err != nil {
		iterator.Drain(iter)
		return err
	}
	defer func() {
		_ = conn.Close()
	}()
	s.log.Debug("Ensuring the target table is present", "table", table)
	if err := s.ensureTable(ctx, conn, table); err != nil {
		iterator.Drain(iter)
		return err
	}
	cols, err := s.tableColumns(ctx, conn, table)
	if err != nil {
		iterator.Drain(iter)
		return err
	}
	colMap := map[string]bool{}
	for _, c := range cols {
		colMap[c] = true
	}
	return s.sink(ctx, conn, table, iter, colMap)
}

func (s *Store) sink(ctx context.Context, conn *sql.Conn, table string, iter iterator.Iterator, colMap map[string]bool) error {
	log := s.log.With("table", table)
	err := iter.Iterate(func(entry entries.LogEntry, i int) error {
		if ctx.Err() != nil {
			return iterator.ErrAtEnd
		}
		fields := make([]string, 0, len(entry))
		for k := range entry {
			if !colMap[k] {
				log.Debug("New field discovered, adding to table", "field", k)
				if err := s.addColumn(ctx, conn, table, k); err != nil {
					return err
				}
				colMap[k] = true
			}
			fields = append(fields, k)
		}
		sort.Strings(fields)

		var names, params strings.Builder
		args := make([]any, len(fields))
		for i, f := range fields {
			if i > 0 {
				names.WriteString(",")
				params.WriteString(",")
			}
			names.WriteString(`"` + f + `"`)
			params.WriteString("?")
			args[i] = columnValue(entry[f])
		}
		query := fmt.Sprintf("insert into %s (%s) values (%s)", table, names.String(), params.String())
		if _, err := conn.ExecContext(ctx, query, args...); err != nil {
			log.Error("Failed to insert into table", "error", err)
			return err
		}
		return nil
	})
	if err != nil && !iterator.IsEnd(err) {
		log.Error("Error sinking entries, draining iterator", "error", err)
		iterator.Drain(iter)
		return err
	}
	return nil
}

// columnValue flattens an entry field to its text representation.
// Timestamps use RFC3339 so range queries can compare them as text,
// word lists and other structured values round-trip through JSON.
func columnValue(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	case int, int64, float64, bool:
		return fmt.Sprintf("%v", v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}

func (s *Store) ensureTable(ctx context.Context, conn *sql.Conn, table string) error {
	_, err := conn.ExecContext(ctx, fmt.Sprintf(createTable, table))
	return err
}

func (s *Store) tableColumns(ctx context.Context, conn *sql.Conn, table string) ([]string, error) {
	rows, err := conn.QueryContext(ctx, "select * from "+table+" limit 0")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()
	return rows.Columns()
}

func (s *Store) addColumn(ctx context.Context, conn *sql.Conn, table, colName string) error {
	_, err := conn.ExecContext(ctx, fmt.Sprintf(`alter table %s add column "%s" text null`, table, colName))
	return err
}
