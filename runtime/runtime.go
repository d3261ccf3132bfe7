// Package runtime drives a parsing session, pushing raw log entries
// from sources through a parser and on to sinks.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/saylorsolutions/logseq/pkg/entries"
	"github.com/saylorsolutions/logseq/pkg/iterator"
	"github.com/saylorsolutions/logseq/pkg/parse"
)

var (
	ErrInvalidState = errors.New("invalid state")
	ErrParseFailed  = errors.New("line failed to parse")
)

type sessionState int

const (
	created sessionState = iota
	started
	stopping
	done
)

var stateStrings = map[sessionState]string{
	created:  "Created",
	started:  "Started",
	stopping: "Stopping",
	done:     "Done",
}

// Stats counts what a session has seen so far. Safe to read while the
// session runs.
type Stats struct {
	Lines  int64
	Parsed int64
	Failed int64
}

// Session runs raw log entries through a parser. Unparsed lines are
// dropped and counted unless configured otherwise.
type Session struct {
	log    hclog.Logger
	parser *parse.LogParser
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	state sessionState

	strict    bool
	keep      bool
	transform entries.TransformSpec

	lines  atomic.Int64
	parsed atomic.Int64
	failed atomic.Int64
}

// SessionOpt adjusts session construction.
type SessionOpt func(*Session)

// Strict stops the session with an error on the first line that fails
// to parse.
func Strict() SessionOpt {
	return func(s *Session) {
		s.strict = true
	}
}

// KeepUnparsed passes lines that fail to parse through unchanged
// instead of dropping them.
func KeepUnparsed() SessionOpt {
	return func(s *Session) {
		s.keep = true
	}
}

// WithTransform applies spec to every parsed entry before it is
// emitted.
func WithTransform(spec entries.TransformSpec) SessionOpt {
	return func(s *Session) {
		s.transform = spec
	}
}

func NewSession(log hclog.Logger, parser *parse.LogParser, opts ...SessionOpt) *Session {
	s := &Session{
		log:    log.Named("session"),
		parser: parser,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start transitions the session to its running state. It must be
// called before Run.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != created {
		err := fmt.Errorf("%w: invalid state for start operation: %s", ErrInvalidState, stateStrings[s.state])
		s.log.Error("Invalid state to start", "error", err)
		return err
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.state = started
	s.log.Debug("Session started")
	return nil
}

// Stop cancels in-flight work and waits for it to settle.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.state != started {
		err := fmt.Errorf("%w: invalid state for stop operation: %s", ErrInvalidState, stateStrings[s.state])
		s.mu.Unlock()
		s.log.Error("Invalid state to stop", "error", err)
		return err
	}
	s.state = stopping
	s.mu.Unlock()

	start := time.Now()
	s.cancel()
	s.wg.Wait()

	s.mu.Lock()
	s.state = done
	s.mu.Unlock()
	stats := s.Stats()
	s.log.Info("Session stopped",
		"stop-duration", time.Since(start).String(),
		"lines", stats.Lines, "parsed", stats.Parsed, "failed", stats.Failed)
	return nil
}

// Stats returns a snapshot of the session's counters.
func (s *Session) Stats() Stats {
	return Stats{
		Lines:  s.lines.Load(),
		Parsed: s.parsed.Load(),
		Failed: s.failed.Load(),
	}
}

// Run returns an iterator of parsed entries drawn from src. Each
// source entry's message field is parsed, and any other fields on the
// source entry carry over to the result. Multiple Run pipelines may be
// active at once.
func (s *Session) Run(src iterator.Iterator) (iterator.Iterator, error) {
	s.mu.Lock()
	if s.state != started {
		err := fmt.Errorf("%w: invalid state for run operation: %s", ErrInvalidState, stateStrings[s.state])
		s.mu.Unlock()
		s.log.Error("Invalid state to run", "error", err)
		return nil, err
	}
	s.mu.Unlock()

	log := s.log
	out := make(chan entries.LogEntry)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(out)
		err := src.Iterate(func(entry entries.LogEntry, i int) error {
			if s.ctx.Err() != nil {
				return iterator.ErrAtEnd
			}
			s.lines.Add(1)
			parsed, err := s.parseEntry(entry)
			if err != nil {
				s.failed.Add(1)
				if s.strict {
					log.Error("Line failed to parse", "line", i, "error", err)
					return fmt.Errorf("%w: line %d: %v", ErrParseFailed, i, err)
				}
				log.Debug("Dropping unparsed line", "line", i, "error", err)
				if !s.keep {
					return nil
				}
				parsed = entry
			} else {
				s.parsed.Add(1)
			}
			if s.transform != nil {
				parsed = entries.Transform(parsed, s.transform)
			}
			select {
			case <-s.ctx.Done():
				return iterator.ErrAtEnd
			case out <- parsed:
				return nil
			}
		})
		if err != nil && !iterator.IsEnd(err) {
			log.Error("Source iteration halted", "error", err)
		}
		iterator.Drain(src)
	}()
	return iterator.FromChannel(out), nil
}

// parseEntry reparses the message field of entry, keeping any fields
// the source attached that the parse result does not set itself.
func (s *Session) parseEntry(entry entries.LogEntry) (entries.LogEntry, error) {
	msg, ok := entry.AsString(entries.StandardMessageField)
	if !ok {
		return nil, fmt.Errorf("%w: no message field", parse.ErrNoHeaderMatch)
	}
	parsed, err := s.parser.ProcessLine(msg)
	if err != nil {
		return nil, err
	}
	for k, v := range entry {
		if k == entries.StandardMessageField {
			continue
		}
		if _, taken := parsed[k]; !taken {
			parsed[k] = v
		}
	}
	return parsed, nil
}
