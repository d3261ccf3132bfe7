package entries

import (
	"strings"
	"time"
)

// TransformFunc rewrites a single field value.
type TransformFunc func(val any) any

func (fn TransformFunc) then(after TransformFunc) TransformFunc {
	if fn == nil {
		return after
	}
	return func(val any) any {
		return after(fn(val))
	}
}

// TransformSpec maps field names to transforms applied by Transform.
// A field that is absent or nil is left alone.
type TransformSpec map[string]TransformFunc

func NewTransformSpec() TransformSpec {
	return TransformSpec{}
}

// With adds a field transform.
// Adding a transform for a field that already has one chains the new
// function after the existing one.
func (s TransformSpec) With(field string, fn TransformFunc) TransformSpec {
	s[field] = s[field].then(fn)
	return s
}

// Transform returns a copy of entry with field values rewritten
// according to spec. The input entry is not modified; duplicated
// iterators may share it.
func Transform(entry LogEntry, spec TransformSpec) LogEntry {
	out := make(LogEntry, len(entry))
	for k, v := range entry {
		out[k] = v
	}
	for field, fn := range spec {
		if fn == nil {
			continue
		}
		if val, ok := out[field]; ok && val != nil {
			out[field] = fn(val)
		}
	}
	return out
}

// FormatTime returns a transform that renders time.Time values with the
// given layout. Non-time values pass through unchanged.
func FormatTime(layout string) TransformFunc {
	return func(val any) any {
		if t, ok := val.(time.Time); ok {
			return t.Format(layout)
		}
		return val
	}
}

// JoinWords returns a transform that joins a word list into one string.
// Non-list values pass through unchanged.
func JoinWords(sep string) TransformFunc {
	return func(val any) any {
		if words, ok := val.([]string); ok {
			return strings.Join(words, sep)
		}
		return val
	}
}
