package entries

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

const (
	StandardTimestampField = "@timestamp"
	StandardHostField      = "@host"
	StandardMessageField   = "@message"
	StandardWordsField     = "@words"
)

// LogEntry is a single parsed log line, with potentially many fields.
// The header parser contributes @timestamp, @host, and any named auxiliary
// captures; the statement parser contributes @words.
type LogEntry map[string]any

func (e LogEntry) HasField(name string) bool {
	_, ok := e[name]
	return ok
}

func (e LogEntry) AsFloat(name string) (float64, bool) {
	if !e.HasField(name) {
		return 0, false
	}
	if f, ok := e[name].(float64); ok {
		return f, true
	}
	if s, ok := e[name].(string); ok {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	v := reflect.ValueOf(e[name])
	if v.CanFloat() {
		switch v.Kind() {
		case reflect.Float64:
			return e[name].(float64), true
		case reflect.Float32:
			return float64(e[name].(float32)), true
		}
	}
	return 0, false
}

func (e LogEntry) AsInt(name string) (int64, bool) {
	if !e.HasField(name) {
		return 0, false
	}
	if i, ok := e[name].(int64); ok {
		return i, true
	}
	if s, ok := e[name].(string); ok {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	v := reflect.ValueOf(e[name])
	if v.CanInt() {
		switch v.Kind() {
		case reflect.Int64:
			return e[name].(int64), true
		case reflect.Int32:
			return int64(e[name].(int32)), true
		case reflect.Int:
			return int64(e[name].(int)), true
		}
	}
	return 0, false
}

func (e LogEntry) AsString(name string) (string, bool) {
	if !e.HasField(name) {
		return "", false
	}
	if s, ok := e[name].(string); ok {
		return s, true
	}
	if s, ok := e[name].(interface{ String() string }); ok {
		return s.String(), true
	}
	if err, ok := e[name].(error); ok {
		return err.Error(), true
	}
	return fmt.Sprintf("%v", e[name]), true
}

func (e LogEntry) AsTime(name string, format ...string) (time.Time, bool) {
	var none time.Time
	if !e.HasField(name) {
		return none, false
	}
	if t, ok := e[name].(time.Time); ok {
		return t, true
	}
	if s, ok := e.AsString(name); ok {
		if len(format) > 0 {
			for _, f := range format {
				t, err := time.Parse(f, s)
				if err == nil {
					return t, true
				}
			}
		} else {
			t, err := time.Parse(time.RFC3339, s)
			if err == nil {
				return t, true
			}
		}
	}
	return none, false
}

// AsWords returns the field as an ordered word list.
// A bare string is treated as a single-element list.
func (e LogEntry) AsWords(name string) ([]string, bool) {
	if !e.HasField(name) {
		return nil, false
	}
	switch v := e[name].(type) {
	case []string:
		return v, true
	case []any:
		words := make([]string, len(v))
		for i, w := range v {
			if s, ok := w.(string); ok {
				words[i] = s
				continue
			}
			words[i] = fmt.Sprintf("%v", w)
		}
		return words, true
	case string:
		return []string{v}, true
	}
	return nil, false
}

// Timestamp is shorthand for the standard timestamp field.
func (e LogEntry) Timestamp() (time.Time, bool) {
	return e.AsTime(StandardTimestampField)
}

// Words is shorthand for the standard word sequence field.
func (e LogEntry) Words() ([]string, bool) {
	return e.AsWords(StandardWordsField)
}

// FromString creates a LogEntry from a line of text.
// If the line is a valid JSON object its fields are used directly,
// otherwise the whole line becomes the @message field.
func FromString(msg string) LogEntry {
	entry := LogEntry{}
	if err := json.Unmarshal([]byte(msg), &entry); err != nil {
		entry[StandardMessageField] = msg
	}
	return entry
}
