package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemove_Apply(t *testing.T) {
	rm, err := NewRemove(`\d+`)
	require.NoError(t, err)

	tests := map[string]struct {
		in       []Span
		expected []Span
	}{
		"all matches removed": {
			in:       []Span{open("a1b22c")},
			expected: []Span{open("a"), open("b"), open("c")},
		},
		"protected spans keep their text": {
			in:       []Span{protected("a1b")},
			expected: []Span{protected("a1b")},
		},
		"no match": {
			in:       []Span{open("abc")},
			expected: []Span{open("abc")},
		},
		"whole span removed": {
			in:       []Span{open("123")},
			expected: []Span{},
		},
	}
	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, rm.Apply(tc.in))
		})
	}
}

func TestRemove_MultiplePatterns(t *testing.T) {
	rm, err := NewRemove(`\d+`, `#`)
	require.NoError(t, err)
	got := rm.Apply([]Span{open("a1#b")})
	assert.Equal(t, []Span{open("a"), open("b")}, got)
}

func TestRemovePartial_Apply(t *testing.T) {
	rm, err := NewRemovePartial(1, `-`)
	require.NoError(t, err)

	// only the first match per span goes away
	got := rm.Apply([]Span{open("-a-b")})
	assert.Equal(t, []Span{open("a-b")}, got)
}

func TestNewRemove_Validation(t *testing.T) {
	_, err := NewRemove()
	assert.ErrorIs(t, err, ErrRuleDefinition)
	_, err = NewRemovePartial(0, `-`)
	assert.ErrorIs(t, err, ErrRuleDefinition)
}
