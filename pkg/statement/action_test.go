package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSplit_Validation(t *testing.T) {
	_, err := NewSplit("")
	assert.ErrorIs(t, err, ErrRuleDefinition)

	_, err = NewSplitPattern(`[unclosed`, false)
	assert.ErrorIs(t, err, ErrRuleDefinition)
}

func TestSplit_Apply(t *testing.T) {
	split, err := NewSplit(" ,")
	require.NoError(t, err)

	tests := map[string]struct {
		in       []Span
		expected []Span
	}{
		"basic": {
			in:       []Span{open("a b,c")},
			expected: []Span{open("a"), open("b"), open("c")},
		},
		"separator runs collapse": {
			in:       []Span{open("a  , b")},
			expected: []Span{open("a"), open("b")},
		},
		"protected spans untouched": {
			in:       []Span{protected("a b"), open("c d")},
			expected: []Span{protected("a b"), open("c"), open("d")},
		},
		"leading and trailing": {
			in:       []Span{open(" a ")},
			expected: []Span{open("a")},
		},
		"no separators": {
			in:       []Span{open("abc")},
			expected: []Span{open("abc")},
		},
	}
	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, split.Apply(tc.in))
		})
	}
}

func TestSplitKeep_Apply(t *testing.T) {
	split, err := NewSplitKeep(" ")
	require.NoError(t, err)

	got := split.Apply([]Span{open("a  b")})
	assert.Equal(t, []Span{open("a"), open("  "), open("b")}, got)

	// keeping separators preserves the concatenation of the body
	assert.Equal(t, "a  b", Concat(got))
}

func TestSplitPattern_Apply(t *testing.T) {
	split, err := NewSplitPattern(`->`, false)
	require.NoError(t, err)
	got := split.Apply([]Span{open("src->dst")})
	assert.Equal(t, []Span{open("src"), open("dst")}, got)
}

func TestConditionalSplit_Apply(t *testing.T) {
	// split on "," only where no digit borders the separator
	cond, err := MatchNeither(`\d`)
	require.NoError(t, err)
	split, err := NewConditionalSplit(",", cond)
	require.NoError(t, err)

	tests := map[string]struct {
		in       string
		expected []Span
	}{
		"all accepted": {
			in:       "a,b,c",
			expected: []Span{open("a"), open("b"), open("c")},
		},
		"all rejected": {
			in:       "1,2,3",
			expected: []Span{open("1,2,3")},
		},
		"each occurrence judged independently": {
			in:       "a,b,3,c,d",
			expected: []Span{open("a"), open("b,3,c"), open("d")},
		},
	}
	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, split.Apply([]Span{open(tc.in)}))
		})
	}
}

func TestMatchEither(t *testing.T) {
	cond, err := MatchEither(`^\d+$`)
	require.NoError(t, err)
	split, err := NewConditionalSplit(":", cond)
	require.NoError(t, err)

	// "port:8080" splits, "key:value" does not
	got := split.Apply([]Span{open("port:8080"), open("key:value")})
	assert.Equal(t, []Span{open("port"), open("8080"), open("key:value")}, got)
}

func TestNewConditionalSplit_NilCondition(t *testing.T) {
	_, err := NewConditionalSplit(",", nil)
	assert.ErrorIs(t, err, ErrRuleDefinition)
}
