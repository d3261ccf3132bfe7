package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Tokenize(t *testing.T) {
	split, err := NewSplit(" ")
	require.NoError(t, err)
	p := NewParser([]Action{split})

	assert.Equal(t, []string{"a", "b"}, p.Tokenize("a b"))
	assert.Equal(t, []string{}, p.Tokenize(""))
}

func TestParser_TokenizeNoise(t *testing.T) {
	keep, err := NewSplitKeep(" ")
	require.NoError(t, err)

	// kept separator runs are pure noise and drop out of the word list
	p := NewParser([]Action{keep})
	assert.Equal(t, []string{"a", "b"}, p.Tokenize("a  b"))

	// a protected span survives even when it is all noise
	fix, err := NewFix(`\s+`)
	require.NoError(t, err)
	p = NewParser([]Action{fix})
	assert.Equal(t, []string{"  "}, p.Tokenize("  "))
}

func TestParser_ActionOrder(t *testing.T) {
	// fixing before splitting keeps the time token whole
	fix, err := NewFix(`\d{2}:\d{2}:\d{2}`)
	require.NoError(t, err)
	colonSplit, err := NewSplit(":")
	require.NoError(t, err)

	fixFirst := NewParser([]Action{fix, colonSplit})
	assert.Equal(t, []string{"12:34:56"}, fixFirst.Tokenize("12:34:56"))

	splitFirst := NewParser([]Action{colonSplit, fix})
	assert.Equal(t, []string{"12", "34", "56"}, splitFirst.Tokenize("12:34:56"))
}

func TestParser_DefaultChainShape(t *testing.T) {
	// the canonical chain: symbol split, address fix, known-token fix,
	// then a late colon split
	symbolSplit, err := NewSplit("\"()[]{}|+',=><;`# ")
	require.NoError(t, err)
	timeFix, err := NewFix(`^\d{2}:\d{2}:\d{2}(\.\d+)?$`)
	require.NoError(t, err)
	colonSplit, err := NewSplit(":")
	require.NoError(t, err)
	p := NewParser([]Action{
		symbolSplit,
		NewFixIP(),
		timeFix,
		colonSplit,
	})

	got := p.Tokenize("host 2001:0db8:1234::1 (interface:eth0) disconnected")
	assert.Equal(t, []string{"host", "2001:0db8:1234::1", "interface", "eth0", "disconnected"}, got)
}

func TestWords(t *testing.T) {
	spans := []Span{open("a"), protected("b c"), open("")}
	assert.Equal(t, []string{"a", "b c"}, Words(spans))
}
