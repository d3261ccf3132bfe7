package iterator

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/saylorsolutions/logseq/pkg/entries"
)

func numbered(n int) []entries.LogEntry {
	out := make([]entries.LogEntry, n)
	for i := 0; i < n; i++ {
		out[i] = entries.LogEntry{"num": i}
	}
	return out
}

func collectNums(t *testing.T, iter Iterator) []int {
	t.Helper()
	var nums []int
	err := iter.Iterate(func(entry entries.LogEntry, i int) error {
		n, ok := entry.AsInt("num")
		require.True(t, ok)
		nums = append(nums, int(n))
		return nil
	})
	require.NoError(t, err)
	return nums
}

func TestFromSlice(t *testing.T) {
	iter := FromSlice(numbered(3))
	entry, i, err := iter.Next()
	require.NoError(t, err)
	assert.Equal(t, 0, i)
	assert.Equal(t, entries.LogEntry{"num": 0}, entry)

	assert.Equal(t, []int{1, 2}, collectNums(t, iter))

	_, _, err = iter.Next()
	assert.True(t, IsEnd(err))
}

func TestFromChannel(t *testing.T) {
	ch := make(chan entries.LogEntry, 3)
	for _, e := range numbered(3) {
		ch <- e
	}
	close(ch)
	assert.Equal(t, []int{0, 1, 2}, collectNums(t, FromChannel(ch)))
}

func TestIterate_StopEarly(t *testing.T) {
	iter := FromSlice(numbered(5))
	var seen int
	err := iter.Iterate(func(entry entries.LogEntry, i int) error {
		seen++
		if i == 1 {
			return ErrAtEnd
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, seen)
}

func TestMerge(t *testing.T) {
	a := FromSlice(numbered(3))
	b := FromSlice([]entries.LogEntry{{"num": 10}, {"num": 11}})
	nums := collectNums(t, Merge(a, b))
	sort.Ints(nums)
	assert.Equal(t, []int{0, 1, 2, 10, 11}, nums)
}

func TestDupe(t *testing.T) {
	a, b := Dupe(FromSlice(numbered(4)))
	var nums [2][]int
	done := make(chan int, 2)
	go func() {
		nums[0] = collectNums(t, a)
		done <- 0
	}()
	go func() {
		nums[1] = collectNums(t, b)
		done <- 0
	}()
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("Dupe branches did not finish")
		}
	}
	assert.Equal(t, []int{0, 1, 2, 3}, nums[0])
	assert.Equal(t, []int{0, 1, 2, 3}, nums[1])
}

func TestConcat(t *testing.T) {
	out := Concat(FromSlice(numbered(2)), FromSlice([]entries.LogEntry{{"num": 5}}))
	assert.Equal(t, []int{0, 1, 5}, collectNums(t, out))
}

func TestFilter(t *testing.T) {
	even := Filter(FromSlice(numbered(6)), func(entry entries.LogEntry, i int, err error) bool {
		n, _ := entry.AsInt("num")
		return n%2 == 0
	})
	assert.Equal(t, []int{0, 2, 4}, collectNums(t, even))
}

func TestCancellable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	iter := Cancellable(ctx, FromSlice(numbered(3)))

	_, _, err := iter.Next()
	require.NoError(t, err)

	cancel()
	// the cancel signal propagates through a goroutine
	assert.Eventually(t, func() bool {
		_, _, err := iter.Next()
		return IsEnd(err)
	}, 5*time.Second, 10*time.Millisecond)
}

func TestTransformer(t *testing.T) {
	spec := entries.NewTransformSpec().With("num", func(val any) any {
		if n, ok := val.(int); ok {
			return n + 100
		}
		return val
	})
	out := Transformer(FromSlice(numbered(2)), spec)
	assert.Equal(t, []int{100, 101}, collectNums(t, out))
}
