package btree

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertGetContains(t *testing.T) {
	tr := New()
	for i := int64(0); i < 50; i++ {
		tr.Insert(i, int(i)*10)
	}
	for i := int64(0); i < 50; i++ {
		v, ok := tr.Get(i)
		assert.True(t, ok)
		assert.Equal(t, int(i)*10, v)
	}
	assert.False(t, tr.Contains(999))
}

func TestInsertReplace(t *testing.T) {
	tr := New()
	tr.Insert(1, 100)
	tr.Insert(1, 200)
	v, ok := tr.Get(1)
	require.True(t, ok)
	assert.Equal(t, 200, v)
	assert.Equal(t, 1, tr.Len())
}

func TestForwardReverseOrder(t *testing.T) {
	tr := New(WithDegree(3))
	keys := []int64{5, 1, 9, 3, 7, 2, 8, 4, 6, 0}
	for _, k := range keys {
		tr.Insert(k, int(k))
	}

	forward := tr.Forward()
	require.Len(t, forward, len(keys))
	for i := 1; i < len(forward); i++ {
		assert.Less(t, forward[i-1].Key, forward[i].Key)
	}

	reverse := tr.Reverse()
	for i := 1; i < len(reverse); i++ {
		assert.Greater(t, reverse[i-1].Key, reverse[i].Key)
	}
}

func TestLenAfterMixedInsertsAndReplacements(t *testing.T) {
	tr := New(WithDegree(3))
	distinct := map[int64]bool{}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		k := int64(rng.Intn(40))
		tr.Insert(k, i)
		distinct[k] = true
	}
	assert.Equal(t, len(distinct), tr.Len())
}

func TestRangeHalfOpen(t *testing.T) {
	tr := New(WithDegree(3))
	for i := int64(0); i < 20; i++ {
		tr.Insert(i, int(i))
	}
	start, stop := int64(5), int64(10)
	pairs, err := tr.Range(&start, &stop, 0)
	require.NoError(t, err)
	var got []int64
	for _, p := range pairs {
		got = append(got, p.Key)
	}
	assert.Equal(t, []int64{5, 6, 7, 8, 9}, got)
}

func TestRangeStopOnlyDescending(t *testing.T) {
	tr := New()
	for i := int64(0); i < 10; i++ {
		tr.Insert(i, int(i))
	}
	stop := int64(4)
	pairs, err := tr.Range(nil, &stop, 0)
	require.NoError(t, err)
	var got []int64
	for _, p := range pairs {
		got = append(got, p.Key)
	}
	assert.Equal(t, []int64{3, 2, 1, 0}, got)
}

func TestRangeRejectsBadStep(t *testing.T) {
	tr := New()
	_, err := tr.Range(nil, nil, 2)
	assert.Error(t, err)
}

func TestDeleteTombstones(t *testing.T) {
	tr := New()
	tr.Insert(1, 10)
	tr.Insert(2, 20)
	assert.True(t, tr.Delete(1))
	assert.False(t, tr.Contains(1))
	assert.False(t, tr.Delete(1), "second delete of the same key should report not found")
	_, ok := tr.Get(2)
	assert.True(t, ok, "deleting key 1 should not affect key 2")
}

func TestSplitsAcrossManyInserts(t *testing.T) {
	tr := New(WithDegree(4))
	n := 500
	keys := make([]int64, n)
	for i := range keys {
		keys[i] = int64(i)
	}
	rng := rand.New(rand.NewSource(42))
	rng.Shuffle(n, func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	for _, k := range keys {
		tr.Insert(k, int(k))
	}
	require.Equal(t, n, tr.Len())

	forward := tr.Forward()
	sorted := append([]int64{}, keys...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for i, p := range forward {
		assert.Equal(t, sorted[i], p.Key)
		assert.Equal(t, int(sorted[i]), p.Slot)
	}
}
