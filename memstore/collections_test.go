package memstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/nutsdb/nutscan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRange(t *testing.T) {
	tests := []struct {
		start, stop, size int64
		lo, hi            int64
		ok                bool
	}{
		{0, 9, 15, 0, 9, true},
		{10, 19, 15, 10, 14, true},
		{0, -1, 5, 0, 4, true},
		{-2, -1, 5, 3, 4, true},
		{-10, 2, 5, 0, 2, true},
		{5, 10, 5, 0, 0, false},
		{3, 1, 5, 0, 0, false},
		{0, 0, 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d..%d/%d", tt.start, tt.stop, tt.size), func(t *testing.T) {
			lo, hi, ok := normalizeRange(tt.start, tt.stop, tt.size)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.lo, lo)
				assert.Equal(t, tt.hi, hi)
			}
		})
	}
}

func TestDB_List(t *testing.T) {
	db := openTestDB(t, DefaultOptions)
	ctx := context.Background()
	target := nutscan.DBTarget(0)

	_, err := db.RPush(0, "l", "b", "c")
	require.NoError(t, err)
	size, err := db.LPush(0, "l", "a0", "a")
	require.NoError(t, err)
	assert.Equal(t, 4, size)

	items, err := db.LRange(ctx, target, "l", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a0", "b", "c"}, items)

	items, err = db.LRange(ctx, target, "l", 2, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, items)

	n, err := db.LLen(ctx, target, "missing")
	require.NoError(t, err)
	assert.Zero(t, n)

	for i := 0; i < 4; i++ {
		_, ok, err := db.LPop(0, "l")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	_, ok, err := db.Type(ctx, target, "l")
	require.NoError(t, err)
	assert.False(t, ok, "an emptied list is removed")
}

func TestDB_Set(t *testing.T) {
	db := openTestDB(t, DefaultOptions)
	ctx := context.Background()
	target := nutscan.DBTarget(0)

	members := make([]string, 23)
	for i := range members {
		members[i] = fmt.Sprintf("m%02d", i)
	}
	added, err := db.SAdd(0, "s", members...)
	require.NoError(t, err)
	assert.Equal(t, 23, added)
	added, err = db.SAdd(0, "s", "m00")
	require.NoError(t, err)
	assert.Zero(t, added)

	n, err := db.SCard(ctx, target, "s")
	require.NoError(t, err)
	assert.Equal(t, int64(23), n)

	var got []string
	cursor := nutscan.CursorStart
	for {
		next, batch, err := db.SScan(ctx, target, "s", cursor, "*", 5)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(batch), 5)
		got = append(got, batch...)
		if next.Done() {
			break
		}
		cursor = next
	}
	assert.Equal(t, members, got)

	removed, err := db.SRem(0, "s", members...)
	require.NoError(t, err)
	assert.Equal(t, 23, removed)
	_, ok, err := db.Type(ctx, target, "s")
	require.NoError(t, err)
	assert.False(t, ok)

	next, batch, err := db.SScan(ctx, target, "s", nutscan.CursorStart, "*", 5)
	require.NoError(t, err)
	assert.Empty(t, batch)
	assert.True(t, next.Done())
}

func TestDB_Hash(t *testing.T) {
	db := openTestDB(t, DefaultOptions)
	ctx := context.Background()
	target := nutscan.DBTarget(0)

	_, err := db.HSet(0, "h", "f1")
	assert.ErrorIs(t, err, ErrOddFieldValues)

	added, err := db.HSet(0, "h", "f1", "v1", "f2", "v2", "f3", "v3")
	require.NoError(t, err)
	assert.Equal(t, 3, added)
	added, err = db.HSet(0, "h", "f1", "changed")
	require.NoError(t, err)
	assert.Zero(t, added)

	n, err := db.HLen(ctx, target, "h")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	next, entries, err := db.HScan(ctx, target, "h", nutscan.CursorStart, "*", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"f1", "changed", "f2", "v2"}, entries)
	require.False(t, next.Done())

	next, entries, err = db.HScan(ctx, target, "h", next, "*", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"f3", "v3"}, entries)
	assert.True(t, next.Done())

	_, err = db.HLen(ctx, target, "missing")
	require.NoError(t, err)
	require.NoError(t, db.Set(0, "str", "v"))
	_, err = db.HLen(ctx, target, "str")
	assert.ErrorIs(t, err, nutscan.ErrWrongType)
}

func TestDB_SortedSet(t *testing.T) {
	db := openTestDB(t, DefaultOptions)
	ctx := context.Background()
	target := nutscan.DBTarget(0)

	added, err := db.ZAdd(0, "z",
		ZMember{Score: 10, Member: "ten"},
		ZMember{Score: 9, Member: "nine"},
		ZMember{Score: 1.5, Member: "low"},
		ZMember{Score: 9, Member: "also-nine"},
	)
	require.NoError(t, err)
	assert.Equal(t, 4, added)

	n, err := db.ZCard(ctx, target, "z")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	entries, err := db.ZRangeWithScores(ctx, target, "z", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"low", "1.5", "also-nine", "9", "nine", "9", "ten", "10"}, entries)

	entries, err = db.ZRangeWithScores(ctx, target, "z", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"also-nine", "9", "nine", "9"}, entries)

	added, err = db.ZAdd(0, "z", ZMember{Score: 0, Member: "ten"})
	require.NoError(t, err)
	assert.Zero(t, added)
	entries, err = db.ZRangeWithScores(ctx, target, "z", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"ten", "0"}, entries)

	entries, err = db.ZRangeWithScores(ctx, target, "z", 10, 20)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDB_EmptyWritesCreateNothing(t *testing.T) {
	db := openTestDB(t, DefaultOptions)
	ctx := context.Background()
	target := nutscan.DBTarget(0)

	size, err := db.RPush(0, "l")
	require.NoError(t, err)
	assert.Zero(t, size)
	size, err = db.LPush(0, "l")
	require.NoError(t, err)
	assert.Zero(t, size)
	added, err := db.SAdd(0, "s")
	require.NoError(t, err)
	assert.Zero(t, added)
	added, err = db.HSet(0, "h")
	require.NoError(t, err)
	assert.Zero(t, added)
	added, err = db.ZAdd(0, "z")
	require.NoError(t, err)
	assert.Zero(t, added)

	for _, key := range []string{"l", "s", "h", "z"} {
		_, ok, err := db.Type(ctx, target, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
	n, err := db.DBSize(ctx, target)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, db.Set(0, "str", "v"))
	_, err = db.RPush(0, "str")
	assert.ErrorIs(t, err, nutscan.ErrWrongType)

	_, err = db.RPush(0, "l", "a")
	require.NoError(t, err)
	size, err = db.RPush(0, "l")
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}
