package nutscan_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nutsdb/nutscan"
	"github.com/nutsdb/nutscan/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	targetA = nutscan.DBTarget(0)
	targetB = nutscan.DBTarget(1)
)

func keysOf(elems []*nutscan.CollectionElement) []string {
	out := make([]string, 0, len(elems))
	for _, el := range elems {
		out = append(out, el.Key)
	}
	return out
}

func twoTargetStore() *testutils.Store {
	return &testutils.Store{
		Keyspace: map[nutscan.Target]testutils.Steps{
			targetA: {{Next: nutscan.CursorStart, Items: []string{"a1", "a2"}}},
			targetB: {{Next: nutscan.CursorStart, Items: []string{"b1"}}},
		},
		Types: map[string]nutscan.KeyType{
			"a1": nutscan.String,
			"a2": nutscan.Hash,
			"b1": nutscan.List,
		},
	}
}

func newTestSession(t *testing.T, store nutscan.Store, targets ...nutscan.Target) *nutscan.Session {
	return newTestSessionWithOptions(t, store, nutscan.DefaultOptions, targets...)
}

func newTestSessionWithOptions(t *testing.T, store nutscan.Store, opts nutscan.Options, targets ...nutscan.Target) *nutscan.Session {
	s, err := nutscan.NewSession(store, nutscan.StaticTargets(targets), "*", opts)
	require.NoError(t, err)
	return s
}

func TestSession_WalksTargetsInOrder(t *testing.T) {
	store := twoTargetStore()
	s := newTestSession(t, store, targetA, targetB)
	ctx := context.Background()

	assert.True(t, s.HasMore())

	batch, more, err := s.LoadNext(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, keysOf(batch))
	assert.True(t, more)
	assert.Equal(t, nutscan.String, batch[0].Type)
	assert.Equal(t, nutscan.Hash, batch[1].Type)
	assert.Equal(t, targetA, batch[0].Target)
	assert.NotEqual(t, batch[0].ID, batch[1].ID)

	batch, more, err = s.LoadNext(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, keysOf(batch))
	assert.False(t, more)
	assert.False(t, s.HasMore())

	scans := store.CallCount("SCAN")
	for i := 0; i < 2; i++ {
		batch, more, err = s.LoadNext(ctx, false)
		require.NoError(t, err)
		assert.Empty(t, batch)
		assert.False(t, more)
	}
	assert.Equal(t, scans, store.CallCount("SCAN"), "an exhausted scan does not touch the store")
}

func TestSession_ClearCacheRestarts(t *testing.T) {
	store := twoTargetStore()
	s := newTestSession(t, store, targetA, targetB)
	ctx := context.Background()

	_, _, err := s.LoadNext(ctx, false)
	require.NoError(t, err)
	_, more, err := s.LoadNext(ctx, false)
	require.NoError(t, err)
	require.False(t, more)

	batch, more, err := s.LoadNext(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, keysOf(batch))
	assert.True(t, more)

	s.Reset()
	batch, _, err = s.LoadNext(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, keysOf(batch))
}

func TestSession_ContinuesAcrossEmptySteps(t *testing.T) {
	store := &testutils.Store{
		Keyspace: map[nutscan.Target]testutils.Steps{
			targetA: {
				{Next: "3"},
				{Next: "6"},
				{Next: "9", Items: []string{"k1"}},
				{Next: nutscan.CursorStart},
			},
			targetB: {{Next: nutscan.CursorStart}},
		},
		Types: map[string]nutscan.KeyType{"k1": nutscan.String},
	}
	s := newTestSession(t, store, targetA, targetB)
	ctx := context.Background()

	batch, more, err := s.LoadNext(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"k1"}, keysOf(batch))
	assert.True(t, more)
	assert.Equal(t, nutscan.Cursor("9"), s.State().Cursor)

	batch, more, err = s.LoadNext(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, batch)
	assert.False(t, more)
}

func TestSession_DropsStaleKeys(t *testing.T) {
	store := &testutils.Store{
		Keyspace: map[nutscan.Target]testutils.Steps{
			targetA: {
				{Next: "5", Items: []string{"gone"}},
				{Next: nutscan.CursorStart, Items: []string{"kept", "gone-too"}},
			},
		},
		Types: map[string]nutscan.KeyType{"kept": nutscan.Set},
	}
	s := newTestSession(t, store, targetA)

	batch, more, err := s.LoadNext(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, keysOf(batch))
	assert.False(t, more)
}

func TestSession_TransientErrorKeepsState(t *testing.T) {
	store := twoTargetStore()
	s := newTestSession(t, store, targetA, targetB)
	ctx := context.Background()

	_, _, err := s.LoadNext(ctx, false)
	require.NoError(t, err)
	before := s.State()

	boom := errors.New("connection refused")
	store.SetErr("SCAN", boom)
	batch, more, err := s.LoadNext(ctx, false)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, batch)
	assert.True(t, more)
	assert.Equal(t, before, s.State())

	store.SetErr("SCAN", nil)
	batch, more, err = s.LoadNext(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, keysOf(batch))
	assert.False(t, more)
}

func TestSession_TypeErrorKeepsState(t *testing.T) {
	store := twoTargetStore()
	s := newTestSession(t, store, targetA, targetB)
	ctx := context.Background()

	store.SetErr("TYPE", errors.New("timeout"))
	_, _, err := s.LoadNext(ctx, false)
	require.Error(t, err)
	assert.True(t, s.HasMore())

	store.SetErr("TYPE", nil)
	batch, _, err := s.LoadNext(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, keysOf(batch))
}

func TestSession_StalledScanIsNotExhausted(t *testing.T) {
	store := &testutils.Store{
		Keyspace: map[nutscan.Target]testutils.Steps{
			targetA: {
				{Next: "5"},
				{Next: "7"},
				{Next: nutscan.CursorStart, Items: []string{"a1"}},
			},
		},
		Types: map[string]nutscan.KeyType{"a1": nutscan.String},
	}
	opts := nutscan.DefaultOptions
	opts.MaxEmptyScans = 2
	s := newTestSessionWithOptions(t, store, opts, targetA)
	ctx := context.Background()

	batch, more, err := s.LoadNext(ctx, false)
	assert.True(t, nutscan.IsScanStalled(err))
	assert.Empty(t, batch)
	assert.True(t, more)
	assert.Equal(t, nutscan.Cursor("7"), s.State().Cursor)
	assert.False(t, s.State().Exhausted)

	batch, more, err = s.LoadNext(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, keysOf(batch))
	assert.False(t, more)
	assert.Equal(t, 3, store.CallCount("SCAN"))
}

func TestSession_Cancelled(t *testing.T) {
	store := twoTargetStore()
	s := newTestSession(t, store, targetA, targetB)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, more, err := s.LoadNext(ctx, false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, more)
	assert.Zero(t, store.CallCount("SCAN"))

	batch, _, err := s.LoadNext(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, keysOf(batch))
}

func TestSession_NoTargets(t *testing.T) {
	s := newTestSession(t, &testutils.Store{})

	batch, more, err := s.LoadNext(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, batch)
	assert.False(t, more)
}

func TestSession_LoadAndSize(t *testing.T) {
	store := twoTargetStore()
	store.Sizes = map[string]int64{"b1": 2}
	store.Ranges = map[string][]string{"b1": {"x", "y"}}
	s := newTestSession(t, store, targetB)
	ctx := context.Background()

	batch, _, err := s.LoadNext(ctx, false)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	el, err := s.Load(ctx, batch[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, []string{el.Values[0].MemberValue, el.Values[1].MemberValue})

	n, err := s.Size(ctx, el)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = s.Load(ctx, nil)
	assert.Error(t, err)
}

func TestSession_RateLimited(t *testing.T) {
	store := twoTargetStore()
	opts := nutscan.DefaultOptions
	opts.StoreRate = 1000
	opts.StoreBurst = 100
	s := newTestSessionWithOptions(t, store, opts, targetA)

	batch, _, err := s.LoadNext(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, batch, 2)
}
