package nutscan

import (
	"context"

	"github.com/nutsdb/nutscan/metrics"
	"github.com/samber/mo"
)

// instrumentedStore counts every round trip in the metrics package.
type instrumentedStore struct {
	s Store
}

// Instrument wraps s so every call is counted in the metrics package.
func Instrument(s Store) Store {
	if _, ok := s.(instrumentedStore); ok {
		return s
	}
	return instrumentedStore{s: s}
}

func (is instrumentedStore) Scan(ctx context.Context, t Target, cursor Cursor, pattern string, count int) (Cursor, []string, error) {
	next, keys, err := is.s.Scan(ctx, t, cursor, pattern, count)
	metrics.ObserveStoreCall("SCAN", err)
	return next, keys, err
}

func (is instrumentedStore) SScan(ctx context.Context, t Target, key string, cursor Cursor, pattern string, count int) (Cursor, []string, error) {
	next, members, err := is.s.SScan(ctx, t, key, cursor, pattern, count)
	metrics.ObserveStoreCall("SSCAN", err)
	return next, members, err
}

func (is instrumentedStore) HScan(ctx context.Context, t Target, key string, cursor Cursor, pattern string, count int) (Cursor, []string, error) {
	next, entries, err := is.s.HScan(ctx, t, key, cursor, pattern, count)
	metrics.ObserveStoreCall("HSCAN", err)
	return next, entries, err
}

func (is instrumentedStore) LRange(ctx context.Context, t Target, key string, start, stop int64) ([]string, error) {
	items, err := is.s.LRange(ctx, t, key, start, stop)
	metrics.ObserveStoreCall("LRANGE", err)
	return items, err
}

func (is instrumentedStore) ZRangeWithScores(ctx context.Context, t Target, key string, start, stop int64) ([]string, error) {
	entries, err := is.s.ZRangeWithScores(ctx, t, key, start, stop)
	metrics.ObserveStoreCall("ZRANGE", err)
	return entries, err
}

func (is instrumentedStore) LLen(ctx context.Context, t Target, key string) (int64, error) {
	n, err := is.s.LLen(ctx, t, key)
	metrics.ObserveStoreCall("LLEN", err)
	return n, err
}

func (is instrumentedStore) SCard(ctx context.Context, t Target, key string) (int64, error) {
	n, err := is.s.SCard(ctx, t, key)
	metrics.ObserveStoreCall("SCARD", err)
	return n, err
}

func (is instrumentedStore) ZCard(ctx context.Context, t Target, key string) (int64, error) {
	n, err := is.s.ZCard(ctx, t, key)
	metrics.ObserveStoreCall("ZCARD", err)
	return n, err
}

func (is instrumentedStore) HLen(ctx context.Context, t Target, key string) (int64, error) {
	n, err := is.s.HLen(ctx, t, key)
	metrics.ObserveStoreCall("HLEN", err)
	return n, err
}

func (is instrumentedStore) DBSize(ctx context.Context, t Target) (int64, error) {
	n, err := is.s.DBSize(ctx, t)
	metrics.ObserveStoreCall("DBSIZE", err)
	return n, err
}

func (is instrumentedStore) Type(ctx context.Context, t Target, key string) (KeyType, bool, error) {
	kt, ok, err := is.s.Type(ctx, t, key)
	metrics.ObserveStoreCall("TYPE", err)
	return kt, ok, err
}

func (is instrumentedStore) Get(ctx context.Context, t Target, key string) (mo.Option[string], error) {
	v, err := is.s.Get(ctx, t, key)
	metrics.ObserveStoreCall("GET", err)
	return v, err
}
