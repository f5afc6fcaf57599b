// Copyright 2026 The nutsdb Author. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package nutscan

import (
	"context"

	"github.com/samber/mo"
	"golang.org/x/time/rate"
)

var _ Store = (*RateLimitedStore)(nil)

// RateLimitedStore waits on a token bucket before every round trip so a
// long scan does not monopolise a production store.
type RateLimitedStore struct {
	s       Store
	limiter *rate.Limiter
}

// RateLimited wraps s with a limiter allowing perSecond calls with the given burst.
func RateLimited(s Store, perSecond float64, burst int) *RateLimitedStore {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitedStore{
		s:       s,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (rs *RateLimitedStore) Scan(ctx context.Context, t Target, cursor Cursor, pattern string, count int) (Cursor, []string, error) {
	if err := rs.limiter.Wait(ctx); err != nil {
		return cursor, nil, err
	}
	return rs.s.Scan(ctx, t, cursor, pattern, count)
}

func (rs *RateLimitedStore) SScan(ctx context.Context, t Target, key string, cursor Cursor, pattern string, count int) (Cursor, []string, error) {
	if err := rs.limiter.Wait(ctx); err != nil {
		return cursor, nil, err
	}
	return rs.s.SScan(ctx, t, key, cursor, pattern, count)
}

func (rs *RateLimitedStore) HScan(ctx context.Context, t Target, key string, cursor Cursor, pattern string, count int) (Cursor, []string, error) {
	if err := rs.limiter.Wait(ctx); err != nil {
		return cursor, nil, err
	}
	return rs.s.HScan(ctx, t, key, cursor, pattern, count)
}

func (rs *RateLimitedStore) LRange(ctx context.Context, t Target, key string, start, stop int64) ([]string, error) {
	if err := rs.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return rs.s.LRange(ctx, t, key, start, stop)
}

func (rs *RateLimitedStore) ZRangeWithScores(ctx context.Context, t Target, key string, start, stop int64) ([]string, error) {
	if err := rs.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return rs.s.ZRangeWithScores(ctx, t, key, start, stop)
}

func (rs *RateLimitedStore) LLen(ctx context.Context, t Target, key string) (int64, error) {
	if err := rs.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	return rs.s.LLen(ctx, t, key)
}

func (rs *RateLimitedStore) SCard(ctx context.Context, t Target, key string) (int64, error) {
	if err := rs.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	return rs.s.SCard(ctx, t, key)
}

func (rs *RateLimitedStore) ZCard(ctx context.Context, t Target, key string) (int64, error) {
	if err := rs.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	return rs.s.ZCard(ctx, t, key)
}

func (rs *RateLimitedStore) HLen(ctx context.Context, t Target, key string) (int64, error) {
	if err := rs.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	return rs.s.HLen(ctx, t, key)
}

func (rs *RateLimitedStore) DBSize(ctx context.Context, t Target) (int64, error) {
	if err := rs.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	return rs.s.DBSize(ctx, t)
}

func (rs *RateLimitedStore) Type(ctx context.Context, t Target, key string) (KeyType, bool, error) {
	if err := rs.limiter.Wait(ctx); err != nil {
		return Unknown, false, err
	}
	return rs.s.Type(ctx, t, key)
}

func (rs *RateLimitedStore) Get(ctx context.Context, t Target, key string) (mo.Option[string], error) {
	if err := rs.limiter.Wait(ctx); err != nil {
		return mo.None[string](), err
	}
	return rs.s.Get(ctx, t, key)
}
