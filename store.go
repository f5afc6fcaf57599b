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
)

// Store is the data store client the engine pages through. Every method is
// one round trip and is addressed to a single target. Timeouts are the
// client's business; the engine only propagates ctx.
type Store interface {
	// Scan runs one SCAN step over the target's keyspace. A non-final step
	// may legally return no keys.
	Scan(ctx context.Context, t Target, cursor Cursor, pattern string, count int) (Cursor, []string, error)

	// SScan runs one SSCAN step over the members of a set.
	SScan(ctx context.Context, t Target, key string, cursor Cursor, pattern string, count int) (Cursor, []string, error)

	// HScan runs one HSCAN step; the reply alternates field names and values.
	HScan(ctx context.Context, t Target, key string, cursor Cursor, pattern string, count int) (Cursor, []string, error)

	// LRange returns list items start..stop inclusive.
	LRange(ctx context.Context, t Target, key string, start, stop int64) ([]string, error)

	// ZRangeWithScores returns sorted set ranks start..stop inclusive as
	// alternating members and scores.
	ZRangeWithScores(ctx context.Context, t Target, key string, start, stop int64) ([]string, error)

	LLen(ctx context.Context, t Target, key string) (int64, error)
	SCard(ctx context.Context, t Target, key string) (int64, error)
	ZCard(ctx context.Context, t Target, key string) (int64, error)
	HLen(ctx context.Context, t Target, key string) (int64, error)

	// DBSize returns the number of keys in the target.
	DBSize(ctx context.Context, t Target) (int64, error)

	// Type returns the type of key; ok is false when the key does not exist
	// or has a type the engine does not page through.
	Type(ctx context.Context, t Target, key string) (kt KeyType, ok bool, err error)

	// Get returns the value of a string key, absent when the key is gone.
	Get(ctx context.Context, t Target, key string) (mo.Option[string], error)
}
