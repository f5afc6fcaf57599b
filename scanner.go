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

	"github.com/bwmarrin/snowflake"
	"github.com/nutsdb/nutscan/metrics"
	"github.com/pkg/errors"
)

// Scanner enumerates the top-level keys of one target.
type Scanner struct {
	store Store
	opts  Options
	ids   *snowflake.Node
}

// NewScanner returns a Scanner reading from store.
func NewScanner(store Store, opts Options) (*Scanner, error) {
	node, err := snowflake.NewNode(opts.NodeNum)
	if err != nil {
		return nil, errors.Wrap(err, "element id generator")
	}
	return &Scanner{
		store: store,
		opts:  opts.withDefaults(),
		ids:   node,
	}, nil
}

// Scan continues the keyspace scan of target at cursor and returns the next
// cursor with the classified keys of the first non-empty step. The returned
// batch is empty only when next is done, or when every key of the step
// vanished or has an unsupported type.
//
// On ErrScanStalled next is the cursor reached so far; no keys were skipped
// getting there, so resuming from it is safe.
func (s *Scanner) Scan(ctx context.Context, pattern string, target Target, cursor Cursor) (next Cursor, elems []*CollectionElement, err error) {
	next, keys, err := s.scanKeys(ctx, pattern, target, cursor)
	if err != nil {
		return next, nil, err
	}

	elems, err = s.classify(ctx, target, keys)
	if err != nil {
		return cursor, nil, err
	}
	return next, elems, nil
}

// scanKeys repeats SCAN until a step returns keys or the scan ends.
func (s *Scanner) scanKeys(ctx context.Context, pattern string, target Target, cursor Cursor) (Cursor, []string, error) {
	if cursor == CursorNone {
		cursor = CursorStart
	}

	cur := cursor
	for empty := 0; ; {
		if err := ctx.Err(); err != nil {
			return cursor, nil, err
		}

		next, keys, err := s.store.Scan(ctx, target, cur, pattern, s.opts.ScanCount)
		if err != nil {
			return cursor, nil, errors.Wrapf(err, "scan %s at cursor %q", target, cur)
		}
		cur = next

		if len(keys) > 0 || cur.Done() {
			return cur, keys, nil
		}

		empty++
		if s.opts.MaxEmptyScans > 0 && empty >= s.opts.MaxEmptyScans {
			metrics.IncScanStalls()
			GetLogger().Printf("scan of %s stalled after %d empty steps at cursor %q", target, empty, cur)
			return cur, nil, errors.WithMessagef(ErrScanStalled, "%s at cursor %q", target, cur)
		}
	}
}

// classify looks up the type of every key and drops the ones that vanished
// or that the engine can not page through.
func (s *Scanner) classify(ctx context.Context, target Target, keys []string) ([]*CollectionElement, error) {
	elems := make([]*CollectionElement, 0, len(keys))
	stale := 0
	for _, key := range keys {
		kt, ok, err := s.store.Type(ctx, target, key)
		if err != nil {
			return nil, errors.Wrapf(err, "type of %q in %s", key, target)
		}
		if !ok {
			stale++
			continue
		}

		el := NewElement(key, kt, target)
		el.ID = s.ids.Generate().Int64()
		elems = append(elems, el)
	}

	if stale > 0 {
		metrics.IncStaleKeys(stale)
		GetLogger().Printf("dropped %d vanished or unsupported keys from %s", stale, target)
	}
	return elems, nil
}
