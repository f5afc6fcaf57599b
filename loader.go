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
	"sort"

	"github.com/nutsdb/nutscan/internal/utils"
	"github.com/nutsdb/nutscan/metrics"
	"github.com/pkg/errors"
	"github.com/samber/mo"
	"github.com/xujiajun/utils/strconv2"
)

// Loader pages through the members of a single key.
type Loader struct {
	store Store
	opts  Options
}

// NewLoader returns a Loader reading from store.
func NewLoader(store Store, opts Options) *Loader {
	return &Loader{
		store: store,
		opts:  opts.withDefaults(),
	}
}

// Load fetches the next batch of members of el and returns the updated
// element; el itself is left untouched, so a failed or cancelled call can be
// retried with the same argument. The new members are out.Since(len(el.Values)).
//
// Loading an element that has no more members returns an equal element.
// If the key changed its type since el was built, the key is restarted once
// under its current type.
func (l *Loader) Load(ctx context.Context, el *CollectionElement) (*CollectionElement, error) {
	out := el.clone()
	err := l.load(ctx, out)
	if err != nil && (IsWrongType(err) || (IsKeyNotFound(err) && el.Fresh())) {
		out, err = l.reload(ctx, el, err)
	}
	if err != nil {
		return nil, err
	}

	metrics.ObserveBatch(out.Type.String(), len(out.Values)-len(el.Values))
	return out, nil
}

// reload re-derives the type of el's key after cause and starts it over.
func (l *Loader) reload(ctx context.Context, el *CollectionElement, cause error) (*CollectionElement, error) {
	kt, ok, err := l.store.Type(ctx, el.Target, el.Key)
	if err != nil {
		return nil, errors.Wrapf(err, "type of %q in %s", el.Key, el.Target)
	}
	if !ok {
		return nil, errors.WithMessagef(ErrKeyNotFound, "%q in %s", el.Key, el.Target)
	}
	if kt == el.Type && !IsWrongType(cause) {
		return nil, cause
	}

	GetLogger().Printf("key %q in %s is now a %s, was a %s; restarting", el.Key, el.Target, kt, el.Type)
	out := el.clone()
	out.reset(kt)
	if err := l.load(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Loader) load(ctx context.Context, el *CollectionElement) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch el.Type {
	case String:
		return l.loadString(ctx, el)
	case List:
		return l.loadRange(ctx, el, l.store.LLen, l.listBatch)
	case SortedSet:
		return l.loadRange(ctx, el, l.store.ZCard, l.sortedSetBatch)
	case Set:
		return l.loadScan(ctx, el, l.store.SCard, l.setBatch)
	case Hash:
		return l.loadScan(ctx, el, l.store.HLen, l.hashBatch)
	default:
		return l.loadUnknown(ctx, el)
	}
}

func (l *Loader) loadString(ctx context.Context, el *CollectionElement) error {
	if el.Size != SizeUnknown {
		return nil
	}

	v, err := l.store.Get(ctx, el.Target, el.Key)
	if err != nil {
		return errors.Wrapf(err, "get %q in %s", el.Key, el.Target)
	}
	value, ok := v.Get()
	if !ok {
		return errors.WithMessagef(ErrKeyNotFound, "%q in %s", el.Key, el.Target)
	}

	el.Values = append(el.Values, CollectionElementValue{MemberKey: el.Key, MemberValue: value})
	el.Size = 1
	el.finish()
	return nil
}

func (l *Loader) loadUnknown(ctx context.Context, el *CollectionElement) error {
	if el.Size != SizeUnknown {
		return nil
	}

	// An element built without a type gets one now if the store knows it.
	kt, ok, err := l.store.Type(ctx, el.Target, el.Key)
	if err != nil {
		return errors.Wrapf(err, "type of %q in %s", el.Key, el.Target)
	}
	if ok && kt != Unknown {
		el.reset(kt)
		return l.load(ctx, el)
	}

	el.Values = append(el.Values, CollectionElementValue{MemberKey: el.Key})
	el.Size = 1
	el.finish()
	return nil
}

type (
	cardFunc   func(ctx context.Context, t Target, key string) (int64, error)
	rangeBatch func(ctx context.Context, el *CollectionElement, start, stop int64) (int64, error)
	scanBatch  func(ctx context.Context, el *CollectionElement, cursor Cursor) (Cursor, int, error)
)

// loadRange pages an index addressed type: the size is read once, then each
// call fetches ListBatch members from the stored offset.
func (l *Loader) loadRange(ctx context.Context, el *CollectionElement, card cardFunc, fetch rangeBatch) error {
	var offset int64
	if el.Size == SizeUnknown {
		n, err := card(ctx, el.Target, el.Key)
		if err != nil {
			return errors.Wrapf(err, "size of %q in %s", el.Key, el.Target)
		}
		el.Size = n
	} else {
		if el.Cursor == CursorNone {
			el.HasMore = false
			return nil
		}
		var err error
		if offset, err = strconv2.StrToInt64(string(el.Cursor)); err != nil || offset < 0 {
			return errors.WithMessagef(ErrInvalidCursor, "%q for %s %q", el.Cursor, el.Type, el.Key)
		}
	}

	if offset >= el.Size {
		el.finish()
		return nil
	}

	stop := offset + l.opts.ListBatch
	if stop > el.Size {
		stop = el.Size
	}
	got, err := fetch(ctx, el, offset, stop-1)
	if err != nil {
		return err
	}

	offset += got
	// A key that shrank under us ends early rather than spinning on an empty range.
	if got == 0 || offset >= el.Size {
		el.finish()
		return nil
	}
	el.Cursor = Cursor(strconv2.Int64ToStr(offset))
	el.HasMore = true
	return nil
}

func (l *Loader) listBatch(ctx context.Context, el *CollectionElement, start, stop int64) (int64, error) {
	items, err := l.store.LRange(ctx, el.Target, el.Key, start, stop)
	if err != nil {
		return 0, errors.Wrapf(err, "lrange %q %d %d in %s", el.Key, start, stop, el.Target)
	}
	for _, item := range items {
		el.Values = append(el.Values, CollectionElementValue{MemberKey: item, MemberValue: item})
	}
	return int64(len(items)), nil
}

// sortedSetBatch appends a rank range ordered by score. Scores are compared
// as strings, so "10" sorts before "9"; members with equal scores keep the
// store's order.
func (l *Loader) sortedSetBatch(ctx context.Context, el *CollectionElement, start, stop int64) (int64, error) {
	entries, err := l.store.ZRangeWithScores(ctx, el.Target, el.Key, start, stop)
	if err != nil {
		return 0, errors.Wrapf(err, "zrange %q %d %d in %s", el.Key, start, stop, el.Target)
	}
	if len(entries)%2 != 0 {
		return 0, errors.Errorf("zrange %q in %s: odd reply length %d", el.Key, el.Target, len(entries))
	}

	batch := make([]CollectionElementValue, 0, len(entries)/2)
	for i := 0; i < len(entries); i += 2 {
		batch = append(batch, CollectionElementValue{
			MemberKey:   entries[i],
			MemberID:    mo.Some(entries[i+1]),
			MemberValue: entries[i],
		})
	}
	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].MemberID.OrEmpty() < batch[j].MemberID.OrEmpty()
	})

	el.Values = append(el.Values, batch...)
	return int64(len(batch)), nil
}

// loadScan pages a cursor addressed type: the size is read once and an
// empty key finishes without scanning, then each call keeps scanning until
// more than MinScanBatch members were collected or the scan ends.
func (l *Loader) loadScan(ctx context.Context, el *CollectionElement, card cardFunc, fetch scanBatch) error {
	if el.Size == SizeUnknown {
		n, err := card(ctx, el.Target, el.Key)
		if err != nil {
			return errors.Wrapf(err, "size of %q in %s", el.Key, el.Target)
		}
		el.Size = n
		if n == 0 {
			el.finish()
			return nil
		}
	}
	if el.Cursor == CursorNone {
		el.HasMore = false
		return nil
	}

	cur := el.Cursor
	for got := 0; ; {
		next, n, err := fetch(ctx, el, cur)
		if err != nil {
			return err
		}
		cur, got = next, got+n
		if cur.Done() || got > l.opts.MinScanBatch {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	if cur.Done() {
		el.finish()
		return nil
	}
	el.Cursor = cur
	el.HasMore = true
	return nil
}

func (l *Loader) setBatch(ctx context.Context, el *CollectionElement, cursor Cursor) (Cursor, int, error) {
	next, members, err := l.store.SScan(ctx, el.Target, el.Key, cursor, utils.MatchAll, l.opts.ScanCount)
	if err != nil {
		return cursor, 0, errors.Wrapf(err, "sscan %q at cursor %q in %s", el.Key, cursor, el.Target)
	}
	for _, m := range members {
		el.Values = append(el.Values, CollectionElementValue{MemberKey: m, MemberValue: m})
	}
	return next, len(members), nil
}

func (l *Loader) hashBatch(ctx context.Context, el *CollectionElement, cursor Cursor) (Cursor, int, error) {
	next, entries, err := l.store.HScan(ctx, el.Target, el.Key, cursor, utils.MatchAll, l.opts.ScanCount)
	if err != nil {
		return cursor, 0, errors.Wrapf(err, "hscan %q at cursor %q in %s", el.Key, cursor, el.Target)
	}
	if len(entries)%2 != 0 {
		return cursor, 0, errors.Errorf("hscan %q in %s: odd reply length %d", el.Key, el.Target, len(entries))
	}
	for i := 0; i < len(entries); i += 2 {
		el.Values = append(el.Values, CollectionElementValue{
			MemberKey:   entries[i],
			MemberID:    mo.Some(entries[i]),
			MemberValue: entries[i+1],
		})
	}
	return next, len(entries) / 2, nil
}

// Size returns the member count of el's key for display.
func (l *Loader) Size(ctx context.Context, el *CollectionElement) (int64, error) {
	var (
		n   int64
		err error
	)
	switch el.Type {
	case List:
		n, err = l.store.LLen(ctx, el.Target, el.Key)
	case Set:
		n, err = l.store.SCard(ctx, el.Target, el.Key)
	case SortedSet:
		n, err = l.store.ZCard(ctx, el.Target, el.Key)
	case Hash:
		n, err = l.store.HLen(ctx, el.Target, el.Key)
	case String:
		return 1, nil
	default:
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "size of %q in %s", el.Key, el.Target)
	}
	return n, nil
}
