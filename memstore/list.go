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

package memstore

import (
	"context"

	"github.com/nutsdb/nutscan"
)

// RPush appends values to the list at key and returns its new length.
func (db *DB) RPush(dbIndex int, key string, values ...string) (size int, err error) {
	err = db.Managed(dbIndex, key, true, func(d *database) error {
		e, err := d.getOrCreate(key, nutscan.List, len(values), func(*entry) {})
		if err != nil || e == nil {
			return err
		}
		e.list = append(e.list, values...)
		size = len(e.list)
		return nil
	})
	return size, err
}

// LPush prepends values to the list at key, last value first, and returns its new length.
func (db *DB) LPush(dbIndex int, key string, values ...string) (size int, err error) {
	err = db.Managed(dbIndex, key, true, func(d *database) error {
		e, err := d.getOrCreate(key, nutscan.List, len(values), func(*entry) {})
		if err != nil || e == nil {
			return err
		}
		head := make([]string, 0, len(values)+len(e.list))
		for i := len(values) - 1; i >= 0; i-- {
			head = append(head, values[i])
		}
		e.list = append(head, e.list...)
		size = len(e.list)
		return nil
	})
	return size, err
}

// LPop removes and returns the first item of the list at key.
func (db *DB) LPop(dbIndex int, key string) (item string, ok bool, err error) {
	err = db.Managed(dbIndex, key, true, func(d *database) error {
		e, found, err := d.getAs(key, nutscan.List)
		if err != nil || !found {
			return err
		}
		item, ok = e.list[0], true
		e.list = e.list[1:]
		if len(e.list) == 0 {
			d.del(key)
			db.ttl.del(dbIndex, key)
		}
		return nil
	})
	return item, ok, err
}

// LLen implements nutscan.Store.
func (db *DB) LLen(ctx context.Context, t nutscan.Target, key string) (n int64, err error) {
	err = db.view(ctx, t, func(d *database) error {
		e, ok, err := d.getAs(key, nutscan.List)
		if err != nil || !ok {
			return err
		}
		n = int64(len(e.list))
		return nil
	})
	return n, err
}

// LRange implements nutscan.Store. Negative indexes count from the tail.
func (db *DB) LRange(ctx context.Context, t nutscan.Target, key string, start, stop int64) (items []string, err error) {
	err = db.view(ctx, t, func(d *database) error {
		e, ok, err := d.getAs(key, nutscan.List)
		if err != nil || !ok {
			return err
		}
		lo, hi, ok := normalizeRange(start, stop, int64(len(e.list)))
		if !ok {
			return nil
		}
		items = make([]string, hi-lo+1)
		copy(items, e.list[lo:hi+1])
		return nil
	})
	return items, err
}

// normalizeRange resolves an inclusive, possibly negative index range
// against size the way LRANGE and ZRANGE do.
func normalizeRange(start, stop, size int64) (lo, hi int64, ok bool) {
	if start < 0 {
		start += size
	}
	if stop < 0 {
		stop += size
	}
	if start < 0 {
		start = 0
	}
	if stop >= size {
		stop = size - 1
	}
	if start > stop || start >= size {
		return 0, 0, false
	}
	return start, stop, true
}
