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

// SAdd adds the specified members to the set stored at key and returns how many were new.
func (db *DB) SAdd(dbIndex int, key string, members ...string) (added int, err error) {
	err = db.Managed(dbIndex, key, true, func(d *database) error {
		e, err := d.getOrCreate(key, nutscan.Set, len(members), func(e *entry) { e.set = newStringTree() })
		if err != nil || e == nil {
			return err
		}
		for _, m := range members {
			if _, replaced := e.set.Set(m); !replaced {
				added++
			}
		}
		return nil
	})
	return added, err
}

// SRem removes the specified members from the set stored at key. A set
// left empty is deleted.
func (db *DB) SRem(dbIndex int, key string, members ...string) (removed int, err error) {
	err = db.Managed(dbIndex, key, true, func(d *database) error {
		e, ok, err := d.getAs(key, nutscan.Set)
		if err != nil || !ok {
			return err
		}
		for _, m := range members {
			if _, deleted := e.set.Delete(m); deleted {
				removed++
			}
		}
		if e.set.Len() == 0 {
			d.del(key)
			db.ttl.del(dbIndex, key)
		}
		return nil
	})
	return removed, err
}

// SCard implements nutscan.Store.
func (db *DB) SCard(ctx context.Context, t nutscan.Target, key string) (n int64, err error) {
	err = db.view(ctx, t, func(d *database) error {
		e, ok, err := d.getAs(key, nutscan.Set)
		if err != nil || !ok {
			return err
		}
		n = int64(e.set.Len())
		return nil
	})
	return n, err
}

// SScan implements nutscan.Store.
func (db *DB) SScan(ctx context.Context, t nutscan.Target, key string, cursor nutscan.Cursor, pattern string, count int) (next nutscan.Cursor, members []string, err error) {
	next = nutscan.CursorStart
	err = db.view(ctx, t, func(d *database) error {
		e, ok, err := d.getAs(key, nutscan.Set)
		if err != nil || !ok {
			return err
		}
		next, err = scanTree(e.set, cursor, pattern, count,
			func(m string) string { return m },
			func(m string) string { return m },
			func(m string) { members = append(members, m) })
		return err
	})
	if err != nil {
		return cursor, nil, err
	}
	return next, members, nil
}
