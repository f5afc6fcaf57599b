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
	"time"

	"github.com/nutsdb/nutscan"
	"github.com/pkg/errors"
	"github.com/samber/mo"
)

// Set stores a string value, replacing whatever key held and its expiry.
func (db *DB) Set(dbIndex int, key, value string) error {
	return db.Managed(dbIndex, key, true, func(d *database) error {
		d.keys.Set(&entry{key: key, kind: nutscan.String, str: value})
		db.ttl.del(dbIndex, key)
		return nil
	})
}

// Del removes keys and reports how many existed.
func (db *DB) Del(dbIndex int, keys ...string) (int, error) {
	removed := 0
	for _, key := range keys {
		err := db.Managed(dbIndex, key, true, func(d *database) error {
			if d.del(key) {
				removed++
			}
			db.ttl.del(dbIndex, key)
			return nil
		})
		if err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// Expire removes key after ttl.
func (db *DB) Expire(dbIndex int, key string, ttl time.Duration) error {
	return db.Managed(dbIndex, key, true, func(d *database) error {
		e, ok := d.get(key)
		if !ok {
			return errors.WithMessagef(nutscan.ErrKeyNotFound, "%q", key)
		}

		deadline := time.Now().Add(ttl).UnixNano()
		e.expires = deadline
		db.ttl.add(dbIndex, key, ttl, func() {
			db.expire(dbIndex, key, deadline)
		})
		return nil
	})
}

// expire deletes key if its expiry was not replaced since deadline was set.
func (db *DB) expire(dbIndex int, key string, deadline int64) {
	_ = db.Managed(dbIndex, key, true, func(d *database) error {
		if e, ok := d.get(key); ok && e.expires == deadline {
			d.del(key)
			db.ttl.del(dbIndex, key)
		}
		return nil
	})
}

// Get implements nutscan.Store.
func (db *DB) Get(ctx context.Context, t nutscan.Target, key string) (mo.Option[string], error) {
	value := mo.None[string]()
	err := db.view(ctx, t, func(d *database) error {
		e, ok, err := d.getAs(key, nutscan.String)
		if err != nil || !ok {
			return err
		}
		value = mo.Some(e.str)
		return nil
	})
	return value, err
}

// Type implements nutscan.Store.
func (db *DB) Type(ctx context.Context, t nutscan.Target, key string) (kt nutscan.KeyType, ok bool, err error) {
	err = db.view(ctx, t, func(d *database) error {
		if e, found := d.get(key); found {
			kt, ok = e.kind, true
		}
		return nil
	})
	return kt, ok, err
}

// DBSize implements nutscan.Store.
func (db *DB) DBSize(ctx context.Context, t nutscan.Target) (n int64, err error) {
	err = db.view(ctx, t, func(d *database) error {
		n = int64(d.keys.Len())
		return nil
	})
	return n, err
}

// Scan implements nutscan.Store. It examines count keys per call and
// returns only those matching pattern, so a step may come back empty before
// the scan ends.
func (db *DB) Scan(ctx context.Context, t nutscan.Target, cursor nutscan.Cursor, pattern string, count int) (next nutscan.Cursor, keys []string, err error) {
	err = db.view(ctx, t, func(d *database) error {
		next, err = scanTree(d.keys, cursor, pattern, count,
			func(e *entry) string { return e.key },
			func(key string) *entry { return &entry{key: key} },
			func(e *entry) { keys = append(keys, e.key) })
		return err
	})
	if err != nil {
		return cursor, nil, err
	}
	return next, keys, nil
}
