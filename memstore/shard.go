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
	"sync"

	"github.com/nutsdb/nutscan"
	"github.com/nutsdb/nutscan/internal/utils"
	"github.com/pkg/errors"
	"github.com/tidwall/btree"
)

// ShardDB is one node of the store: a cluster shard, or the only node of a
// standalone store holding all numbered databases.
type ShardDB struct {
	id   string
	port int
	dbs  []*database
	mu   sync.RWMutex
}

func newShardDB(id string, port, databases int) *ShardDB {
	sd := &ShardDB{
		id:   id,
		port: port,
		dbs:  make([]*database, databases),
	}
	for i := range sd.dbs {
		sd.dbs[i] = newDatabase()
	}
	return sd
}

func (sd *ShardDB) Lock(writable bool) {
	if writable {
		sd.mu.Lock()
	} else {
		sd.mu.RLock()
	}
}

func (sd *ShardDB) Unlock(writable bool) {
	if writable {
		sd.mu.Unlock()
	} else {
		sd.mu.RUnlock()
	}
}

// Target returns the cluster node target of the shard.
func (sd *ShardDB) Target() nutscan.Target {
	return nutscan.NodeTarget(sd.id, sd.port)
}

// entry is a key and its value; exactly one of the value fields is in use,
// chosen by kind.
type entry struct {
	key     string
	kind    nutscan.KeyType
	expires int64 // unix nanos of the pending expiry, 0 when persistent
	str     string
	list    []string
	set     *btree.BTreeG[string]
	hash    *btree.BTreeG[hashField]
	zset    *sortedSet
}

type hashField struct {
	field string
	value string
}

type database struct {
	keys *btree.BTreeG[*entry]
}

func newDatabase() *database {
	return &database{
		keys: btree.NewBTreeG(func(a, b *entry) bool {
			return a.key < b.key
		}),
	}
}

func (d *database) get(key string) (*entry, bool) {
	return d.keys.Get(&entry{key: key})
}

// getAs returns the entry of key if it holds kind. A missing key is not an error.
func (d *database) getAs(key string, kind nutscan.KeyType) (*entry, bool, error) {
	e, ok := d.get(key)
	if !ok {
		return nil, false, nil
	}
	if e.kind != kind {
		return nil, false, errors.WithMessagef(nutscan.ErrWrongType, "%q is a %s", key, e.kind)
	}
	return e, true, nil
}

// getOrCreate returns the entry of key, creating it with init when missing.
// A write of zero items never creates a key; the entry is nil then.
func (d *database) getOrCreate(key string, kind nutscan.KeyType, items int, init func(e *entry)) (*entry, error) {
	e, ok, err := d.getAs(key, kind)
	if err != nil {
		return nil, err
	}
	if !ok {
		if items == 0 {
			return nil, nil
		}
		e = &entry{key: key, kind: kind}
		init(e)
		d.keys.Set(e)
	}
	return e, nil
}

func (d *database) del(key string) bool {
	_, ok := d.keys.Delete(&entry{key: key})
	return ok
}

func newStringTree() *btree.BTreeG[string] {
	return btree.NewBTreeG(func(a, b string) bool { return a < b })
}

func newHashTree() *btree.BTreeG[hashField] {
	return btree.NewBTreeG(func(a, b hashField) bool { return a.field < b.field })
}

// scanTree is the cursor walk behind SCAN, SSCAN and HSCAN. It examines up
// to count items after the key encoded in cursor and emits the ones whose
// key matches pattern. The returned cursor resumes after the last examined
// key, so an item present for the whole scan is emitted exactly once.
func scanTree[T any](tr *btree.BTreeG[T], cursor nutscan.Cursor, pattern string, count int,
	keyOf func(T) string, pivot func(string) T, emit func(T)) (nutscan.Cursor, error) {
	if count <= 0 {
		count = defaultScanCount
	}

	var (
		after    string
		resume   bool
		examined int
		last     string
		more     bool
		matchErr error
	)
	if cursor != nutscan.CursorStart && cursor != nutscan.CursorNone {
		key, ok := utils.DecodeResumeKey(string(cursor))
		if !ok {
			return cursor, errors.WithMessagef(nutscan.ErrInvalidCursor, "%q", cursor)
		}
		after, resume = key, true
	}

	iter := func(item T) bool {
		k := keyOf(item)
		if resume && k == after {
			return true
		}
		if examined == count {
			more = true
			return false
		}
		examined++
		last = k

		ok, err := utils.MatchPattern(pattern, k)
		if err != nil {
			matchErr = err
			return false
		}
		if ok {
			emit(item)
		}
		return true
	}

	if resume {
		tr.Ascend(pivot(after), iter)
	} else {
		tr.Scan(iter)
	}
	if matchErr != nil {
		return cursor, errors.Wrapf(matchErr, "pattern %q", pattern)
	}
	if !more {
		return nutscan.CursorStart, nil
	}
	return nutscan.Cursor(utils.EncodeResumeKey(last)), nil
}
