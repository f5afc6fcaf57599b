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

// Package memstore is an in-memory store with numbered databases or cluster
// shards that implements nutscan.Store with the scan semantics of a remote
// cache: resumable cursors, COUNT hints and empty intermediate batches.
package memstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/nutsdb/nutscan"
	"github.com/pkg/errors"
)

const defaultScanCount = 10

var (
	_ nutscan.Store          = (*DB)(nil)
	_ nutscan.TargetResolver = (*DB)(nil)
)

var (
	// ErrTargetNotFound is returned when a target names no database or node of the store.
	ErrTargetNotFound = errors.New("target not found")

	// ErrDBIndexOutOfRange is returned when a write names a database the store does not have.
	ErrDBIndexOutOfRange = errors.New("db index out of range")

	// ErrOddFieldValues is returned when HSet gets a field without a value.
	ErrOddFieldValues = errors.New("wrong number of arguments for field/value pairs")
)

type (
	Options struct {
		// Databases is the number of numbered databases of a standalone store.
		Databases int

		// Shards turns the store into a cluster with this many nodes when positive.
		Shards int

		// BasePort is the port of the first cluster node; node i listens on BasePort+2*i.
		BasePort int

		// ExpiredDeleteType selects the timer behind key expiry.
		ExpiredDeleteType ExpiredDeleteType
	}

	// DB indicates that all data is stored in memory.
	// If the system restarts or crashes, all data will be lost.
	DB struct {
		opts   Options
		shards []*ShardDB
		nodes  map[string]*ShardDB
		Hasher Hasher
		ttl    *ttlManager
	}
)

// DefaultOptions default options
var DefaultOptions = Options{
	Databases:         16,
	Shards:            0,
	BasePort:          13000,
	ExpiredDeleteType: TimeWheel,
}

// Open returns a newly initialized in memory DB object.
func Open(opts Options) (*DB, error) {
	if opts.Databases <= 0 {
		opts.Databases = DefaultOptions.Databases
	}
	if opts.BasePort <= 0 {
		opts.BasePort = DefaultOptions.BasePort
	}

	db := &DB{
		opts:   opts,
		Hasher: newDefaultHasher(),
		nodes:  make(map[string]*ShardDB),
		ttl:    newTTLManager(opts.ExpiredDeleteType),
	}

	if opts.Shards > 0 {
		db.shards = make([]*ShardDB, opts.Shards)
		for i := range db.shards {
			id := fmt.Sprintf("node-%d", i)
			db.shards[i] = newShardDB(id, opts.BasePort+2*i, 1)
			db.nodes[id] = db.shards[i]
		}
	} else {
		db.shards = []*ShardDB{newShardDB("", 0, opts.Databases)}
	}

	go db.ttl.run()
	return db, nil
}

// Close stops key expiry.
func (db *DB) Close() error {
	db.ttl.close()
	return nil
}

// Clustered reports whether the store runs as a cluster.
func (db *DB) Clustered() bool {
	return db.opts.Shards > 0
}

// GetShard returns the node owning key.
func (db *DB) GetShard(key string) *ShardDB {
	if !db.Clustered() {
		return db.shards[0]
	}
	return db.shards[db.Hasher.Sum64(key)%uint64(len(db.shards))]
}

// Managed runs fn on the database that owns key, holding the node's lock.
func (db *DB) Managed(dbIndex int, key string, writable bool, fn func(d *database) error) error {
	shardDB := db.GetShard(key)
	if dbIndex < 0 || dbIndex >= len(shardDB.dbs) {
		return errors.WithMessagef(ErrDBIndexOutOfRange, "%d", dbIndex)
	}

	shardDB.Lock(writable)
	defer shardDB.Unlock(writable)
	return fn(shardDB.dbs[dbIndex])
}

// view runs fn on the database a target addresses under a read lock.
func (db *DB) view(ctx context.Context, t nutscan.Target, fn func(d *database) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var shardDB *ShardDB
	dbIndex := t.DB
	if t.Clustered() {
		shardDB = db.nodes[t.Node]
		dbIndex = 0
	} else if !db.Clustered() {
		shardDB = db.shards[0]
	}
	if shardDB == nil || dbIndex < 0 || dbIndex >= len(shardDB.dbs) {
		return errors.WithMessagef(ErrTargetNotFound, "%s", t)
	}

	shardDB.Lock(false)
	defer shardDB.Unlock(false)
	return fn(shardDB.dbs[dbIndex])
}

// Nodes returns the cluster node targets ordered by port, or nil for a
// standalone store.
func (db *DB) Nodes() []nutscan.Target {
	if !db.Clustered() {
		return nil
	}
	targets := make([]nutscan.Target, 0, len(db.shards))
	for _, sd := range db.shards {
		targets = append(targets, sd.Target())
	}
	nutscan.SortNodeTargets(targets)
	return targets
}

// Keyspace renders the INFO keyspace section: one line per non-empty
// database of a standalone store.
func (db *DB) Keyspace() string {
	var sb strings.Builder
	sb.WriteString("# Keyspace\r\n")
	if db.Clustered() {
		var keys int
		for _, sd := range db.shards {
			sd.Lock(false)
			keys += sd.dbs[0].keys.Len()
			sd.Unlock(false)
		}
		if keys > 0 {
			fmt.Fprintf(&sb, "db0:keys=%d,expires=%d,avg_ttl=0\r\n", keys, db.ttl.count(0))
		}
		return sb.String()
	}

	sd := db.shards[0]
	sd.Lock(false)
	defer sd.Unlock(false)
	for i, d := range sd.dbs {
		if n := d.keys.Len(); n > 0 {
			fmt.Fprintf(&sb, "db%d:keys=%d,expires=%d,avg_ttl=0\r\n", i, n, db.ttl.count(i))
		}
	}
	return sb.String()
}

// Targets implements nutscan.TargetResolver: the cluster nodes, or the
// non-empty databases listed by Keyspace.
func (db *DB) Targets(ctx context.Context) ([]nutscan.Target, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if db.Clustered() {
		return db.Nodes(), nil
	}

	var targets []nutscan.Target
	for _, i := range nutscan.ParseKeyspace(db.Keyspace()) {
		targets = append(targets, nutscan.DBTarget(i))
	}
	return targets, nil
}
