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
	"time"

	"github.com/antlabs/timer"
)

// ExpiredDeleteType represents the type of expired deletion strategy
type ExpiredDeleteType int

const (
	TimeWheel ExpiredDeleteType = iota
	TimeHeap
)

type nodesInDB map[string]timer.TimeNoder // key to timer node

// ttlManager keeps one timer per expiring key. Lock order: a shard lock may
// be held while taking mu, never the other way round.
type ttlManager struct {
	mu         sync.Mutex
	t          timer.Timer
	timerNodes map[int]nodesInDB
}

func newTTLManager(expiredDeleteType ExpiredDeleteType) *ttlManager {
	var t timer.Timer

	switch expiredDeleteType {
	case TimeWheel:
		t = timer.NewTimer(timer.WithTimeWheel())
	case TimeHeap:
		t = timer.NewTimer(timer.WithMinHeap())
	default:
		t = timer.NewTimer()
	}

	return &ttlManager{
		t:          t,
		timerNodes: make(map[int]nodesInDB),
	}
}

func (tm *ttlManager) run() {
	tm.t.Run()
}

func (tm *ttlManager) exist(db int, key string) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	_, ok := tm.timerNodes[db][key]
	return ok
}

func (tm *ttlManager) count(db int) int {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	return len(tm.timerNodes[db])
}

func (tm *ttlManager) add(db int, key string, expire time.Duration, callback func()) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	nodes, ok := tm.timerNodes[db]
	if !ok {
		nodes = make(nodesInDB)
		tm.timerNodes[db] = nodes
	}
	if node, ok := nodes[key]; ok {
		node.Stop()
	}
	nodes[key] = tm.t.AfterFunc(expire, callback)
}

func (tm *ttlManager) del(db int, key string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if node, ok := tm.timerNodes[db][key]; ok {
		node.Stop()
		delete(tm.timerNodes[db], key)
	}
}

func (tm *ttlManager) close() {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.timerNodes = make(map[int]nodesInDB)
	tm.t.Stop()
}
