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
	"strconv"

	"github.com/nutsdb/nutscan"
	"github.com/tidwall/btree"
)

// ZMember is a sorted set member with its score.
type ZMember struct {
	Score  float64 `json:"score"`
	Member string  `json:"member"`
}

// sortedSet orders members by score, then member, so ranks are positions
// in the tree.
type sortedSet struct {
	ranks  *btree.BTreeG[ZMember]
	scores map[string]float64
}

func newSortedSet() *sortedSet {
	return &sortedSet{
		ranks: btree.NewBTreeG(func(a, b ZMember) bool {
			if a.Score != b.Score {
				return a.Score < b.Score
			}
			return a.Member < b.Member
		}),
		scores: make(map[string]float64),
	}
}

func (ss *sortedSet) put(m ZMember) bool {
	old, exists := ss.scores[m.Member]
	if exists {
		ss.ranks.Delete(ZMember{Score: old, Member: m.Member})
	}
	ss.scores[m.Member] = m.Score
	ss.ranks.Set(m)
	return !exists
}

// ZAdd adds members to the sorted set at key, updating the score of
// existing ones, and returns how many were new.
func (db *DB) ZAdd(dbIndex int, key string, members ...ZMember) (added int, err error) {
	err = db.Managed(dbIndex, key, true, func(d *database) error {
		e, err := d.getOrCreate(key, nutscan.SortedSet, len(members), func(e *entry) { e.zset = newSortedSet() })
		if err != nil || e == nil {
			return err
		}
		for _, m := range members {
			if e.zset.put(m) {
				added++
			}
		}
		return nil
	})
	return added, err
}

// ZCard implements nutscan.Store.
func (db *DB) ZCard(ctx context.Context, t nutscan.Target, key string) (n int64, err error) {
	err = db.view(ctx, t, func(d *database) error {
		e, ok, err := d.getAs(key, nutscan.SortedSet)
		if err != nil || !ok {
			return err
		}
		n = int64(e.zset.ranks.Len())
		return nil
	})
	return n, err
}

// ZRangeWithScores implements nutscan.Store: ranks start..stop inclusive,
// lowest score first, as alternating members and scores.
func (db *DB) ZRangeWithScores(ctx context.Context, t nutscan.Target, key string, start, stop int64) (entries []string, err error) {
	err = db.view(ctx, t, func(d *database) error {
		e, ok, err := d.getAs(key, nutscan.SortedSet)
		if err != nil || !ok {
			return err
		}
		lo, hi, ok := normalizeRange(start, stop, int64(e.zset.ranks.Len()))
		if !ok {
			return nil
		}
		first, ok := e.zset.ranks.GetAt(int(lo))
		if !ok {
			return nil
		}

		remaining := hi - lo + 1
		e.zset.ranks.Ascend(first, func(m ZMember) bool {
			entries = append(entries, m.Member, strconv.FormatFloat(m.Score, 'f', -1, 64))
			remaining--
			return remaining > 0
		})
		return nil
	})
	return entries, err
}
