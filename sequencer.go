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

	"github.com/nutsdb/nutscan/metrics"
	"github.com/pkg/errors"
)

// ScanState is the position of a keyspace scan across targets.
type ScanState struct {
	TargetIndex int    `json:"targetIndex"`
	Cursor      Cursor `json:"cursor"`
	Exhausted   bool   `json:"exhausted"`
}

// Sequencer chains keyspace scans over an ordered list of targets so they
// read as one sequence. A Sequencer is not safe for concurrent use.
type Sequencer struct {
	scanner  *Scanner
	resolver TargetResolver

	targets []Target
	pattern string
	state   ScanState
	started bool
}

// NewSequencer returns a Sequencer scanning the targets resolver yields.
func NewSequencer(scanner *Scanner, resolver TargetResolver) *Sequencer {
	return &Sequencer{
		scanner:  scanner,
		resolver: resolver,
	}
}

// LoadNext returns the next batch of keys matching pattern and whether any
// target still has keys to scan. clearCache re-resolves the targets and
// starts over; so does a pattern different from the previous call's.
//
// The state only moves when the call succeeds. The exception is
// ErrScanStalled, after which the cursor keeps the progress made over empty
// steps and the scan is still not exhausted.
func (sq *Sequencer) LoadNext(ctx context.Context, pattern string, clearCache bool) ([]*CollectionElement, bool, error) {
	targets, st := sq.targets, sq.state
	if clearCache || !sq.started || pattern != sq.pattern {
		resolved, err := sq.resolver.Targets(ctx)
		if err != nil {
			return nil, sq.HasMore(), errors.Wrap(err, "resolve targets")
		}
		targets, st = resolved, ScanState{Cursor: CursorStart}
	}

	var batch []*CollectionElement
	for len(batch) == 0 && !st.Exhausted {
		if st.TargetIndex >= len(targets) {
			st.Exhausted = true
			break
		}

		target := targets[st.TargetIndex]
		next, elems, err := sq.scanner.Scan(ctx, pattern, target, st.Cursor)
		if err != nil {
			if IsScanStalled(err) {
				st.Cursor = next
				sq.commit(targets, pattern, st)
			}
			return nil, sq.HasMore(), err
		}

		batch = elems
		if !next.Done() {
			st.Cursor = next
			continue
		}

		st.TargetIndex++
		st.Cursor = CursorStart
		if st.TargetIndex >= len(targets) {
			st.Exhausted = true
		}
	}

	sq.commit(targets, pattern, st)
	metrics.ObserveBatch("keys", len(batch))
	return batch, !st.Exhausted, nil
}

func (sq *Sequencer) commit(targets []Target, pattern string, st ScanState) {
	sq.targets, sq.pattern, sq.state, sq.started = targets, pattern, st, true
}

// HasMore reports whether the next LoadNext can return keys. It is true
// before the first call.
func (sq *Sequencer) HasMore() bool {
	return !sq.started || !sq.state.Exhausted
}

// Reset makes the next LoadNext start over as if clearCache were set.
func (sq *Sequencer) Reset() {
	sq.started = false
}

// State returns the current scan position.
func (sq *Sequencer) State() ScanState {
	return sq.state
}

// Targets returns the targets of the current cycle in scan order.
func (sq *Sequencer) Targets() []Target {
	out := make([]Target, len(sq.targets))
	copy(out, sq.targets)
	return out
}
