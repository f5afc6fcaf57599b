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

	"github.com/nutsdb/nutscan/internal/utils"
	"github.com/pkg/errors"
)

// Session pages through the keys matching one pattern across the targets a
// resolver yields, and through the members of those keys.
//
// A Session is not safe for concurrent use; callers keep at most one
// request in flight per session.
type Session struct {
	store    Store
	resolver TargetResolver
	pattern  string
	seq      *Sequencer
	loader   *Loader
}

// NewSession returns a Session over store. An empty pattern matches every key.
// ops are applied on top of opts.
func NewSession(store Store, resolver TargetResolver, pattern string, opts Options, ops ...Option) (*Session, error) {
	for _, do := range ops {
		do(&opts)
	}
	opts = opts.withDefaults()
	if opts.StoreRate > 0 {
		store = RateLimited(store, opts.StoreRate, opts.StoreBurst)
	}
	store = Instrument(store)

	scanner, err := NewScanner(store, opts)
	if err != nil {
		return nil, err
	}
	if pattern == "" {
		pattern = utils.MatchAll
	}
	return &Session{
		store:    store,
		resolver: resolver,
		pattern:  pattern,
		seq:      NewSequencer(scanner, resolver),
		loader:   NewLoader(store, opts),
	}, nil
}

// Pattern returns the key pattern of the session.
func (s *Session) Pattern() string {
	return s.pattern
}

// LoadNext returns the next batch of keys and whether more remain.
func (s *Session) LoadNext(ctx context.Context, clearCache bool) ([]*CollectionElement, bool, error) {
	return s.seq.LoadNext(ctx, s.pattern, clearCache)
}

// HasMore reports whether LoadNext can return more keys.
func (s *Session) HasMore() bool {
	return s.seq.HasMore()
}

// Load returns el with its next batch of members appended.
func (s *Session) Load(ctx context.Context, el *CollectionElement) (*CollectionElement, error) {
	if el == nil {
		return nil, errors.New("nil element")
	}
	return s.loader.Load(ctx, el)
}

// Size returns the member count of el's key.
func (s *Session) Size(ctx context.Context, el *CollectionElement) (int64, error) {
	return s.loader.Size(ctx, el)
}

// EstimateSize returns the advisory number of keys the session would list.
func (s *Session) EstimateSize(ctx context.Context) (SizeEstimate, error) {
	targets, err := s.resolver.Targets(ctx)
	if err != nil {
		return SizeEstimate{}, errors.Wrap(err, "resolve targets")
	}
	return EstimateSize(ctx, s.store, s.pattern, targets)
}

// Reset makes the next LoadNext start from the first target.
func (s *Session) Reset() {
	s.seq.Reset()
}

// State returns the scan position for diagnostics.
func (s *Session) State() ScanState {
	return s.seq.State()
}

func (s *Session) setPattern(pattern string) {
	if pattern == "" {
		pattern = utils.MatchAll
	}
	s.pattern = pattern
	s.seq.Reset()
}
