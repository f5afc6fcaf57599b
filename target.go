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
	"fmt"
	"regexp"
	"sort"

	"github.com/xujiajun/utils/strconv2"
)

// Target is one independently scanned partition of the store: a numbered
// database, or a cluster node (shard) addressed by its id and port.
type Target struct {
	DB   int    `json:"db"`
	Node string `json:"node,omitempty"`
	Port int    `json:"port,omitempty"`
}

// DBTarget returns the target for a numbered database.
func DBTarget(db int) Target {
	return Target{DB: db}
}

// NodeTarget returns the target for a cluster node.
func NodeTarget(id string, port int) Target {
	return Target{Node: id, Port: port}
}

// Clustered reports whether the target is a cluster node.
func (t Target) Clustered() bool {
	return t.Node != ""
}

// Shard returns the shard number a cluster node serves, derived from its
// port. Shards listen on consecutive pairs of ports.
func (t Target) Shard() int {
	return (t.Port % 100) / 2
}

// ID returns the identifier a Selection uses for the target.
func (t Target) ID() string {
	if t.Clustered() {
		return t.Node
	}
	return strconv2.IntToStr(t.DB)
}

func (t Target) String() string {
	if t.Clustered() {
		return fmt.Sprintf("shard %d (%s)", t.Shard(), t.Node)
	}
	return "db" + strconv2.IntToStr(t.DB)
}

// TargetResolver yields the ordered targets one clear cycle scans.
type TargetResolver interface {
	Targets(ctx context.Context) ([]Target, error)
}

// StaticTargets is a fixed target list.
type StaticTargets []Target

// Targets implements TargetResolver.
func (st StaticTargets) Targets(context.Context) ([]Target, error) {
	out := make([]Target, len(st))
	copy(out, st)
	return out, nil
}

var keyspaceDBRegexp = regexp.MustCompile(`(?m)^db([0-9]+):`)

// ParseKeyspace extracts the database indices listed in the reply of
// INFO keyspace, in the order the store lists them.
func ParseKeyspace(info string) []int {
	var dbs []int
	for _, m := range keyspaceDBRegexp.FindAllStringSubmatch(info, -1) {
		db, err := strconv2.StrToInt(m[1])
		if err != nil {
			continue
		}
		dbs = append(dbs, db)
	}
	return dbs
}

// SortNodeTargets orders cluster node targets by port.
func SortNodeTargets(targets []Target) {
	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].Port < targets[j].Port
	})
}

// SelectableTarget is a target with its selection flag.
type SelectableTarget struct {
	Target   Target `json:"target"`
	Selected bool   `json:"selected"`
}

// Selection remembers which of the store's targets are selected for
// scanning. It is a TargetResolver that yields the selected targets in the
// order the underlying resolver returned them.
type Selection struct {
	resolver TargetResolver
	filters  []SelectableTarget
}

// NewSelection returns an empty selection over resolver; call Refresh to
// populate it.
func NewSelection(resolver TargetResolver) *Selection {
	return &Selection{resolver: resolver}
}

// Refresh re-queries the resolver. Targets seen before keep their flag,
// new targets start selected.
func (s *Selection) Refresh(ctx context.Context) error {
	targets, err := s.resolver.Targets(ctx)
	if err != nil {
		return err
	}

	prev := make(map[string]bool, len(s.filters))
	for _, f := range s.filters {
		prev[f.Target.ID()] = f.Selected
	}

	filters := make([]SelectableTarget, 0, len(targets))
	for _, t := range targets {
		selected, seen := prev[t.ID()]
		filters = append(filters, SelectableTarget{Target: t, Selected: !seen || selected})
	}
	s.filters = filters
	return nil
}

// Filters returns every known target with its flag.
func (s *Selection) Filters() []SelectableTarget {
	out := make([]SelectableTarget, len(s.filters))
	copy(out, s.filters)
	return out
}

// Selected returns the selected targets.
func (s *Selection) Selected() []Target {
	var out []Target
	for _, f := range s.filters {
		if f.Selected {
			out = append(out, f.Target)
		}
	}
	return out
}

// SetSelected selects exactly the targets whose ID is in ids and reports
// whether anything changed. An empty ids leaves the selection alone.
func (s *Selection) SetSelected(ids []string) (changed bool) {
	if len(ids) == 0 {
		return false
	}

	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	for i := range s.filters {
		_, selected := want[s.filters[i].Target.ID()]
		if s.filters[i].Selected != selected {
			changed = true
		}
		s.filters[i].Selected = selected
	}
	return changed
}

// Targets implements TargetResolver. A selection that was never refreshed
// refreshes itself first.
func (s *Selection) Targets(ctx context.Context) ([]Target, error) {
	if s.filters == nil {
		if err := s.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return s.Selected(), nil
}
