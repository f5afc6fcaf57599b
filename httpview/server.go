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

// Package httpview serves key filters, target selection and element pages
// of a nutscan.Store as JSON over HTTP.
package httpview

import (
	"context"
	"net/http"
	"sync"

	"github.com/nutsdb/nutscan"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xujiajun/gorouter"
	"golang.org/x/sync/singleflight"
)

// Server holds the paging state of every filter and every opened element.
// Requests on the same filter or element are served one at a time.
type Server struct {
	store   nutscan.Store
	targets *lockedSelection
	filters *nutscan.FilterSet
	loader  *nutscan.Loader
	sizes   singleflight.Group
	router  *gorouter.Router

	mu          sync.Mutex
	filterLocks map[int]*sync.Mutex
	elements    map[string]*elementState
}

type elementState struct {
	mu sync.Mutex
	el *nutscan.CollectionElement
}

// lockedSelection guards a nutscan.Selection shared by all filter sessions.
type lockedSelection struct {
	mu  sync.Mutex
	sel *nutscan.Selection
}

func (ls *lockedSelection) Targets(ctx context.Context) ([]nutscan.Target, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.sel.Targets(ctx)
}

// New returns a Server scanning the targets resolver yields, all of them
// selected at first.
func New(store nutscan.Store, resolver nutscan.TargetResolver, opts nutscan.Options) (*Server, error) {
	targets := &lockedSelection{sel: nutscan.NewSelection(resolver)}
	filters, err := nutscan.NewFilterSet(store, targets, opts)
	if err != nil {
		return nil, err
	}

	s := &Server{
		store:       store,
		targets:     targets,
		filters:     filters,
		loader:      nutscan.NewLoader(nutscan.Instrument(store), opts),
		filterLocks: make(map[int]*sync.Mutex),
		elements:    make(map[string]*elementState),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	mux := gorouter.New()

	mux.GET("/filters", s.listFilters)
	mux.POST("/filters", s.addFilter)
	mux.PUT("/filters/:index", s.updateFilter)
	mux.DELETE("/filters/:index", s.deleteFilter)
	mux.GET("/filters/:index/next", s.nextKeys)
	mux.GET("/filters/:index/size", s.filterSize)
	mux.POST("/filters/:index/reset", s.resetFilter)

	mux.GET("/targets", s.listTargets)
	mux.POST("/targets", s.selectTargets)

	mux.GET("/values", s.loadValues)

	metrics := promhttp.Handler()
	mux.GET("/metrics", metrics.ServeHTTP)

	s.router = mux
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Filters returns the filter registry behind the server.
func (s *Server) Filters() *nutscan.FilterSet {
	return s.filters
}

func (s *Server) filterLock(index int) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.filterLocks[index]
	if !ok {
		l = &sync.Mutex{}
		s.filterLocks[index] = l
	}
	return l
}

// resetFilters restarts every filter session. Each reset waits for the
// request in flight on its filter, so a scan started before the call can
// not commit over the reset.
func (s *Server) resetFilters() {
	for _, f := range s.filters.List() {
		session, err := s.filters.Session(f.Index)
		if err != nil {
			continue
		}
		l := s.filterLock(f.Index)
		l.Lock()
		session.Reset()
		l.Unlock()
	}
}

func (s *Server) forgetFilter(index int) {
	s.mu.Lock()
	delete(s.filterLocks, index)
	s.mu.Unlock()
}

// element returns the paging state of key in t, creating it when missing.
func (s *Server) element(t nutscan.Target, key string) *elementState {
	id := t.ID() + "/" + key

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.elements[id]
	if !ok {
		st = &elementState{}
		s.elements[id] = st
	}
	return st
}

// dropElements forgets every opened element, so the next page of each
// starts over.
func (s *Server) dropElements() {
	s.mu.Lock()
	s.elements = make(map[string]*elementState)
	s.mu.Unlock()
}
