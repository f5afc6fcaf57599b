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
	"github.com/samber/mo"
)

// KeyType is the data type of a key as reported by the store.
type KeyType uint8

const (
	Unknown KeyType = iota
	String
	List
	Set
	SortedSet
	Hash
)

var keyTypeNames = [...]string{
	Unknown:   "unknown",
	String:    "string",
	List:      "list",
	Set:       "set",
	SortedSet: "zset",
	Hash:      "hash",
}

// String returns the store's name for the type.
func (kt KeyType) String() string {
	if int(kt) < len(keyTypeNames) {
		return keyTypeNames[kt]
	}
	return keyTypeNames[Unknown]
}

// MarshalText implements encoding.TextMarshaler.
func (kt KeyType) MarshalText() ([]byte, error) {
	return []byte(kt.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Names it does not know
// decode as Unknown.
func (kt *KeyType) UnmarshalText(text []byte) error {
	*kt, _ = ParseKeyType(string(text))
	return nil
}

// ParseKeyType maps the reply of the store's TYPE command to a KeyType.
// Bitmaps and HyperLogLogs are strings to the store and parse as String.
// Types the engine can not page through (streams, module types, "none")
// report ok == false.
func ParseKeyType(name string) (kt KeyType, ok bool) {
	switch name {
	case "string":
		return String, true
	case "list":
		return List, true
	case "set":
		return Set, true
	case "zset":
		return SortedSet, true
	case "hash":
		return Hash, true
	}
	return Unknown, false
}

// Scanned reports whether values of this type are paged with a store-side
// scan cursor rather than with a numeric offset.
func (kt KeyType) Scanned() bool {
	return kt == Set || kt == Hash
}

// Cursor is an opaque resumption token returned by a scan primitive.
type Cursor string

const (
	// CursorStart starts a scan. Stores return it again once a scan is complete.
	CursorStart Cursor = "0"

	// CursorNone marks an element that has nothing left to load.
	CursorNone Cursor = ""
)

// Done reports whether a cursor returned by the store ends the scan.
func (c Cursor) Done() bool {
	return c == CursorStart || c == CursorNone
}

// SizeUnknown is the Size of an element whose member count was not queried yet.
const SizeUnknown int64 = -1

// CollectionElementValue is one member of a key.
//
// MemberKey is the member itself (list item, set member, sorted set member,
// hash field or the key of a string). MemberID holds the hash field name or
// the sorted set score and is absent for the other types.
type CollectionElementValue struct {
	MemberKey   string            `json:"key"`
	MemberID    mo.Option[string] `json:"id"`
	MemberValue string            `json:"value"`
}

// CollectionElement is a key together with the values loaded for it so far.
type CollectionElement struct {
	ID      int64                    `json:"id"`
	Key     string                   `json:"key"`
	Type    KeyType                  `json:"type"`
	Target  Target                   `json:"target"`
	Values  []CollectionElementValue `json:"values"`
	Cursor  Cursor                   `json:"cursor,omitempty"`
	Size    int64                    `json:"size"`
	HasMore bool                     `json:"hasMore"`
}

// NewElement returns the initial, lazily loaded element for a key.
// Set and hash elements start at CursorStart, the others have no cursor
// until their size is known.
func NewElement(key string, kt KeyType, target Target) *CollectionElement {
	el := &CollectionElement{
		Key:    key,
		Type:   kt,
		Target: target,
		Size:   SizeUnknown,
	}
	if kt.Scanned() {
		el.Cursor = CursorStart
	}
	return el
}

// Fresh reports whether nothing was loaded for the element yet.
func (el *CollectionElement) Fresh() bool {
	if len(el.Values) > 0 {
		return false
	}
	if el.Type.Scanned() {
		return el.Cursor == CursorStart && el.Size == SizeUnknown
	}
	return el.Size == SizeUnknown
}

// Since returns the values appended after the first n.
func (el *CollectionElement) Since(n int) []CollectionElementValue {
	if n >= len(el.Values) {
		return nil
	}
	return el.Values[n:]
}

func (el *CollectionElement) clone() *CollectionElement {
	out := *el
	out.Values = make([]CollectionElementValue, len(el.Values), len(el.Values)+8)
	copy(out.Values, el.Values)
	return &out
}

// reset drops everything learned about the element's members.
func (el *CollectionElement) reset(kt KeyType) {
	el.Type = kt
	el.Values = el.Values[:0]
	el.Size = SizeUnknown
	el.HasMore = false
	el.Cursor = CursorNone
	if kt.Scanned() {
		el.Cursor = CursorStart
	}
}

// finish marks the element as completely loaded.
func (el *CollectionElement) finish() {
	el.Cursor = CursorNone
	el.HasMore = false
}
