package nutscan

import (
	"encoding/json"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyType(t *testing.T) {
	for _, kt := range []KeyType{String, List, Set, SortedSet, Hash} {
		parsed, ok := ParseKeyType(kt.String())
		assert.True(t, ok)
		assert.Equal(t, kt, parsed)
	}

	_, ok := ParseKeyType("stream")
	assert.False(t, ok)
	assert.Equal(t, "unknown", KeyType(99).String())

	assert.True(t, Set.Scanned())
	assert.True(t, Hash.Scanned())
	assert.False(t, List.Scanned())
}

func TestNewElement(t *testing.T) {
	el := NewElement("h", Hash, DBTarget(0))
	assert.Equal(t, CursorStart, el.Cursor)
	assert.Equal(t, SizeUnknown, el.Size)
	assert.False(t, el.HasMore)
	assert.True(t, el.Fresh())

	el = NewElement("l", List, DBTarget(0))
	assert.Equal(t, CursorNone, el.Cursor)
	assert.True(t, el.Fresh())

	el.Size = 0
	assert.False(t, el.Fresh())
}

func TestCollectionElement_Clone(t *testing.T) {
	el := NewElement("l", List, DBTarget(0))
	el.Values = append(el.Values, CollectionElementValue{MemberKey: "a", MemberValue: "a"})

	out := el.clone()
	out.Values = append(out.Values, CollectionElementValue{MemberKey: "b"})
	out.Values[0].MemberValue = "changed"

	assert.Len(t, el.Values, 1)
	assert.Equal(t, "a", el.Values[0].MemberValue)
	assert.Nil(t, out.Since(2))
	assert.Len(t, out.Since(1), 1)
}

func TestCollectionElement_JSON(t *testing.T) {
	el := NewElement("z", SortedSet, DBTarget(2))
	el.Values = []CollectionElementValue{{MemberKey: "m", MemberID: mo.Some("1.5"), MemberValue: "m"}}

	data, err := json.Marshal(el)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"zset"`)
	assert.Contains(t, string(data), `"id":"1.5"`)
	assert.Contains(t, string(data), `"target":{"db":2}`)
}

func TestCursor(t *testing.T) {
	assert.True(t, CursorStart.Done())
	assert.True(t, CursorNone.Done())
	assert.False(t, Cursor("17").Done())
}

func TestKeyType_UnmarshalText(t *testing.T) {
	var v struct {
		Type KeyType `json:"type"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"type":"hash"}`), &v))
	assert.Equal(t, Hash, v.Type)
	require.NoError(t, json.Unmarshal([]byte(`{"type":"stream"}`), &v))
	assert.Equal(t, Unknown, v.Type)
}
