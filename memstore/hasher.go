package memstore

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Hasher places keys on cluster shards.
type Hasher interface {
	Sum64(key string) uint64
}

func newDefaultHasher() Hasher {
	return tagHasher{}
}

// tagHasher hashes only the hash tag of a key when it has one, so
// "{user:1}:profile" and "{user:1}:orders" live on the same shard.
type tagHasher struct{}

func (tagHasher) Sum64(key string) uint64 {
	return xxhash.Sum64String(hashTag(key))
}

// hashTag returns the text between the first "{" and the next "}" when it
// is not empty, otherwise key itself.
func hashTag(key string) string {
	open := strings.IndexByte(key, '{')
	if open < 0 {
		return key
	}
	end := strings.IndexByte(key[open+1:], '}')
	if end <= 0 {
		return key
	}
	return key[open+1 : open+1+end]
}
