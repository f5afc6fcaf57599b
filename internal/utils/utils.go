package utils

import (
	"encoding/hex"
	"path/filepath"
)

// MatchAll is the glob that matches every key.
const MatchAll = "*"

// MatchPattern reports whether name matches the glob pattern. A malformed
// pattern matches nothing and returns the error.
func MatchPattern(pattern, name string) (bool, error) {
	if pattern == "" || pattern == MatchAll {
		return true, nil
	}
	return filepath.Match(pattern, name)
}

// EncodeResumeKey turns the last key a scan step returned into an opaque
// cursor. The encoding never yields "0", which stores reserve for start/end.
func EncodeResumeKey(key string) string {
	return "k" + hex.EncodeToString([]byte(key))
}

// DecodeResumeKey reverses EncodeResumeKey.
func DecodeResumeKey(cursor string) (string, bool) {
	if len(cursor) == 0 || cursor[0] != 'k' {
		return "", false
	}
	b, err := hex.DecodeString(cursor[1:])
	if err != nil {
		return "", false
	}
	return string(b), true
}
