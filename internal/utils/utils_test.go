package utils_test

import (
	"testing"

	"github.com/nutsdb/nutscan/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"*", "anything", true},
		{"", "anything", true},
		{"user:*", "user:1", true},
		{"user:*", "session:1", false},
		{"h?llo", "hello", true},
		{"h[ae]llo", "hallo", true},
		{"h[ae]llo", "hillo", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.name, func(t *testing.T) {
			got, err := utils.MatchPattern(tt.pattern, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := utils.MatchPattern("[", "x")
	assert.Error(t, err)
}

func TestDiscardLogger(t *testing.T) {
	utils.SetLogger(nil)
	defer utils.SetLogger(utils.DiscardLogger())
	assert.NotNil(t, utils.GetLogger())
	utils.GetLogger().Printf("dropped %d", 1)
}

func TestResumeKey(t *testing.T) {
	for _, key := range []string{"", "0", "user:1", "\x00\xff"} {
		cursor := utils.EncodeResumeKey(key)
		assert.NotEqual(t, "0", cursor)
		decoded, ok := utils.DecodeResumeKey(cursor)
		require.True(t, ok)
		assert.Equal(t, key, decoded)
	}

	_, ok := utils.DecodeResumeKey("0")
	assert.False(t, ok)
	_, ok = utils.DecodeResumeKey("kzz")
	assert.False(t, ok)
}
