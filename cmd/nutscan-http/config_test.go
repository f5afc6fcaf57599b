package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nutscan.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":9000"
store:
  snapshot: /tmp/dump.json.sz
  shards: 3
scan:
  listBatch: 25
  maxEmptyScans: 100
`), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "/tmp/dump.json.sz", cfg.Store.Snapshot)
	assert.Equal(t, 3, cfg.storeOptions().Shards)
	assert.Equal(t, defaultBasePort, cfg.storeOptions().BasePort)

	opts := cfg.scanOptions()
	assert.Equal(t, int64(25), opts.ListBatch)
	assert.Equal(t, 100, opts.MaxEmptyScans)
	assert.Equal(t, 10, opts.MinScanBatch)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
