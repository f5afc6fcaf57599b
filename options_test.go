package nutscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_WithDefaults(t *testing.T) {
	opts := Options{MaxEmptyScans: -3}.withDefaults()
	assert.Equal(t, DefaultOptions.ListBatch, opts.ListBatch)
	assert.Equal(t, DefaultOptions.MinScanBatch, opts.MinScanBatch)
	assert.Equal(t, DefaultOptions.ScanCount, opts.ScanCount)
	assert.Equal(t, 0, opts.MaxEmptyScans)
	assert.Equal(t, 1, opts.StoreBurst)
}

func TestWithOptions(t *testing.T) {
	opts := DefaultOptions
	for _, do := range []Option{
		WithListBatch(25),
		WithMinScanBatch(30),
		WithScanCount(500),
		WithMaxEmptyScans(100),
		WithNodeNum(1011),
		WithStoreRate(50, 5),
	} {
		do(&opts)
	}
	assert.Equal(t, Options{
		ListBatch:     25,
		MinScanBatch:  30,
		ScanCount:     500,
		MaxEmptyScans: 100,
		NodeNum:       1011,
		StoreRate:     50,
		StoreBurst:    5,
	}, opts)
}

func TestNewSession_Options(t *testing.T) {
	s, err := NewSession(nil, StaticTargets{}, "", DefaultOptions, WithListBatch(3), WithStoreRate(10, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.loader.opts.ListBatch)
	assert.Equal(t, "*", s.Pattern())
	_, limited := s.store.(instrumentedStore).s.(*RateLimitedStore)
	assert.True(t, limited)

	_, err = NewSession(nil, StaticTargets{}, "*", DefaultOptions, WithNodeNum(-1))
	assert.Error(t, err)
}
