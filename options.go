package nutscan

// Options records params for creating a Session and its components.
type Options struct {
	// ListBatch is the number of list or sorted set members fetched per load.
	ListBatch int64

	// MinScanBatch is the number of set members or hash fields a load must
	// exceed before it returns, unless the scan ends first.
	MinScanBatch int

	// ScanCount is the COUNT hint passed to every store scan step.
	ScanCount int

	// MaxEmptyScans bounds the empty scan steps a single keyspace scan may
	// take before giving up with ErrScanStalled. Zero means no bound.
	MaxEmptyScans int

	// NodeNum is the snowflake node number used for element ids.
	NodeNum int64

	// StoreRate limits store calls per second when positive.
	StoreRate float64

	// StoreBurst is the burst allowed by StoreRate.
	StoreBurst int
}

// DefaultOptions represents the default options.
var DefaultOptions = Options{
	ListBatch:     10,
	MinScanBatch:  10,
	ScanCount:     10,
	MaxEmptyScans: 0,
	NodeNum:       1,
	StoreRate:     0,
	StoreBurst:    1,
}

// withDefaults fills zero values from DefaultOptions.
func (opt Options) withDefaults() Options {
	if opt.ListBatch <= 0 {
		opt.ListBatch = DefaultOptions.ListBatch
	}
	if opt.MinScanBatch <= 0 {
		opt.MinScanBatch = DefaultOptions.MinScanBatch
	}
	if opt.ScanCount <= 0 {
		opt.ScanCount = DefaultOptions.ScanCount
	}
	if opt.MaxEmptyScans < 0 {
		opt.MaxEmptyScans = 0
	}
	if opt.StoreBurst <= 0 {
		opt.StoreBurst = DefaultOptions.StoreBurst
	}
	return opt
}

// Option changes one field of Options.
type Option func(*Options)

func WithListBatch(n int64) Option {
	return func(opt *Options) {
		opt.ListBatch = n
	}
}

func WithMinScanBatch(n int) Option {
	return func(opt *Options) {
		opt.MinScanBatch = n
	}
}

func WithScanCount(n int) Option {
	return func(opt *Options) {
		opt.ScanCount = n
	}
}

func WithMaxEmptyScans(n int) Option {
	return func(opt *Options) {
		opt.MaxEmptyScans = n
	}
}

func WithNodeNum(num int64) Option {
	return func(opt *Options) {
		opt.NodeNum = num
	}
}

// WithStoreRate limits store calls to perSecond with the given burst.
func WithStoreRate(perSecond float64, burst int) Option {
	return func(opt *Options) {
		opt.StoreRate = perSecond
		opt.StoreBurst = burst
	}
}
