package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/nutsdb/nutscan"
	"github.com/nutsdb/nutscan/memstore"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	defaultListen    = ":8181"
	defaultDatabases = 16
	defaultBasePort  = 7000
)

type Config struct {
	Listen string `mapstructure:"listen"`

	Store struct {
		Snapshot  string `mapstructure:"snapshot"`
		Databases int    `mapstructure:"databases"`
		Shards    int    `mapstructure:"shards"`
		BasePort  int    `mapstructure:"basePort"`
	} `mapstructure:"store"`

	Scan struct {
		ListBatch     int64   `mapstructure:"listBatch"`
		MinScanBatch  int     `mapstructure:"minScanBatch"`
		ScanCount     int     `mapstructure:"scanCount"`
		MaxEmptyScans int     `mapstructure:"maxEmptyScans"`
		NodeNum       int64   `mapstructure:"nodeNum"`
		StoreRate     float64 `mapstructure:"storeRate"`
		StoreBurst    int     `mapstructure:"storeBurst"`
	} `mapstructure:"scan"`
}

// loadConfig reads configFile, or nutscan.yml next to the executable or in
// the working directory when configFile is empty. A missing default file is
// not an error. NUTSCAN_* environment variables override file values.
func loadConfig(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("listen", defaultListen)
	v.SetDefault("store.databases", defaultDatabases)
	v.SetDefault("store.basePort", defaultBasePort)
	v.SetDefault("scan.listBatch", nutscan.DefaultOptions.ListBatch)
	v.SetDefault("scan.minScanBatch", nutscan.DefaultOptions.MinScanBatch)
	v.SetDefault("scan.scanCount", nutscan.DefaultOptions.ScanCount)
	v.SetDefault("scan.nodeNum", nutscan.DefaultOptions.NodeNum)
	v.SetDefault("scan.storeBurst", nutscan.DefaultOptions.StoreBurst)

	v.SetEnvPrefix("nutscan")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		baseDir := "."
		if exe, err := os.Executable(); err == nil {
			baseDir = filepath.Dir(exe)
		}
		v.SetConfigName("nutscan")
		v.SetConfigType("yml")
		v.AddConfigPath(baseDir)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return &cfg, nil
}

func (c *Config) storeOptions() memstore.Options {
	opts := memstore.DefaultOptions
	opts.Databases = c.Store.Databases
	opts.Shards = c.Store.Shards
	opts.BasePort = c.Store.BasePort
	return opts
}

func (c *Config) scanOptions() nutscan.Options {
	return nutscan.Options{
		ListBatch:     c.Scan.ListBatch,
		MinScanBatch:  c.Scan.MinScanBatch,
		ScanCount:     c.Scan.ScanCount,
		MaxEmptyScans: c.Scan.MaxEmptyScans,
		NodeNum:       c.Scan.NodeNum,
		StoreRate:     c.Scan.StoreRate,
		StoreBurst:    c.Scan.StoreBurst,
	}
}
