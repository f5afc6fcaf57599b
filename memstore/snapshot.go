package memstore

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/edsrzf/mmap-go"
	"github.com/gofrs/flock"
	"github.com/golang/snappy"
	"github.com/nutsdb/nutscan"
	"github.com/pkg/errors"
)

// SnapshotSuffixSnappy marks snapshot files compressed with snappy.
const SnapshotSuffixSnappy = ".sz"

// Record is one key of a snapshot file. Which value field is read depends on Type.
type Record struct {
	DB      int               `json:"db"`
	Key     string            `json:"key"`
	Type    string            `json:"type"`
	Value   string            `json:"value,omitempty"`
	Values  []string          `json:"values,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Members []ZMember         `json:"members,omitempty"`
	TTL     int64             `json:"ttl,omitempty"` // seconds
}

// LoadSnapshot reads a JSON array of records from path into db and returns
// how many keys it loaded. The file is read under a shared lock so a writer
// holding the exclusive lock is never observed half way.
func LoadSnapshot(db *DB, path string) (int, error) {
	// flock creates missing files.
	if _, err := os.Stat(path); err != nil {
		return 0, errors.Wrap(err, "snapshot")
	}

	fl := flock.New(path)
	if err := fl.RLock(); err != nil {
		return 0, errors.Wrapf(err, "lock snapshot %s", path)
	}
	defer fl.Unlock()

	data, release, err := mapFile(path)
	if err != nil {
		return 0, err
	}
	defer release()

	if strings.HasSuffix(path, SnapshotSuffixSnappy) {
		if data, err = snappy.Decode(nil, data); err != nil {
			return 0, errors.Wrapf(err, "decompress snapshot %s", path)
		}
	}

	var records []Record
	if len(data) > 0 {
		if err := json.Unmarshal(data, &records); err != nil {
			return 0, errors.Wrapf(err, "decode snapshot %s", path)
		}
	}

	for i, r := range records {
		if err := db.restore(r); err != nil {
			return i, errors.Wrapf(err, "snapshot %s record %d (%q)", path, i, r.Key)
		}
	}
	return len(records), nil
}

// mapFile maps path read-only. The returned bytes are valid until release.
func mapFile(path string) ([]byte, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open snapshot")
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrap(err, "stat snapshot")
	}
	if fi.Size() == 0 {
		f.Close()
		return nil, func() {}, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrap(err, "mmap snapshot")
	}
	return m, func() {
		_ = m.Unmap()
		_ = f.Close()
	}, nil
}

func (db *DB) restore(r Record) error {
	kt, ok := nutscan.ParseKeyType(r.Type)
	if !ok {
		return errors.Errorf("unsupported type %q", r.Type)
	}

	var err error
	switch kt {
	case nutscan.String:
		err = db.Set(r.DB, r.Key, r.Value)
	case nutscan.List:
		_, err = db.RPush(r.DB, r.Key, r.Values...)
	case nutscan.Set:
		_, err = db.SAdd(r.DB, r.Key, r.Values...)
	case nutscan.Hash:
		fv := make([]string, 0, 2*len(r.Fields))
		for f, v := range r.Fields {
			fv = append(fv, f, v)
		}
		_, err = db.HSet(r.DB, r.Key, fv...)
	case nutscan.SortedSet:
		_, err = db.ZAdd(r.DB, r.Key, r.Members...)
	}
	if err != nil {
		return err
	}

	// An empty collection was not stored, so it has nothing to expire.
	if r.TTL > 0 {
		if err := db.Expire(r.DB, r.Key, time.Duration(r.TTL)*time.Second); err != nil && !nutscan.IsKeyNotFound(err) {
			return err
		}
	}
	return nil
}
