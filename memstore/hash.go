package memstore

import (
	"context"

	"github.com/nutsdb/nutscan"
)

// HSet sets field/value pairs, given as alternating arguments, in the hash
// at key and returns how many fields were new.
func (db *DB) HSet(dbIndex int, key string, fieldValues ...string) (added int, err error) {
	if len(fieldValues)%2 != 0 {
		return 0, ErrOddFieldValues
	}
	err = db.Managed(dbIndex, key, true, func(d *database) error {
		e, err := d.getOrCreate(key, nutscan.Hash, len(fieldValues), func(e *entry) { e.hash = newHashTree() })
		if err != nil || e == nil {
			return err
		}
		for i := 0; i < len(fieldValues); i += 2 {
			if _, replaced := e.hash.Set(hashField{field: fieldValues[i], value: fieldValues[i+1]}); !replaced {
				added++
			}
		}
		return nil
	})
	return added, err
}

// HLen implements nutscan.Store.
func (db *DB) HLen(ctx context.Context, t nutscan.Target, key string) (n int64, err error) {
	err = db.view(ctx, t, func(d *database) error {
		e, ok, err := d.getAs(key, nutscan.Hash)
		if err != nil || !ok {
			return err
		}
		n = int64(e.hash.Len())
		return nil
	})
	return n, err
}

// HScan implements nutscan.Store; the reply alternates fields and values.
func (db *DB) HScan(ctx context.Context, t nutscan.Target, key string, cursor nutscan.Cursor, pattern string, count int) (next nutscan.Cursor, entries []string, err error) {
	next = nutscan.CursorStart
	err = db.view(ctx, t, func(d *database) error {
		e, ok, err := d.getAs(key, nutscan.Hash)
		if err != nil || !ok {
			return err
		}
		next, err = scanTree(e.hash, cursor, pattern, count,
			func(f hashField) string { return f.field },
			func(field string) hashField { return hashField{field: field} },
			func(f hashField) { entries = append(entries, f.field, f.value) })
		return err
	})
	if err != nil {
		return cursor, nil, err
	}
	return next, entries, nil
}
