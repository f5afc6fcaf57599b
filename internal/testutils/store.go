package testutils

import (
	"context"
	"sync"

	"github.com/nutsdb/nutscan"
	"github.com/samber/mo"
)

// Call is one recorded store call.
type Call struct {
	Cmd    string
	Target nutscan.Target
	Key    string
	Cursor nutscan.Cursor
	Start  int64
	Stop   int64
}

// Step is one scripted reply of a cursor scan. Step i answers the cursor
// returned by step i-1; the first step answers CursorStart.
type Step struct {
	Next  nutscan.Cursor
	Items []string
	Err   error
}

// Steps scripts a scan of a single target or key from its steps.
type Steps []Step

func (s Steps) reply(cursor nutscan.Cursor) (nutscan.Cursor, []string, error) {
	want := nutscan.CursorStart
	for _, step := range s {
		if cursor == want {
			return step.Next, step.Items, step.Err
		}
		want = step.Next
	}
	return nutscan.CursorStart, nil, nil
}

// Store is a scripted nutscan.Store that records every call. A command
// without a script replies with zero values.
type Store struct {
	mu    sync.Mutex
	calls []Call

	// Keyspace scripts SCAN per target.
	Keyspace map[nutscan.Target]Steps

	// Types answers TYPE; keys not listed do not exist.
	Types map[string]nutscan.KeyType

	// Strings answers GET.
	Strings map[string]string

	// Sizes answers LLEN, SCARD, ZCARD, HLEN and DBSIZE, the latter keyed
	// by the target's String().
	Sizes map[string]int64

	// Members scripts SSCAN and HSCAN per key.
	Members map[string]Steps

	// Ranges answers LRANGE and ZRANGE from a full reply per key; a sorted
	// set reply alternates members and scores.
	Ranges map[string][]string

	// Errs fails a command by name ("SCAN", "LRANGE"...) when set.
	Errs map[string]error

	// Hook runs before every call is answered.
	Hook func(c Call)
}

func (s *Store) record(c Call) error {
	s.mu.Lock()
	s.calls = append(s.calls, c)
	hook := s.Hook
	err := s.Errs[c.Cmd]
	s.mu.Unlock()

	if hook != nil {
		hook(c)
	}
	return err
}

// Calls returns the recorded calls of cmd, or all calls when cmd is empty.
func (s *Store) Calls(cmd string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Call
	for _, c := range s.calls {
		if cmd == "" || c.Cmd == cmd {
			out = append(out, c)
		}
	}
	return out
}

// CallCount returns how often cmd was called.
func (s *Store) CallCount(cmd string) int {
	return len(s.Calls(cmd))
}

// ResetCalls forgets the recorded calls.
func (s *Store) ResetCalls() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

// SetErr fails cmd with err from now on; a nil err clears it.
func (s *Store) SetErr(cmd string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Errs == nil {
		s.Errs = make(map[string]error)
	}
	if err == nil {
		delete(s.Errs, cmd)
		return
	}
	s.Errs[cmd] = err
}

func (s *Store) Scan(ctx context.Context, t nutscan.Target, cursor nutscan.Cursor, pattern string, count int) (nutscan.Cursor, []string, error) {
	if err := s.record(Call{Cmd: "SCAN", Target: t, Cursor: cursor}); err != nil {
		return cursor, nil, err
	}
	return s.Keyspace[t].reply(cursor)
}

func (s *Store) SScan(ctx context.Context, t nutscan.Target, key string, cursor nutscan.Cursor, pattern string, count int) (nutscan.Cursor, []string, error) {
	if err := s.record(Call{Cmd: "SSCAN", Target: t, Key: key, Cursor: cursor}); err != nil {
		return cursor, nil, err
	}
	return s.Members[key].reply(cursor)
}

func (s *Store) HScan(ctx context.Context, t nutscan.Target, key string, cursor nutscan.Cursor, pattern string, count int) (nutscan.Cursor, []string, error) {
	if err := s.record(Call{Cmd: "HSCAN", Target: t, Key: key, Cursor: cursor}); err != nil {
		return cursor, nil, err
	}
	return s.Members[key].reply(cursor)
}

func (s *Store) LRange(ctx context.Context, t nutscan.Target, key string, start, stop int64) ([]string, error) {
	if err := s.record(Call{Cmd: "LRANGE", Target: t, Key: key, Start: start, Stop: stop}); err != nil {
		return nil, err
	}
	return sliceRange(s.Ranges[key], start, stop, 1), nil
}

func (s *Store) ZRangeWithScores(ctx context.Context, t nutscan.Target, key string, start, stop int64) ([]string, error) {
	if err := s.record(Call{Cmd: "ZRANGE", Target: t, Key: key, Start: start, Stop: stop}); err != nil {
		return nil, err
	}
	return sliceRange(s.Ranges[key], start, stop, 2), nil
}

// sliceRange returns ranks start..stop of a reply holding width strings per rank.
func sliceRange(all []string, start, stop int64, width int64) []string {
	size := int64(len(all)) / width
	if stop >= size {
		stop = size - 1
	}
	if start < 0 || start > stop {
		return nil
	}
	out := make([]string, (stop-start+1)*width)
	copy(out, all[start*width:(stop+1)*width])
	return out
}

func (s *Store) size(cmd string, t nutscan.Target, key string) (int64, error) {
	if err := s.record(Call{Cmd: cmd, Target: t, Key: key}); err != nil {
		return 0, err
	}
	return s.Sizes[key], nil
}

func (s *Store) LLen(ctx context.Context, t nutscan.Target, key string) (int64, error) {
	return s.size("LLEN", t, key)
}

func (s *Store) SCard(ctx context.Context, t nutscan.Target, key string) (int64, error) {
	return s.size("SCARD", t, key)
}

func (s *Store) ZCard(ctx context.Context, t nutscan.Target, key string) (int64, error) {
	return s.size("ZCARD", t, key)
}

func (s *Store) HLen(ctx context.Context, t nutscan.Target, key string) (int64, error) {
	return s.size("HLEN", t, key)
}

func (s *Store) DBSize(ctx context.Context, t nutscan.Target) (int64, error) {
	return s.size("DBSIZE", t, t.String())
}

func (s *Store) Type(ctx context.Context, t nutscan.Target, key string) (nutscan.KeyType, bool, error) {
	if err := s.record(Call{Cmd: "TYPE", Target: t, Key: key}); err != nil {
		return nutscan.Unknown, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kt, ok := s.Types[key]
	return kt, ok, nil
}

func (s *Store) Get(ctx context.Context, t nutscan.Target, key string) (mo.Option[string], error) {
	if err := s.record(Call{Cmd: "GET", Target: t, Key: key}); err != nil {
		return mo.None[string](), err
	}
	if v, ok := s.Strings[key]; ok {
		return mo.Some(v), nil
	}
	return mo.None[string](), nil
}

// SetType changes the type TYPE reports for key.
func (s *Store) SetType(key string, kt nutscan.KeyType) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Types == nil {
		s.Types = make(map[string]nutscan.KeyType)
	}
	s.Types[key] = kt
}
