package nutscan

import (
	"sync"

	"github.com/nutsdb/nutscan/internal/utils"
	"github.com/pkg/errors"
)

// KeyFilter is a registered key pattern.
type KeyFilter struct {
	Index   int    `json:"index"`
	Pattern string `json:"pattern"`
}

type keyFilter struct {
	KeyFilter
	session *Session
}

// FilterSet keeps the key filters of one store, each with its own Session.
// It starts with the match-all filter at index 0. The registry itself is
// safe for concurrent use; the sessions it hands out are not.
type FilterSet struct {
	mu       sync.RWMutex
	store    Store
	resolver TargetResolver
	opts     Options
	filters  []*keyFilter
	next     int
}

// NewFilterSet returns a FilterSet holding the match-all filter.
func NewFilterSet(store Store, resolver TargetResolver, opts Options) (*FilterSet, error) {
	fs := &FilterSet{store: store, resolver: resolver, opts: opts}
	if _, err := fs.Add(utils.MatchAll); err != nil {
		return nil, err
	}
	return fs, nil
}

// Add registers pattern and returns its index. A pattern that is already
// registered returns the existing index.
func (fs *FilterSet) Add(pattern string) (int, error) {
	if pattern == "" {
		pattern = utils.MatchAll
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	for _, f := range fs.filters {
		if f.Pattern == pattern {
			return f.Index, nil
		}
	}

	session, err := NewSession(fs.store, fs.resolver, pattern, fs.opts)
	if err != nil {
		return 0, err
	}
	f := &keyFilter{KeyFilter: KeyFilter{Index: fs.next, Pattern: pattern}, session: session}
	fs.filters = append(fs.filters, f)
	fs.next++
	return f.Index, nil
}

// Pattern returns the pattern at index, or the match-all pattern when the
// index is not registered.
func (fs *FilterSet) Pattern(index int) string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if f := fs.find(index); f != nil {
		return f.Pattern
	}
	return utils.MatchAll
}

// Update changes the pattern at index; a changed pattern restarts its session.
func (fs *FilterSet) Update(index int, pattern string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	f := fs.find(index)
	if f == nil {
		return errors.WithMessagef(ErrFilterNotFound, "index %d", index)
	}
	if pattern == "" {
		pattern = utils.MatchAll
	}
	if f.Pattern != pattern {
		f.Pattern = pattern
		f.session.setPattern(pattern)
	}
	return nil
}

// Delete removes the filter at index.
func (fs *FilterSet) Delete(index int) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	for i, f := range fs.filters {
		if f.Index == index {
			fs.filters = append(fs.filters[:i], fs.filters[i+1:]...)
			return nil
		}
	}
	return errors.WithMessagef(ErrFilterNotFound, "index %d", index)
}

// Session returns the session of the filter at index.
func (fs *FilterSet) Session(index int) (*Session, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if f := fs.find(index); f != nil {
		return f.session, nil
	}
	return nil, errors.WithMessagef(ErrFilterNotFound, "index %d", index)
}

// List returns the registered filters in insertion order.
func (fs *FilterSet) List() []KeyFilter {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	out := make([]KeyFilter, 0, len(fs.filters))
	for _, f := range fs.filters {
		out = append(out, f.KeyFilter)
	}
	return out
}

func (fs *FilterSet) find(index int) *keyFilter {
	for _, f := range fs.filters {
		if f.Index == index {
			return f
		}
	}
	return nil
}
