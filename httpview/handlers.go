package httpview

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/nutsdb/nutscan"
	"github.com/pkg/errors"
	"github.com/xujiajun/gorouter"
	"github.com/xujiajun/utils/strconv2"
)

var (
	errBadIndex  = errors.New("filter index must be an integer")
	errNoKey     = errors.New("missing key")
	errNoTarget  = errors.New("unknown target")
	errBadType   = errors.New("unknown key type")
	errBadRecord = errors.New("malformed request body")
)

type (
	patternRequest struct {
		Pattern string `json:"pattern"`
	}

	indexResponse struct {
		Index int `json:"index"`
	}

	keysResponse struct {
		Elements []*nutscan.CollectionElement `json:"elements"`
		HasMore  bool                         `json:"hasMore"`
	}

	valuesResponse struct {
		Element *nutscan.CollectionElement       `json:"element"`
		New     []nutscan.CollectionElementValue `json:"new"`
	}

	selectRequest struct {
		Selected []string `json:"selected"`
	}

	errorResponse struct {
		Error   string `json:"error"`
		HasMore bool   `json:"hasMore,omitempty"`
	}
)

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		nutscan.GetLogger().Printf("httpview: write response: %v", err)
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, nutscan.ErrFilterNotFound), errors.Is(err, nutscan.ErrKeyNotFound), errors.Is(err, errNoTarget):
		return http.StatusNotFound
	case errors.Is(err, nutscan.ErrInvalidCursor), errors.Is(err, errBadIndex), errors.Is(err, errNoKey),
		errors.Is(err, errBadType), errors.Is(err, errBadRecord):
		return http.StatusBadRequest
	case errors.Is(err, nutscan.ErrScanStalled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error, hasMore bool) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		nutscan.GetLogger().Printf("httpview: %v", err)
	}
	writeJSON(w, code, errorResponse{Error: err.Error(), HasMore: hasMore})
}

func filterIndex(r *http.Request) (int, error) {
	index, err := strconv2.StrToInt(gorouter.GetParam(r, "index"))
	if err != nil {
		return 0, errors.WithMessagef(errBadIndex, "%q", gorouter.GetParam(r, "index"))
	}
	return index, nil
}

func queryFlag(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.WithMessage(errBadRecord, err.Error())
	}
	return nil
}

func (s *Server) listFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.filters.List())
}

func (s *Server) addFilter(w http.ResponseWriter, r *http.Request) {
	var req patternRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, false)
		return
	}
	index, err := s.filters.Add(req.Pattern)
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeJSON(w, http.StatusCreated, indexResponse{Index: index})
}

func (s *Server) updateFilter(w http.ResponseWriter, r *http.Request) {
	index, err := filterIndex(r)
	if err != nil {
		writeError(w, err, false)
		return
	}
	var req patternRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, false)
		return
	}

	l := s.filterLock(index)
	l.Lock()
	defer l.Unlock()

	if err := s.filters.Update(index, req.Pattern); err != nil {
		writeError(w, err, false)
		return
	}
	writeJSON(w, http.StatusOK, nutscan.KeyFilter{Index: index, Pattern: s.filters.Pattern(index)})
}

func (s *Server) deleteFilter(w http.ResponseWriter, r *http.Request) {
	index, err := filterIndex(r)
	if err != nil {
		writeError(w, err, false)
		return
	}
	if err := s.filters.Delete(index); err != nil {
		writeError(w, err, false)
		return
	}
	s.forgetFilter(index)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) nextKeys(w http.ResponseWriter, r *http.Request) {
	index, err := filterIndex(r)
	if err != nil {
		writeError(w, err, false)
		return
	}
	session, err := s.filters.Session(index)
	if err != nil {
		writeError(w, err, false)
		return
	}

	l := s.filterLock(index)
	l.Lock()
	defer l.Unlock()

	elems, more, err := session.LoadNext(r.Context(), queryFlag(r, "clear"))
	if err != nil {
		writeError(w, err, more)
		return
	}
	if elems == nil {
		elems = []*nutscan.CollectionElement{}
	}
	writeJSON(w, http.StatusOK, keysResponse{Elements: elems, HasMore: more})
}

func (s *Server) filterSize(w http.ResponseWriter, r *http.Request) {
	index, err := filterIndex(r)
	if err != nil {
		writeError(w, err, false)
		return
	}
	session, err := s.filters.Session(index)
	if err != nil {
		writeError(w, err, false)
		return
	}

	// Concurrent requests for the same filter share one round of DBSIZE calls.
	l := s.filterLock(index)
	v, err, _ := s.sizes.Do(strconv2.IntToStr(index)+"/"+s.filters.Pattern(index), func() (interface{}, error) {
		l.Lock()
		defer l.Unlock()
		return session.EstimateSize(r.Context())
	})
	if err != nil {
		writeError(w, err, false)
		return
	}
	writeJSON(w, http.StatusOK, v.(nutscan.SizeEstimate))
}

func (s *Server) resetFilter(w http.ResponseWriter, r *http.Request) {
	index, err := filterIndex(r)
	if err != nil {
		writeError(w, err, false)
		return
	}
	session, err := s.filters.Session(index)
	if err != nil {
		writeError(w, err, false)
		return
	}

	l := s.filterLock(index)
	l.Lock()
	session.Reset()
	l.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listTargets(w http.ResponseWriter, r *http.Request) {
	s.targets.mu.Lock()
	defer s.targets.mu.Unlock()

	if err := s.targets.sel.Refresh(r.Context()); err != nil {
		writeError(w, err, false)
		return
	}
	writeJSON(w, http.StatusOK, s.targets.sel.Filters())
}

func (s *Server) selectTargets(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err, false)
		return
	}

	s.targets.mu.Lock()
	if _, err := s.targets.sel.Targets(r.Context()); err != nil {
		s.targets.mu.Unlock()
		writeError(w, err, false)
		return
	}
	changed := s.targets.sel.SetSelected(req.Selected)
	filters := s.targets.sel.Filters()
	s.targets.mu.Unlock()

	if changed {
		nutscan.GetLogger().Printf("httpview: target selection changed, restarting %d filters", len(s.filters.List()))
		s.resetFilters()
		s.dropElements()
	}
	writeJSON(w, http.StatusOK, filters)
}

// target finds the known target with id.
func (s *Server) target(r *http.Request, id string) (nutscan.Target, error) {
	s.targets.mu.Lock()
	defer s.targets.mu.Unlock()

	if _, err := s.targets.sel.Targets(r.Context()); err != nil {
		return nutscan.Target{}, err
	}
	for _, f := range s.targets.sel.Filters() {
		if f.Target.ID() == id {
			return f.Target, nil
		}
	}
	return nutscan.Target{}, errors.WithMessagef(errNoTarget, "%q", id)
}

// loadValues returns the next page of one key. The element state is kept
// per target and key; clear starts the key over, and a type different from
// the stored one re-opens it.
func (s *Server) loadValues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key := q.Get("key")
	if key == "" {
		writeError(w, errNoKey, false)
		return
	}
	kt := nutscan.Unknown
	if name := q.Get("type"); name != "" {
		var ok bool
		if kt, ok = nutscan.ParseKeyType(name); !ok {
			writeError(w, errors.WithMessagef(errBadType, "%q", name), false)
			return
		}
	}
	t, err := s.target(r, q.Get("target"))
	if err != nil {
		writeError(w, err, false)
		return
	}

	st := s.element(t, key)
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.el == nil || queryFlag(r, "clear") || (kt != nutscan.Unknown && st.el.Type != kt) {
		st.el = nutscan.NewElement(key, kt, t)
	}

	prev := len(st.el.Values)
	el, err := s.loader.Load(r.Context(), st.el)
	if err != nil {
		writeError(w, err, st.el.HasMore)
		return
	}
	if el.Type != st.el.Type {
		prev = 0
	}
	st.el = el

	added := el.Since(prev)
	if added == nil {
		added = []nutscan.CollectionElementValue{}
	}
	writeJSON(w, http.StatusOK, valuesResponse{Element: el, New: added})
}
