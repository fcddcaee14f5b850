// Package variables holds the per-conversion key/value context: document
// attributes, caption counters, anchor texts, section numbers and footnotes.
package variables

import (
	"sort"
	"strconv"
	"strings"
)

// Key prefixes for internal bookkeeping. Every internal key contains ':'
// so Public never exposes it.
const (
	AnchorPrefix      = "anchor:"
	SectnumPrefix     = "sectnum:"
	CounterPrefix     = "counter:"
	CaptionPrefix     = "caption:"
	FootnotePrefix    = "footnote:"
	FootnoteRefPrefix = "footnoteref:"
	FootnoteCount     = "footnote:count"
)

// Store is not safe for concurrent use; one Store belongs to one conversion.
type Store struct {
	values map[string]string
	unset  map[string]bool
}

// New returns a Store seeded with initial attributes. A key ending in "!"
// is recorded as explicitly unset.
func New(initial map[string]string) *Store {
	s := &Store{
		values: make(map[string]string),
		unset:  make(map[string]bool),
	}
	keys := make([]string, 0, len(initial))
	for k := range initial {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if name, ok := strings.CutSuffix(k, "!"); ok {
			s.Unset(name)
			continue
		}
		s.Set(k, initial[k])
	}
	return s
}

// Get returns the value for key or "".
func (s *Store) Get(key string) string {
	return s.values[key]
}

// GetOr returns the value for key, or def when the key is not set.
func (s *Store) GetOr(key, def string) string {
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// Lookup returns the value and whether key is set.
func (s *Store) Lookup(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Has reports whether key is set (an empty value counts as set).
func (s *Store) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Set stores key, clearing any explicit unset marker.
func (s *Store) Set(key, value string) {
	s.values[key] = value
	delete(s.unset, key)
}

// Unset removes key and remembers that it was explicitly disabled.
func (s *Store) Unset(key string) {
	delete(s.values, key)
	s.unset[key] = true
}

// IsUnset reports whether key was explicitly disabled.
func (s *Store) IsUnset(key string) bool {
	return s.unset[key]
}

// Int returns key parsed as an integer, or def.
func (s *Store) Int(key string, def int) int {
	if v, ok := s.values[key]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// SetInt stores an integer value.
func (s *Store) SetInt(key string, n int) {
	s.Set(key, strconv.Itoa(n))
}

// Next returns the current value of counter key (start when unset) and
// stores the incremented value.
func (s *Store) Next(key string, start int) int {
	n := s.Int(key, start)
	s.SetInt(key, n+1)
	return n
}

// Keys returns every key in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Public returns the attributes meant for templating: every key that is not
// internal bookkeeping (no ':' and no '%').
func (s *Store) Public() map[string]string {
	out := make(map[string]string)
	for k, v := range s.values {
		if strings.ContainsAny(k, ":%") {
			continue
		}
		out[k] = v
	}
	return out
}
