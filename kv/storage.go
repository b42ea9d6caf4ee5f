package kv

import (
	"iter"

	"github.com/indigo-web/utils/strcomp"
)

type Pair struct {
	Key, Value string
}

// Storage is an associative structure for storing (string, string) pairs, preserving both
// the order of insertion and duplicate keys. It acts as a map but uses linear search instead,
// which proves to be more efficient on relatively low amount of entries, which often enough
// is the case.
//
// Keys are compared exactly by default. Storages created via NewFolded compare keys
// case-insensitively, which is what headers need.
type Storage struct {
	pairs      []Pair
	uniqueBuff []string
	fold       bool
}

func New() *Storage {
	return new(Storage)
}

// NewPrealloc returns an instance of Storage with pre-allocated underlying storage.
func NewPrealloc(n int) *Storage {
	return &Storage{
		pairs: make([]Pair, 0, n),
	}
}

// NewFolded returns an instance of Storage comparing keys case-insensitively.
func NewFolded() *Storage {
	return &Storage{fold: true}
}

// Add adds a new pair of key and value.
func (s *Storage) Add(key, value string) *Storage {
	s.pairs = append(s.pairs, Pair{
		Key:   key,
		Value: value,
	})
	return s
}

// Set replaces all the values of the key by a single one. If there were none, the pair
// is just added.
func (s *Storage) Set(key, value string) *Storage {
	return s.Delete(key).Add(key, value)
}

// Delete removes all the pairs with the key. The order of remaining pairs is preserved.
func (s *Storage) Delete(key string) *Storage {
	n := 0
	for _, pair := range s.pairs {
		if !s.cmp(key, pair.Key) {
			s.pairs[n] = pair
			n++
		}
	}

	clear(s.pairs[n:])
	s.pairs = s.pairs[:n]
	return s
}

// Value returns the first value, corresponding to the key. Otherwise, empty string is returned
func (s *Storage) Value(key string) string {
	value, _ := s.Get(key)
	return value
}

// Get returns a value and a bool, indicating whether the value was found. If it wasn't, it'll
// be an empty string.
func (s *Storage) Get(key string) (value string, found bool) {
	return s.ValueAt(key, 0)
}

// ValueAt returns the value by its position among all the values of the key. Negative
// positions count from the end, so -1 is the last value.
func (s *Storage) ValueAt(key string, index int) (value string, found bool) {
	if index < 0 {
		index += s.count(key)
		if index < 0 {
			return "", false
		}
	}

	for _, pair := range s.pairs {
		if s.cmp(key, pair.Key) {
			if index == 0 {
				return pair.Value, true
			}

			index--
		}
	}

	return "", false
}

// Values returns all values by the key in the order they were added. Returns nil if
// the key doesn't exist.
func (s *Storage) Values(key string) (values []string) {
	for _, pair := range s.pairs {
		if s.cmp(pair.Key, key) {
			values = append(values, pair.Value)
		}
	}

	return values
}

// Keys returns all unique presented keys.
//
// WARNING: calling it twice will override values, returned by the first call. Consider
// copying the returned slice for safe use.
func (s *Storage) Keys() []string {
	s.uniqueBuff = s.uniqueBuff[:0]

	for _, pair := range s.pairs {
		if s.contains(s.uniqueBuff, pair.Key) {
			continue
		}

		s.uniqueBuff = append(s.uniqueBuff, pair.Key)
	}

	return s.uniqueBuff
}

// Pairs returns an iterator over the pairs.
func (s *Storage) Pairs() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, pair := range s.pairs {
			if !yield(pair.Key, pair.Value) {
				break
			}
		}
	}
}

// Has indicates, whether there's an entry of the key.
func (s *Storage) Has(key string) bool {
	_, found := s.Get(key)
	return found
}

// Len returns a number of stored pairs.
func (s *Storage) Len() int {
	return len(s.pairs)
}

func (s *Storage) Empty() bool {
	return s.Len() == 0
}

// Expose exposes the underlying pairs slice.
func (s *Storage) Expose() []Pair {
	return s.pairs
}

func (s *Storage) cmp(a, b string) bool {
	if s.fold {
		return strcomp.EqualFold(a, b)
	}

	return a == b
}

func (s *Storage) count(key string) (n int) {
	for _, pair := range s.pairs {
		if s.cmp(key, pair.Key) {
			n++
		}
	}

	return n
}

func (s *Storage) contains(collection []string, key string) bool {
	for _, element := range collection {
		if s.cmp(element, key) {
			return true
		}
	}

	return false
}
