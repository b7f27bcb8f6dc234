package keyedstore

import (
	"fmt"
	"sync"
)

// DefaultSize is the bucket count used when a table is created without an
// explicit size.
const DefaultSize = 100

// entry is one link in a bucket chain. Values are held by pointer so that
// handles returned by Search stay valid for the lifetime of the Store.
type entry[V any] struct {
	key   string
	value *V
	next  *entry[V]
}

// Store is a fixed-size array of buckets, each holding a singly linked chain
// of entries in insertion order. A Store is safe for concurrent use, but the
// values behind handles returned by Search are not guarded once the call
// returns; use Update or Each when other goroutines may touch the same entry.
type Store[V any] struct {
	mu      sync.Mutex
	buckets []*entry[V]
	tails   []*entry[V]
	count   int
	hash    HashAlgorithm
}

// New allocates a Store with size empty buckets. If hashAlgorithm is nil the
// xxhash based default is used.
func New[V any](size int, hashAlgorithm HashAlgorithm) (*Store[V], error) {
	if size <= 0 {
		return nil, fmt.Errorf("table size must be a positive value higher than 0 (zero), got %d", size)
	}

	if hashAlgorithm == nil {
		hashAlgorithm = NewXXHashAlgorithm(int64(size))
	} else {
		hashAlgorithm.SetTableSize(int64(size))
	}

	return &Store[V]{
		buckets: make([]*entry[V], size),
		tails:   make([]*entry[V], size),
		hash:    hashAlgorithm,
	}, nil
}

// Size returns the number of buckets, fixed at construction.
func (s *Store[V]) Size() int {
	return len(s.buckets)
}

// Len returns the number of entries, duplicates included.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// bucket returns the slot for key. Out-of-range values from a custom
// algorithm are folded back into the table rather than panicking.
func (s *Store[V]) bucket(key string) int {
	b := s.hash.HashFunc1([]byte(key)) % int64(len(s.buckets))
	if b < 0 {
		b += int64(len(s.buckets))
	}
	return int(b)
}

// Insert appends a new entry for key to the end of its bucket chain. Existing
// entries with the same key are left in place and keep shadowing the new one.
func (s *Store[V]) Insert(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insert(key, value)
}

func (s *Store[V]) insert(key string, value V) {
	b := s.bucket(key)
	e := &entry[V]{key: key, value: &value}
	if s.tails[b] == nil {
		s.buckets[b] = e
	} else {
		s.tails[b].next = e
	}
	s.tails[b] = e
	s.count++
}

func (s *Store[V]) find(key string) *entry[V] {
	for e := s.buckets[s.bucket(key)]; e != nil; e = e.next {
		if e.key == key {
			return e
		}
	}
	return nil
}

// Search returns a handle to the value of the first entry in chain order whose
// key equals key. Changes made through the handle are kept by the Store and
// picked up by the next SaveToFile. A NotFound error is returned when no entry
// matches.
func (s *Store[V]) Search(key string) (*V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.find(key)
	if e == nil {
		return nil, NotFound{Key: key}
	}
	return e.value, nil
}

// Update runs fn on the value Search would return for key while holding the
// table lock.
func (s *Store[V]) Update(key string, fn func(value *V)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.find(key)
	if e == nil {
		return NotFound{Key: key}
	}
	fn(e.value)
	return nil
}

// Each calls fn for every entry, bucket order outer and chain order inner.
// The set of entries is fixed when Each starts; the lock is then taken again
// around every single call to fn, so concurrent readers only ever wait for one
// entry. fn must not call back into the same Store.
func (s *Store[V]) Each(fn func(key string, value *V)) {
	s.mu.Lock()
	entries := make([]*entry[V], 0, s.count)
	for _, head := range s.buckets {
		for e := head; e != nil; e = e.next {
			entries = append(entries, e)
		}
	}
	s.mu.Unlock()

	for _, e := range entries {
		s.mu.Lock()
		fn(e.key, e.value)
		s.mu.Unlock()
	}
}

// Pairs returns a copy of every entry, bucket order outer and chain order
// inner. Values are shallow copies.
func (s *Store[V]) Pairs() []Pair[V] {
	s.mu.Lock()
	defer s.mu.Unlock()

	pairs := make([]Pair[V], 0, s.count)
	for _, head := range s.buckets {
		for e := head; e != nil; e = e.next {
			pairs = append(pairs, Pair[V]{Key: e.key, Value: *e.value})
		}
	}
	return pairs
}

// Distribution returns the chain length of every bucket.
func (s *Store[V]) Distribution() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := make([]int, len(s.buckets))
	for i, head := range s.buckets {
		for e := head; e != nil; e = e.next {
			d[i]++
		}
	}
	return d
}
