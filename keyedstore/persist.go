package keyedstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Pair is one entry of a flattened table. It is encoded as a two element JSON
// array, [key, value].
type Pair[V any] struct {
	Key   string
	Value V
}

// MarshalJSON encodes p as [key, value].
func (p Pair[V]) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{p.Key, p.Value})
}

// UnmarshalJSON decodes a [key, value] array into p.
func (p *Pair[V]) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("expected a [key, value] pair but got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Key); err != nil {
		return fmt.Errorf("can't read the key: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.Value); err != nil {
		return fmt.Errorf("can't read the value for key %q: %w", p.Key, err)
	}
	return nil
}

// SaveToFile writes every entry to path as a JSON array of [key, value] pairs,
// bucket order outer and chain order inner. The entries are copied under the
// table lock; encoding and the write happen after it is released. The
// document goes to a temporary file in the same directory first and is then
// renamed over path, so readers never see a half written table.
func (s *Store[V]) SaveToFile(path string) error {
	pairs := s.Pairs()

	doc, err := json.MarshalIndent(pairs, "", "  ")
	if err != nil {
		return fmt.Errorf("can't encode the table: %w", err)
	}

	return writeFileAtomic(path, doc)
}

func writeFileAtomic(path string, doc []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("can't create a temporary file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("can't write the table to %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("can't flush the table to %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("can't close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("can't replace %s: %w", path, err)
	}
	return nil
}

// LoadFromFile reads a document written by SaveToFile and builds a fresh Store
// of the given size from it, inserting every pair in file order. Bucket
// placement is always recomputed from the current hash algorithm and size.
//
// A missing file yields a FileNotFound error; a document that is not an array
// of [string, value] pairs, or whose values don't decode into V, yields a
// MalformedData error.
func LoadFromFile[V any](path string, size int, hashAlgorithm HashAlgorithm) (*Store[V], error) {
	s, err := New[V](size, hashAlgorithm)
	if err != nil {
		return nil, err
	}

	doc, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, FileNotFound{Path: path, Err: err}
		}
		return nil, fmt.Errorf("can't read the table file %s: %w", path, err)
	}

	reason, err := validateDocument(doc)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		return nil, MalformedData{Path: path, Reason: reason}
	}

	var pairs []Pair[V]
	if err := json.Unmarshal(doc, &pairs); err != nil {
		return nil, MalformedData{Path: path, Reason: "can't decode the pairs", Err: err}
	}

	for _, p := range pairs {
		s.insert(p.Key, p.Value)
	}

	return s, nil
}
