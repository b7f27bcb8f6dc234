package keyedstore

import (
	"github.com/cespare/xxhash/v2"
)

// HashAlgorithm - Interface that permits a caller to supply a custom bucket
// selection algorithm suited for its particular distribution of keys.
type HashAlgorithm interface {
	// SetTableSize - Sets the number of buckets the algorithm distributes over.
	// It is called every time a Store is created or loaded, overwriting any
	// table size the instance already had.
	SetTableSize(tableSize int64)

	// HashFunc1 - Given key it generates an index (bucket) between 0 and table size - 1.
	// The result must only depend on key and table size so that reloaded
	// tables stay searchable across process runs.
	HashFunc1(key []byte) int64

	// GetTableSize - Returns the table size the algorithm is currently set up for.
	GetTableSize() int64
}

// XXHashAlgorithm - The default bucket selection algorithm. It hashes the key
// with xxhash and uses bucket = hash mod tableSize.
type XXHashAlgorithm struct {
	tableSize int64
}

// NewXXHashAlgorithm - Returns a pointer to a new XXHashAlgorithm instance
func NewXXHashAlgorithm(tableSize int64) *XXHashAlgorithm {
	ha := &XXHashAlgorithm{}
	ha.SetTableSize(tableSize)
	return ha
}

// SetTableSize - Sets the table size for the hash algorithm.
func (X *XXHashAlgorithm) SetTableSize(tableSize int64) {
	X.tableSize = tableSize
}

// HashFunc1 - Given key it generates an index (bucket) between 0 and table size - 1
func (X *XXHashAlgorithm) HashFunc1(key []byte) int64 {
	return int64(xxhash.Sum64(key) % uint64(X.tableSize))
}

// GetTableSize - Returns the table size the implemented hash function is supporting
func (X *XXHashAlgorithm) GetTableSize() int64 {
	return X.tableSize
}
