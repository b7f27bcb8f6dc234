package storage

import (
	"fmt"
	"time"
)

// DefaultKeyTTL is how long a record is kept when the config doesn't say.
const DefaultKeyTTL = time.Duration(365*24) * time.Hour

// KVConfig contains settings specific to BadgerDB connections. An empty
// StorageDirPath means no database is used at all.
type KVConfig struct {
	StorageDirPath string        `yaml:"storageDir" json:"storageDir"`
	KeyTTLDuration time.Duration `yaml:"keyTTL" json:"keyTTL"`
}

// UnmarshalYAML parses the user-provided storage section.
func (c *KVConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	v := make(map[string]string)
	if err := unmarshal(&v); err != nil {
		return fmt.Errorf("can't parse the storage config: %v", err)
	}

	c.StorageDirPath = v["storageDir"]

	t, ok := v["keyTTL"]
	if !ok {
		c.KeyTTLDuration = DefaultKeyTTL
		return nil
	}

	d, err := time.ParseDuration(t)
	if err != nil {
		return fmt.Errorf("can't parse the key TTL as a duration: %v", err)
	}
	if d <= 0 {
		return fmt.Errorf("the key TTL must be positive, got %v", d)
	}
	c.KeyTTLDuration = d

	return nil
}

// KeyValue exposes a common interface for performing CRUD operations on an
// underlying storage layer.
//
// Implementations need to include connection logic in code to initialize
// a Store.
type KeyValue interface {
	// Replace the value of an entry or create a new one if it doesn't exist
	Put(KVEntry) error
	// Return an entry given its key
	Read(key []byte) (KVEntry, error)
	// Return every entry whose key starts with prefix, in key order
	Scan(prefix []byte) ([]KVEntry, error)
	// Cleanup performs routine deletion of old records. We assign
	// TTLs to KV pairs and delete them periodically.
	Cleanup() error
	// Drain/tear down the connection, or something analogous for
	// an embedded database
	Close() error
}

// KVEntry is what we'll write to and read from the KV store
type KVEntry struct {
	Key   []byte
	Value []byte
}
