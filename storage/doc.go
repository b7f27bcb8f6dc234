package storage

// storage contains the KeyValue interface for working with a persistent key/
// value store, as well as an implementation for BadgerDB. The fee engine uses
// it as a ledger of recompute cycles. Note that the storage package isn't
// designed to represent _what_ is stored in the database, and deals only in
// opaque binary data.
