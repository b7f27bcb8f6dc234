package keyedstore

// keyedstore is a fixed bucket count hash table of singly linked chains,
// mapping string keys to values of any JSON-serializable type. The bucket
// count never changes after construction, so chains simply grow with the
// number of entries. Tables are persisted as a single JSON document holding
// an array of [key, value] pairs and are rebuilt key by key when loaded.
