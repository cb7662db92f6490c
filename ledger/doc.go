// Package ledger runs contracts against a persistent key-value table.
//
// The ledger applies one submission at a time. A submission invokes one entry
// point; the entry point may read other contracts through views and may emit
// one-way operations with Transfer. Emitted operations run after the emitting
// entry point returns, in the order they were emitted, and have no way to
// report a value back. If any operation fails the whole submission is
// discarded, so callers observe every effect or none.
//
// Inside a forwarded operation Sender is the emitting contract and Source is
// still the wallet that signed the original submission.
//
// State lives in a go-ethereum ethdb.KeyValueStore: memorydb for tests and
// ephemeral nodes, leveldb for durable ones. Values are RLP encoded.
package ledger
