// Package kv provides small key-value stores used for draft snapshots,
// visitor identity and session-scoped markers.
package kv

// Store is a string key-value store. Reads never fail; a missing key is
// reported through the boolean. Writes may fail (for example on quota or
// I/O errors) and callers are expected to treat such failures as non-fatal.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}
