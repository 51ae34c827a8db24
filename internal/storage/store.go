// Package storage provides the key/value persistence used for profile-scoped
// state. Values are opaque strings, normally JSON documents.
package storage

// Store is a last-write-wins key/value store.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(key string) (string, bool, error)
	// Set writes value under key.
	Set(key, value string) error
	// Delete removes key. Missing keys are not an error.
	Delete(key string) error
	// Keys lists keys starting with prefix, sorted.
	Keys(prefix string) ([]string, error)
}
