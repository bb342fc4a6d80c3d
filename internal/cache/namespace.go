package cache

import "time"

// Namespace is a typed view over a Store.
// Keys are strings (fund ids, instrument codes); values are stored as-is.
type Namespace[K ~string, V any] struct {
	store *Store
	name  string
}

// NewNamespace creates a typed view. maxAge is the longest TTL any reader uses for this
// namespace; Sweep evicts entries older than it.
func NewNamespace[K ~string, V any](store *Store, name string, maxAge time.Duration) *Namespace[K, V] {
	store.register(name, maxAge)
	return &Namespace[K, V]{store: store, name: name}
}

// Name returns the namespace name
func (n *Namespace[K, V]) Name() string {
	return n.name
}

// Get returns the value if it was inserted less than ttl ago.
// An expired entry is evicted by the read.
func (n *Namespace[K, V]) Get(id K, ttl time.Duration) (V, bool) {
	var zero V
	raw, ok := n.store.get(key{namespace: n.name, id: string(id)}, ttl)
	if !ok {
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		return zero, false
	}
	return v, true
}

// Set upserts the value and resets its insertion time
func (n *Namespace[K, V]) Set(id K, v V) {
	n.store.set(key{namespace: n.name, id: string(id)}, v)
}

// Delete removes the entry
func (n *Namespace[K, V]) Delete(id K) {
	n.store.delete(key{namespace: n.name, id: string(id)})
}
