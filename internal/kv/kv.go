package kv

import "context"

// Store is a durable key-value slot store. Values are opaque bytes; callers
// read the whole value, modify it and write it back.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

type namespaced struct {
	inner  Store
	prefix string
}

// Namespaced scopes every key under prefix, so one backing store can hold
// the slots of many sessions.
func Namespaced(inner Store, prefix string) Store {
	return &namespaced{inner: inner, prefix: prefix + ":"}
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Put(ctx context.Context, key string, value []byte) error {
	return n.inner.Put(ctx, n.prefix+key, value)
}
