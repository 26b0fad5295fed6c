package cache

import (
	"cratedeps/internal/shared/observability"
	"crypto/sha256"
	"encoding/hex"
)

// Key identifies one analysed revision of a file.
type Key struct {
	Path string
	Hash string
}

// ContentHash returns the hex sha256 of source.
func ContentHash(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// Results memoizes per-file analysis results keyed by path and content hash,
// so an unchanged file is never re-parsed. Lookups feed the cache hit/miss
// counters.
type Results[V any] struct {
	lru *LRU[Key, V]
}

func NewResults[V any](capacity int) *Results[V] {
	return &Results[V]{lru: NewLRU[Key, V](capacity)}
}

func (r *Results[V]) Lookup(path, hash string) (V, bool) {
	v, ok := r.lru.Get(Key{Path: path, Hash: hash})
	if ok {
		observability.CacheHitsTotal.Inc()
	} else {
		observability.CacheMissesTotal.Inc()
	}
	return v, ok
}

func (r *Results[V]) Store(path, hash string, value V) {
	r.lru.Put(Key{Path: path, Hash: hash}, value)
}

// Forget drops the entry for a revision, e.g. when the file is deleted.
func (r *Results[V]) Forget(path, hash string) {
	r.lru.Remove(Key{Path: path, Hash: hash})
}

func (r *Results[V]) Len() int {
	return r.lru.Len()
}
