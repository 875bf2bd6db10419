package rbtree

import (
	"cmp"
	"sync"

	"github.com/c9s/ordmap/pkg/types"
)

// SyncTree guards a Tree with a read-write mutex. Nodes never leave the lock, so
// neighbor lookups take keys and traversals are copied out as entries.
type SyncTree[K, V any] struct {
	mu   sync.RWMutex
	tree *Tree[K, V]
}

func NewSync[K cmp.Ordered, V any]() *SyncTree[K, V] {
	return &SyncTree[K, V]{tree: New[K, V]()}
}

func NewSyncFunc[K, V any](compare types.CompareFunc[K]) *SyncTree[K, V] {
	return &SyncTree[K, V]{tree: NewFunc[K, V](compare)}
}

func (t *SyncTree[K, V]) Insert(key K, value V) error {
	t.mu.Lock()
	err := t.tree.Insert(key, value)
	t.mu.Unlock()
	return err
}

func (t *SyncTree[K, V]) Upsert(key K, value V) (inserted bool) {
	t.mu.Lock()
	inserted = t.tree.Upsert(key, value)
	t.mu.Unlock()
	return inserted
}

func (t *SyncTree[K, V]) Delete(key K) error {
	t.mu.Lock()
	err := t.tree.Delete(key)
	t.mu.Unlock()
	return err
}

func (t *SyncTree[K, V]) Get(key K) (V, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.Get(key)
}

func (t *SyncTree[K, V]) Contains(key K) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.Contains(key)
}

// Successor returns the entry with the next larger key after key. The key itself
// must be stored in the tree.
func (t *SyncTree[K, V]) Successor(key K) (types.Entry[K, V], bool, error) {
	return t.neighbor(key, (*Tree[K, V]).Successor)
}

// Predecessor returns the entry with the next smaller key before key. The key
// itself must be stored in the tree.
func (t *SyncTree[K, V]) Predecessor(key K) (types.Entry[K, V], bool, error) {
	return t.neighbor(key, (*Tree[K, V]).Predecessor)
}

func (t *SyncTree[K, V]) neighbor(key K, next func(*Tree[K, V], *Node[K, V]) *Node[K, V]) (entry types.Entry[K, V], ok bool, err error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := t.tree.Search(key)
	if n == nil {
		_, err = t.tree.Get(key)
		return entry, false, err
	}

	m := next(t.tree, n)
	if m == nil {
		return entry, false, nil
	}

	return types.Entry[K, V]{Key: m.key, Value: m.value}, true, nil
}

// Snapshot copies at most limit entries in the given order, a zero limit copies all.
func (t *SyncTree[K, V]) Snapshot(order types.Order, limit int) []types.Entry[K, V] {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.Entries(order, limit)
}

// Load upserts all entries under a single lock.
func (t *SyncTree[K, V]) Load(entries []types.Entry[K, V]) {
	t.mu.Lock()
	for _, e := range entries {
		t.tree.Upsert(e.Key, e.Value)
	}
	t.mu.Unlock()
}

func (t *SyncTree[K, V]) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.Size()
}

func (t *SyncTree[K, V]) Height() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.Height()
}

func (t *SyncTree[K, V]) BlackHeight() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.BlackHeight()
}

func (t *SyncTree[K, V]) Validate() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.Validate()
}

func (t *SyncTree[K, V]) Stats() Stats {
	return t.tree.Stats()
}

func (t *SyncTree[K, V]) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.String()
}

func (t *SyncTree[K, V]) Clear() {
	t.mu.Lock()
	t.tree.Clear()
	t.mu.Unlock()
}
