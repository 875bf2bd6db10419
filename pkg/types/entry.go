package types

import "fmt"

// Entry is a key/value pair copied out of a tree.
type Entry[K, V any] struct {
	Key   K `json:"key" yaml:"key"`
	Value V `json:"value" yaml:"value"`
}

func (e Entry[K, V]) String() string {
	return fmt.Sprintf("%v -> %v", e.Key, e.Value)
}
