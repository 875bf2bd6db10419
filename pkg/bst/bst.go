// Package bst implements an unbalanced binary search tree. It keeps no parent
// links and does no rebalancing, so sorted input degrades it to a linked list;
// it serves as the baseline the red-black tree is measured against.
package bst

import (
	"cmp"

	"github.com/c9s/ordmap/pkg/types"
)

type Node[K, V any] struct {
	left, right *Node[K, V]
	key         K
	value       V
}

type Tree[K, V any] struct {
	root    *Node[K, V]
	size    int
	compare types.CompareFunc[K]
}

func New[K cmp.Ordered, V any]() *Tree[K, V] {
	return NewFunc[K, V](types.Ordered[K]())
}

func NewFunc[K, V any](compare types.CompareFunc[K]) *Tree[K, V] {
	return &Tree[K, V]{compare: compare}
}

func (t *Tree[K, V]) Size() int {
	return t.size
}

// Insert value. Equal keys are kept and go to the right sub-tree.
func (t *Tree[K, V]) Insert(key K, value V) {
	t.size++

	node := &Node[K, V]{key: key, value: value}
	if t.root == nil {
		t.root = node
		return
	}

	current := t.root
	for {
		if t.compare(current.key, key) > 0 {
			if current.left == nil {
				current.left = node
				return
			}
			current = current.left
		} else {
			if current.right == nil {
				current.right = node
				return
			}
			current = current.right
		}
	}
}

// Search returns the value of the first node found with key.
func (t *Tree[K, V]) Search(key K) (value V, ok bool) {
	node, _ := t.find(key)
	if node == nil {
		return value, false
	}

	return node.value, true
}

// Remove one node holding key. Returns false if there is none.
func (t *Tree[K, V]) Remove(key K) bool {
	node, parent := t.find(key)
	if node == nil {
		return false
	}

	t.removeNode(parent, node)
	t.size--
	return true
}

// find returns the node holding key and its parent.
func (t *Tree[K, V]) find(key K) (node, parent *Node[K, V]) {
	node = t.root
	for node != nil {
		c := t.compare(key, node.key)
		if c == 0 {
			return node, parent
		}

		parent = node
		if c < 0 {
			node = node.left
		} else {
			node = node.right
		}
	}

	return nil, nil
}

// Remove node.
func (t *Tree[K, V]) removeNode(parent, node *Node[K, V]) {
	if node.left != nil && node.right != nil {
		min, minParent := minNode(node.right)
		if minParent == nil {
			minParent = node
		}

		t.removeNode(minParent, min)
		node.key = min.key
		node.value = min.value
	} else {
		var child *Node[K, V]
		if node.left != nil {
			child = node.left
		} else {
			child = node.right
		}

		if node == t.root {
			t.root = child
		} else if parent.left == node {
			parent.left = child
		} else {
			parent.right = child
		}
	}
}

// Min returns the smallest key.
func (t *Tree[K, V]) Min() (key K, ok bool) {
	node, _ := minNode(t.root)
	if node == nil {
		return key, false
	}
	return node.key, true
}

// Max returns the largest key.
func (t *Tree[K, V]) Max() (key K, ok bool) {
	node, _ := maxNode(t.root)
	if node == nil {
		return key, false
	}
	return node.key, true
}

// Successor returns the smallest key strictly greater than key.
func (t *Tree[K, V]) Successor(key K) (found K, ok bool) {
	for node := t.root; node != nil; {
		if t.compare(node.key, key) > 0 {
			found, ok = node.key, true
			node = node.left
		} else {
			node = node.right
		}
	}
	return found, ok
}

// Predecessor returns the largest key strictly less than key.
func (t *Tree[K, V]) Predecessor(key K) (found K, ok bool) {
	for node := t.root; node != nil; {
		if t.compare(node.key, key) < 0 {
			found, ok = node.key, true
			node = node.right
		} else {
			node = node.left
		}
	}
	return found, ok
}

// Height returns the number of edges on the longest root-to-leaf path, 0 for an
// empty tree. It walks level by level since a degenerate tree is as deep as it
// is large.
func (t *Tree[K, V]) Height() int {
	if t.root == nil {
		return 0
	}

	height := -1
	level := []*Node[K, V]{t.root}
	for len(level) > 0 {
		height++

		var next []*Node[K, V]
		for _, n := range level {
			if n.left != nil {
				next = append(next, n.left)
			}
			if n.right != nil {
				next = append(next, n.right)
			}
		}
		level = next
	}

	return height
}

// Min node. Returns min node and its parent.
func minNode[K, V any](root *Node[K, V]) (*Node[K, V], *Node[K, V]) {
	if root == nil {
		return nil, nil
	}

	var parent *Node[K, V]
	node := root

	for node.left != nil {
		parent = node
		node = node.left
	}

	return node, parent
}

// Max node. Returns max node and its parent.
func maxNode[K, V any](root *Node[K, V]) (*Node[K, V], *Node[K, V]) {
	if root == nil {
		return nil, nil
	}

	var parent *Node[K, V]
	node := root

	for node.right != nil {
		parent = node
		node = node.right
	}

	return node, parent
}
