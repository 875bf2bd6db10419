package rbtree

import (
	"iter"

	"github.com/c9s/ordmap/pkg/types"
)

// The sequences below are lazy and restartable: every range over them walks the
// tree again from the root. The tree must not be modified while a sequence is
// being consumed.

// All yields every key/value pair in ascending key order.
func (tree *Tree[K, V]) All() iter.Seq2[K, V] {
	return pairs(tree.ascending())
}

// Backward yields every key/value pair in descending key order.
func (tree *Tree[K, V]) Backward() iter.Seq2[K, V] {
	return pairs(tree.descending())
}

// Traverse yields the key/value pairs in the given order.
func (tree *Tree[K, V]) Traverse(order types.Order) iter.Seq2[K, V] {
	return pairs(tree.nodes(order))
}

// Keys yields the keys in the given order.
func (tree *Tree[K, V]) Keys(order types.Order) iter.Seq[K] {
	return func(yield func(K) bool) {
		for n := range tree.nodes(order) {
			if !yield(n.key) {
				return
			}
		}
	}
}

// Entries copies at most limit pairs in the given order, a zero limit copies all.
func (tree *Tree[K, V]) Entries(order types.Order, limit int) []types.Entry[K, V] {
	capacity := tree.size
	if limit > 0 && limit < capacity {
		capacity = limit
	}

	entries := make([]types.Entry[K, V], 0, capacity)
	for n := range tree.nodes(order) {
		if limit > 0 && len(entries) >= limit {
			break
		}

		entries = append(entries, types.Entry[K, V]{Key: n.key, Value: n.value})
	}

	return entries
}

// Scan yields the pairs with lo <= key < hi in ascending order.
func (tree *Tree[K, V]) Scan(lo, hi K) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for n := tree.ceiling(lo); n != tree.leaf; n = tree.successorOf(n) {
			if tree.compare(n.key, hi) >= 0 {
				return
			}

			if !yield(n.key, n.value) {
				return
			}
		}
	}
}

// Inorder traverses the tree in ascending order
func (tree *Tree[K, V]) Inorder(cb func(n *Node[K, V]) bool) {
	walk(tree.ascending(), cb)
}

// InorderReverse traverses the tree in descending order
func (tree *Tree[K, V]) InorderReverse(cb func(n *Node[K, V]) bool) {
	walk(tree.descending(), cb)
}

func (tree *Tree[K, V]) Preorder(cb func(n *Node[K, V]) bool) {
	walk(tree.preorder(), cb)
}

func (tree *Tree[K, V]) Postorder(cb func(n *Node[K, V]) bool) {
	walk(tree.postorder(), cb)
}

func (tree *Tree[K, V]) LevelOrder(cb func(n *Node[K, V]) bool) {
	walk(tree.levelorder(), cb)
}

func (tree *Tree[K, V]) nodes(order types.Order) iter.Seq[*Node[K, V]] {
	switch order {
	case types.PreOrder:
		return tree.preorder()
	case types.PostOrder:
		return tree.postorder()
	case types.LevelOrder:
		return tree.levelorder()
	}

	return tree.ascending()
}

func (tree *Tree[K, V]) ascending() iter.Seq[*Node[K, V]] {
	return func(yield func(*Node[K, V]) bool) {
		for n := tree.leftmostOf(tree.root); n != tree.leaf; n = tree.successorOf(n) {
			if !yield(n) {
				return
			}
		}
	}
}

func (tree *Tree[K, V]) descending() iter.Seq[*Node[K, V]] {
	return func(yield func(*Node[K, V]) bool) {
		for n := tree.rightmostOf(tree.root); n != tree.leaf; n = tree.predecessorOf(n) {
			if !yield(n) {
				return
			}
		}
	}
}

func (tree *Tree[K, V]) preorder() iter.Seq[*Node[K, V]] {
	return func(yield func(*Node[K, V]) bool) {
		if tree.root == tree.leaf {
			return
		}

		stack := []*Node[K, V]{tree.root}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if !yield(n) {
				return
			}

			// push right first so that the left sub-tree is visited first
			if n.right != tree.leaf {
				stack = append(stack, n.right)
			}
			if n.left != tree.leaf {
				stack = append(stack, n.left)
			}
		}
	}
}

func (tree *Tree[K, V]) postorder() iter.Seq[*Node[K, V]] {
	return func(yield func(*Node[K, V]) bool) {
		var stack []*Node[K, V]
		var last = tree.leaf
		var n = tree.root

		for len(stack) > 0 || n != tree.leaf {
			if n != tree.leaf {
				stack = append(stack, n)
				n = n.left
				continue
			}

			top := stack[len(stack)-1]
			if top.right != tree.leaf && top.right != last {
				n = top.right
				continue
			}

			if !yield(top) {
				return
			}

			last = top
			stack = stack[:len(stack)-1]
		}
	}
}

func (tree *Tree[K, V]) levelorder() iter.Seq[*Node[K, V]] {
	return func(yield func(*Node[K, V]) bool) {
		if tree.root == tree.leaf {
			return
		}

		queue := []*Node[K, V]{tree.root}
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]

			if !yield(n) {
				return
			}

			if n.left != tree.leaf {
				queue = append(queue, n.left)
			}
			if n.right != tree.leaf {
				queue = append(queue, n.right)
			}
		}
	}
}

func pairs[K, V any](seq iter.Seq[*Node[K, V]]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for n := range seq {
			if !yield(n.key, n.value) {
				return
			}
		}
	}
}

func walk[K, V any](seq iter.Seq[*Node[K, V]], cb func(n *Node[K, V]) bool) {
	for n := range seq {
		if !cb(n) {
			return
		}
	}
}
